package tcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/session"
)

const waitTimeout = 3 * time.Second

type acceptResult struct {
	players [2]*session.Player
	err     error
}

func newServer(t *testing.T) *Server {
	t.Helper()

	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	srv := New(logger, listener, session.WithWriteTimeout(time.Second))
	t.Cleanup(func() {
		require.NoError(t, srv.Close())
	})

	return srv
}

func acceptAsync(ctx context.Context, srv *Server) <-chan acceptResult {
	done := make(chan acceptResult, 1)
	go func() {
		players, err := srv.AcceptPlayers(ctx)
		done <- acceptResult{players: players, err: err}
	}()
	return done
}

type peer struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, srv *Server) *peer {
	t.Helper()

	conn, err := net.Dial(srv.Addr().Network(), srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &peer{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (that *peer) expect(want string) {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(waitTimeout)))
	line, err := that.reader.ReadString('\n')
	require.NoError(that.t, err)
	require.Equal(that.t, want+"\n", line)
}

func (that *peer) send(line string) {
	that.t.Helper()

	_, err := io.WriteString(that.conn, line+"\n")
	require.NoError(that.t, err)
}

func TestListen(t *testing.T) {
	t.Run("Fails with ErrBind on an address in use", func(t *testing.T) {
		// Given: an address that is already taken
		taken, err := nettest.NewLocalListener("tcp")
		require.NoError(t, err)
		defer taken.Close()

		// When: listening on it again
		srv, err := Listen(slog.Default(), taken.Addr().String())

		// Then: the bind error is reported
		require.ErrorIs(t, err, apperror.ErrBind)
		assert.Nil(t, srv)
	})

	t.Run("Binds a free port", func(t *testing.T) {
		srv, err := Listen(slog.Default(), "127.0.0.1:0")
		require.NoError(t, err)
		defer srv.Close()

		assert.NotEmpty(t, srv.Addr().String())
	})
}

func TestServer_AcceptPlayers(t *testing.T) {
	t.Run("Assigns X then O in acceptance order", func(t *testing.T) {
		// Given: a listening server
		srv := newServer(t)
		done := acceptAsync(context.Background(), srv)

		// When: two clients connect one after the other
		first := dial(t, srv)
		first.expect("ASSIGN X")
		second := dial(t, srv)
		second.expect("ASSIGN O")

		// Then: the players carry the matching symbols
		var res acceptResult
		select {
		case res = <-done:
		case <-time.After(waitTimeout):
			t.Fatal("players were not accepted")
		}
		require.NoError(t, res.err)
		assert.Equal(t, 0, res.players[0].Ordinal)
		assert.Equal(t, "X", string(res.players[0].Symbol))
		assert.Equal(t, 1, res.players[1].Ordinal)
		assert.Equal(t, "O", string(res.players[1].Symbol))

		for _, player := range res.players {
			require.NoError(t, player.Close())
		}
	})

	t.Run("Cancellation stops accepting and drops waiting players", func(t *testing.T) {
		// Given: one client already accepted
		srv := newServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		done := acceptAsync(ctx, srv)
		first := dial(t, srv)
		first.expect("ASSIGN X")

		// When: the context is cancelled before the second client arrives
		cancel()

		// Then: accepting fails with the cancellation and the first client is closed
		select {
		case res := <-done:
			require.ErrorIs(t, res.err, context.Canceled)
		case <-time.After(waitTimeout):
			t.Fatal("accept did not stop")
		}

		require.NoError(t, first.conn.SetReadDeadline(time.Now().Add(waitTimeout)))
		_, err := first.reader.ReadString('\n')
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestServer_EndToEnd(t *testing.T) {
	// Given: a server and two connected clients
	srv := newServer(t)
	done := acceptAsync(context.Background(), srv)

	x := dial(t, srv)
	x.expect("ASSIGN X")
	o := dial(t, srv)
	o.expect("ASSIGN O")

	res := <-done
	require.NoError(t, res.err)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	sessionDone := make(chan error, 1)
	go func() {
		_, err := session.New(logger, res.players, nil).Run(context.Background())
		sessionDone <- err
	}()

	// When: X takes the top row while O plays the middle
	moves := [][2]int{{0, 0}, {1, 1}, {0, 1}, {1, 0}, {0, 2}}
	peers := [2]*peer{x, o}
	symbols := [2]string{"X", "O"}
	for i, move := range moves {
		mover := peers[i%2]
		mover.expect("YOUR_TURN")
		mover.send(fmt.Sprintf("%d,%d", move[0], move[1]))

		update := fmt.Sprintf("UPDATE_BOARD %d,%d,%s", move[0], move[1], symbols[i%2])
		x.expect(update)
		o.expect(update)
	}

	// Then: X wins and O loses
	x.expect("GAME_OVER WIN")
	o.expect("GAME_OVER LOSE")

	select {
	case err := <-sessionDone:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("session did not finish")
	}
}
