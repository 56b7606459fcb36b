package client

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
)

func newTestClient(t *testing.T, input string) (*Client, net.Conn, *bytes.Buffer) {
	t.Helper()

	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
	})

	out := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(logger, clientConn, strings.NewReader(input), out), serverConn, out
}

func TestClient_Run_Win(t *testing.T) {
	// Given
	c, server, out := newTestClient(t, "1,1\n")

	moves := make(chan string, 1)
	go func() {
		reader := bufio.NewReader(server)
		_, _ = io.WriteString(server, "ASSIGN X\nYOUR_TURN\n")
		line, _ := reader.ReadString('\n')
		moves <- line
		_, _ = io.WriteString(server, "UPDATE_BOARD 1,1,X\nGAME_OVER WIN\n")
	}()

	// When
	result, err := c.Run()

	// Then
	require.NoError(t, err)
	assert.Equal(t, protocol.ResultWin, result)
	assert.Equal(t, "1,1\n", <-moves)
	assert.Contains(t, out.String(), "Assigned symbol: X")
	assert.Contains(t, out.String(), "Your turn (row,col): ")
	assert.Contains(t, out.String(), ". X .")
	assert.Contains(t, out.String(), "you win")
}

func TestClient_Run_InvalidMoveRetry(t *testing.T) {
	// Given
	c, server, out := newTestClient(t, "abc\n 0 , 0 \n")

	moves := make(chan string, 2)
	go func() {
		reader := bufio.NewReader(server)
		_, _ = io.WriteString(server, "ASSIGN O\nYOUR_TURN\n")
		line, _ := reader.ReadString('\n')
		moves <- line
		_, _ = io.WriteString(server, "INVALID_MOVE\nYOUR_TURN\n")
		line, _ = reader.ReadString('\n')
		moves <- line
		_, _ = io.WriteString(server, "UPDATE_BOARD 0,0,O\nGAME_OVER DRAW\n")
	}()

	// When
	result, err := c.Run()

	// Then
	require.NoError(t, err)
	assert.Equal(t, protocol.ResultDraw, result)
	assert.Equal(t, "abc\n", <-moves)
	assert.Equal(t, "0,0\n", <-moves)
	assert.Contains(t, out.String(), "Invalid move, try again.")
}

func TestClient_Run_IgnoresUnknownLines(t *testing.T) {
	// Given
	c, server, _ := newTestClient(t, "")

	go func() {
		_, _ = io.WriteString(server, "HELLO\nGAME_OVER ABORTED\n")
	}()

	// When
	result, err := c.Run()

	// Then
	require.NoError(t, err)
	assert.Equal(t, protocol.ResultAborted, result)
}

func TestClient_Run_ServerClosed(t *testing.T) {
	// Given
	c, server, _ := newTestClient(t, "")

	go func() {
		_, _ = io.WriteString(server, "ASSIGN X\n")
		_ = server.Close()
	}()

	// When
	_, err := c.Run()

	// Then
	require.ErrorIs(t, err, apperror.ErrConnectionFailure)
	assert.ErrorIs(t, err, io.EOF)
}

func TestClient_Run_InputClosed(t *testing.T) {
	// Given
	c, server, _ := newTestClient(t, "")

	go func() {
		_, _ = io.WriteString(server, "ASSIGN X\nYOUR_TURN\n")
	}()

	// When
	_, err := c.Run()

	// Then
	require.ErrorIs(t, err, ErrInputClosed)
}
