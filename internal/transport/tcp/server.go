package tcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/session"
)

type Server struct {
	logger     *slog.Logger
	listener   net.Listener
	playerOpts []session.PlayerOption
}

// Listen binds addr. Failure wraps apperror.ErrBind.
func Listen(logger *slog.Logger, addr string, opts ...session.PlayerOption) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", apperror.ErrBind, addr, err)
	}

	return New(logger, listener, opts...), nil
}

func New(logger *slog.Logger, listener net.Listener, opts ...session.PlayerOption) *Server {
	return &Server{
		logger:     logger.With("component", "tcp"),
		listener:   listener,
		playerOpts: opts,
	}
}

func (that *Server) Addr() net.Addr {
	return that.listener.Addr()
}

// AcceptPlayers accepts connections one at a time until two players hold X and O.
// A connection that cannot receive its assignment is dropped and the slot accepted again.
func (that *Server) AcceptPlayers(ctx context.Context) ([2]*session.Player, error) {
	log := that.logger.With("method", "AcceptPlayers")

	stop := context.AfterFunc(ctx, func() {
		_ = that.listener.Close()
	})
	defer stop()

	var players [2]*session.Player

	for ordinal := 0; ordinal < len(players); {
		conn, err := that.listener.Accept()
		if err != nil {
			closePlayers(players[:ordinal])

			if ctxErr := ctx.Err(); ctxErr != nil {
				return [2]*session.Player{}, fmt.Errorf("accept interrupted: %w", ctxErr)
			}

			return [2]*session.Player{}, fmt.Errorf("failed to accept connection: %w", err)
		}

		player := session.NewPlayer(conn, ordinal, that.playerOpts...)
		if err = player.Send(protocol.Assign(player.Symbol)); err != nil {
			log.Warn("failed to assign symbol, dropping connection", "remote", player.RemoteAddr(), "error", err)
			_ = player.Close()
			continue
		}

		log.Info("player connected", "ordinal", ordinal, "symbol", player.Symbol, "remote", player.RemoteAddr())
		players[ordinal] = player
		ordinal++
	}

	return players, nil
}

// Close stops listening. Closing an already closed listener is not an error.
func (that *Server) Close() error {
	if err := that.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("failed to close listener: %w", err)
	}

	return nil
}

func closePlayers(players []*session.Player) {
	for _, player := range players {
		_ = player.Close()
	}
}
