package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
)

var ErrInputClosed = errors.New("input closed")

// Client mirrors the server's board and relays moves typed by the user.
type Client struct {
	logger *slog.Logger

	conn   net.Conn
	server *bufio.Scanner
	input  *bufio.Scanner
	out    io.Writer

	symbol entity.Cell
	board  entity.Board
}

// Dial connects to the game server at addr.
func Dial(ctx context.Context, logger *slog.Logger, addr string, in io.Reader, out io.Writer) (*Client, error) {
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", apperror.ErrConnectionFailure, addr, err)
	}

	return New(logger, conn, in, out), nil
}

func New(logger *slog.Logger, conn net.Conn, in io.Reader, out io.Writer) *Client {
	server := bufio.NewScanner(conn)
	server.Buffer(make([]byte, 0, 64), protocol.MaxLineLength)

	return &Client{
		logger: logger.With("component", "client"),
		conn:   conn,
		server: server,
		input:  bufio.NewScanner(in),
		out:    out,
	}
}

// Run handles server messages until GAME_OVER and returns its result.
func (that *Client) Run() (protocol.Result, error) {
	log := that.logger.With("method", "Run")

	for that.server.Scan() {
		msg, err := protocol.Decode(that.server.Text())
		if err != nil {
			log.Warn("ignoring server line", "line", that.server.Text(), "error", err)
			continue
		}

		switch msg.Kind {
		case protocol.KindAssign:
			that.symbol = msg.Symbol
			that.printf("Assigned symbol: %s. Waiting for the game to start...\n", msg.Symbol)

		case protocol.KindYourTurn:
			if err = that.promptMove(); err != nil {
				return "", err
			}

		case protocol.KindUpdateBoard:
			if err = that.board.Place(msg.Row, msg.Col, msg.Symbol); err != nil {
				log.Warn("board out of sync with server", "error", err)
			}
			that.printf("%s played %d,%d\n", msg.Symbol, msg.Row, msg.Col)

		case protocol.KindInvalidMove:
			that.printf("Invalid move, try again.\n")

		case protocol.KindGameOver:
			that.printf("\n%s\n%s\n", that.board.String(), resultText(msg.Result))
			return msg.Result, nil
		}
	}

	err := that.server.Err()
	if err == nil {
		err = io.EOF
	}

	return "", fmt.Errorf("%w: server: %w", apperror.ErrConnectionFailure, err)
}

func (that *Client) Close() error {
	return that.conn.Close()
}

func (that *Client) promptMove() error {
	that.printf("\n%s\nYour turn (row,col): ", that.board.String())

	if !that.input.Scan() {
		if err := that.input.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInputClosed, err)
		}
		return ErrInputClosed
	}

	// the server judges malformed input, so it is forwarded as typed
	line := strings.TrimSpace(that.input.Text()) + "\n"
	if row, col, err := protocol.DecodeMove(line); err == nil {
		line = protocol.EncodeMove(row, col)
	}

	if _, err := io.WriteString(that.conn, line); err != nil {
		return fmt.Errorf("%w: send move: %w", apperror.ErrConnectionFailure, err)
	}

	return nil
}

func (that *Client) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(that.out, format, args...)
}

func resultText(result protocol.Result) string {
	switch result {
	case protocol.ResultWin:
		return "Game over: you win!"
	case protocol.ResultLose:
		return "Game over: you lose."
	case protocol.ResultDraw:
		return "Game over: draw."
	default:
		return "Game over: the game was aborted."
	}
}
