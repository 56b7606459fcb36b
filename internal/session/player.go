package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
)

// Symbols are handed out in acceptance order.
var Symbols = [2]entity.Cell{entity.PlayerX, entity.PlayerO}

// Player is one accepted connection and the symbol it plays for the whole session.
type Player struct {
	Ordinal int
	Symbol  entity.Cell

	conn         net.Conn
	reader       *bufio.Reader
	moveTimeout  time.Duration
	writeTimeout time.Duration
	closeOnce    sync.Once
}

type PlayerOption func(*Player)

// WithMoveTimeout bounds the wait for a move line. Zero waits forever.
func WithMoveTimeout(d time.Duration) PlayerOption {
	return func(p *Player) {
		p.moveTimeout = d
	}
}

// WithWriteTimeout bounds each outgoing line. Zero disables the deadline.
func WithWriteTimeout(d time.Duration) PlayerOption {
	return func(p *Player) {
		p.writeTimeout = d
	}
}

func NewPlayer(conn net.Conn, ordinal int, opts ...PlayerOption) *Player {
	player := &Player{
		Ordinal: ordinal,
		Symbol:  Symbols[ordinal%len(Symbols)],
		conn:    conn,
		reader:  bufio.NewReaderSize(conn, protocol.MaxLineLength),
	}

	for _, opt := range opts {
		opt(player)
	}

	return player
}

// Send writes msg as one line.
func (that *Player) Send(msg protocol.Message) error {
	if that.writeTimeout > 0 {
		if err := that.conn.SetWriteDeadline(time.Now().Add(that.writeTimeout)); err != nil {
			return fmt.Errorf("%w: player %s: set write deadline: %w", apperror.ErrConnectionFailure, that.Symbol, err)
		}
	}

	if _, err := io.WriteString(that.conn, protocol.Encode(msg)); err != nil {
		return fmt.Errorf("%w: player %s: write %s: %w", apperror.ErrConnectionFailure, that.Symbol, msg.Kind, err)
	}

	return nil
}

// ReadLine blocks until the player sends a full line. A line longer than
// protocol.MaxLineLength is discarded up to its newline and reported as
// apperror.ErrLineTooLong; the connection stays usable.
func (that *Player) ReadLine() (string, error) {
	var deadline time.Time
	if that.moveTimeout > 0 {
		deadline = time.Now().Add(that.moveTimeout)
	}

	if err := that.conn.SetReadDeadline(deadline); err != nil {
		return "", fmt.Errorf("%w: player %s: set read deadline: %w", apperror.ErrConnectionFailure, that.Symbol, err)
	}

	raw, err := that.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return "", that.discardLine()
	}

	line := string(raw)
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("%w: player %s: read: %w", apperror.ErrConnectionFailure, that.Symbol, err)
	}

	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

func (that *Player) discardLine() error {
	for {
		_, err := that.reader.ReadSlice('\n')
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err != nil:
			return fmt.Errorf("%w: player %s: read: %w", apperror.ErrConnectionFailure, that.Symbol, err)
		default:
			return fmt.Errorf("%w: player %s: more than %d bytes", apperror.ErrLineTooLong, that.Symbol, protocol.MaxLineLength)
		}
	}
}

func (that *Player) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}

// Close closes the connection once; later calls return nil.
func (that *Player) Close() error {
	var err error

	that.closeOnce.Do(func() {
		err = that.conn.Close()
	})

	return err
}
