package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/protocol"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	DeleteByID(ctx context.Context, id string) error
}

// Outcome is the final result of a session. Winner is nil on a draw.
type Outcome struct {
	Winner *Player
	Board  entity.Board
}

func (that *Outcome) IsDraw() bool {
	return that.Winner == nil
}

// Session runs one game between two players. Run is the only mutator of its state.
type Session struct {
	ID string

	logger   *slog.Logger
	gameRepo gameRepo

	players [2]*Player
	board   entity.Board
	turn    int
	game    *entity.Game
}

// New creates a session for the two accepted players. gameRepo may be nil.
func New(logger *slog.Logger, players [2]*Player, gameRepo gameRepo) *Session {
	id := uuid.NewString()

	return &Session{
		ID:       id,
		logger:   logger.With("component", "session", "session_id", id),
		gameRepo: gameRepo,
		players:  players,
		game:     entity.NewGame(id),
	}
}

// Run plays the game to completion. Any I/O failure aborts the session with an error
// wrapping apperror.ErrConnectionFailure. Both connections are closed when Run returns.
func (that *Session) Run(ctx context.Context) (*Outcome, error) {
	log := that.logger.With("method", "Run")

	stop := context.AfterFunc(ctx, that.closePlayers)
	defer stop()
	defer that.closePlayers()

	log.Info("session started")
	that.saveGame(ctx)

	for {
		current := that.current()

		applied, outcome, err := that.playTurn(current)
		if err != nil {
			that.abort(ctx, err)

			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("session interrupted: %w", errors.Join(ctxErr, err))
			}

			return nil, fmt.Errorf("session aborted: %w", err)
		}

		if !applied {
			continue
		}

		if outcome != nil {
			that.finish(ctx, outcome)
			return outcome, nil
		}

		that.saveGame(ctx)
		that.turn++
	}
}

// playTurn prompts current once and handles its reply. applied is false when the move
// was rejected; outcome is nil while the game goes on.
func (that *Session) playTurn(current *Player) (applied bool, outcome *Outcome, err error) {
	log := that.logger.With("method", "playTurn", "symbol", current.Symbol)

	if err = current.Send(protocol.YourTurn()); err != nil {
		return false, nil, err
	}

	var row, col int

	line, err := current.ReadLine()
	if err == nil {
		row, col, err = protocol.DecodeMove(line)
	}

	if err == nil {
		err = that.board.Place(row, col, current.Symbol)
	}

	if err != nil {
		if !errors.Is(err, apperror.ErrMalformedMove) && !errors.Is(err, apperror.ErrInvalidMove) {
			return false, nil, err
		}

		log.Debug("move rejected", "line", line, "error", err)
		return false, nil, current.Send(protocol.InvalidMove())
	}

	if err = that.broadcast(protocol.UpdateBoard(row, col, current.Symbol)); err != nil {
		return false, nil, err
	}

	that.game.Apply(that.board, current.Symbol)
	log.Info("move applied", "row", row, "col", col, "moves", that.board.Filled(), "board", that.board.String())

	switch {
	case that.board.CheckWin(current.Symbol):
		return true, &Outcome{Winner: current, Board: that.board}, nil
	case that.board.CheckDraw():
		return true, &Outcome{Board: that.board}, nil
	default:
		return true, nil, nil
	}
}

func (that *Session) finish(ctx context.Context, outcome *Outcome) {
	log := that.logger.With("method", "finish")

	var messages [2]protocol.Message
	for i, player := range that.players {
		switch {
		case outcome.IsDraw():
			messages[i] = protocol.GameOver(protocol.ResultDraw)
		case player == outcome.Winner:
			messages[i] = protocol.GameOver(protocol.ResultWin)
		default:
			messages[i] = protocol.GameOver(protocol.ResultLose)
		}
	}

	// the game is decided; a failed delivery only gets logged
	if err := that.deliver(messages); err != nil {
		log.Warn("game over not delivered to every player", "error", err)
	}

	if outcome.IsDraw() {
		log.Info("session finished", "result", protocol.ResultDraw, "board", outcome.Board.String())
	} else {
		log.Info("session finished", "winner", outcome.Winner.Symbol, "board", outcome.Board.String())
	}

	that.deleteGame(ctx)
}

func (that *Session) abort(ctx context.Context, cause error) {
	log := that.logger.With("method", "abort")
	log.Error("session aborted", "error", cause)

	that.game.Abort()

	notice := protocol.GameOver(protocol.ResultAborted)
	if err := that.deliver([2]protocol.Message{notice, notice}); err != nil {
		log.Debug("abort notice not delivered", "error", err)
	}

	that.deleteGame(ctx)
}

func (that *Session) broadcast(msg protocol.Message) error {
	return that.deliver([2]protocol.Message{msg, msg})
}

// deliver sends messages[i] to players[i] concurrently. Every send is attempted.
func (that *Session) deliver(messages [2]protocol.Message) error {
	var group errgroup.Group

	for i, player := range that.players {
		player := player
		msg := messages[i]
		group.Go(func() error {
			return player.Send(msg)
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("failed to deliver %s: %w", messages[0].Kind, err)
	}

	return nil
}

func (that *Session) current() *Player {
	return that.players[that.turn%len(that.players)]
}

func (that *Session) closePlayers() {
	for _, player := range that.players {
		if err := player.Close(); err != nil {
			that.logger.Debug("failed to close player connection", "symbol", player.Symbol, "error", err)
		}
	}
}

func (that *Session) saveGame(ctx context.Context) {
	if that.gameRepo == nil {
		return
	}

	game := *that.game
	if err := that.gameRepo.CreateOrUpdate(ctx, &game); err != nil {
		that.logger.Warn("failed to save game snapshot", "error", err)
	}
}

func (that *Session) deleteGame(ctx context.Context) {
	if that.gameRepo == nil {
		return
	}

	if err := that.gameRepo.DeleteByID(context.WithoutCancel(ctx), that.ID); err != nil {
		that.logger.Warn("failed to delete game snapshot", "error", err)
	}
}
