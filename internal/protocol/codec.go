package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
)

// MaxLineLength bounds a single line in either direction, newline included.
const MaxLineLength = 1024

var (
	ErrUnknownMessage = errors.New("unknown message")
	ErrBadArguments   = errors.New("bad message arguments")

	moveRe   = regexp.MustCompile(`^\s*(-?\d+)\s*,\s*(-?\d+)\s*$`)
	updateRe = regexp.MustCompile(`^(-?\d+),(-?\d+),([XO])$`)
)

// Encode renders msg as a single newline terminated line.
func Encode(msg Message) string {
	switch msg.Kind {
	case KindAssign:
		return fmt.Sprintf("%s %s\n", msg.Kind, msg.Symbol)
	case KindUpdateBoard:
		return fmt.Sprintf("%s %d,%d,%s\n", msg.Kind, msg.Row, msg.Col, msg.Symbol)
	case KindGameOver:
		return fmt.Sprintf("%s %s\n", msg.Kind, msg.Result)
	default:
		return string(msg.Kind) + "\n"
	}
}

// EncodeMove renders a client move line.
func EncodeMove(row, col int) string {
	return fmt.Sprintf("%d,%d\n", row, col)
}

// DecodeMove parses a "row,col" line. Range is not checked here.
func DecodeMove(line string) (int, int, error) {
	groups := moveRe.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if groups == nil {
		return 0, 0, fmt.Errorf("%w: %q", apperror.ErrMalformedMove, line)
	}

	row, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: row: %w", apperror.ErrMalformedMove, err)
	}

	col, err := strconv.Atoi(groups[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: col: %w", apperror.ErrMalformedMove, err)
	}

	return row, col, nil
}

// Decode parses a server to client line.
func Decode(line string) (Message, error) {
	line = strings.TrimSpace(line)
	keyword, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	switch kind := Kind(keyword); kind {
	case KindYourTurn, KindInvalidMove:
		if args != "" {
			return Message{}, fmt.Errorf("%w: %s takes no arguments", ErrBadArguments, kind)
		}
		return Message{Kind: kind}, nil

	case KindAssign:
		symbol := entity.Cell(args)
		if !symbol.IsMark() {
			return Message{}, fmt.Errorf("%w: assign %q", ErrBadArguments, args)
		}
		return Assign(symbol), nil

	case KindUpdateBoard:
		groups := updateRe.FindStringSubmatch(args)
		if groups == nil {
			return Message{}, fmt.Errorf("%w: update %q", ErrBadArguments, args)
		}
		row, err := strconv.Atoi(groups[1])
		if err != nil {
			return Message{}, fmt.Errorf("%w: update row: %w", ErrBadArguments, err)
		}
		col, err := strconv.Atoi(groups[2])
		if err != nil {
			return Message{}, fmt.Errorf("%w: update col: %w", ErrBadArguments, err)
		}
		return UpdateBoard(row, col, entity.Cell(groups[3])), nil

	case KindGameOver:
		switch result := Result(args); result {
		case ResultWin, ResultLose, ResultDraw, ResultAborted:
			return GameOver(result), nil
		default:
			return Message{}, fmt.Errorf("%w: game over %q", ErrBadArguments, args)
		}

	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessage, line)
	}
}
