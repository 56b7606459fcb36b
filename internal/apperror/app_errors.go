package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrBind              = errors.New("cannot listen on address")
	ErrMalformedMove     = errors.New("malformed move")
	ErrInvalidMove       = errors.New("invalid move")
	ErrConnectionFailure = errors.New("connection failure")

	ErrLineTooLong = fmt.Errorf("%w: line too long", ErrMalformedMove)

	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", ErrInvalidMove)
	ErrOutOfRange   = fmt.Errorf("%w: cell is out of range", ErrInvalidMove)
	ErrInvalidMark  = fmt.Errorf("%w: unknown mark", ErrInvalidMove)
)
