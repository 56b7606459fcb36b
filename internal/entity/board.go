package entity

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
)

// Cell is the state of one board position.
type Cell string

const (
	EmptyCell Cell = ""
	PlayerX   Cell = "X"
	PlayerO   Cell = "O"
)

const BoardSize = 3

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 grid stored row-major.
type Board [BoardSize * BoardSize]Cell

// IsMark reports whether the cell is a player symbol.
func (that Cell) IsMark() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other player's symbol.
func (that Cell) Opponent() Cell {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Place puts mark on the cell at row, col. The board is left untouched on error.
func (that *Board) Place(row, col int, mark Cell) error {
	if !mark.IsMark() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrOutOfRange, row, col)
	}

	idx := row*BoardSize + col
	if that[idx] != EmptyCell {
		return fmt.Errorf("%w: row %d, col %d", apperror.ErrCellOccupied, row, col)
	}

	that[idx] = mark

	return nil
}

// At returns the cell at row, col, or EmptyCell when out of range.
func (that *Board) At(row, col int) Cell {
	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return EmptyCell
	}
	return that[row*BoardSize+col]
}

// CheckWin reports whether any row, column or diagonal is entirely mark.
func (that *Board) CheckWin(mark Cell) bool {
	if !mark.IsMark() {
		return false
	}

	return lo.SomeBy(WinCombos, func(combo [3]int) bool {
		return lo.EveryBy(combo[:], func(idx int) bool {
			return that[idx] == mark
		})
	})
}

// CheckDraw reports a full board on which neither player completed a line.
func (that *Board) CheckDraw() bool {
	if lo.Contains(that[:], EmptyCell) {
		return false
	}

	return !that.CheckWin(PlayerX) && !that.CheckWin(PlayerO)
}

// Filled returns the number of claimed cells.
func (that *Board) Filled() int {
	return len(that) - lo.Count(that[:], EmptyCell)
}

// String renders the board as three lines, "." marking empty cells.
func (that *Board) String() string {
	var sb strings.Builder

	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			cell := that.At(row, col)
			if cell == EmptyCell {
				cell = "."
			}

			sb.WriteString(string(cell))
			if col < BoardSize-1 {
				sb.WriteByte(' ')
			}
		}

		if row < BoardSize-1 {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
