package entity

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
	StatusAborted  = "aborted"

	PlayerTie = "-"
)

// Game is a point-in-time snapshot of a running session.
type Game struct {
	ID     string `json:"id"`
	Board  Board  `json:"board"`
	Turn   Cell   `json:"turn"`
	Winner string `json:"winner"`
	Status string `json:"status"`
	Moves  int    `json:"moves"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:     id,
		Turn:   PlayerX,
		Status: StatusOngoing,
	}
}

// Apply records a placed move and updates turn, winner and status from the board.
func (that *Game) Apply(board Board, mover Cell) {
	that.Board = board
	that.Moves = board.Filled()

	switch {
	case board.CheckWin(mover):
		that.Winner = string(mover)
		that.Status = StatusFinished
		that.Turn = EmptyCell
	case board.CheckDraw():
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = EmptyCell
	default:
		that.Turn = mover.Opponent()
	}
}

// Abort marks the game as ended without an outcome.
func (that *Game) Abort() {
	that.Status = StatusAborted
	that.Turn = EmptyCell
}
