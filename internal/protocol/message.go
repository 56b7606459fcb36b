package protocol

import "github.com/rocketscienceinc/tictactoe-tcp/internal/entity"

// Kind is the leading keyword of a server to client line.
type Kind string

const (
	KindAssign      Kind = "ASSIGN"
	KindYourTurn    Kind = "YOUR_TURN"
	KindUpdateBoard Kind = "UPDATE_BOARD"
	KindInvalidMove Kind = "INVALID_MOVE"
	KindGameOver    Kind = "GAME_OVER"
)

// Result is the argument of GAME_OVER.
type Result string

const (
	ResultWin     Result = "WIN"
	ResultLose    Result = "LOSE"
	ResultDraw    Result = "DRAW"
	ResultAborted Result = "ABORTED"
)

// Message is one decoded server to client line. Only the fields of its Kind are set.
type Message struct {
	Kind   Kind
	Symbol entity.Cell
	Row    int
	Col    int
	Result Result
}

func Assign(symbol entity.Cell) Message {
	return Message{Kind: KindAssign, Symbol: symbol}
}

func YourTurn() Message {
	return Message{Kind: KindYourTurn}
}

func UpdateBoard(row, col int, symbol entity.Cell) Message {
	return Message{Kind: KindUpdateBoard, Row: row, Col: col, Symbol: symbol}
}

func InvalidMove() Message {
	return Message{Kind: KindInvalidMove}
}

func GameOver(result Result) Message {
	return Message{Kind: KindGameOver, Result: result}
}
