package entity

const (
	SymbolX = "X"
	SymbolO = "O"

	// WinnerTie marks a full board with no winning line.
	WinnerTie = "tie"

	EmptyCell = ""
)

// Game - authoritative state of one tic-tac-toe game. It is owned by its
// Room and must only be touched while the room lock is held.
type Game struct {
	Board         [9]string `json:"board"`
	CurrentPlayer string    `json:"current_player"`
	Active        bool      `json:"game_active"`
	Winner        string    `json:"winner"`
	Moves         int       `json:"moves"`
}

// NewGame - returns the empty, inactive state. A game only becomes active
// through the engine's Start once the room is full.
func NewGame() Game {
	return Game{}
}

func (that *Game) IsTerminal() bool {
	return that.Winner != EmptyCell
}
