// Package tictactoe holds the pure game rules: no I/O, no locks of its own.
// All functions expect the caller to hold the room lock.
package tictactoe

import (
	"github.com/rocketscienceinc/rendezvous-backend/internal/apperror"
	"github.com/rocketscienceinc/rendezvous-backend/internal/entity"
)

// WinCombos - the 8 winning triples, checked rows first, then columns,
// then diagonals. At most one triple can hold on a legal board.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Start - activates a game on a full room: empty board, zero moves, first
// joiner to move. Symbols are implied by join order and never stored.
func Start(room *entity.Room) error {
	if len(room.Members) != entity.RoomCapacity {
		return apperror.ErrInsufficientPlayers
	}

	room.Game = entity.Game{
		Active:        true,
		CurrentPlayer: room.Members[0],
	}
	room.Touch()

	return nil
}

// ApplyMove - validates and applies one move, advances the turn and
// evaluates termination. On any validation failure the state is untouched.
func ApplyMove(room *entity.Room, playerID string, cell int) error {
	game := &room.Game

	if !game.Active {
		return apperror.ErrGameNotActive
	}

	if game.CurrentPlayer != playerID {
		return apperror.ErrNotYourTurn
	}

	if cell < 0 || cell >= len(game.Board) {
		return apperror.ErrInvalidCell
	}

	if game.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	game.Board[cell] = room.SymbolFor(playerID)
	game.Moves++
	game.CurrentPlayer = room.Opponent(playerID)

	switch winner := winnerOn(game.Board); {
	case winner != entity.EmptyCell:
		game.Winner = winner
		game.Active = false
		game.CurrentPlayer = ""
	case game.Moves >= len(game.Board):
		game.Winner = entity.WinnerTie
		game.Active = false
		game.CurrentPlayer = ""
	}

	room.Touch()

	return nil
}

// Reset - back to the empty, inactive state. Symbols are not reassigned;
// a subsequent Start is required to play again.
func Reset(room *entity.Room) {
	room.Game = entity.NewGame()
	room.Touch()
}

func winnerOn(board [9]string) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	return entity.EmptyCell
}
