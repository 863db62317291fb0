package apperror

import "errors"

// Request-local failures. Every rejected request maps to exactly one of
// these; none of them is fatal for the process or for other players.
var (
	ErrPlayerNotRegistered = errors.New("player not registered")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrGameNotActive       = errors.New("game not active")
	ErrGameAlreadyStarted  = errors.New("game already in progress")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrCellOccupied        = errors.New("cell already occupied")
	ErrInvalidCell         = errors.New("invalid cell index")
	ErrInsufficientPlayers = errors.New("need 2 players to start game")
	ErrNotInRoom           = errors.New("player is not in this room")
	ErrAlreadyInRoom       = errors.New("player is already in a room")
)
