package usecase

import (
	"context"
	"time"

	"github.com/rocketscienceinc/rendezvous-backend/internal/apperror"
	"github.com/rocketscienceinc/rendezvous-backend/internal/repository"
	"github.com/rocketscienceinc/rendezvous-backend/internal/tictactoe"
)

// MoveUpdate - full post-move state, broadcast to the whole room.
type MoveUpdate struct {
	RoomID        string
	Members       []string
	PlayerID      string
	Cell          int
	Symbol        string
	Board         [9]string
	CurrentPlayer string
	Winner        string
	GameActive    bool
	Moves         int
}

type ResetUpdate struct {
	RoomID     string
	Members    []string
	Board      [9]string
	GameActive bool
}

// StartGame - the explicit start path. Auto-start on fill is primary; this
// exists for clients that want to restart after a reset.
func (that *Matchmaker) StartGame(_ context.Context, playerID, roomID string) ([]StartNotice, error) {
	room, err := that.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	if !room.HasMember(playerID) {
		return nil, apperror.ErrNotInRoom
	}

	if room.Game.Active {
		return nil, apperror.ErrGameAlreadyStarted
	}

	if err = tictactoe.Start(room); err != nil {
		return nil, err
	}

	return that.startNoticesLocked(room), nil
}

// MakeMove - validates and applies a move through the engine, then
// archives the result if the game just ended. The archive write happens
// after the room lock is released.
func (that *Matchmaker) MakeMove(ctx context.Context, playerID, roomID string, cell int) (MoveUpdate, error) {
	room, err := that.rooms.Get(roomID)
	if err != nil {
		return MoveUpdate{}, err
	}

	room.Lock()

	if !room.HasMember(playerID) {
		room.Unlock()
		return MoveUpdate{}, apperror.ErrNotInRoom
	}

	if err = tictactoe.ApplyMove(room, playerID, cell); err != nil {
		room.Unlock()
		return MoveUpdate{}, err
	}

	update := MoveUpdate{
		RoomID:        room.ID,
		Members:       append([]string(nil), room.Members...),
		PlayerID:      playerID,
		Cell:          cell,
		Symbol:        room.Game.Board[cell],
		Board:         room.Game.Board,
		CurrentPlayer: room.Game.CurrentPlayer,
		Winner:        room.Game.Winner,
		GameActive:    room.Game.Active,
		Moves:         room.Game.Moves,
	}

	room.Unlock()

	if update.Winner != "" {
		that.archiveResult(ctx, update)
	}

	return update, nil
}

// ResetGame - back to the empty, inactive state; symbols keep their join
// order and a new start_game request reactivates play.
func (that *Matchmaker) ResetGame(_ context.Context, playerID, roomID string) (ResetUpdate, error) {
	room, err := that.rooms.Get(roomID)
	if err != nil {
		return ResetUpdate{}, err
	}

	room.Lock()
	defer room.Unlock()

	if !room.HasMember(playerID) {
		return ResetUpdate{}, apperror.ErrNotInRoom
	}

	tictactoe.Reset(room)

	return ResetUpdate{
		RoomID:     room.ID,
		Members:    append([]string(nil), room.Members...),
		Board:      room.Game.Board,
		GameActive: room.Game.Active,
	}, nil
}

func (that *Matchmaker) archiveResult(ctx context.Context, update MoveUpdate) {
	result := repository.GameResult{
		RoomID:     update.RoomID,
		Players:    update.Members,
		Winner:     update.Winner,
		Board:      update.Board,
		Moves:      update.Moves,
		FinishedAt: time.Now(),
	}

	if err := that.archive.Record(ctx, result); err != nil {
		that.logger.Error("failed to archive game result", "roomID", update.RoomID, "error", err)
	}
}
