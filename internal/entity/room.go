package entity

import (
	"sync"
	"time"

	"github.com/rocketscienceinc/rendezvous-backend/internal/apperror"
)

// RoomCapacity - exactly two peers per room.
const RoomCapacity = 2

// Room - a bounded two-player session container owning one Game.
//
// The embedded mutex serializes all access to Members and Game; callers
// (matchmaker, gameplay, reaper) hold it across any read-modify sequence.
// Lock order is always directory first, then room.
type Room struct {
	sync.Mutex

	ID           string
	Name         string
	Members      []string // player ids in join order; index 0 is X and host
	Game         Game
	CreatedAt    time.Time
	LastActivity time.Time
}

func NewRoom(id, name string) *Room {
	now := time.Now()

	return &Room{
		ID:           id,
		Name:         name,
		Game:         NewGame(),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// AddMember - appends a player, preserving join order. Callers must hold
// the room lock.
func (that *Room) AddMember(playerID string) error {
	if len(that.Members) >= RoomCapacity {
		return apperror.ErrRoomFull
	}

	that.Members = append(that.Members, playerID)
	that.Touch()

	return nil
}

// RemoveMember - removes a player if present. Removing an absent player is
// a no-op so that leave and disconnect can race without a double-removal
// error.
func (that *Room) RemoveMember(playerID string) {
	for i, id := range that.Members {
		if id != playerID {
			continue
		}

		that.Members = append(that.Members[:i], that.Members[i+1:]...)
		that.Touch()

		return
	}
}

func (that *Room) HasMember(playerID string) bool {
	for _, id := range that.Members {
		if id == playerID {
			return true
		}
	}

	return false
}

// SymbolFor - symbol assignment is join order: first member plays X.
func (that *Room) SymbolFor(playerID string) string {
	for i, id := range that.Members {
		if id == playerID {
			if i == 0 {
				return SymbolX
			}
			return SymbolO
		}
	}

	return EmptyCell
}

// Opponent - the one other member, or empty if the player is alone.
func (that *Room) Opponent(playerID string) string {
	for _, id := range that.Members {
		if id != playerID {
			return id
		}
	}

	return ""
}

func (that *Room) IsFull() bool {
	return len(that.Members) >= RoomCapacity
}

func (that *Room) IsEmpty() bool {
	return len(that.Members) == 0
}

// Touch - bumps the activity timestamp the reaper checks against.
func (that *Room) Touch() {
	that.LastActivity = time.Now()
}
