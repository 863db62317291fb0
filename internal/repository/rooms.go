package repository

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/rendezvous-backend/internal/apperror"
	"github.com/rocketscienceinc/rendezvous-backend/internal/entity"
)

// roomIDLength - short opaque token, the head of a UUIDv4.
const roomIDLength = 8

// createAttempts bounds the collision retry loop on id generation. With an
// 8-hex-char space a collision is already negligible in practice.
const createAttempts = 5

var ErrIDSpaceExhausted = errors.New("could not generate a unique room id")

// RoomRepository - the room directory: id -> live Room. All live game state
// is in memory; the directory lock is held short and never across network
// I/O. Individual rooms carry their own lock.
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{
		rooms: make(map[string]*entity.Room),
	}
}

// Create - allocates a room with a fresh id, retrying on the improbable
// collision.
func (that *RoomRepository) Create(name string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for attempt := 0; attempt < createAttempts; attempt++ {
		id := uuid.NewString()[:roomIDLength]
		if _, exists := that.rooms[id]; exists {
			continue
		}

		room := entity.NewRoom(id, name)
		that.rooms[id] = room

		return room, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrIDSpaceExhausted, createAttempts)
}

func (that *RoomRepository) Get(id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

// Destroy - removes a room if present. Destroying an already-removed room
// is a no-op so the reaper can race the normal leave flow.
func (that *RoomRepository) Destroy(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, id)
}

// FirstOpen - any room with spare capacity; iteration order is not part of
// the contract.
func (that *RoomRepository) FirstOpen() (*entity.Room, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, room := range that.rooms {
		room.Lock()
		open := !room.IsFull()
		room.Unlock()

		if open {
			return room, true
		}
	}

	return nil, false
}

func (that *RoomRepository) List() []*entity.Room {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]*entity.Room, 0, len(that.rooms))
	for _, room := range that.rooms {
		rooms = append(rooms, room)
	}

	return rooms
}

func (that *RoomRepository) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// DestroyIdle - removes every room idle past the threshold and returns the
// ids removed. Members are assumed gone; nobody is notified.
func (that *RoomRepository) DestroyIdle(threshold time.Duration) []string {
	cutoff := time.Now().Add(-threshold)

	that.mu.Lock()
	defer that.mu.Unlock()

	var reaped []string

	for id, room := range that.rooms {
		room.Lock()
		idle := room.LastActivity.Before(cutoff)
		room.Unlock()

		if idle {
			delete(that.rooms, id)
			reaped = append(reaped, id)
		}
	}

	return reaped
}
