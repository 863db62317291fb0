package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/rendezvous-backend/internal/apperror"
)

func TestRoom_AddMember(t *testing.T) {
	t.Run("Seats players in join order up to capacity", func(t *testing.T) {
		// Given: an empty room
		room := NewRoom("r1", "Test Room")

		// When: two players join
		require.NoError(t, room.AddMember("alice"))
		require.NoError(t, room.AddMember("bob"))

		// Then: the room is full and keeps join order
		assert.Equal(t, []string{"alice", "bob"}, room.Members)
		assert.True(t, room.IsFull())
	})

	t.Run("Rejects a third member", func(t *testing.T) {
		// Given: a full room
		room := NewRoom("r1", "Test Room")
		require.NoError(t, room.AddMember("alice"))
		require.NoError(t, room.AddMember("bob"))

		// When: a third player joins
		err := room.AddMember("carol")

		// Then: RoomFull and the membership is unchanged
		assert.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.Len(t, room.Members, 2)
	})
}

func TestRoom_RemoveMember(t *testing.T) {
	t.Run("Removing an absent player is a no-op", func(t *testing.T) {
		// Given: a room with one member
		room := NewRoom("r1", "Test Room")
		require.NoError(t, room.AddMember("alice"))

		// When: removing someone who never joined, twice
		room.RemoveMember("bob")
		room.RemoveMember("bob")

		// Then: alice is still seated
		assert.Equal(t, []string{"alice"}, room.Members)
	})

	t.Run("Removing the last member leaves the empty marker state", func(t *testing.T) {
		room := NewRoom("r1", "Test Room")
		require.NoError(t, room.AddMember("alice"))

		room.RemoveMember("alice")

		assert.True(t, room.IsEmpty())
	})
}

func TestRoom_SymbolFor(t *testing.T) {
	room := NewRoom("r1", "Test Room")
	require.NoError(t, room.AddMember("alice"))
	require.NoError(t, room.AddMember("bob"))

	assert.Equal(t, SymbolX, room.SymbolFor("alice"))
	assert.Equal(t, SymbolO, room.SymbolFor("bob"))
	assert.Equal(t, EmptyCell, room.SymbolFor("carol"))
}

func TestRoom_Opponent(t *testing.T) {
	room := NewRoom("r1", "Test Room")
	require.NoError(t, room.AddMember("alice"))
	require.NoError(t, room.AddMember("bob"))

	assert.Equal(t, "bob", room.Opponent("alice"))
	assert.Equal(t, "alice", room.Opponent("bob"))
}
