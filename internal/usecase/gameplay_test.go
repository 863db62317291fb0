package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/rendezvous-backend/internal/apperror"
	"github.com/rocketscienceinc/rendezvous-backend/internal/entity"
)

// fullRoom registers alice and bob and seats them together; the join
// auto-starts the game with alice as X.
func fullRoom(t *testing.T, mm *Matchmaker) string {
	t.Helper()

	ctx := context.Background()

	mm.RegisterPlayer(ctx, "alice", "Alice")
	mm.RegisterPlayer(ctx, "bob", "Bob")

	info, err := mm.CreateRoom(ctx, "alice", "Alice Room")
	require.NoError(t, err)

	_, err = mm.JoinRoom(ctx, "bob", info.ID)
	require.NoError(t, err)

	return info.ID
}

func TestMatchmaker_StartGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Fails while the previous game is still running", func(t *testing.T) {
		// Given: a room whose game auto-started on fill
		mm, _ := newTestMatchmaker()
		roomID := fullRoom(t, mm)

		// When: asking for another start
		_, err := mm.StartGame(ctx, "alice", roomID)

		// Then: AlreadyStarted
		assert.ErrorIs(t, err, apperror.ErrGameAlreadyStarted)
	})

	t.Run("Fails with a lone player", func(t *testing.T) {
		mm, _ := newTestMatchmaker()
		mm.RegisterPlayer(ctx, "alice", "Alice")
		info, err := mm.CreateRoom(ctx, "alice", "Alice Room")
		require.NoError(t, err)

		_, err = mm.StartGame(ctx, "alice", info.ID)

		assert.ErrorIs(t, err, apperror.ErrInsufficientPlayers)
	})

	t.Run("Fails for a requester outside the room", func(t *testing.T) {
		mm, _ := newTestMatchmaker()
		roomID := fullRoom(t, mm)
		mm.RegisterPlayer(ctx, "mallory", "Mallory")

		_, err := mm.StartGame(ctx, "mallory", roomID)

		assert.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Restarts a reset game with join-order symbols", func(t *testing.T) {
		// Given: a filled room whose game was reset
		mm, _ := newTestMatchmaker()
		roomID := fullRoom(t, mm)
		_, err := mm.ResetGame(ctx, "bob", roomID)
		require.NoError(t, err)

		// When: bob asks for a fresh game
		notices, err := mm.StartGame(ctx, "bob", roomID)

		// Then: alice is X and on turn again
		require.NoError(t, err)
		require.Len(t, notices, 2)
		assert.Equal(t, "alice", notices[0].PlayerID)
		assert.Equal(t, "X", notices[0].Symbol)
		assert.True(t, notices[0].YourTurn)
	})
}

func TestMatchmaker_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Plays a full game through to the X win", func(t *testing.T) {
		// Given: an active game with alice as X
		mm, archive := newTestMatchmaker()
		roomID := fullRoom(t, mm)

		moves := []struct {
			player string
			cell   int
		}{
			{"alice", 4},
			{"bob", 0},
			{"alice", 1},
			{"bob", 3},
			{"alice", 7},
		}

		// When: the middle column fills with X
		var update MoveUpdate
		var err error
		for _, move := range moves {
			update, err = mm.MakeMove(ctx, move.player, roomID, move.cell)
			require.NoError(t, err)
		}

		// Then: the final broadcast carries the terminal state
		assert.Equal(t, "X", update.Winner)
		assert.False(t, update.GameActive)
		assert.Empty(t, update.CurrentPlayer)
		assert.Equal(t, 5, update.Moves)
		assert.Equal(t, [9]string{"O", "X", "", "O", "X", "", "", "X", ""}, update.Board)

		// And: the result landed in the archive
		results := archive.recorded()
		require.Len(t, results, 1)
		assert.Equal(t, roomID, results[0].RoomID)
		assert.Equal(t, "X", results[0].Winner)
		assert.Equal(t, []string{"alice", "bob"}, results[0].Players)
		assert.Equal(t, 5, results[0].Moves)
	})

	t.Run("Archives a drawn board", func(t *testing.T) {
		// Given: an active game
		mm, archive := newTestMatchmaker()
		roomID := fullRoom(t, mm)

		// When: nine moves land without a line
		cells := []int{0, 4, 1, 2, 5, 3, 6, 7, 8}
		players := []string{"alice", "bob"}

		var update MoveUpdate
		var err error
		for i, cell := range cells {
			update, err = mm.MakeMove(ctx, players[i%2], roomID, cell)
			require.NoError(t, err)
		}

		// Then: the tie is terminal and recorded
		assert.Equal(t, entity.WinnerTie, update.Winner)
		assert.False(t, update.GameActive)

		results := archive.recorded()
		require.Len(t, results, 1)
		assert.Equal(t, entity.WinnerTie, results[0].Winner)
	})

	t.Run("Rejects a move from outside the room", func(t *testing.T) {
		mm, _ := newTestMatchmaker()
		roomID := fullRoom(t, mm)
		mm.RegisterPlayer(ctx, "mallory", "Mallory")

		_, err := mm.MakeMove(ctx, "mallory", roomID, 0)

		assert.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Rejects an out-of-turn move without archiving", func(t *testing.T) {
		mm, archive := newTestMatchmaker()
		roomID := fullRoom(t, mm)

		_, err := mm.MakeMove(ctx, "bob", roomID, 0)

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Empty(t, archive.recorded())
	})

	t.Run("Rejects a move in an unknown room", func(t *testing.T) {
		mm, _ := newTestMatchmaker()
		mm.RegisterPlayer(ctx, "alice", "Alice")

		_, err := mm.MakeMove(ctx, "alice", "nope1234", 0)

		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestMatchmaker_ResetGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Clears the board and deactivates play", func(t *testing.T) {
		// Given: a game with one move on the board
		mm, _ := newTestMatchmaker()
		roomID := fullRoom(t, mm)
		_, err := mm.MakeMove(ctx, "alice", roomID, 4)
		require.NoError(t, err)

		// When: resetting
		update, err := mm.ResetGame(ctx, "alice", roomID)

		// Then: the board is blank and the game inactive
		require.NoError(t, err)
		assert.Equal(t, [9]string{}, update.Board)
		assert.False(t, update.GameActive)
		assert.ElementsMatch(t, []string{"alice", "bob"}, update.Members)
	})

	t.Run("Fails for a requester outside the room", func(t *testing.T) {
		mm, _ := newTestMatchmaker()
		roomID := fullRoom(t, mm)
		mm.RegisterPlayer(ctx, "mallory", "Mallory")

		_, err := mm.ResetGame(ctx, "mallory", roomID)

		assert.ErrorIs(t, err, apperror.ErrNotInRoom)
	})
}
