package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/rendezvous-backend/internal/repository"
	"github.com/rocketscienceinc/rendezvous-backend/testing/suite"
)

func TestArchiveRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, s := suite.New(t)
	archive := repository.NewArchiveRepository(s.Redis)

	t.Run("Starts empty", func(t *testing.T) {
		count, err := archive.Count(ctx)

		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Records finished games newest first", func(t *testing.T) {
		// Given: two finished games
		first := repository.GameResult{
			RoomID:     "room0001",
			Players:    []string{"alice", "bob"},
			Winner:     "X",
			Board:      [9]string{"O", "X", "", "O", "X", "", "", "X", ""},
			Moves:      5,
			FinishedAt: time.Now().UTC().Truncate(time.Second),
		}
		second := repository.GameResult{
			RoomID:     "room0002",
			Players:    []string{"carol", "dave"},
			Winner:     "tie",
			Moves:      9,
			FinishedAt: time.Now().UTC().Truncate(time.Second),
		}

		// When: both are recorded
		require.NoError(t, archive.Record(ctx, first))
		require.NoError(t, archive.Record(ctx, second))

		// Then: the count reflects both and Recent returns newest first
		count, err := archive.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)

		recent, err := archive.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, second, recent[0])
		assert.Equal(t, first, recent[1])
	})

	t.Run("Recent respects the limit", func(t *testing.T) {
		recent, err := archive.Recent(ctx, 1)

		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, "room0002", recent[0].RoomID)
	})
}
