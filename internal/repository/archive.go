package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// resultsKey - redis list of finished games, newest first.
const resultsKey = "results"

// GameResult - the terminal snapshot archived when a game ends. Live state
// never leaves process memory; this is telemetry, not persistence.
type GameResult struct {
	RoomID     string    `json:"room_id"`
	Players    []string  `json:"players"`
	Winner     string    `json:"winner"`
	Board      [9]string `json:"board"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

type ArchiveRepository struct {
	client *redis.Client
}

func NewArchiveRepository(client *redis.Client) *ArchiveRepository {
	return &ArchiveRepository{
		client: client,
	}
}

func (that *ArchiveRepository) Record(ctx context.Context, result GameResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err = that.client.LPush(ctx, resultsKey, resultJSON).Err(); err != nil {
		return fmt.Errorf("failed to push result: %w", err)
	}

	return nil
}

func (that *ArchiveRepository) Count(ctx context.Context) (int64, error) {
	count, err := that.client.LLen(ctx, resultsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}

	return count, nil
}

// Recent - the latest n finished games, newest first.
func (that *ArchiveRepository) Recent(ctx context.Context, n int64) ([]GameResult, error) {
	raw, err := that.client.LRange(ctx, resultsKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	results := make([]GameResult, 0, len(raw))

	for _, item := range raw {
		var result GameResult
		if err = json.Unmarshal([]byte(item), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}

		results = append(results, result)
	}

	return results, nil
}
