package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/rendezvous-backend/internal/repository"
)

// Reaper - periodic garbage collection of idle rooms. Best effort, not a
// correctness mechanism: members of a reaped room are assumed long gone
// and are not notified.
type Reaper struct {
	logger   *slog.Logger
	rooms    *repository.RoomRepository
	interval time.Duration
	idleTTL  time.Duration
}

func NewReaper(logger *slog.Logger, rooms *repository.RoomRepository, interval, idleTTL time.Duration) *Reaper {
	return &Reaper{
		logger:   logger.With("component", "reaper"),
		rooms:    rooms,
		interval: interval,
		idleTTL:  idleTTL,
	}
}

// Run - sweeps on a fixed interval until the context is canceled. A single
// goroutine runs this, so sweeps never overlap.
func (that *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			that.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (that *Reaper) Sweep() {
	for _, id := range that.rooms.DestroyIdle(that.idleTTL) {
		that.logger.Info("reaped idle room", "roomID", id)
	}
}
