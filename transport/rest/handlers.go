package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/rendezvous-backend/internal/usecase"
)

type gameCounter interface {
	Count(ctx context.Context) (int64, error)
}

type StatusHandler struct {
	logger     *slog.Logger
	matchmaker *usecase.Matchmaker
	archive    gameCounter
}

func NewStatusHandler(logger *slog.Logger, matchmaker *usecase.Matchmaker, archive gameCounter) *StatusHandler {
	return &StatusHandler{
		logger:     logger.With("component", "rest"),
		matchmaker: matchmaker,
		archive:    archive,
	}
}

type statusResponse struct {
	Status         string `json:"status"`
	Rooms          int    `json:"rooms"`
	Players        int    `json:"players"`
	WaitingPlayers int    `json:"waiting_players"`
	FinishedGames  int64  `json:"finished_games"`
}

func (that *StatusHandler) Handle(w http.ResponseWriter, r *http.Request) {
	stats := that.matchmaker.Stats(r.Context())

	finished, err := that.archive.Count(r.Context())
	if err != nil {
		// The archive is best effort; a redis hiccup must not fail the
		// liveness surface.
		that.logger.Error("failed to count finished games", "error", err)
	}

	response := statusResponse{
		Status:         "running",
		Rooms:          len(that.matchmaker.Rooms(r.Context())),
		Players:        stats.OnlinePlayers,
		WaitingPlayers: stats.WaitingPlayers,
		FinishedGames:  finished,
	}

	w.Header().Set("Content-Type", "application/json")

	if err = json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
