package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/rendezvous-backend/internal/config"
	"github.com/rocketscienceinc/rendezvous-backend/internal/registry"
	"github.com/rocketscienceinc/rendezvous-backend/internal/repository"
	"github.com/rocketscienceinc/rendezvous-backend/internal/repository/storage"
	"github.com/rocketscienceinc/rendezvous-backend/internal/usecase"
	"github.com/rocketscienceinc/rendezvous-backend/transport/rest"
	"github.com/rocketscienceinc/rendezvous-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	roomRepo := repository.NewRoomRepository()
	archiveRepo := repository.NewArchiveRepository(redisStorage.Connection)
	matchmaker := usecase.NewMatchmaker(logger, roomRepo, archiveRepo)
	connRegistry := registry.New()

	// run the idle-room reaper
	reaper := usecase.NewReaper(logger, roomRepo, conf.ReapEvery, conf.RoomIdleTTL)
	go reaper.Run(ctx)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		statusHandler := rest.NewStatusHandler(logger, matchmaker, archiveRepo)
		if httpErr := rest.Start(ctx, conf.HTTPPort, statusHandler); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, matchmaker, connRegistry)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
