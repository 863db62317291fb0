package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/rendezvous-backend/internal/registry"
	"github.com/rocketscienceinc/rendezvous-backend/internal/usecase"
)

// client - one connected socket. gorilla permits a single concurrent
// writer, so every write goes through the mutex; the client therefore
// satisfies registry.Conn and doubles as the opaque connection handle.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	sid  string
}

func (that *client) WriteJSON(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.conn.WriteJSON(v)
}

type handlerFunc func(ctx context.Context, c *client, data json.RawMessage) error

type Server struct {
	logger     *slog.Logger
	matchmaker *usecase.Matchmaker
	registry   *registry.Registry
	upgrader   websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, matchmaker *usecase.Matchmaker, reg *registry.Registry) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket"),
		matchmaker: matchmaker,
		registry:   reg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers["register_player"] = server.handleRegisterPlayer
	server.handlers["create_room"] = server.handleCreateRoom
	server.handlers["join_room"] = server.handleJoinRoom
	server.handlers["join_random_room"] = server.handleJoinRandomRoom
	server.handlers["leave_room"] = server.handleLeaveRoom
	server.handlers["start_game"] = server.handleStartGame
	server.handlers["reset_game"] = server.handleResetGame
	server.handlers["make_move"] = server.handleMakeMove
	server.handlers["get_rooms"] = server.handleGetRooms
	server.handlers["webrtc_offer"] = server.relayHandler("webrtc_offer")
	server.handlers["webrtc_answer"] = server.relayHandler("webrtc_answer")
	server.handlers["webrtc_candidate"] = server.relayHandler("webrtc_candidate")

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 0, // connections are long-lived; liveness comes from read errors
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		conn: conn,
		sid:  uuid.NewString(),
	}

	defer conn.Close()
	defer that.handleDisconnect(ctx, c)

	that.registry.Track(c)

	if err = that.send(c, "connected", connectedPayload{SID: c.sid}); err != nil {
		log.Error("failed to send connected event", "error", err)
		return
	}

	log.Info("client connected", "sid", c.sid)

	that.readLoop(ctx, c)
}

func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop", "sid", c.sid)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("connection error", "error", err)
			}
			return
		}

		var msg Message
		if err = json.Unmarshal(raw, &msg); err != nil {
			that.sendError(c, "invalid message")
			continue
		}

		handler, ok := that.handlers[msg.Event]
		if !ok {
			that.sendError(c, fmt.Sprintf("unknown event: %s", msg.Event))
			continue
		}

		if err = handler(ctx, c, msg.Data); err != nil {
			log.Error("failed to handle event", "event", msg.Event, "error", err)
		}
	}
}

// handleDisconnect - the counterpart of leave_room for a dropped socket:
// remove the player from their room, tell whoever is left, drop the player
// record, refresh stats. Never surfaced to the departed player.
func (that *Server) handleDisconnect(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleDisconnect", "sid", c.sid)

	playerID, registered := that.registry.Forget(c)
	if !registered {
		log.Info("client disconnected")
		return
	}

	result := that.matchmaker.Disconnect(ctx, playerID)
	if result.InRoom {
		that.sendToAll(result.Remaining, "player_left", playerLeftPayload{PlayerID: playerID})
	}

	log.Info("player disconnected", "playerID", playerID)

	that.broadcastStats(ctx)
}

func (that *Server) send(c *client, event string, payload any) error {
	msg, err := newMessage(event, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	if err = c.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event, err)
	}

	return nil
}

// sendTo - best-effort delivery to a registered player; unreachable
// players are silently skipped.
func (that *Server) sendTo(playerID, event string, payload any) {
	msg, err := newMessage(event, payload)
	if err != nil {
		that.logger.Error("failed to marshal payload", "event", event, "error", err)
		return
	}

	that.registry.SendTo(playerID, msg)
}

func (that *Server) sendToAll(playerIDs []string, event string, payload any) {
	for _, id := range playerIDs {
		that.sendTo(id, event, payload)
	}
}

func (that *Server) sendError(c *client, message string) {
	msg, err := newMessage("error", errorPayload{Message: message})
	if err != nil {
		return
	}

	_ = c.WriteJSON(msg)
}

// broadcastStats - recomputed and pushed to every connection after each
// state-changing event.
func (that *Server) broadcastStats(ctx context.Context) {
	stats := that.matchmaker.Stats(ctx)

	msg, err := newMessage("stats_update", statsPayload{
		ActiveGames:    stats.ActiveGames,
		OnlinePlayers:  stats.OnlinePlayers,
		WaitingPlayers: stats.WaitingPlayers,
	})
	if err != nil {
		that.logger.Error("failed to marshal stats", "error", err)
		return
	}

	that.registry.Broadcast(msg)
}
