package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rocketscienceinc/rendezvous-backend/internal/apperror"
	"github.com/rocketscienceinc/rendezvous-backend/internal/usecase"
)

// knownErrors - the request-local taxonomy; anything else is an internal
// failure and gets a generic message instead of its error text.
var knownErrors = []error{
	apperror.ErrPlayerNotRegistered,
	apperror.ErrRoomNotFound,
	apperror.ErrRoomFull,
	apperror.ErrGameNotActive,
	apperror.ErrGameAlreadyStarted,
	apperror.ErrNotYourTurn,
	apperror.ErrCellOccupied,
	apperror.ErrInvalidCell,
	apperror.ErrInsufficientPlayers,
	apperror.ErrNotInRoom,
	apperror.ErrAlreadyInRoom,
}

// rejectRequest - sends the error event back to the offending sender only.
// Returns a non-nil error for unexpected failures so the caller logs them.
func (that *Server) rejectRequest(c *client, err error) error {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			that.sendError(c, known.Error())
			return nil
		}
	}

	that.sendError(c, "internal error")

	return err
}

func (that *Server) handleRegisterPlayer(ctx context.Context, c *client, data json.RawMessage) error {
	var req registerPlayerRequest
	if err := json.Unmarshal(data, &req); err != nil || req.PlayerID == "" || req.PlayerName == "" {
		that.sendError(c, "player_id and player_name are required")
		return nil
	}

	player := that.matchmaker.RegisterPlayer(ctx, req.PlayerID, req.PlayerName)

	// Registration binds this socket to the player id; a re-registration
	// from another socket takes the binding over.
	that.registry.Register(player.ID, c)

	if err := that.send(c, "player_registered", playerRegisteredPayload{PlayerID: player.ID}); err != nil {
		return err
	}

	that.logger.Info("player registered", "playerID", player.ID, "name", player.Name)

	that.broadcastStats(ctx)

	return nil
}

func (that *Server) handleCreateRoom(ctx context.Context, c *client, data json.RawMessage) error {
	var req createRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.PlayerID == "" || req.RoomName == "" {
		that.sendError(c, "player_id and room_name are required")
		return nil
	}

	info, err := that.matchmaker.CreateRoom(ctx, req.PlayerID, req.RoomName)
	if err != nil {
		return that.rejectRequest(c, err)
	}

	if err = that.send(c, "room_created", roomPayload{
		RoomID:   info.ID,
		RoomName: info.Name,
		Players:  toBriefs(info.Players),
	}); err != nil {
		return err
	}

	that.logger.Info("room created", "roomID", info.ID, "playerID", req.PlayerID)

	that.broadcastStats(ctx)

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, c *client, data json.RawMessage) error {
	var req playerRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.PlayerID == "" || req.RoomID == "" {
		that.sendError(c, "player_id and room_id are required")
		return nil
	}

	result, err := that.matchmaker.JoinRoom(ctx, req.PlayerID, req.RoomID)
	if err != nil {
		return that.rejectRequest(c, err)
	}

	that.announceJoin(c, result)

	that.logger.Info("player joined room", "roomID", result.Room.ID, "playerID", req.PlayerID)

	that.broadcastStats(ctx)

	return nil
}

func (that *Server) handleJoinRandomRoom(ctx context.Context, c *client, data json.RawMessage) error {
	var req joinRandomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.PlayerID == "" {
		that.sendError(c, "player_id is required")
		return nil
	}

	result, err := that.matchmaker.JoinRandomRoom(ctx, req.PlayerID)
	if err != nil {
		return that.rejectRequest(c, err)
	}

	if result.Created {
		if err = that.send(c, "room_created", roomPayload{
			RoomID:   result.Room.ID,
			RoomName: result.Room.Name,
			Players:  toBriefs(result.Room.Players),
		}); err != nil {
			return err
		}
	} else {
		that.announceJoin(c, result)
	}

	that.broadcastStats(ctx)

	return nil
}

// announceJoin - room_joined to the joiner, player_joined to everyone who
// was already seated, then the per-recipient game_started pair when the
// join filled the room.
func (that *Server) announceJoin(c *client, result usecase.JoinResult) {
	briefs := toBriefs(result.Room.Players)

	if err := that.send(c, "room_joined", roomPayload{
		RoomID:   result.Room.ID,
		RoomName: result.Room.Name,
		Players:  briefs,
	}); err != nil {
		that.logger.Error("failed to send room_joined", "error", err)
	}

	that.sendToAll(result.Others, "player_joined", playerJoinedPayload{
		PlayerID:   result.JoinerID,
		PlayerName: result.JoinerName,
		Players:    briefs,
	})

	that.announceStart(result.Starts)
}

func (that *Server) announceStart(starts []usecase.StartNotice) {
	for _, notice := range starts {
		that.sendTo(notice.PlayerID, "game_started", gameStartedPayload{
			RoomID:   notice.RoomID,
			Symbol:   notice.Symbol,
			YourTurn: notice.YourTurn,
			IsHost:   notice.IsHost,
		})
	}
}

func (that *Server) handleLeaveRoom(ctx context.Context, c *client, data json.RawMessage) error {
	var req playerRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.PlayerID == "" || req.RoomID == "" {
		that.sendError(c, "player_id and room_id are required")
		return nil
	}

	result, err := that.matchmaker.LeaveRoom(ctx, req.PlayerID, req.RoomID)
	if err != nil {
		return that.rejectRequest(c, err)
	}

	// Remaining members hear about the departure before the room record
	// is gone; the leaver gets their own confirmation.
	that.sendToAll(result.Remaining, "player_left", playerLeftPayload{PlayerID: req.PlayerID})

	if err = that.send(c, "room_left", roomLeftPayload{RoomID: result.RoomID}); err != nil {
		return err
	}

	that.logger.Info("player left room", "roomID", result.RoomID, "playerID", req.PlayerID)

	that.broadcastStats(ctx)

	return nil
}

func (that *Server) handleStartGame(ctx context.Context, c *client, data json.RawMessage) error {
	var req playerRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.PlayerID == "" || req.RoomID == "" {
		that.sendError(c, "player_id and room_id are required")
		return nil
	}

	starts, err := that.matchmaker.StartGame(ctx, req.PlayerID, req.RoomID)
	if err != nil {
		return that.rejectRequest(c, err)
	}

	that.announceStart(starts)

	that.logger.Info("game started", "roomID", req.RoomID)

	that.broadcastStats(ctx)

	return nil
}

func (that *Server) handleResetGame(ctx context.Context, c *client, data json.RawMessage) error {
	var req playerRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.PlayerID == "" || req.RoomID == "" {
		that.sendError(c, "player_id and room_id are required")
		return nil
	}

	result, err := that.matchmaker.ResetGame(ctx, req.PlayerID, req.RoomID)
	if err != nil {
		return that.rejectRequest(c, err)
	}

	that.sendToAll(result.Members, "game_reset", gameResetPayload{
		RoomID:     result.RoomID,
		Board:      result.Board,
		GameActive: result.GameActive,
	})

	that.logger.Info("game reset", "roomID", result.RoomID, "playerID", req.PlayerID)

	that.broadcastStats(ctx)

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, c *client, data json.RawMessage) error {
	var req makeMoveRequest
	if err := json.Unmarshal(data, &req); err != nil || req.PlayerID == "" || req.RoomID == "" || req.Index == nil {
		that.sendError(c, "player_id, room_id and index are required")
		return nil
	}

	update, err := that.matchmaker.MakeMove(ctx, req.PlayerID, req.RoomID, *req.Index)
	if err != nil {
		return that.rejectRequest(c, err)
	}

	that.sendToAll(update.Members, "move_made", moveMadePayload{
		PlayerID:      update.PlayerID,
		Index:         update.Cell,
		Symbol:        update.Symbol,
		Board:         update.Board,
		CurrentPlayer: update.CurrentPlayer,
		Winner:        update.Winner,
		GameActive:    update.GameActive,
		Moves:         update.Moves,
	})

	that.broadcastStats(ctx)

	return nil
}

func (that *Server) handleGetRooms(ctx context.Context, c *client, _ json.RawMessage) error {
	summaries := that.matchmaker.Rooms(ctx)

	rooms := make([]roomSummaryPayload, 0, len(summaries))
	for _, summary := range summaries {
		rooms = append(rooms, roomSummaryPayload{
			ID:          summary.ID,
			Name:        summary.Name,
			PlayerCount: summary.PlayerCount,
			IsFull:      summary.IsFull,
			GameActive:  summary.GameActive,
		})
	}

	return that.send(c, "rooms_list", roomsListPayload{Rooms: rooms})
}

// relayHandler - blind pass-through of webrtc_offer, webrtc_answer and
// webrtc_candidate to the other room occupant(s). No validation of the
// negotiation body, no persistence, no extra ordering guarantees; the
// forward keeps the inbound event name.
func (that *Server) relayHandler(event string) handlerFunc {
	return func(ctx context.Context, c *client, data json.RawMessage) error {
		var req relayRequest
		if err := json.Unmarshal(data, &req); err != nil || req.PlayerID == "" || req.RoomID == "" {
			that.sendError(c, "player_id and room_id are required")
			return nil
		}

		recipients, err := that.matchmaker.RelayRecipients(ctx, req.PlayerID, req.RoomID)
		if err != nil {
			return that.rejectRequest(c, err)
		}

		that.sendToAll(recipients, event, relayForwardPayload{
			PlayerID:  req.PlayerID,
			Offer:     req.Offer,
			Answer:    req.Answer,
			Candidate: req.Candidate,
		})

		return nil
	}
}
