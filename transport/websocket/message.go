package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/rendezvous-backend/internal/usecase"
)

// Message - the wire envelope in both directions: an event name plus an
// event-specific data object.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func newMessage(event string, data any) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}

	return Message{Event: event, Data: raw}, nil
}

// Inbound payloads. Required fields are validated in the handlers before
// anything reaches the matchmaker.

type registerPlayerRequest struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

type createRoomRequest struct {
	PlayerID string `json:"player_id"`
	RoomName string `json:"room_name"`
}

// playerRoomRequest - shared shape of join_room, leave_room, start_game
// and reset_game.
type playerRoomRequest struct {
	PlayerID string `json:"player_id"`
	RoomID   string `json:"room_id"`
}

type joinRandomRequest struct {
	PlayerID string `json:"player_id"`
}

type makeMoveRequest struct {
	PlayerID string `json:"player_id"`
	RoomID   string `json:"room_id"`
	Index    *int   `json:"index"`
}

// relayRequest - webrtc_offer / webrtc_answer / webrtc_candidate. The
// negotiation body is opaque: whichever field arrived is forwarded
// verbatim, none of the three is inspected.
type relayRequest struct {
	PlayerID  string          `json:"player_id"`
	RoomID    string          `json:"room_id"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Outbound payloads.

type connectedPayload struct {
	SID string `json:"sid"`
}

type playerRegisteredPayload struct {
	PlayerID string `json:"player_id"`
}

type playerBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roomPayload struct {
	RoomID   string        `json:"room_id"`
	RoomName string        `json:"room_name"`
	Players  []playerBrief `json:"players"`
}

type playerJoinedPayload struct {
	PlayerID   string        `json:"player_id"`
	PlayerName string        `json:"player_name"`
	Players    []playerBrief `json:"players"`
}

type playerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

type roomLeftPayload struct {
	RoomID string `json:"room_id"`
}

type gameStartedPayload struct {
	RoomID   string `json:"room_id"`
	Symbol   string `json:"symbol"`
	YourTurn bool   `json:"your_turn"`
	IsHost   bool   `json:"is_host"`
}

type moveMadePayload struct {
	PlayerID      string    `json:"player_id"`
	Index         int       `json:"index"`
	Symbol        string    `json:"symbol"`
	Board         [9]string `json:"board"`
	CurrentPlayer string    `json:"current_player"`
	Winner        string    `json:"winner"`
	GameActive    bool      `json:"game_active"`
	Moves         int       `json:"moves"`
}

type gameResetPayload struct {
	RoomID     string    `json:"room_id"`
	Board      [9]string `json:"board"`
	GameActive bool      `json:"game_active"`
}

type roomSummaryPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	IsFull      bool   `json:"is_full"`
	GameActive  bool   `json:"game_active"`
}

type roomsListPayload struct {
	Rooms []roomSummaryPayload `json:"rooms"`
}

type statsPayload struct {
	ActiveGames    int `json:"active_games"`
	OnlinePlayers  int `json:"online_players"`
	WaitingPlayers int `json:"waiting_players"`
}

type relayForwardPayload struct {
	PlayerID  string          `json:"player_id"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func toBriefs(players []usecase.PlayerBrief) []playerBrief {
	briefs := make([]playerBrief, 0, len(players))
	for _, p := range players {
		briefs = append(briefs, playerBrief{ID: p.ID, Name: p.Name})
	}

	return briefs
}
