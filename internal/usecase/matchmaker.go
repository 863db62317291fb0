package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/rendezvous-backend/internal/apperror"
	"github.com/rocketscienceinc/rendezvous-backend/internal/entity"
	"github.com/rocketscienceinc/rendezvous-backend/internal/repository"
	"github.com/rocketscienceinc/rendezvous-backend/internal/tictactoe"
)

// resultArchive - where terminal game states are recorded, best effort.
type resultArchive interface {
	Record(ctx context.Context, result repository.GameResult) error
}

// Matchmaker - owns the player directory and all room assignment policy.
// Room membership and game state are only ever touched through here (and
// the reaper), under the room's own lock; that.mu guards the player
// directory and the player->room index and may be held while taking
// directory and room locks, never the other way around.
type Matchmaker struct {
	logger  *slog.Logger
	rooms   *repository.RoomRepository
	archive resultArchive

	mu         sync.RWMutex
	players    map[string]*entity.Player
	playerRoom map[string]string
}

func NewMatchmaker(logger *slog.Logger, rooms *repository.RoomRepository, archive resultArchive) *Matchmaker {
	return &Matchmaker{
		logger:  logger,
		rooms:   rooms,
		archive: archive,

		players:    make(map[string]*entity.Player),
		playerRoom: make(map[string]string),
	}
}

type PlayerBrief struct {
	ID   string
	Name string
}

type RoomInfo struct {
	ID      string
	Name    string
	Players []PlayerBrief
}

// StartNotice - per-recipient game_started content; symbol, turn and the
// negotiation host role all follow from join order.
type StartNotice struct {
	PlayerID string
	RoomID   string
	Symbol   string
	YourTurn bool
	IsHost   bool
}

type JoinResult struct {
	Room       RoomInfo
	JoinerID   string
	JoinerName string
	Others     []string // members present before the join
	Created    bool     // join-random fell back to creating a room
	Starts     []StartNotice
}

type LeaveResult struct {
	RoomID    string
	Remaining []string
	Destroyed bool
}

type DisconnectResult struct {
	InRoom    bool
	RoomID    string
	Remaining []string
	Destroyed bool
}

type RoomSummary struct {
	ID          string
	Name        string
	PlayerCount int
	IsFull      bool
	GameActive  bool
}

type Stats struct {
	ActiveGames    int
	OnlinePlayers  int
	WaitingPlayers int
}

// RegisterPlayer - idempotent upsert; re-registration just refreshes the
// record, there is no identity verification.
func (that *Matchmaker) RegisterPlayer(_ context.Context, playerID, name string) *entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := &entity.Player{
		ID:           playerID,
		Name:         name,
		RegisteredAt: time.Now(),
	}
	that.players[playerID] = player

	return player
}

func (that *Matchmaker) CreateRoom(_ context.Context, playerID, roomName string) (RoomInfo, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.createRoomLocked(playerID, roomName)
}

func (that *Matchmaker) createRoomLocked(playerID, roomName string) (RoomInfo, error) {
	player, ok := that.players[playerID]
	if !ok {
		return RoomInfo{}, apperror.ErrPlayerNotRegistered
	}

	if that.inRoomLocked(playerID) {
		return RoomInfo{}, apperror.ErrAlreadyInRoom
	}

	room, err := that.rooms.Create(roomName)
	if err != nil {
		return RoomInfo{}, fmt.Errorf("failed to create room: %w", err)
	}

	room.Lock()
	if err = room.AddMember(playerID); err != nil {
		room.Unlock()
		return RoomInfo{}, fmt.Errorf("failed to seat creator: %w", err)
	}
	room.Unlock()

	that.playerRoom[playerID] = room.ID

	return RoomInfo{
		ID:      room.ID,
		Name:    roomName,
		Players: []PlayerBrief{{ID: playerID, Name: player.Name}},
	}, nil
}

// JoinRoom - seats a player in a specific room; filling the room
// auto-starts the game, no separate start request needed.
func (that *Matchmaker) JoinRoom(_ context.Context, playerID, roomID string) (JoinResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, err := that.rooms.Get(roomID)
	if err != nil {
		return JoinResult{}, err
	}

	return that.joinLocked(playerID, room)
}

// JoinRandomRoom - first open room wins; with none open it behaves exactly
// like CreateRoom with a name derived from the player's.
func (that *Matchmaker) JoinRandomRoom(_ context.Context, playerID string) (JoinResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[playerID]
	if !ok {
		return JoinResult{}, apperror.ErrPlayerNotRegistered
	}

	if room, found := that.rooms.FirstOpen(); found {
		return that.joinLocked(playerID, room)
	}

	info, err := that.createRoomLocked(playerID, fmt.Sprintf("%s's Room", player.Name))
	if err != nil {
		return JoinResult{}, err
	}

	return JoinResult{
		Room:       info,
		JoinerID:   playerID,
		JoinerName: player.Name,
		Created:    true,
	}, nil
}

func (that *Matchmaker) joinLocked(playerID string, room *entity.Room) (JoinResult, error) {
	player, ok := that.players[playerID]
	if !ok {
		return JoinResult{}, apperror.ErrPlayerNotRegistered
	}

	if that.inRoomLocked(playerID) {
		return JoinResult{}, apperror.ErrAlreadyInRoom
	}

	room.Lock()
	defer room.Unlock()

	if room.IsFull() {
		return JoinResult{}, apperror.ErrRoomFull
	}

	others := append([]string(nil), room.Members...)

	if err := room.AddMember(playerID); err != nil {
		return JoinResult{}, err
	}

	that.playerRoom[playerID] = room.ID

	result := JoinResult{
		Room: RoomInfo{
			ID:      room.ID,
			Name:    room.Name,
			Players: that.briefsLocked(room.Members),
		},
		JoinerID:   playerID,
		JoinerName: player.Name,
		Others:     others,
	}

	if room.IsFull() {
		if err := tictactoe.Start(room); err != nil {
			return JoinResult{}, fmt.Errorf("failed to auto-start game: %w", err)
		}

		result.Starts = that.startNoticesLocked(room)
	}

	return result, nil
}

// LeaveRoom - removes membership and destroys the room once empty. The
// caller notifies the remaining member; the departed opponent's game state
// is left untouched (no automatic forfeit).
func (that *Matchmaker) LeaveRoom(_ context.Context, playerID, roomID string) (LeaveResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.leaveLocked(playerID, roomID)
}

func (that *Matchmaker) leaveLocked(playerID, roomID string) (LeaveResult, error) {
	room, err := that.rooms.Get(roomID)
	if err != nil {
		return LeaveResult{}, err
	}

	room.Lock()

	if !room.HasMember(playerID) {
		room.Unlock()
		return LeaveResult{}, apperror.ErrNotInRoom
	}

	room.RemoveMember(playerID)
	remaining := append([]string(nil), room.Members...)
	empty := room.IsEmpty()

	room.Unlock()

	delete(that.playerRoom, playerID)

	if empty {
		that.rooms.Destroy(roomID)
	}

	return LeaveResult{
		RoomID:    roomID,
		Remaining: remaining,
		Destroyed: empty,
	}, nil
}

// Disconnect - the leave flow plus player teardown, as one critical
// section with LeaveRoom so the two cannot double-remove. Always succeeds;
// disconnecting an unknown player is a no-op.
func (that *Matchmaker) Disconnect(_ context.Context, playerID string) DisconnectResult {
	that.mu.Lock()
	defer that.mu.Unlock()

	var result DisconnectResult

	if roomID, inRoom := that.playerRoom[playerID]; inRoom {
		left, err := that.leaveLocked(playerID, roomID)
		if err == nil {
			result = DisconnectResult{
				InRoom:    true,
				RoomID:    left.RoomID,
				Remaining: left.Remaining,
				Destroyed: left.Destroyed,
			}
		} else {
			// The reaper can destroy the room between the index lookup
			// and the leave; just drop the stale index entry.
			delete(that.playerRoom, playerID)
		}
	}

	delete(that.players, playerID)

	return result
}

// Rooms - lobby listing.
func (that *Matchmaker) Rooms(_ context.Context) []RoomSummary {
	rooms := that.rooms.List()
	summaries := make([]RoomSummary, 0, len(rooms))

	for _, room := range rooms {
		room.Lock()
		summaries = append(summaries, RoomSummary{
			ID:          room.ID,
			Name:        room.Name,
			PlayerCount: len(room.Members),
			IsFull:      room.IsFull(),
			GameActive:  room.Game.Active,
		})
		room.Unlock()
	}

	return summaries
}

// Stats - always recomputed from the directories, never cached.
func (that *Matchmaker) Stats(_ context.Context) Stats {
	that.mu.RLock()
	online := len(that.players)
	that.mu.RUnlock()

	stats := Stats{OnlinePlayers: online}

	for _, room := range that.rooms.List() {
		room.Lock()
		if room.Game.Active {
			stats.ActiveGames++
		}
		if !room.IsFull() {
			stats.WaitingPlayers += len(room.Members)
		}
		room.Unlock()
	}

	return stats
}

// RelayRecipients - resolves "the other occupant(s)" for a signaling
// payload. The payload itself never passes through here; it stays opaque
// to the core.
func (that *Matchmaker) RelayRecipients(_ context.Context, playerID, roomID string) ([]string, error) {
	room, err := that.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	if !room.HasMember(playerID) {
		return nil, apperror.ErrNotInRoom
	}

	var recipients []string

	for _, id := range room.Members {
		if id != playerID {
			recipients = append(recipients, id)
		}
	}

	room.Touch()

	return recipients, nil
}

// inRoomLocked - membership check against the live directory; entries left
// stale by the reaper are dropped here so the player is not stuck.
func (that *Matchmaker) inRoomLocked(playerID string) bool {
	roomID, ok := that.playerRoom[playerID]
	if !ok {
		return false
	}

	if _, err := that.rooms.Get(roomID); err != nil {
		delete(that.playerRoom, playerID)
		return false
	}

	return true
}

// briefsLocked - ids to id+name pairs; requires that.mu.
func (that *Matchmaker) briefsLocked(ids []string) []PlayerBrief {
	briefs := make([]PlayerBrief, 0, len(ids))

	for _, id := range ids {
		name := id
		if player, ok := that.players[id]; ok {
			name = player.Name
		}
		briefs = append(briefs, PlayerBrief{ID: id, Name: name})
	}

	return briefs
}

// startNoticesLocked - per-member game_started content; requires the room
// lock.
func (that *Matchmaker) startNoticesLocked(room *entity.Room) []StartNotice {
	notices := make([]StartNotice, 0, len(room.Members))

	for i, id := range room.Members {
		notices = append(notices, StartNotice{
			PlayerID: id,
			RoomID:   room.ID,
			Symbol:   room.SymbolFor(id),
			YourTurn: i == 0,
			IsHost:   i == 0,
		})
	}

	return notices
}
