// Package registry maps player ids to live connection handles. It is the
// source of truth for "is this player currently reachable".
package registry

import "sync"

// Conn - an opaque addressable connection handle. gorilla's *websocket.Conn
// satisfies it once wrapped for single-writer access by the transport.
type Conn interface {
	WriteJSON(v any) error
}

type Registry struct {
	mu       sync.RWMutex
	byPlayer map[string]Conn
	owners   map[Conn]string // includes tracked-but-unregistered conns as ""
}

func New() *Registry {
	return &Registry{
		byPlayer: make(map[string]Conn),
		owners:   make(map[Conn]string),
	}
}

// Track - records a connection before any player has registered on it, so
// that broadcasts reach every socket.
func (that *Registry) Track(conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.owners[conn]; !ok {
		that.owners[conn] = ""
	}
}

// Register - binds a player id to a connection. Last writer wins: a second
// registration for the same id silently replaces the previous handle.
func (that *Registry) Register(playerID string, conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if old, ok := that.byPlayer[playerID]; ok && old != conn {
		delete(that.owners, old)
	}

	that.byPlayer[playerID] = conn
	that.owners[conn] = playerID
}

func (that *Registry) Lookup(playerID string) (Conn, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	conn, ok := that.byPlayer[playerID]

	return conn, ok
}

// Forget - drops a connection and returns the player id that owned it, if
// any. Called from the disconnect path.
func (that *Registry) Forget(conn Conn) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	playerID, ok := that.owners[conn]
	if !ok {
		return "", false
	}

	delete(that.owners, conn)

	if playerID != "" && that.byPlayer[playerID] == conn {
		delete(that.byPlayer, playerID)
	}

	return playerID, playerID != ""
}

// SendTo - best-effort delivery to one player. Unknown or failing
// recipients are dropped, never surfaced to unrelated players.
func (that *Registry) SendTo(playerID string, v any) bool {
	that.mu.RLock()
	conn, ok := that.byPlayer[playerID]
	that.mu.RUnlock()

	if !ok {
		return false
	}

	return conn.WriteJSON(v) == nil
}

// Broadcast - best-effort delivery to every tracked connection, registered
// or not.
func (that *Registry) Broadcast(v any) {
	that.mu.RLock()
	conns := make([]Conn, 0, len(that.owners))
	for conn := range that.owners {
		conns = append(conns, conn)
	}
	that.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.WriteJSON(v)
	}
}
