package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records everything written to it.
type fakeConn struct {
	mu       sync.Mutex
	messages []any
}

func (that *fakeConn) WriteJSON(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.messages = append(that.messages, v)

	return nil
}

func (that *fakeConn) count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.messages)
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Run("Registered player is reachable", func(t *testing.T) {
		// Given: a registered connection
		reg := New()
		conn := &fakeConn{}
		reg.Register("alice", conn)

		// When: looking the player up
		got, ok := reg.Lookup("alice")

		// Then: the same handle comes back
		require.True(t, ok)
		assert.Same(t, conn, got.(*fakeConn))
	})

	t.Run("Unknown player is not found", func(t *testing.T) {
		reg := New()

		_, ok := reg.Lookup("nobody")

		assert.False(t, ok)
	})

	t.Run("Re-registration overwrites the prior handle", func(t *testing.T) {
		// Given: alice registered on an old connection
		reg := New()
		oldConn := &fakeConn{}
		newConn := &fakeConn{}
		reg.Register("alice", oldConn)

		// When: alice registers again from a new connection
		reg.Register("alice", newConn)

		// Then: last writer wins
		got, ok := reg.Lookup("alice")
		require.True(t, ok)
		assert.Same(t, newConn, got.(*fakeConn))
	})
}

func TestRegistry_Forget(t *testing.T) {
	t.Run("Returns the owning player id", func(t *testing.T) {
		reg := New()
		conn := &fakeConn{}
		reg.Register("alice", conn)

		playerID, ok := reg.Forget(conn)

		require.True(t, ok)
		assert.Equal(t, "alice", playerID)

		_, found := reg.Lookup("alice")
		assert.False(t, found)
	})

	t.Run("Tracked but unregistered connection has no owner", func(t *testing.T) {
		reg := New()
		conn := &fakeConn{}
		reg.Track(conn)

		_, ok := reg.Forget(conn)

		assert.False(t, ok)
	})

	t.Run("Forgetting a stale handle does not unbind the new one", func(t *testing.T) {
		// Given: alice re-registered on a new connection
		reg := New()
		oldConn := &fakeConn{}
		newConn := &fakeConn{}
		reg.Register("alice", oldConn)
		reg.Register("alice", newConn)

		// When: the old connection finally disconnects
		_, ok := reg.Forget(oldConn)

		// Then: the new binding survives
		assert.False(t, ok)
		got, found := reg.Lookup("alice")
		require.True(t, found)
		assert.Same(t, newConn, got.(*fakeConn))
	})
}

func TestRegistry_SendTo(t *testing.T) {
	t.Run("Delivers to a registered player", func(t *testing.T) {
		reg := New()
		conn := &fakeConn{}
		reg.Register("alice", conn)

		ok := reg.SendTo("alice", "hello")

		assert.True(t, ok)
		assert.Equal(t, 1, conn.count())
	})

	t.Run("Drops messages for unknown players", func(t *testing.T) {
		reg := New()

		ok := reg.SendTo("nobody", "hello")

		assert.False(t, ok)
	})
}

func TestRegistry_Broadcast(t *testing.T) {
	t.Run("Reaches registered and anonymous connections alike", func(t *testing.T) {
		// Given: one registered and one merely tracked connection
		reg := New()
		registered := &fakeConn{}
		anonymous := &fakeConn{}
		reg.Register("alice", registered)
		reg.Track(anonymous)

		// When: broadcasting
		reg.Broadcast("stats")

		// Then: both connections got the message
		assert.Equal(t, 1, registered.count())
		assert.Equal(t, 1, anonymous.count())
	})
}
