package server

import (
	"sync"

	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/protocol"
)

// Registry maps player ids to their live connections. It is the
// addressing layer for every push the server originates.
type Registry struct {
	mu       sync.RWMutex
	byPlayer map[model.PlayerID]*Conn
}

// NewRegistry creates an empty connection registry
func NewRegistry() *Registry {
	return &Registry{byPlayer: make(map[model.PlayerID]*Conn)}
}

// Bind routes the player's pushes to the given connection, replacing
// any previous binding (reconnects rebind to the fresh transport).
func (r *Registry) Bind(playerID model.PlayerID, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPlayer[playerID] = conn
}

// Unbind removes the binding, but only if it still points at the given
// connection. A reconnect that already rebound the player wins.
func (r *Registry) Unbind(playerID model.PlayerID, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.byPlayer[playerID]; ok && current == conn {
		delete(r.byPlayer, playerID)
	}
}

// Get returns the player's live connection, or nil
func (r *Registry) Get(playerID model.PlayerID) *Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byPlayer[playerID]
}

// SendTo pushes a message to the player if they are connected,
// reporting whether a connection was found. Write errors are swallowed;
// a broken transport surfaces in that connection's own read loop.
func (r *Registry) SendTo(playerID model.PlayerID, msg *protocol.Message) bool {
	conn := r.Get(playerID)
	if conn == nil {
		return false
	}
	_ = conn.Send(msg)
	return true
}

// Players snapshots the currently bound player ids
func (r *Registry) Players() []model.PlayerID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PlayerID, 0, len(r.byPlayer))
	for playerID := range r.byPlayer {
		out = append(out, playerID)
	}
	return out
}

// Count reports how many players are connected
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPlayer)
}
