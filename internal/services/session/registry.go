package session

import (
	"time"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// DefaultDisplayName is assigned to players who register without a name
const DefaultDisplayName = "Guest"

// Registry maps live connections to players.
// It is not safe for concurrent use; the coordinator loop owns it.
type Registry struct {
	players map[model.ConnectionID]*model.Player
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		players: make(map[model.ConnectionID]*model.Player),
	}
}

// Register creates or updates the player for conn. An existing player
// keeps its display name when displayName is empty.
func (r *Registry) Register(conn model.ConnectionID, displayName string) *model.Player {
	if p, ok := r.players[conn]; ok {
		if displayName != "" {
			p.DisplayName = displayName
		}
		p.DisconnectedAt = nil
		return p
	}

	if displayName == "" {
		displayName = DefaultDisplayName
	}
	p := &model.Player{
		ConnectionID: conn,
		DisplayName:  displayName,
	}
	r.players[conn] = p
	return p
}

// Get returns the player for conn
func (r *Registry) Get(conn model.ConnectionID) (*model.Player, bool) {
	p, ok := r.players[conn]
	return p, ok
}

// Remove deletes the player for conn, if any
func (r *Registry) Remove(conn model.ConnectionID) {
	delete(r.players, conn)
}

// MarkDisconnected records when conn dropped. It returns false if there is no such player.
func (r *Registry) MarkDisconnected(conn model.ConnectionID, at time.Time) bool {
	p, ok := r.players[conn]
	if !ok {
		return false
	}
	p.DisconnectedAt = &at
	return true
}

// FindDisconnectedByName returns the disconnected player with the given name
// that dropped earliest
func (r *Registry) FindDisconnectedByName(displayName string) (*model.Player, bool) {
	var found *model.Player
	for _, p := range r.players {
		if p.DisplayName != displayName || !p.IsDisconnected() {
			continue
		}
		if found == nil || p.DisconnectedAt.Before(*found.DisconnectedAt) ||
			(p.DisconnectedAt.Equal(*found.DisconnectedAt) && p.ConnectionID < found.ConnectionID) {
			found = p
		}
	}
	return found, found != nil
}

// Rekey moves the player stored under oldConn to newConn and clears its
// disconnect marker. Any player already stored under newConn is replaced.
func (r *Registry) Rekey(oldConn, newConn model.ConnectionID) (*model.Player, bool) {
	p, ok := r.players[oldConn]
	if !ok {
		return nil, false
	}
	delete(r.players, oldConn)
	p.ConnectionID = newConn
	p.DisconnectedAt = nil
	r.players[newConn] = p
	return p, true
}

// Count returns the number of registered players, connected or not
func (r *Registry) Count() int {
	return len(r.players)
}

// ConnectedCount returns the number of players not inside a grace period
func (r *Registry) ConnectedCount() int {
	n := 0
	for _, p := range r.players {
		if !p.IsDisconnected() {
			n++
		}
	}
	return n
}
