// Package transport combines the realtime transports behind the interface
// the coordinator talks to.
package transport

import (
	"github.com/mcoot/tictactoe-go/internal/model"
)

// Primary is the player-facing transport
type Primary interface {
	Send(conn model.ConnectionID, event model.Event)
	SendRoom(room model.RoomID, event model.Event)
	Broadcast(event model.Event)
	JoinGroup(conn model.ConnectionID, room model.RoomID)
	LeaveGroup(conn model.ConnectionID, room model.RoomID)
}

// Feed receives copies of public events for spectators
type Feed interface {
	PublishLobby(event model.Event)
	PublishRoom(room model.RoomID, event model.Event)
}

// Mirror forwards everything to the primary transport and copies room-casts
// and broadcasts to a spectator feed. Unicasts stay private.
type Mirror struct {
	Primary
	feed Feed
}

// NewMirror creates a Mirror
func NewMirror(primary Primary, feed Feed) *Mirror {
	return &Mirror{Primary: primary, feed: feed}
}

// SendRoom delivers to the room group and its spectators
func (m *Mirror) SendRoom(room model.RoomID, event model.Event) {
	m.Primary.SendRoom(room, event)
	m.feed.PublishRoom(room, event)
}

// Broadcast delivers to every connection and to lobby spectators
func (m *Mirror) Broadcast(event model.Event) {
	m.Primary.Broadcast(event)
	m.feed.PublishLobby(event)
}
