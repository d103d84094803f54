package mocks

import (
	"sync"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// SentEvent is an event captured by MockTransport
type SentEvent struct {
	To    model.ConnectionID // set for unicast
	Room  model.RoomID       // set for room-cast
	Event model.Event
}

// MockTransport records outbound events and tracks room groups in memory
type MockTransport struct {
	mu         sync.Mutex
	Unicasts   []SentEvent
	RoomCasts  []SentEvent
	Broadcasts []model.Event
	groups     map[model.RoomID]map[model.ConnectionID]bool
}

// NewMockTransport creates an empty MockTransport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		groups: make(map[model.RoomID]map[model.ConnectionID]bool),
	}
}

// Send records a unicast
func (t *MockTransport) Send(conn model.ConnectionID, event model.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Unicasts = append(t.Unicasts, SentEvent{To: conn, Event: event})
}

// SendRoom records a room-cast
func (t *MockTransport) SendRoom(room model.RoomID, event model.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.RoomCasts = append(t.RoomCasts, SentEvent{Room: room, Event: event})
}

// Broadcast records a broadcast
func (t *MockTransport) Broadcast(event model.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Broadcasts = append(t.Broadcasts, event)
}

// JoinGroup adds conn to the room group
func (t *MockTransport) JoinGroup(conn model.ConnectionID, room model.RoomID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.groups[room] == nil {
		t.groups[room] = make(map[model.ConnectionID]bool)
	}
	t.groups[room][conn] = true
}

// LeaveGroup removes conn from the room group
func (t *MockTransport) LeaveGroup(conn model.ConnectionID, room model.RoomID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.groups[room], conn)
	if len(t.groups[room]) == 0 {
		delete(t.groups, room)
	}
}

// InGroup returns true if conn is in the room group
func (t *MockTransport) InGroup(conn model.ConnectionID, room model.RoomID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.groups[room][conn]
}

// GroupSize returns the number of connections in the room group
func (t *MockTransport) GroupSize(room model.RoomID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.groups[room])
}

// EventsFor returns unicasts sent to conn, optionally filtered by type
func (t *MockTransport) EventsFor(conn model.ConnectionID, types ...model.EventType) []model.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []model.Event
	for _, sent := range t.Unicasts {
		if sent.To == conn && matchesType(sent.Event, types) {
			out = append(out, sent.Event)
		}
	}
	return out
}

// LastFor returns the last unicast of the given type sent to conn
func (t *MockTransport) LastFor(conn model.ConnectionID, eventType model.EventType) (model.Event, bool) {
	events := t.EventsFor(conn, eventType)
	if len(events) == 0 {
		return model.Event{}, false
	}
	return events[len(events)-1], true
}

// RoomEvents returns room-casts to room, optionally filtered by type
func (t *MockTransport) RoomEvents(room model.RoomID, types ...model.EventType) []model.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []model.Event
	for _, sent := range t.RoomCasts {
		if sent.Room == room && matchesType(sent.Event, types) {
			out = append(out, sent.Event)
		}
	}
	return out
}

// LastBroadcast returns the most recent broadcast
func (t *MockTransport) LastBroadcast() (model.Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Broadcasts) == 0 {
		return model.Event{}, false
	}
	return t.Broadcasts[len(t.Broadcasts)-1], true
}

// BroadcastCount returns the number of broadcasts recorded
func (t *MockTransport) BroadcastCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Broadcasts)
}

// Reset clears recorded events but keeps group membership
func (t *MockTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Unicasts = nil
	t.RoomCasts = nil
	t.Broadcasts = nil
}

func matchesType(event model.Event, types []model.EventType) bool {
	if len(types) == 0 {
		return true
	}
	for _, et := range types {
		if event.Type == et {
			return true
		}
	}
	return false
}

// MockHistory records history submissions
type MockHistory struct {
	mu      sync.Mutex
	Records []model.HistoryRecord
}

// NewMockHistory creates an empty MockHistory
func NewMockHistory() *MockHistory {
	return &MockHistory{}
}

// Record stores rec
func (h *MockHistory) Record(rec model.HistoryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Records = append(h.Records, rec)
}

// ForPlayer returns records for the named player
func (h *MockHistory) ForPlayer(name string) []model.HistoryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []model.HistoryRecord
	for _, r := range h.Records {
		if r.Player == name {
			out = append(out, r)
		}
	}
	return out
}
