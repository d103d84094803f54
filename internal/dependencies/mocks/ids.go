package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/tictactoe-go/internal/dependencies/ids"
	"github.com/mcoot/tictactoe-go/internal/model"
)

// MockIDs is a mock implementation of ids.Generator for testing.
// Queued values are returned first; after that ids are sequential.
type MockIDs struct {
	mu sync.Mutex

	RoomIDs       []model.RoomID
	ConnectionIDs []model.ConnectionID
	Tokens        []string

	counter int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// RoomID returns the next queued room id, or room_N
func (g *MockIDs) RoomID() model.RoomID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.RoomIDs) > 0 {
		id := g.RoomIDs[0]
		g.RoomIDs = g.RoomIDs[1:]
		return id
	}
	return model.RoomID(g.nextLocked("room"))
}

// ConnectionID returns the next queued connection id, or conn_N
func (g *MockIDs) ConnectionID() model.ConnectionID {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ConnectionIDs) > 0 {
		id := g.ConnectionIDs[0]
		g.ConnectionIDs = g.ConnectionIDs[1:]
		return id
	}
	return model.ConnectionID(g.nextLocked("conn"))
}

// UserID returns user_N
func (g *MockIDs) UserID() model.UserID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return model.UserID(g.nextLocked("user"))
}

// HistoryID returns history_N
func (g *MockIDs) HistoryID() model.HistoryID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return model.HistoryID(g.nextLocked("history"))
}

// Token returns the next queued token, or token_N
func (g *MockIDs) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Tokens) > 0 {
		t := g.Tokens[0]
		g.Tokens = g.Tokens[1:]
		return t
	}
	return g.nextLocked("token")
}

// QueueRoomIDs adds values to the RoomID result queue
func (g *MockIDs) QueueRoomIDs(values ...model.RoomID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.RoomIDs = append(g.RoomIDs, values...)
}

// QueueConnectionIDs adds values to the ConnectionID result queue
func (g *MockIDs) QueueConnectionIDs(values ...model.ConnectionID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ConnectionIDs = append(g.ConnectionIDs, values...)
}

// QueueTokens adds values to the Token result queue
func (g *MockIDs) QueueTokens(values ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Tokens = append(g.Tokens, values...)
}

func (g *MockIDs) nextLocked(prefix string) string {
	g.counter++
	return fmt.Sprintf("%s_%d", prefix, g.counter)
}
