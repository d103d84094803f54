package ids

import (
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// Generator produces identifiers that can be mocked for testing
type Generator interface {
	RoomID() model.RoomID
	ConnectionID() model.ConnectionID
	UserID() model.UserID
	HistoryID() model.HistoryID
	Token() string
}

// UUIDGenerator is the production Generator backed by random UUIDs
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Ensure UUIDGenerator implements Generator
var _ Generator = (*UUIDGenerator)(nil)

// RoomID returns room_<uuid>
func (g *UUIDGenerator) RoomID() model.RoomID {
	return model.RoomID("room_" + uuid.NewString())
}

// ConnectionID returns conn_<uuid>
func (g *UUIDGenerator) ConnectionID() model.ConnectionID {
	return model.ConnectionID("conn_" + uuid.NewString())
}

// UserID returns a bare uuid
func (g *UUIDGenerator) UserID() model.UserID {
	return model.UserID(uuid.NewString())
}

// HistoryID returns a bare uuid
func (g *UUIDGenerator) HistoryID() model.HistoryID {
	return model.HistoryID(uuid.NewString())
}

// Token returns a session token built from two UUIDs
func (g *UUIDGenerator) Token() string {
	a, b := uuid.New(), uuid.New()
	return hex.EncodeToString(a[:]) + hex.EncodeToString(b[:])
}
