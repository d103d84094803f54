package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/tictactoe-go/internal/api/response"
	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/services/coordinator"
)

// RoomDirectory is the read side of the coordinator
type RoomDirectory interface {
	WaitingRooms(ctx context.Context) ([]model.RoomSummary, error)
	RoomSummary(ctx context.Context, id model.RoomID) (model.RoomSummary, error)
	Stats(ctx context.Context) (coordinator.Stats, error)
}

// RoomHandler exposes the lobby and coordinator counters over HTTP
type RoomHandler struct {
	rooms RoomDirectory
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms RoomDirectory) *RoomHandler {
	return &RoomHandler{
		rooms: rooms,
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.WaitingRooms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, rooms)
}

// Stats handles GET /api/v1/stats
func (h *RoomHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.rooms.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, stats)
}
