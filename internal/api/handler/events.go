package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/transport/sse"
)

// EventsHandler streams spectator feeds over SSE
type EventsHandler struct {
	rooms      RoomDirectory
	hubManager *sse.HubManager
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(rooms RoomDirectory, hubManager *sse.HubManager) *EventsHandler {
	return &EventsHandler{
		rooms:      rooms,
		hubManager: hubManager,
	}
}

// Lobby handles GET /api/v1/lobby/events
func (h *EventsHandler) Lobby(w http.ResponseWriter, r *http.Request) {
	hub := h.hubManager.GetOrCreateHub(sse.LobbyTopic)
	sse.ServeSSE(w, r, hub, r.RemoteAddr)
}

// Room handles GET /api/v1/rooms/{id}/events
func (h *EventsHandler) Room(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(mux.Vars(r)["id"])

	if _, err := h.rooms.RoomSummary(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(sse.RoomTopic(id))
	sse.ServeSSE(w, r, hub, r.RemoteAddr)
}
