package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tictactoe-go/internal/api/middleware"
	"github.com/mcoot/tictactoe-go/internal/api/request"
	"github.com/mcoot/tictactoe-go/internal/api/response"
	"github.com/mcoot/tictactoe-go/internal/model"
)

// HistoryStore saves and lists finished games
type HistoryStore interface {
	Save(ctx context.Context, rec model.HistoryRecord) (*model.HistoryRecord, error)
	Latest(ctx context.Context, player string) ([]*model.HistoryRecord, error)
}

// HistoryHandler handles game history endpoints
type HistoryHandler struct {
	history HistoryStore
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history HistoryStore) *HistoryHandler {
	return &HistoryHandler{
		history: history,
	}
}

// Create handles POST /api/v1/history. The record belongs to the caller.
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.CreateHistoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := h.history.Save(r.Context(), model.HistoryRecord{
		Player:   session.Username,
		GameType: model.GameType(req.GameType),
		Result:   model.GameResult(req.Result),
		Winner:   req.Winner,
		Opponent: req.Opponent,
		GameMode: req.GameMode,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.HistoryRecordFromModel(rec))
}

// Mine handles GET /api/v1/history
func (h *HistoryHandler) Mine(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	h.list(w, r, session.Username)
}

// ForPlayer handles GET /api/v1/history/{username}
func (h *HistoryHandler) ForPlayer(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, mux.Vars(r)["username"])
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request, player string) {
	records, err := h.history.Latest(r.Context(), player)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HistoryFromModel(records))
}
