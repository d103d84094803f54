package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tictactoe-go/internal/api/handler"
	"github.com/mcoot/tictactoe-go/internal/api/middleware"
	"github.com/mcoot/tictactoe-go/internal/api/response"
	"github.com/mcoot/tictactoe-go/internal/services/auth"
	"github.com/mcoot/tictactoe-go/internal/transport/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Rooms       handler.RoomDirectory
	History     handler.HistoryStore
	HubManager  *sse.HubManager
	// Realtime serves the WebSocket endpoint at /ws
	Realtime http.Handler
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	roomHandler := handler.NewRoomHandler(cfg.Rooms)
	historyHandler := handler.NewHistoryHandler(cfg.History)
	eventsHandler := handler.NewEventsHandler(cfg.Rooms, cfg.HubManager)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Realtime endpoint; connections are logged by the hub
	if cfg.Realtime != nil {
		r.Handle("/ws", cfg.Realtime).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Account routes (no auth required for registering/logging in)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(authMiddleware)
	authProtected.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)
	authProtected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Lobby and coordinator views (public)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/stats", roomHandler.Stats).Methods(http.MethodGet)

	// Spectator feeds
	api.HandleFunc("/lobby/events", eventsHandler.Lobby).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/events", eventsHandler.Room).Methods(http.MethodGet)

	// History: the caller's own records need a token, anyone's by name do not
	history := api.PathPrefix("/history").Subrouter()
	history.Handle("", authMiddleware(http.HandlerFunc(historyHandler.Create))).Methods(http.MethodPost)
	history.Handle("", authMiddleware(http.HandlerFunc(historyHandler.Mine))).Methods(http.MethodGet)
	history.HandleFunc("/{username}", historyHandler.ForPlayer).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
