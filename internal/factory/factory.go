package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mcoot/tictactoe-go/internal/api"
	"github.com/mcoot/tictactoe-go/internal/config"
	"github.com/mcoot/tictactoe-go/internal/dependencies/clock"
	"github.com/mcoot/tictactoe-go/internal/dependencies/ids"
	"github.com/mcoot/tictactoe-go/internal/services/auth"
	"github.com/mcoot/tictactoe-go/internal/services/coordinator"
	"github.com/mcoot/tictactoe-go/internal/services/history"
	"github.com/mcoot/tictactoe-go/internal/storage"
	"github.com/mcoot/tictactoe-go/internal/storage/memory"
	redisstorage "github.com/mcoot/tictactoe-go/internal/storage/redis"
	"github.com/mcoot/tictactoe-go/internal/transport"
	"github.com/mcoot/tictactoe-go/internal/transport/sse"
	"github.com/mcoot/tictactoe-go/internal/transport/ws"
)

// App contains all wired application components
type App struct {
	Config config.Config
	Logger *slog.Logger

	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Services
	AuthService    *auth.Service
	HistoryService *history.Service
	Loop           *coordinator.Loop
	Coordinator    *coordinator.Coordinator

	// Transports
	WSHub      *ws.Hub
	HubManager *sse.HubManager

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a new application with all dependencies wired
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(cfg, store, clock.New(), ids.NewUUIDGenerator(), logger), nil
}

func newStorage(cfg config.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "", config.StorageTypeMemory:
		return memory.New(), nil
	case config.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		if cfg.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		}
		redisCfg.HistoryMaxRecords = cfg.Redis.HistoryMaxRecords
		redisCfg.HistoryTTL = cfg.Redis.HistoryTTL
		return redisstorage.New(redisCfg)
	default:
		return nil, errors.New("invalid storage type: must be 'memory' or 'redis'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg config.Config, store storage.Storage, clk clock.Clock, gen ids.Generator, logger *slog.Logger) *App {
	authService := auth.New(store, clk, gen, auth.Config{
		SessionDuration: cfg.Auth.SessionDuration,
		BcryptCost:      cfg.Auth.BcryptCost,
	})
	historyService := history.New(store, clk, gen, logger, history.DefaultConfig())

	hub := ws.NewHub(gen, logger)
	hubManager := sse.NewHubManager(logger)
	feed := sse.NewBroadcaster(hubManager, logger)

	loop := coordinator.NewLoop(cfg.Game.QueueSize, logger)
	coord := coordinator.New(
		transport.NewMirror(hub, feed),
		historyService,
		clk,
		gen,
		loop,
		coordinatorConfig(cfg.Game),
		logger,
	)
	hub.SetHandler(coord)

	return &App{
		Config:         cfg,
		Logger:         logger,
		Storage:        store,
		Clock:          clk,
		IDs:            gen,
		AuthService:    authService,
		HistoryService: historyService,
		Loop:           loop,
		Coordinator:    coord,
		WSHub:          hub,
		HubManager:     hubManager,
	}
}

func coordinatorConfig(g config.GameConfig) coordinator.Config {
	cfg := coordinator.DefaultConfig()
	if g.FinishRetention > 0 {
		cfg.FinishRetention = g.FinishRetention
	}
	if g.WaitingGrace > 0 {
		cfg.WaitingGrace = g.WaitingGrace
	}
	if g.PlayingGrace > 0 {
		cfg.PlayingGrace = g.PlayingGrace
	}
	if g.MaxRoomNameLength > 0 {
		cfg.MaxRoomNameLength = g.MaxRoomNameLength
	}
	return cfg
}

// Start runs the coordinator loop, the websocket hub and periodic
// maintenance until Close is called or ctx is cancelled
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	a.wg.Add(3)
	go func() {
		defer a.wg.Done()
		a.Loop.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.WSHub.Run()
	}()
	go func() {
		defer a.wg.Done()
		a.maintain(ctx)
	}()
}

// maintain drops empty spectator hubs and expired sessions
func (a *App) maintain(ctx context.Context) {
	interval := a.Config.Game.SpectatorCleanup
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.HubManager.CleanupEmptyHubs()
			if n := a.AuthService.CleanExpiredSessions(); n > 0 {
				a.Logger.Info("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}

// Router builds the HTTP handler for the whole application
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:      a.Logger,
		AuthService: a.AuthService,
		Rooms:       a.Coordinator,
		History:     a.HistoryService,
		HubManager:  a.HubManager,
		Realtime:    a.WSHub,
	})
}

// Close stops every component and flushes queued history records
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.WSHub.Close()
		if a.cancel != nil {
			a.cancel()
		}
		a.Loop.Stop()
		a.wg.Wait()
		a.HubManager.Close()
		a.HistoryService.Close()
		if closer, ok := a.Storage.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				a.Logger.Warn("storage close failed", slog.String("error", err.Error()))
			}
		}
	})
}
