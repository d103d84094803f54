package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/tictactoe-go/internal/dependencies/clock"
	"github.com/mcoot/tictactoe-go/internal/dependencies/ids"
	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/storage"
)

// Config holds configuration for the history service
type Config struct {
	QueueSize    int
	WriteTimeout time.Duration
}

// DefaultConfig returns default history configuration
func DefaultConfig() Config {
	return Config{
		QueueSize:    256,
		WriteTimeout: 5 * time.Second,
	}
}

// Service stores finished games. Record is fire-and-forget and is what the
// coordinator calls; Save and Latest back the HTTP API.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
	cfg     Config

	mu     sync.RWMutex
	closed bool
	queue  chan model.HistoryRecord
	wg     sync.WaitGroup
}

// New creates a history Service and starts its writer goroutine
func New(storage storage.Storage, clock clock.Clock, gen ids.Generator, logger *slog.Logger, cfg Config) *Service {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	s := &Service{
		storage: storage,
		clock:   clock,
		ids:     gen,
		logger:  logger.With(slog.String("component", "history")),
		cfg:     cfg,
		queue:   make(chan model.HistoryRecord, cfg.QueueSize),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Record enqueues rec for storage without blocking. When the queue is full
// or the service is closed the record is dropped.
func (s *Service) Record(rec model.HistoryRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Warn("history record dropped after close", slog.String("player", rec.Player))
		return
	}
	select {
	case s.queue <- rec:
	default:
		s.logger.Warn("history queue full, dropping record", slog.String("player", rec.Player))
	}
}

func (s *Service) run() {
	defer s.wg.Done()
	for rec := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		if _, err := s.Save(ctx, rec); err != nil {
			s.logger.Error("failed to save history record",
				slog.String("player", rec.Player),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}

// Save validates and stores a record, assigning its id and date
func (s *Service) Save(ctx context.Context, rec model.HistoryRecord) (*model.HistoryRecord, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	rec.ID = s.ids.HistoryID()
	if rec.Date.IsZero() {
		rec.Date = s.clock.Now()
	}
	if err := s.storage.SaveHistory(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Latest returns the most recent records for player, newest first
func (s *Service) Latest(ctx context.Context, player string) ([]*model.HistoryRecord, error) {
	return s.storage.ListHistory(ctx, player, model.HistoryLimit)
}

// Close stops accepting records and waits for queued ones to be written
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	s.wg.Wait()
}

// Interface for dependency injection
type ServiceInterface interface {
	Record(rec model.HistoryRecord)
	Save(ctx context.Context, rec model.HistoryRecord) (*model.HistoryRecord, error)
	Latest(ctx context.Context, player string) ([]*model.HistoryRecord, error)
}

var _ ServiceInterface = (*Service)(nil)
