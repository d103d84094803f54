package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tictactoe-go/internal/config"
	"github.com/mcoot/tictactoe-go/internal/dependencies/mocks"
	"github.com/mcoot/tictactoe-go/internal/storage/memory"
	"github.com/mcoot/tictactoe-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates a running App with in-memory storage, a mock clock
// and predictable ids. Call Close when done.
func NewTestApp() *TestApp {
	cfg := config.Default()
	cfg.Auth.BcryptCost = bcrypt.MinCost

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	app := newWithDependencies(cfg, store, mockClock, mockIDs, testutil.NopLogger())
	app.Start(context.Background())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}

// Sync waits until every event posted to the coordinator so far has been handled
func (t *TestApp) Sync(ctx context.Context) error {
	_, err := t.Coordinator.Stats(ctx)
	return err
}
