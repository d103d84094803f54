package memory

import (
	"context"
	"sync"

	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	history       map[string][]*model.HistoryRecord // oldest first, per player
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		history:       make(map[string][]*model.HistoryRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.usernameIndex[user.Username]; ok && owner != user.ID {
		return model.ErrUsernameTaken
	}
	u := *user
	s.users[user.ID] = &u
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// History operations

func (s *Storage) SaveHistory(ctx context.Context, rec *model.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *rec
	s.history[rec.Player] = append(s.history[rec.Player], &r)
	return nil
}

func (s *Storage) ListHistory(ctx context.Context, player string, limit int) ([]*model.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.history[player]
	result := make([]*model.HistoryRecord, 0, min(len(records), max(limit, 0)))
	for i := len(records) - 1; i >= 0 && len(result) < limit; i-- {
		r := *records[i]
		result = append(result, &r)
	}
	return result, nil
}
