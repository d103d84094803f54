package storage

import (
	"context"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// Storage defines persistence for accounts and game history.
// Live rooms and players never touch storage; they are owned by the coordinator.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// History operations. ListHistory returns newest first.
	SaveHistory(ctx context.Context, rec *model.HistoryRecord) error
	ListHistory(ctx context.Context, player string, limit int) ([]*model.HistoryRecord, error)
}
