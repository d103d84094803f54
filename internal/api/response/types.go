package response

import (
	"time"

	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/services/auth"
)

// User represents an account in API responses
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:       string(u.ID),
		Username: u.Username,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Token: s.Token,
		User: User{
			ID:       string(s.UserID),
			Username: s.Username,
		},
	}
}

// HistoryRecord is a stored game with its display fields
type HistoryRecord struct {
	ID              string    `json:"id"`
	Player          string    `json:"player"`
	GameType        string    `json:"gameType"`
	Result          string    `json:"result"`
	Winner          string    `json:"winner"`
	Opponent        string    `json:"opponent,omitempty"`
	GameMode        string    `json:"gameMode,omitempty"`
	Date            time.Time `json:"date"`
	GameTypeDisplay string    `json:"gameTypeDisplay"`
	ResultDisplay   string    `json:"resultDisplay"`
	OpponentDisplay string    `json:"opponentDisplay"`
}

// HistoryRecordFromModel converts a model.HistoryRecord
func HistoryRecordFromModel(h *model.HistoryRecord) HistoryRecord {
	return HistoryRecord{
		ID:              string(h.ID),
		Player:          h.Player,
		GameType:        string(h.GameType),
		Result:          string(h.Result),
		Winner:          h.Winner,
		Opponent:        h.Opponent,
		GameMode:        h.GameMode,
		Date:            h.Date,
		GameTypeDisplay: h.GameTypeDisplay(),
		ResultDisplay:   h.ResultDisplay(),
		OpponentDisplay: h.OpponentDisplay(),
	}
}

// HistoryFromModel converts a list of records, never returning nil
func HistoryFromModel(records []*model.HistoryRecord) []HistoryRecord {
	result := make([]HistoryRecord, 0, len(records))
	for _, h := range records {
		result = append(result, HistoryRecordFromModel(h))
	}
	return result
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
