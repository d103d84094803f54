package coordinator

import "time"

// Config holds coordinator timings
type Config struct {
	// FinishRetention is how long a finished room stays queryable
	FinishRetention time.Duration
	// WaitingGrace is how long a disconnected host keeps a waiting room
	WaitingGrace time.Duration
	// PlayingGrace is how long a disconnected player keeps a seat in a running game
	PlayingGrace time.Duration
	// MaxRoomNameLength bounds room names supplied by clients
	MaxRoomNameLength int
}

// DefaultConfig returns the standard timings
func DefaultConfig() Config {
	return Config{
		FinishRetention:   5 * time.Second,
		WaitingGrace:      30 * time.Second,
		PlayingGrace:      120 * time.Second,
		MaxRoomNameLength: 64,
	}
}
