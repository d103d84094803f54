package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// HistoryMaxRecords caps the stored history list per player; 0 keeps everything
	HistoryMaxRecords int
	// HistoryTTL expires a player's history after inactivity; 0 disables expiry
	HistoryTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:               "redis://localhost:6379",
		PoolSize:          10,
		MinIdleConns:      2,
		HistoryMaxRecords: 100,
		HistoryTTL:        0,
	}
}
