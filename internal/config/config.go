package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Environment variables read by Load
const (
	EnvConfigPath  = "TTT_CONFIG"
	EnvPort        = "PORT"
	EnvStorageType = "STORAGE_TYPE"
	EnvRedisURL    = "REDIS_URL"
	EnvLogLevel    = "LOG_LEVEL"
)

// Config is the server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Game    GameConfig    `yaml:"game"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Type string `yaml:"type"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URL               string        `yaml:"url"`
	PoolSize          int           `yaml:"pool_size"`
	MinIdleConns      int           `yaml:"min_idle_conns"`
	HistoryMaxRecords int           `yaml:"history_max_records"`
	HistoryTTL        time.Duration `yaml:"history_ttl"`
}

// GameConfig holds coordinator timings and limits
type GameConfig struct {
	FinishRetention   time.Duration `yaml:"finish_retention"`
	WaitingGrace      time.Duration `yaml:"waiting_grace"`
	PlayingGrace      time.Duration `yaml:"playing_grace"`
	MaxRoomNameLength int           `yaml:"max_room_name_length"`
	QueueSize         int           `yaml:"queue_size"`
	SpectatorCleanup  time.Duration `yaml:"spectator_cleanup"`
}

// AuthConfig holds account settings
type AuthConfig struct {
	SessionDuration time.Duration `yaml:"session_duration"`
	BcryptCost      int           `yaml:"bcrypt_cost"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{Type: StorageTypeMemory},
		Redis: RedisConfig{
			URL:               "redis://localhost:6379",
			PoolSize:          10,
			MinIdleConns:      2,
			HistoryMaxRecords: 100,
		},
		Game: GameConfig{
			FinishRetention:   5 * time.Second,
			WaitingGrace:      30 * time.Second,
			PlayingGrace:      120 * time.Second,
			MaxRoomNameLength: 64,
			QueueSize:         256,
			SpectatorCleanup:  time.Minute,
		},
		Auth: AuthConfig{
			SessionDuration: 24 * time.Hour,
			BcryptCost:      10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// TTT_CONFIG (if set), then environment overrides. A .env file in the
// working directory is loaded first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v := getenv(EnvStorageType); v != "" {
		c.Storage.Type = strings.ToLower(v)
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Redis.URL = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Storage.Type {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.Redis.URL == "" {
			return errors.New("redis url required when storage type is redis")
		}
	default:
		return fmt.Errorf("invalid storage type %q: must be 'memory' or 'redis'", c.Storage.Type)
	}
	if c.Game.FinishRetention <= 0 || c.Game.WaitingGrace <= 0 || c.Game.PlayingGrace <= 0 {
		return errors.New("game timings must be positive")
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger described by l
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
