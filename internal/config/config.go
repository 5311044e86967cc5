package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Lorenzo-Gardini/hex-core/pkg/hexgame"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     string
	RedisURL string

	// Connect-parameter bounds. Usernames outside the length range and
	// lobby sizes outside [MinLobbySize, MaxLobbySize] are rejected with
	// HTTP 400 before the websocket upgrade.
	MinUsernameLen int
	MaxUsernameLen int
	MinLobbySize   int
	MaxLobbySize   int
	// Lobby size used when the connect request does not name one.
	DefaultLobbySize int

	// Match pacing.
	TurnPreparationTime time.Duration
	EventBroadcastDelay time.Duration

	// Rules.
	DefaultActionPoints     int
	MarchActionPoints       int
	SpawnActionPoints       int
	MaxTurns                int
	WinningCoreControlTurns int

	// Board setup. RandomSeed fixes the player-order shuffle so a match
	// can be replayed; LevelsDir holds optional hand-made maps.
	RandomSeed int64
	LevelsDir  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    envOrDefault("PORT", "8009"),
		RedisURL:                envOrDefault("REDIS_URL", ""),
		MinUsernameLen:          envIntOrDefault("PLAYER_MIN", 3),
		MaxUsernameLen:          envIntOrDefault("PLAYER_MAX", 8),
		MinLobbySize:            envIntOrDefault("MIN_LOBBY", hexgame.MinPlayers),
		MaxLobbySize:            envIntOrDefault("MAX_LOBBY", hexgame.MaxPlayers),
		DefaultLobbySize:        envIntOrDefault("DEFAULT_LOBBY_SIZE", 5),
		TurnPreparationTime:     envDurationOrDefault("TURN_PREPARATION_TIME", 30*time.Second),
		EventBroadcastDelay:     envDurationOrDefault("EVENT_BROADCAST_DELAY", 2*time.Second),
		DefaultActionPoints:     envIntOrDefault("DEFAULT_ACTION_POINTS", 3),
		MarchActionPoints:       envIntOrDefault("MARCH_ACTION_POINTS", 1),
		SpawnActionPoints:       envIntOrDefault("SPAWN_ACTION_POINTS", 2),
		MaxTurns:                envIntOrDefault("MAX_TURNS", 20),
		WinningCoreControlTurns: envIntOrDefault("WINNING_CORE_CONTROL_TURNS", 3),
		RandomSeed:              int64(envIntOrDefault("RANDOM_SEED", 42)),
		LevelsDir:               envOrDefault("LEVELS_DIR", "./levels"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MinUsernameLen < 1 || c.MinUsernameLen > c.MaxUsernameLen {
		return fmt.Errorf("username length bounds %d-%d invalid", c.MinUsernameLen, c.MaxUsernameLen)
	}
	if c.MinLobbySize < hexgame.MinPlayers || c.MaxLobbySize > hexgame.MaxPlayers {
		return fmt.Errorf("lobby sizes %d-%d outside supported range %d-%d",
			c.MinLobbySize, c.MaxLobbySize, hexgame.MinPlayers, hexgame.MaxPlayers)
	}
	if c.MinLobbySize > c.MaxLobbySize {
		return fmt.Errorf("MIN_LOBBY %d greater than MAX_LOBBY %d", c.MinLobbySize, c.MaxLobbySize)
	}
	if c.DefaultLobbySize < c.MinLobbySize || c.DefaultLobbySize > c.MaxLobbySize {
		return fmt.Errorf("DEFAULT_LOBBY_SIZE %d outside lobby range %d-%d",
			c.DefaultLobbySize, c.MinLobbySize, c.MaxLobbySize)
	}
	if c.TurnPreparationTime <= 0 {
		return fmt.Errorf("TURN_PREPARATION_TIME must be positive, got %s", c.TurnPreparationTime)
	}
	if c.EventBroadcastDelay < 0 {
		return fmt.Errorf("EVENT_BROADCAST_DELAY must not be negative, got %s", c.EventBroadcastDelay)
	}
	if c.DefaultActionPoints <= 0 {
		return fmt.Errorf("DEFAULT_ACTION_POINTS must be positive, got %d", c.DefaultActionPoints)
	}
	if c.MarchActionPoints <= 0 || c.SpawnActionPoints <= 0 {
		return fmt.Errorf("action costs must be positive, got march=%d spawn=%d",
			c.MarchActionPoints, c.SpawnActionPoints)
	}
	if c.MaxTurns <= 1 {
		return fmt.Errorf("MAX_TURNS must be greater than 1, got %d", c.MaxTurns)
	}
	if c.WinningCoreControlTurns <= 0 {
		return fmt.Errorf("WINNING_CORE_CONTROL_TURNS must be positive, got %d", c.WinningCoreControlTurns)
	}
	return nil
}

// Rules returns the updater limits carried by this configuration.
func (c *Config) Rules() hexgame.Rules {
	return hexgame.Rules{
		MaxTurns:                c.MaxTurns,
		WinningCoreControlTurns: c.WinningCoreControlTurns,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
