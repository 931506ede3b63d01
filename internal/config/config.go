// internal/config/config.go
package config

import (
	"os"
	"strings"
)

// Config holds the environment-driven settings of the service. A .env file
// is honored via godotenv's autoload import in cmd/server.
type Config struct {
	// Addr is the listen address, built from PORT.
	Addr string
	// OriginPatterns is the websocket origin allowlist (WS_ORIGIN_PATTERNS,
	// comma separated). Defaults to the wildcard the frontend relies on.
	OriginPatterns []string
	// RedisAddr enables the room lifecycle journal when set (REDIS_ADDR).
	RedisAddr string
	// JournalQueue is the Redis list the journal pushes to (JOURNAL_QUEUE).
	JournalQueue string
	// LogLevel is a logrus level name (LOG_LEVEL).
	LogLevel string
}

// FromEnv reads the configuration from the environment, applying defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:         ":" + getEnv("PORT", "8080"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		JournalQueue: getEnv("JOURNAL_QUEUE", "duelo_room_events"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
	for _, p := range strings.Split(getEnv("WS_ORIGIN_PATTERNS", "*"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.OriginPatterns = append(cfg.OriginPatterns, p)
		}
	}
	return cfg
}

// getEnv is a helper to read an environment variable or return a default.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
