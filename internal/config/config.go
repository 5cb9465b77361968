package config

import (
	"os"
	"time"
)

// defaultLastVisitFloor is used for members who have never opened a
// channel: every message newer than this counts as unread. It predates
// any real data, so "never visited" always means "everything unread".
const defaultLastVisitFloor = "2000-01-01T00:00:00Z"

// Config holds runtime configuration sourced from the environment.
type Config struct {
	Port      string
	JWTSecret []byte

	LogLevel string
	LogFile  string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	// LastVisitFloor is the unread watermark applied when a channel
	// member has no recorded visit.
	LastVisitFloor time.Time

	// RecentFilesLimit caps the fixed small page served by the
	// recent-files endpoint.
	RecentFilesLimit int
}

// Load reads configuration from environment variables, applying
// defaults for everything optional. JWT_SECRET is the only hard
// requirement and is validated by the caller.
func Load() *Config {
	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8787"),
		JWTSecret:        []byte(os.Getenv("JWT_SECRET")),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:          getEnvOrDefault("LOG_FILE", "server.log"),
		RedisHost:        os.Getenv("REDIS_HOST"),
		RedisPort:        os.Getenv("REDIS_PORT"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		LastVisitFloor:   parseTimeOrDefault(os.Getenv("LAST_VISIT_FLOOR"), defaultLastVisitFloor),
		RecentFilesLimit: 10,
	}
	return cfg
}

func parseTimeOrDefault(value, fallback string) time.Time {
	if value != "" {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t.UTC()
		}
	}
	t, _ := time.Parse(time.RFC3339, fallback)
	return t.UTC()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
