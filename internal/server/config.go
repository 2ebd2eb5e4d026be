package server

import (
	"os"
	"time"

	"github.com/spf13/cast"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/scanner"
)

// Config tunes the API server. Redis-backed features (result cache, rate
// limiting) activate only when RedisAddr is set; without it the server runs
// fully in-process.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// Scanner configures the in-process scan pipeline.
	Scanner scanner.Config

	// RedisAddr enables the result cache and rate limiter when non-empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// CacheTTL bounds how long a scan result is served from cache.
	CacheTTL time.Duration

	// RateLimitPerMinute caps scan requests per client IP. Zero disables
	// limiting even when redis is configured.
	RateLimitPerMinute int

	Logger interfaces.Logger
}

const (
	defaultListenAddr = ":8080"
	defaultCacheTTL   = 15 * time.Minute
	defaultRateLimit  = 60
)

// ConfigFromEnv reads the server configuration from the environment,
// falling back to defaults for anything unset.
func ConfigFromEnv() Config {
	return Config{
		ListenAddr:         envString("AGENTLENS_ADDR", defaultListenAddr),
		RedisAddr:          envString("AGENTLENS_REDIS_ADDR", ""),
		RedisPassword:      envString("AGENTLENS_REDIS_PASSWORD", ""),
		RedisDB:            cast.ToInt(os.Getenv("AGENTLENS_REDIS_DB")),
		CacheTTL:           envDuration("AGENTLENS_CACHE_TTL", defaultCacheTTL),
		RateLimitPerMinute: envInt("AGENTLENS_RATE_LIMIT_PER_MINUTE", defaultRateLimit),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		return cast.ToInt(v)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d := cast.ToDuration(v); d > 0 {
			return d
		}
	}
	return fallback
}
