// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process
// refuses to start.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default tunables. Each one can be overridden through the environment
// variable of the same name.
const (
	DefaultCacheTTL       = 60 * time.Minute
	DefaultCacheOpTimeout = 5 * time.Second
	DefaultFetchTimeout   = 30 * time.Second
	DefaultPurgeSpec      = "@every 1h"
)

// Config holds all runtime configuration for the aggregator.
type Config struct {
	Port        int
	DatabaseURL string
	RedisURL    string // optional; when set, Redis backs the cache instead of Postgres

	// APIKey protects the search endpoints. Empty disables authentication
	// (development mode).
	APIKey string

	// Provider credentials. An adapter with missing credentials is not
	// registered rather than failing at request time.
	RapidAPIKey      string
	TheirStackAPIKey string
	ApifyAPIKey      string
	ApifyActorID     string

	CacheTTL       time.Duration
	CacheOpTimeout time.Duration
	FetchTimeout   time.Duration

	// PurgeSpec is the cron spec for expired-cache cleanup.
	PurgeSpec string

	LogLevel string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             8000,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIKey:           os.Getenv("API_KEY"),
		RapidAPIKey:      os.Getenv("RAPID_API_KEY"),
		TheirStackAPIKey: os.Getenv("THEIRSTACK_API_KEY"),
		ApifyAPIKey:      os.Getenv("APIFY_API_KEY"),
		ApifyActorID:     os.Getenv("APIFY_ACTOR_ID"),
		CacheTTL:         DefaultCacheTTL,
		CacheOpTimeout:   DefaultCacheOpTimeout,
		FetchTimeout:     DefaultFetchTimeout,
		PurgeSpec:        DefaultPurgeSpec,
		LogLevel:         os.Getenv("LOG_LEVEL"),
	}

	if s := os.Getenv("PORT"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 65535 {
			return nil, fmt.Errorf("PORT must be a valid port number, got %q", s)
		}
		cfg.Port = v
	}

	if cfg.DatabaseURL == "" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or REDIS_URL is required for the response cache")
	}

	var err error
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", cfg.CacheTTL); err != nil {
		return nil, err
	}
	if cfg.CacheOpTimeout, err = envDuration("CACHE_OP_TIMEOUT", cfg.CacheOpTimeout); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		return nil, err
	}

	if s := os.Getenv("CACHE_PURGE_SPEC"); s != "" {
		cfg.PurgeSpec = s
	}

	return cfg, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}
