package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	PerMinute       int // short-window limit
	PerHour         int // long-window limit
	CleanupInterval time.Duration
	ExemptPaths     map[string]bool // exact-match paths that bypass limiting
}

// DefaultConfig returns the built-in limits.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		PerMinute:       60,
		PerHour:         500,
		CleanupInterval: 5 * time.Minute,
		ExemptPaths:     defaultExemptPaths(),
	}
}

// LoadConfig loads rate limiting configuration from environment variables,
// falling back to the defaults.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = getEnvBool("RATE_LIMIT_ENABLED", cfg.Enabled)
	cfg.PerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.PerMinute)
	cfg.PerHour = getEnvInt("RATE_LIMIT_PER_HOUR", cfg.PerHour)
	cfg.CleanupInterval = getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	return cfg
}

// Exempt reports whether path bypasses rate limiting.
func (c *Config) Exempt(path string) bool {
	return c.ExemptPaths[path]
}

func defaultExemptPaths() map[string]bool {
	return map[string]bool{
		"/":       true,
		"/health": true,
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
