package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultCacheOpTimeout, cfg.CacheOpTimeout)
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, DefaultPurgeSpec, cfg.PurgeSpec)
}

func TestLoad_RequiresACacheBackend(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL or REDIS_URL")
}

func TestLoad_RedisAloneSuffices(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("FETCH_TIMEOUT", "45s")
	t.Setenv("CACHE_PURGE_SPEC", "@every 10m")
	t.Setenv("API_KEY", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 45*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "@every 10m", cfg.PurgeSpec)
	assert.Equal(t, "s3cret", cfg.APIKey)
}

func TestLoad_RejectsBadPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")

	for _, port := range []string{"abc", "0", "70000", "-1"} {
		t.Setenv("PORT", port)
		_, err := Load()
		assert.Error(t, err, "port %q", port)
	}
}

func TestLoad_RejectsBadDurations(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")

	t.Setenv("CACHE_TTL", "soon")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CACHE_TTL", "-5m")
	_, err = Load()
	require.Error(t, err)
}
