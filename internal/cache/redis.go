package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores entries as JSON values under "jobcache:<provider>:<key>".
// Redis expires entries server-side one TTL after the Cache front would
// consider them stale, so the store cannot grow without bound even if the
// purge scheduler is not running.
type RedisBackend struct {
	client *redis.Client
	expiry time.Duration
}

// redisEntry is the stored JSON shape.
type redisEntry struct {
	Jobs      json.RawMessage `json:"jobs"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRedisBackend parses redisURL, verifies connectivity, and returns a
// backend whose keys expire after 2×ttl.
func NewRedisBackend(ctx context.Context, redisURL string, ttl time.Duration) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisBackend{client: client, expiry: 2 * ttl}, nil
}

// Close releases the underlying connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func redisKey(provider, key string) string {
	return "jobcache:" + provider + ":" + key
}

func (b *RedisBackend) Get(ctx context.Context, provider, key string) (*Entry, error) {
	raw, err := b.client.Get(ctx, redisKey(provider, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var stored redisEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("corrupt cache payload for %s/%s: %w", provider, key, err)
	}
	entry := &Entry{
		Key:       key,
		Provider:  provider,
		CreatedAt: stored.CreatedAt,
	}
	if err := json.Unmarshal(stored.Jobs, &entry.Jobs); err != nil {
		return nil, fmt.Errorf("corrupt cache payload for %s/%s: %w", provider, key, err)
	}
	return entry, nil
}

func (b *RedisBackend) Put(ctx context.Context, entry *Entry) error {
	jobs, err := json.Marshal(entry.Jobs)
	if err != nil {
		return fmt.Errorf("failed to marshal cache payload: %w", err)
	}
	raw, err := json.Marshal(redisEntry{Jobs: jobs, CreatedAt: entry.CreatedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := b.client.Set(ctx, redisKey(entry.Provider, entry.Key), raw, b.expiry).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
