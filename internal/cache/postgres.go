package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/job-aggregator/internal/db"
	"github.com/jonathan/job-aggregator/internal/types"
)

// PostgresBackend stores entries in the job_cache table.
type PostgresBackend struct {
	db *db.DB
}

// NewPostgresBackend wraps a connected database.
func NewPostgresBackend(database *db.DB) *PostgresBackend {
	return &PostgresBackend{db: database}
}

func (b *PostgresBackend) Get(ctx context.Context, provider, key string) (*Entry, error) {
	row, err := b.db.GetCacheRow(ctx, provider, key)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	var jobs []types.Job
	if err := json.Unmarshal(row.Payload, &jobs); err != nil {
		return nil, fmt.Errorf("corrupt cache payload for %s/%s: %w", provider, key, err)
	}
	return &Entry{
		Key:       key,
		Provider:  provider,
		Jobs:      jobs,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (b *PostgresBackend) Put(ctx context.Context, entry *Entry) error {
	payload, err := json.Marshal(entry.Jobs)
	if err != nil {
		return fmt.Errorf("failed to marshal cache payload: %w", err)
	}
	return b.db.UpsertCacheRow(ctx, &db.CacheRow{
		Provider:  entry.Provider,
		CacheKey:  entry.Key,
		Payload:   payload,
		CreatedAt: entry.CreatedAt,
	})
}
