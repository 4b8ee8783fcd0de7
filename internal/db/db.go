// Package db provides PostgreSQL access for the job response cache.
//
// Expected table:
//
//	CREATE TABLE job_cache (
//	  provider   text        NOT NULL,
//	  cache_key  text        NOT NULL,
//	  payload    jsonb       NOT NULL,
//	  created_at timestamptz NOT NULL DEFAULT now(),
//	  PRIMARY KEY (provider, cache_key)
//	);
//	CREATE INDEX idx_job_cache_created_at ON job_cache(created_at);
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// CacheRow is one row of the job_cache table.
type CacheRow struct {
	Provider  string
	CacheKey  string
	Payload   []byte
	CreatedAt time.Time
}

// GetCacheRow retrieves the newest cache row for (provider, key).
// Returns (nil, nil) when no row exists.
func (db *DB) GetCacheRow(ctx context.Context, provider, key string) (*CacheRow, error) {
	row := &CacheRow{Provider: provider, CacheKey: key}
	err := db.pool.QueryRow(ctx,
		`SELECT payload, created_at FROM job_cache
		 WHERE provider = $1 AND cache_key = $2`,
		provider, key,
	).Scan(&row.Payload, &row.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache row: %w", err)
	}
	return row, nil
}

// UpsertCacheRow inserts or replaces the cache row for (provider, key).
// Last writer wins; the write is a single statement and therefore atomic
// from the caller's point of view.
func (db *DB) UpsertCacheRow(ctx context.Context, row *CacheRow) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_cache (provider, cache_key, payload, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (provider, cache_key)
		 DO UPDATE SET payload = $3, created_at = $4`,
		row.Provider, row.CacheKey, row.Payload, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cache row: %w", err)
	}
	return nil
}

// PurgeExpired deletes cache rows older than maxAge and reports how many
// rows were removed.
func (db *DB) PurgeExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM job_cache WHERE created_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache rows: %w", err)
	}
	return tag.RowsAffected(), nil
}
