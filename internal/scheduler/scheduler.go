// Package scheduler wires up the cron job that periodically purges expired
// rows from the response cache.
//
// Only the Postgres backend needs this: stale rows are already invisible to
// readers (the cache treats them as misses), but without the purge the
// job_cache table would grow forever. Redis entries expire server-side.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonathan/job-aggregator/internal/db"
	"github.com/jonathan/job-aggregator/internal/logging"
)

// Scheduler wraps robfig/cron and manages the purge loop.
type Scheduler struct {
	cron   *cron.Cron
	db     *db.DB
	maxAge time.Duration
	spec   string // cron spec, e.g. "@every 1h"
	log    *logging.Logger
}

// New creates a Scheduler that deletes cache rows older than maxAge on the
// given cron spec.
func New(database *db.DB, maxAge time.Duration, spec string, log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{
		cron:   cron.New(),
		db:     database,
		maxAge: maxAge,
		spec:   spec,
		log:    log,
	}
}

// Start registers the purge job and starts the scheduler. One purge runs
// immediately so a long-stopped instance catches up without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runPurge(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("cache purge scheduler started", "spec", s.spec, "max_age", s.maxAge)

	go s.runPurge(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("cache purge scheduler stopped")
}

func (s *Scheduler) runPurge(ctx context.Context) {
	purgeCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	removed, err := s.db.PurgeExpired(purgeCtx, s.maxAge)
	if err != nil {
		s.log.Warn("cache purge failed", "error", err)
		return
	}
	s.log.Info("cache purge complete", "rows_removed", removed)
}
