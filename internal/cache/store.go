package cache

import (
	"context"
	"time"

	"github.com/jonathan/job-aggregator/internal/logging"
	"github.com/jonathan/job-aggregator/internal/types"
)

// Entry is one cached provider response. Entries are immutable once written;
// a refresh writes a new entry with the same key.
type Entry struct {
	Key       string
	Provider  string
	Jobs      []types.Job
	CreatedAt time.Time
}

// Backend is the durable key/value store behind the cache. Get returns
// (nil, nil) when no entry exists; staleness is the Cache's concern, not the
// backend's.
type Backend interface {
	Get(ctx context.Context, provider, key string) (*Entry, error)
	Put(ctx context.Context, entry *Entry) error
}

// Cache fronts a Backend with TTL staleness, a bounded per-operation
// timeout, and full error absorption. The cache is an optimization, never a
// correctness dependency: every failure path turns into a miss or a no-op.
type Cache struct {
	backend   Backend
	ttl       time.Duration
	opTimeout time.Duration
	log       *logging.Logger
	now       func() time.Time
}

// Options tunes a Cache. Zero values fall back to the defaults below.
type Options struct {
	TTL       time.Duration // entry max age, default 60m
	OpTimeout time.Duration // per-operation bound, default 5s
	Logger    *logging.Logger
	Now       func() time.Time // test hook
}

const (
	defaultTTL       = 60 * time.Minute
	defaultOpTimeout = 5 * time.Second
)

// New creates a Cache over the given backend.
func New(backend Backend, opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		backend:   backend,
		ttl:       opts.TTL,
		opTimeout: opts.OpTimeout,
		log:       opts.Logger,
		now:       opts.Now,
	}
}

// Get returns the cached jobs for key if a fresh entry exists. A missing
// entry, a stale entry, a backend error, and a timeout all look identical to
// the caller: a miss.
func (c *Cache) Get(ctx context.Context, provider, key string) ([]types.Job, bool) {
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	entry, err := c.backend.Get(opCtx, provider, key)
	if err != nil {
		c.log.Warn("cache get failed", "provider", provider, "error", err)
		return nil, false
	}
	if entry == nil {
		return nil, false
	}
	if c.now().Sub(entry.CreatedAt) > c.ttl {
		// Expired; treat as miss. The stale row is superseded by the next
		// successful fetch and eventually purged by the scheduler.
		return nil, false
	}
	return entry.Jobs, true
}

// Put stores a provider response. Best-effort: errors are logged and
// swallowed so a cache outage never fails a request that already has its
// jobs.
func (c *Cache) Put(ctx context.Context, provider, key string, jobs []types.Job) {
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	entry := &Entry{
		Key:       key,
		Provider:  provider,
		Jobs:      jobs,
		CreatedAt: c.now(),
	}
	if err := c.backend.Put(opCtx, entry); err != nil {
		c.log.Warn("cache put failed", "provider", provider, "error", err)
	}
}

// TTL reports the configured entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }
