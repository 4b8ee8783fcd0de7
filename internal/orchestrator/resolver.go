// Package orchestrator coordinates the cache and the provider adapters for
// each (provider, query) pair.
//
// Its one hard guarantee: at most one upstream fetch is in flight per cache
// key. A burst of simultaneous requests for the same not-yet-cached query
// results in exactly one adapter call, with every waiter receiving the same
// outcome.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/job-aggregator/internal/cache"
	"github.com/jonathan/job-aggregator/internal/logging"
	"github.com/jonathan/job-aggregator/internal/provider"
	"github.com/jonathan/job-aggregator/internal/types"
)

// Result is the outcome of one resolved (provider, query) pair.
type Result struct {
	Jobs   []types.Job
	Source types.ResultSource
}

// ErrUnknownProvider reports a request for a provider that is not registered.
type ErrUnknownProvider struct {
	Provider string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown provider: %s", e.Provider)
}

// Resolver answers (provider, query) lookups from the cache when it can and
// from the adapter when it must, de-duplicating concurrent misses per key.
type Resolver struct {
	registry     *provider.Registry
	cache        *cache.Cache
	fetchTimeout time.Duration
	log          *logging.Logger

	// group is the per-key coordination table: the first caller for a key
	// becomes the leader, everyone else follows. The group releases the key
	// when the leader returns, panics included, so a key can never stay
	// stuck.
	group singleflight.Group
}

// Options tunes a Resolver.
type Options struct {
	FetchTimeout time.Duration // per-adapter-call bound, default 30s
	Logger       *logging.Logger
}

const defaultFetchTimeout = 30 * time.Second

// NewResolver creates a Resolver over the given registry and cache.
func NewResolver(registry *provider.Registry, c *cache.Cache, opts Options) *Resolver {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Resolver{
		registry:     registry,
		cache:        c,
		fetchTimeout: opts.FetchTimeout,
		log:          opts.Logger,
	}
}

// Resolve returns the jobs for (providerName, q), tagged with where they
// came from.
//
// Cache hits return immediately. On a miss, the first caller for the key
// leads the adapter fetch under the configured timeout; concurrent callers
// for the same key await the leader's outcome instead of issuing their own
// fetch. Errors are propagated identically to leader and followers and are
// never cached, so the next request retries fresh. Resolve performs no
// internal retries; callers may wrap it in their own retry policy.
//
// A caller whose ctx expires while following stops waiting and gets a
// timeout-shaped error, but the leader's fetch keeps running: its result
// still populates the cache for subsequent callers.
func (r *Resolver) Resolve(ctx context.Context, providerName string, q types.Query) (*Result, error) {
	adapter, ok := r.registry.Get(providerName)
	if !ok {
		return nil, &ErrUnknownProvider{Provider: providerName}
	}

	key := cache.Key(providerName, q)

	if jobs, hit := r.cache.Get(ctx, providerName, key); hit {
		r.log.Debug("cache hit", "provider", providerName, "key", key)
		return &Result{Jobs: jobs, Source: types.SourceCache}, nil
	}
	r.log.Debug("cache miss", "provider", providerName, "key", key)

	ch := r.group.DoChan(key, func() (any, error) {
		return r.lead(adapter, providerName, key, q)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return &Result{Jobs: res.Val.([]types.Job), Source: types.SourceLive}, nil
	case <-ctx.Done():
		// Abandon the wait, not the fetch: the leader finishes on its own
		// context and still populates the cache.
		return nil, &provider.Error{
			Provider: providerName,
			Kind:     provider.KindTimeout,
			Message:  "timed out waiting for in-flight fetch",
			Cause:    ctx.Err(),
		}
	}
}

// lead runs the single upstream fetch for a key. It deliberately uses a
// fresh context bounded by fetchTimeout rather than any one caller's: the
// leader's lifetime must not depend on whichever caller happened to arrive
// first.
func (r *Resolver) lead(adapter provider.Adapter, providerName, key string, q types.Query) ([]types.Job, error) {
	fetchCtx, cancel := context.WithTimeout(context.Background(), r.fetchTimeout)
	defer cancel()

	start := time.Now()
	jobs, err := adapter.Fetch(fetchCtx, q)
	if err != nil {
		r.log.Warn("provider fetch failed",
			"provider", providerName,
			"kind", string(provider.KindOf(err)),
			"elapsed", time.Since(start),
			"error", err)
		return nil, err
	}

	r.log.Info("provider fetch succeeded",
		"provider", providerName,
		"jobs", len(jobs),
		"elapsed", time.Since(start))

	r.cache.Put(fetchCtx, providerName, key, jobs)
	return jobs, nil
}
