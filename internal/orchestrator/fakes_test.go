package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jonathan/job-aggregator/internal/cache"
	"github.com/jonathan/job-aggregator/internal/provider"
	"github.com/jonathan/job-aggregator/internal/types"
)

// fakeAdapter is a scriptable provider.Adapter that counts its invocations.
type fakeAdapter struct {
	name  string
	calls atomic.Int64

	// fetch is invoked on every Fetch call. When nil, the adapter returns
	// jobs/err as configured.
	fetch func(ctx context.Context, q types.Query) ([]types.Job, error)
	jobs  []types.Job
	err   error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context, q types.Query) ([]types.Job, error) {
	f.calls.Add(1)
	if f.fetch != nil {
		return f.fetch(ctx, q)
	}
	return f.jobs, f.err
}

// memoryBackend is an in-memory cache.Backend for tests.
type memoryBackend struct {
	mu      sync.Mutex
	entries map[string]*cache.Entry
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{entries: make(map[string]*cache.Entry)}
}

func (m *memoryBackend) Get(_ context.Context, providerName, key string) (*cache.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[providerName+"/"+key], nil
}

func (m *memoryBackend) Put(_ context.Context, entry *cache.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Provider+"/"+entry.Key] = entry
	return nil
}

// brokenBackend fails every cache operation.
type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string, string) (*cache.Entry, error) {
	return nil, context.DeadlineExceeded
}

func (brokenBackend) Put(context.Context, *cache.Entry) error {
	return context.DeadlineExceeded
}

var _ provider.Adapter = (*fakeAdapter)(nil)
