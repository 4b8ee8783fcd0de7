package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-aggregator/internal/cache"
	"github.com/jonathan/job-aggregator/internal/provider"
	"github.com/jonathan/job-aggregator/internal/types"
)

func TestResolveAll_PartialFailure(t *testing.T) {
	healthy := &fakeAdapter{name: "jsearch", jobs: testJobs()}
	broken := &fakeAdapter{name: "theirstack", err: &provider.Error{
		Provider: "theirstack",
		Kind:     provider.KindTimeout,
		Message:  "request timed out",
	}}
	c := cache.New(newMemoryBackend(), cache.Options{TTL: time.Hour})
	r := NewResolver(provider.NewRegistry(healthy, broken), c, Options{FetchTimeout: 5 * time.Second})

	results := r.ResolveAll(context.Background(), []string{"jsearch", "theirstack"}, testQuery())
	require.Len(t, results, 2)

	assert.Equal(t, "jsearch", results[0].Provider)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, testJobs(), results[0].Jobs)
	assert.Equal(t, 1, results[0].Total)
	assert.Equal(t, types.SourceLive, results[0].Source)

	assert.Equal(t, "theirstack", results[1].Provider)
	assert.NotEmpty(t, results[1].Error, "the failed provider reports its error in its own entry")
	assert.Equal(t, string(provider.KindTimeout), results[1].ErrorKind)
	assert.Empty(t, results[1].Jobs)
}

func TestResolveAll_DefaultsToEveryRegisteredProvider(t *testing.T) {
	a := &fakeAdapter{name: "jsearch", jobs: testJobs()}
	b := &fakeAdapter{name: "linkedin", jobs: testJobs()}
	c := cache.New(newMemoryBackend(), cache.Options{TTL: time.Hour})
	r := NewResolver(provider.NewRegistry(a, b), c, Options{FetchTimeout: 5 * time.Second})

	results := r.ResolveAll(context.Background(), nil, testQuery())
	require.Len(t, results, 2)
	assert.Equal(t, "jsearch", results[0].Provider)
	assert.Equal(t, "linkedin", results[1].Provider)
	assert.EqualValues(t, 1, a.calls.Load())
	assert.EqualValues(t, 1, b.calls.Load())
}

func TestResolveAll_PreservesInputOrder(t *testing.T) {
	adapters := []provider.Adapter{
		&fakeAdapter{name: "jsearch", jobs: testJobs()},
		&fakeAdapter{name: "theirstack", jobs: testJobs()},
		&fakeAdapter{name: "linkedin", jobs: testJobs()},
	}
	c := cache.New(newMemoryBackend(), cache.Options{TTL: time.Hour})
	r := NewResolver(provider.NewRegistry(adapters...), c, Options{FetchTimeout: 5 * time.Second})

	order := []string{"linkedin", "jsearch", "theirstack"}
	results := r.ResolveAll(context.Background(), order, testQuery())
	require.Len(t, results, 3)
	for i, name := range order {
		assert.Equal(t, name, results[i].Provider)
	}
}

func TestResolveAll_UnknownProviderAnnotatesItsEntry(t *testing.T) {
	healthy := &fakeAdapter{name: "jsearch", jobs: testJobs()}
	c := cache.New(newMemoryBackend(), cache.Options{TTL: time.Hour})
	r := NewResolver(provider.NewRegistry(healthy), c, Options{FetchTimeout: 5 * time.Second})

	results := r.ResolveAll(context.Background(), []string{"jsearch", "monster"}, testQuery())
	require.Len(t, results, 2)
	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[1].Error)
}
