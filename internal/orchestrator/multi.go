package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-aggregator/internal/provider"
	"github.com/jonathan/job-aggregator/internal/types"
)

// maxConcurrentProviders bounds the fan-out of one multi-provider request.
const maxConcurrentProviders = 4

// ResolveAll fans one query out to the named providers concurrently and
// returns one entry per provider, in input order. A provider failure
// annotates its own entry; it never aborts the others, so a multi-provider
// request degrades to partial success.
func (r *Resolver) ResolveAll(ctx context.Context, providers []string, q types.Query) []types.ProviderResult {
	if len(providers) == 0 {
		providers = r.registry.Names()
	}

	results := make([]types.ProviderResult, len(providers))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProviders)

	for i, name := range providers {
		g.Go(func() error {
			res, err := r.Resolve(gCtx, name, q)
			if err != nil {
				results[i] = types.ProviderResult{
					Provider:  name,
					Error:     err.Error(),
					ErrorKind: string(provider.KindOf(err)),
				}
				// Errors are reported per-provider, never returned from the
				// group, so one outage cannot cancel the sibling fetches.
				return nil
			}
			results[i] = types.ProviderResult{
				Provider: name,
				Jobs:     res.Jobs,
				Total:    len(res.Jobs),
				Source:   res.Source,
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
