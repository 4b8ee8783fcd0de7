package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-aggregator/internal/cache"
	"github.com/jonathan/job-aggregator/internal/config"
	"github.com/jonathan/job-aggregator/internal/db"
	"github.com/jonathan/job-aggregator/internal/logging"
	"github.com/jonathan/job-aggregator/internal/orchestrator"
	"github.com/jonathan/job-aggregator/internal/provider"
	"github.com/jonathan/job-aggregator/internal/scheduler"
	"github.com/jonathan/job-aggregator/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job search endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	log := logging.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()

	backend, database, cleanup, err := buildCacheBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	responseCache := cache.New(backend, cache.Options{
		TTL:       cfg.CacheTTL,
		OpTimeout: cfg.CacheOpTimeout,
		Logger:    log.With("component", "cache"),
	})

	registry := buildRegistry(cfg, log)
	if len(registry.Names()) == 0 {
		return fmt.Errorf("no providers configured; set at least one provider credential")
	}

	resolver := orchestrator.NewResolver(registry, responseCache, orchestrator.Options{
		FetchTimeout: cfg.FetchTimeout,
		Logger:       log.With("component", "orchestrator"),
	})

	if database != nil {
		purger := scheduler.New(database, cfg.CacheTTL, cfg.PurgeSpec, log.With("component", "scheduler"))
		if err := purger.Start(ctx); err != nil {
			return err
		}
		defer purger.Stop()
	}

	srv, err := server.New(server.Config{
		Port:     cfg.Port,
		APIKey:   cfg.APIKey,
		Resolver: resolver,
		Registry: registry,
		Logger:   log.With("component", "server"),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// buildCacheBackend prefers Redis when configured, falling back to Postgres.
// The returned *db.DB is non-nil only for Postgres, where the purge
// scheduler needs it.
func buildCacheBackend(ctx context.Context, cfg *config.Config) (cache.Backend, *db.DB, func(), error) {
	if cfg.RedisURL != "" {
		backend, err := cache.NewRedisBackend(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, nil, nil, err
		}
		return backend, nil, func() { _ = backend.Close() }, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	return cache.NewPostgresBackend(database), database, database.Close, nil
}

// buildRegistry registers every adapter whose credentials are present.
// LinkedIn needs none.
func buildRegistry(cfg *config.Config, log *logging.Logger) *provider.Registry {
	var adapters []provider.Adapter

	if cfg.RapidAPIKey != "" {
		adapters = append(adapters, provider.NewJSearchAdapter(cfg.RapidAPIKey, ""))
	} else {
		log.Warn("RAPID_API_KEY not set; jsearch provider disabled")
	}

	if cfg.TheirStackAPIKey != "" {
		adapters = append(adapters, provider.NewTheirStackAdapter(cfg.TheirStackAPIKey, ""))
	} else {
		log.Warn("THEIRSTACK_API_KEY not set; theirstack provider disabled")
	}

	if cfg.ApifyAPIKey != "" && cfg.ApifyActorID != "" {
		adapters = append(adapters, provider.NewIndeedAdapter(cfg.ApifyAPIKey, cfg.ApifyActorID, ""))
	} else {
		log.Warn("APIFY_API_KEY / APIFY_ACTOR_ID not set; indeed provider disabled")
	}

	adapters = append(adapters, provider.NewLinkedInAdapter(""))

	return provider.NewRegistry(adapters...)
}
