package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-aggregator/internal/config"
	"github.com/jonathan/job-aggregator/internal/db"
)

var purgeMaxAge time.Duration

var purgeCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Delete expired cache rows and exit",
	Long:  `One-shot deletion of job_cache rows older than the cache TTL. The serve command also runs this on a schedule; purge-cache exists for manual cleanup and cron-outside-the-process setups.`,
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().DurationVar(&purgeMaxAge, "max-age", 0, "Delete rows older than this (default: CACHE_TTL)")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("purge-cache requires DATABASE_URL (redis entries expire on their own)")
	}

	maxAge := purgeMaxAge
	if maxAge <= 0 {
		maxAge = cfg.CacheTTL
	}

	database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	removed, err := database.PurgeExpired(cmd.Context(), maxAge)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d expired cache row(s)\n", removed)
	return nil
}
