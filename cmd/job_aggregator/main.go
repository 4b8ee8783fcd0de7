// Package main provides the entry point for the job aggregator HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_aggregator",
	Short: "Job Search Aggregator HTTP API Server",
	Long:  "Job aggregator fans a normalized job-search query out to multiple third-party listing providers, caching responses and rate limiting clients along the way.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
