package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/clearview-uk/clearview/internal/benchmark"
	"github.com/clearview-uk/clearview/internal/config"
	"github.com/clearview-uk/clearview/internal/ixbrl"
	"github.com/clearview-uk/clearview/internal/registry"
	"github.com/clearview-uk/clearview/internal/service"
	"github.com/clearview-uk/clearview/internal/storage"
)

// timeRounding keeps run durations readable in log output.
const timeRounding = 10 * time.Millisecond

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/clearview/clearview.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadBenchmarks loads the sector benchmark table named by the flag or
// config. A missing path is not an error: scoring then runs without the
// MODELLED tier and the balance-sheet fallback.
func loadBenchmarks(flagPath string) (*benchmark.Table, error) {
	path := flagPath
	if path == "" {
		path = viper.GetString("benchmarks.path")
	}
	if path == "" {
		return nil, nil
	}

	table, err := benchmark.Load(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load benchmarks: %w", err)
	}
	return table, nil
}

// newResolver builds a tag resolver, merging any operator-supplied alias
// additions from config over the built-in concept aliases.
func newResolver() (*ixbrl.Resolver, error) {
	resolver := ixbrl.NewResolver()

	aliasPath := viper.GetString("aliases.path")
	if aliasPath == "" {
		return resolver, nil
	}

	extra, err := ixbrl.LoadAliases(config.ExpandPath(aliasPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}
	resolver.AddAliases(extra)
	return resolver, nil
}

// initRegistry builds the optional local-disk registry client. Returns nil
// when no filings directory is configured.
func initRegistry(flagDir string) (registry.Client, error) {
	dir := flagDir
	if dir == "" {
		dir = viper.GetString("filings.dir")
	}
	if dir == "" {
		return nil, nil
	}

	client, err := registry.NewFileClient(config.ExpandPath(dir))
	if err != nil {
		return nil, err
	}

	rps := viper.GetFloat64("registry.requests_per_second")
	if rps <= 0 {
		rps = registry.DefaultRequestsPerSecond
	}
	return registry.NewRateLimited(client, rps), nil
}
