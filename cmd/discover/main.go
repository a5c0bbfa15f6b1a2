// Package main is the entry point for the discover CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"content-discovery-service/internal/bootstrap"
	"content-discovery-service/internal/cli"
	"content-discovery-service/internal/config"
	"content-discovery-service/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Execute(ctx, build, defaultCachePath(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// build loads the configuration and opens the cache for one invocation.
// Logs go to stderr at warn so they never mix with command output.
func build(ctx context.Context, opts cli.Options) (*cli.Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.Cache.Backend = opts.CacheBackend
	if opts.CachePath != "" {
		cfg.SQLite.Path = opts.CachePath
	}
	cfg.Logger = config.LoggerConfig{Level: "warn", Format: "console", Output: "stderr"}

	log, err := logger.New(cfg.Logger, cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	backend, err := bootstrap.OpenCache(ctx, cfg, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s cache: %w", cfg.Cache.Backend, err)
	}

	svc := bootstrap.NewDiscoveryService(cfg, backend.Store, nil, log.Logger)

	return &cli.Runtime{
		Service: svc,
		Close: func() error {
			// nothing else purges the cache file between runs
			if backend.Purger != nil {
				if _, err := backend.Purger.PurgeExpired(context.WithoutCancel(ctx)); err != nil {
					log.Warn("purging expired cache entries failed", zap.Error(err))
				}
			}
			err := backend.Close()
			_ = log.Sync()
			return err
		},
	}, nil
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "content-discovery", "cache.db")
}
