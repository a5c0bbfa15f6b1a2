// Package main is the entry point for the content-discovery-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"content-discovery-service/internal/bootstrap"
	"content-discovery-service/internal/config"
	"content-discovery-service/internal/job"
	"content-discovery-service/internal/logger"
	"content-discovery-service/internal/metrics"
	"content-discovery-service/internal/transport/httpserver"
	"content-discovery-service/internal/transport/httpserver/handler"
	"content-discovery-service/internal/validator"
	"content-discovery-service/pkg/locker"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger, cfg.Sentry)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting content-discovery-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	ctx := context.Background()

	// Metrics
	var gatherer prometheus.Gatherer
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err = metrics.New(reg)
		if err != nil {
			log.Fatal("failed to register metrics", zap.Error(err))
		}
		gatherer = reg
	}

	// Cache backend
	backend, err := bootstrap.OpenCache(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal("failed to open cache backend", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("closing cache backend", zap.Error(err))
		}
	}()

	// Discovery service
	svc := bootstrap.NewDiscoveryService(cfg, backend.Store, m, log.Logger)
	log.Info("registries active", zap.Any("sources", svc.Sources()))

	warmTypes, err := bootstrap.ContentTypes(cfg.Warmer.ContentTypes)
	if err != nil {
		log.Fatal("invalid warmer content types", zap.Error(err))
	}

	// Distributed locker: shared through Redis when the cache lives there,
	// otherwise local to this process
	var distLocker locker.DistributedLocker = locker.NewLocalLocker()
	if backend.Redis != nil {
		distLocker = locker.NewRedisLocker(backend.Redis, cfg.Cache.KeyPrefix, log.Logger)
	}

	// Cache warmer and expired-row purge
	var warmer job.Warmer
	if cfg.Warmer.Enabled {
		warmer = svc
	}
	var purger job.Purger
	if backend.Purger != nil {
		purger = backend.Purger
	}
	var scheduler *job.CacheWarmer
	if warmer != nil || purger != nil {
		scheduler = job.NewCacheWarmer(warmer, purger, job.WarmerConfig{
			Interval:     cfg.Warmer.Interval,
			Timeout:      cfg.Warmer.Timeout,
			OnStartup:    cfg.Warmer.OnStartup,
			PageSize:     cfg.Warmer.PageSize,
			ContentTypes: warmTypes,
		}, log.Named("warmer"), distLocker)
		scheduler.Start()
	}

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:        cfg.App.Port,
			BodyLimit:   1024 * 1024, // 1MB
			MetricsPath: cfg.Metrics.Path,
			Warm: handler.WarmDefaults{
				ContentTypes: warmTypes,
				PageSize:     cfg.Warmer.PageSize,
			},
		},
		svc,
		backend.Ready,
		gatherer,
		validator.New(),
		log.Logger,
	)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if scheduler != nil {
			scheduler.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Error("server error", zap.Error(err))
	}
}
