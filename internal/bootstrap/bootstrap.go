// Package bootstrap wires configuration into the cache backend and the
// discovery service shared by the API server and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"content-discovery-service/internal/app/querycache"
	"content-discovery-service/internal/app/service"
	"content-discovery-service/internal/config"
	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/infra/memory"
	rediscache "content-discovery-service/internal/infra/redis"
	"content-discovery-service/internal/infra/registry/sources"
	"content-discovery-service/internal/infra/sqlstore"
	"content-discovery-service/internal/metrics"
)

// Backend is an opened cache store and the handles needed to probe and close it.
type Backend struct {
	Name  string
	Store domain.Cache

	// Purger is set for table-backed stores, whose expired rows are never
	// dropped by the database itself.
	Purger *sqlstore.Cache

	// Redis is set for the redis backend so the distributed lock can share it.
	Redis redis.UniversalClient

	ready   func(ctx context.Context) error
	closers []func() error
}

// Ready reports whether the backend can serve requests.
func (b *Backend) Ready(ctx context.Context) error {
	if b.ready == nil {
		return nil
	}
	return b.ready(ctx)
}

// Close releases the backend connections.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// OpenCache opens the cache backend selected by cfg.Cache.Backend.
func OpenCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	b := &Backend{Name: cfg.Cache.Backend}

	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		store, err := memory.NewCache(cfg.Cache.MemoryMaxEntries, logger)
		if err != nil {
			return nil, err
		}
		b.Store = store

	case config.CacheBackendRedis:
		client, err := rediscache.NewClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		b.Store = rediscache.NewCache(client, logger, cfg.Cache.KeyPrefix)
		b.Redis = client
		b.ready = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		b.closers = append(b.closers, client.Close)

	case config.CacheBackendPostgres, config.CacheBackendSQLite:
		var (
			db  *gorm.DB
			err error
		)
		if cfg.Cache.Backend == config.CacheBackendPostgres {
			db, err = sqlstore.OpenPostgres(cfg.Database, logger)
		} else {
			db, err = sqlstore.OpenSQLite(cfg.SQLite.Path, logger)
		}
		if err != nil {
			return nil, err
		}
		store := sqlstore.NewCache(db, cfg.Cache.KeyPrefix, logger)
		b.Store = store
		b.Purger = store
		b.ready = func(context.Context) error { return sqlstore.HealthCheck(db) }
		b.closers = append(b.closers, func() error { return sqlstore.Close(db) })

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	logger.Info("cache backend opened", zap.String("backend", b.Name))
	return b, nil
}

// NewDiscoveryService builds the registry adapters, the loader resolver and
// the query cache around store. m may be nil.
func NewDiscoveryService(cfg *config.Config, store domain.Cache, m *metrics.Metrics, logger *zap.Logger) *service.DiscoveryService {
	adapters := sources.NewAdapters(cfg.Registries, logger)
	if len(adapters) == 0 {
		logger.Warn("no registry is active, every search will fail")
	}

	var loaders domain.LoaderVersionResolver
	if r := sources.NewLoaderResolver(cfg.LoaderMeta, logger); r != nil {
		loaders = r
	}

	cache := querycache.New(store, querycache.Config{
		DegradedTTL:    cfg.Cache.DegradedTTL,
		StaleRetention: cfg.Cache.StaleRetention,
	}, m, logger.Named("querycache"))

	return service.NewDiscoveryService(adapters, loaders, cache, service.TTLs{
		Search:   cfg.Cache.SearchTTL,
		Detail:   cfg.Cache.DetailTTL,
		Versions: cfg.Cache.VersionsTTL,
		Loaders:  cfg.Cache.LoadersTTL,
	}, m, logger.Named("discovery"))
}

// ContentTypes converts configured content type names, rejecting unknown ones.
func ContentTypes(names []string) ([]domain.ContentType, error) {
	types := make([]domain.ContentType, 0, len(names))
	for _, name := range names {
		t := domain.ContentType(strings.ToLower(strings.TrimSpace(name)))
		if !slices.Contains(domain.ContentTypes(), t) {
			return nil, fmt.Errorf("%w: unknown content type %q", domain.ErrInvalidQuery, name)
		}
		types = append(types, t)
	}
	return types, nil
}
