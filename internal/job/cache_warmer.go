// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"content-discovery-service/internal/domain"
	"content-discovery-service/pkg/locker"
)

const (
	warmLockKey  = "cache-warm"
	purgeLockKey = "cache-purge"
)

// Warmer refreshes the landing queries.
// Implementations: internal/app/service.DiscoveryService
type Warmer interface {
	Warm(ctx context.Context, types []domain.ContentType, pageSize int) error
}

// Purger removes expired cache rows. Only table-backed caches need one.
// Implementations: internal/infra/sqlstore.Cache
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// WarmerConfig holds cache warmer configuration.
type WarmerConfig struct {
	Interval     time.Duration
	Timeout      time.Duration
	OnStartup    bool
	PageSize     int
	ContentTypes []domain.ContentType
}

// CacheWarmer periodically refreshes the landing queries before their cache
// entries expire, so the first visitor after expiry is not the one waiting on
// the registries. A distributed lock keeps it to one instance per interval.
type CacheWarmer struct {
	warmer Warmer // may be nil
	purger Purger // may be nil
	locker locker.DistributedLocker
	cfg    WarmerConfig
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCacheWarmer creates a new CacheWarmer. Either warmer or purger may be
// nil to run only the other step.
func NewCacheWarmer(
	warmer Warmer,
	purger Purger,
	cfg WarmerConfig,
	logger *zap.Logger,
	l locker.DistributedLocker,
) *CacheWarmer {
	return &CacheWarmer{
		warmer: warmer,
		purger: purger,
		locker: l,
		cfg:    cfg,
		logger: logger,
	}
}

// Start begins the background loop.
func (w *CacheWarmer) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.logger.Info("starting cache warmer",
		zap.Duration("interval", w.cfg.Interval),
		zap.Bool("run_on_startup", w.cfg.OnStartup),
		zap.Any("content_types", w.cfg.ContentTypes),
	)

	w.wg.Add(1)
	go w.run()
}

// Stop cancels the loop and waits for a running refresh to return.
func (w *CacheWarmer) Stop() {
	w.logger.Info("stopping cache warmer")
	w.cancel()
	w.wg.Wait()
	w.logger.Info("cache warmer stopped")
}

func (w *CacheWarmer) run() {
	defer w.wg.Done()

	if w.cfg.OnStartup {
		w.tick(w.ctx)
	}

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.tick(w.ctx)
		}
	}
}

func (w *CacheWarmer) tick(ctx context.Context) {
	w.warm(ctx)
	w.purge(ctx)
}

// warm refreshes the landing queries under a cooldown lock: on success the
// lock is left to expire after one interval so no other instance repeats the
// work; on failure it is released so another instance can retry at once.
func (w *CacheWarmer) warm(ctx context.Context) {
	if w.warmer == nil {
		return
	}

	acquired, err := w.locker.Acquire(ctx, warmLockKey, w.cfg.Interval)
	if err != nil {
		w.logger.Error("failed to acquire warm lock", zap.Error(err))
		return
	}
	if !acquired {
		w.logger.Debug("another instance is warming the cache, skipping")
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	if err := w.warmer.Warm(runCtx, w.cfg.ContentTypes, w.cfg.PageSize); err != nil {
		if err := w.locker.Release(context.WithoutCancel(ctx), warmLockKey); err != nil {
			w.logger.Error("failed to release warm lock", zap.Error(err))
		}
		w.logger.Warn("cache warm failed, lock released for retry", zap.Error(err))
		return
	}

	w.logger.Info("cache warmed, lock held for cooldown", zap.Duration("cooldown", w.cfg.Interval))
}

func (w *CacheWarmer) purge(ctx context.Context) {
	if w.purger == nil {
		return
	}

	ran, err := locker.WithLock(ctx, w.locker, purgeLockKey, w.cfg.Timeout, func(ctx context.Context) error {
		n, err := w.purger.PurgeExpired(ctx)
		if err == nil && n > 0 {
			w.logger.Info("purged expired cache entries", zap.Int64("count", n))
		}
		return err
	})
	if err != nil {
		w.logger.Error("cache purge failed", zap.Error(err))
		return
	}
	if !ran {
		w.logger.Debug("another instance is purging the cache, skipping")
	}
}
