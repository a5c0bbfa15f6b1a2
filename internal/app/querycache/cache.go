// Package querycache serves query results from a byte-level cache with a
// freshness window, stale fallback and request coalescing.
package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/metrics"
)

// Config controls entry lifetimes.
type Config struct {
	// DegradedTTL replaces the caller's TTL for values that report Degraded.
	DegradedTTL time.Duration

	// StaleRetention is how long an entry is kept past its freshness window
	// so it can still be served when a refresh fails.
	StaleRetention time.Duration
}

// Degradable is implemented by values that may be cached for a shorter time.
type Degradable interface {
	Degraded() bool
}

// envelope is the stored form of every entry.
type envelope struct {
	StoredAt   time.Time       `json:"stored_at"`
	StaleAfter time.Time       `json:"stale_after"`
	Payload    json.RawMessage `json:"payload"`
}

// Cache coalesces concurrent fetches per key on top of a domain.Cache.
type Cache struct {
	store   domain.Cache
	cfg     Config
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a new Cache. m may be nil.
func New(store domain.Cache, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Cache {
	return &Cache{
		store:   store,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// DetailKey is the entry of one project detail. Search entries use domain.Query.CacheKey.
func DetailKey(id string) string { return "detail:" + id }

// VersionsKey is the entry of one filtered version listing.
func VersionsKey(id string, f domain.VersionFilter) string {
	return "versions:" + id + ":" + string(f.Loader) + ":" + f.GameVersion
}

// LoadersKey is the entry of one loader release listing.
func LoadersKey(loader domain.Loader, gameVersion string) string {
	return "loaders:" + string(loader) + ":" + gameVersion
}

// Fetch returns the value stored under key while it is fresh. Otherwise it
// calls fetch once for all concurrent callers of the same key and stores the
// result for ttl. When fetch fails and a stale entry exists, the stale value
// is returned instead of the error, except for ErrNotFound.
//
// fetch runs detached from the caller's cancellation so one caller giving up
// does not fail the others waiting on it.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	stale := c.load(ctx, key)
	if stale != nil && c.now().Before(stale.StaleAfter) {
		var v T
		if err := json.Unmarshal(stale.Payload, &v); err == nil {
			c.metrics.RecordCacheLookup(metrics.CacheHit)
			c.logger.Debug("query cache hit", zap.String("key", key))
			return v, nil
		}
		stale = nil
	}
	c.metrics.RecordCacheLookup(metrics.CacheMiss)

	ch := c.group.DoChan(key, func() (any, error) {
		detached := context.WithoutCancel(ctx)

		// A flight that finished just before this one may have refreshed the key.
		if env := c.load(detached, key); env != nil && c.now().Before(env.StaleAfter) {
			return []byte(env.Payload), nil
		}

		v, err := fetch(detached)
		if err != nil {
			return nil, err
		}
		return c.save(detached, key, v, ttl)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}

	if res.Shared {
		c.metrics.RecordCacheLookup(metrics.CacheCoalesced)
	}

	if res.Err != nil {
		if stale == nil || errors.Is(res.Err, domain.ErrNotFound) {
			return zero, res.Err
		}

		var v T
		if err := json.Unmarshal(stale.Payload, &v); err != nil {
			return zero, res.Err
		}
		c.metrics.RecordCacheLookup(metrics.CacheStale)
		c.logger.Warn("serving stale entry after refresh failed",
			zap.String("key", key),
			zap.Time("stored_at", stale.StoredAt),
			zap.Error(res.Err),
		)
		return v, nil
	}

	var v T
	if err := json.Unmarshal(res.Val.([]byte), &v); err != nil {
		return zero, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return v, nil
}

// Refresh fetches and stores key whether or not the current entry is fresh.
// A Fetch already in flight for key is joined instead. On failure the existing
// entry is left untouched.
func Refresh[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) error {
	ch := c.group.DoChan(key, func() (any, error) {
		detached := context.WithoutCancel(ctx)

		v, err := fetch(detached)
		if err != nil {
			return nil, err
		}
		return c.save(detached, key, v, ttl)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// Delete drops one entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Clear drops every entry.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// load reads the envelope under key. Read and decode failures count as a miss.
func (c *Cache) load(ctx context.Context, key string) *envelope {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("query cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if data == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &env
}

// save encodes v, writes it under key and returns the encoded payload.
// A failed write is logged; the fetched value is still returned.
func (c *Cache) save(ctx context.Context, key string, v any, ttl time.Duration) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}

	if d, ok := v.(Degradable); ok && d.Degraded() && c.cfg.DegradedTTL > 0 {
		ttl = c.cfg.DegradedTTL
	}

	now := c.now()
	data, err := json.Marshal(envelope{
		StoredAt:   now,
		StaleAfter: now.Add(ttl),
		Payload:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}

	if err := c.store.Set(ctx, key, data, ttl+c.cfg.StaleRetention); err != nil {
		c.logger.Warn("query cache write failed", zap.String("key", key), zap.Error(err))
	} else {
		c.logger.Debug("query cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	}

	return payload, nil
}
