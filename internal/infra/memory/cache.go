// Package memory provides an in-process domain.Cache bounded by entry count.
package memory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultMaxEntries is used when a non-positive size is configured.
const DefaultMaxEntries = 2048

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache implements the domain.Cache interface on a least-recently-used map.
// Each entry keeps its own TTL; expired entries are dropped when read.
type Cache struct {
	entries *lru.Cache[string, entry]
	logger  *zap.Logger
	now     func() time.Time
}

// NewCache creates a new in-process cache holding at most maxEntries values.
func NewCache(maxEntries int, logger *zap.Logger) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	entries, err := lru.New[string, entry](maxEntries)
	if err != nil {
		return nil, err
	}

	return &Cache{
		entries: entries,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Get retrieves a value by key. Returns nil if the key is missing or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.entries.Remove(key)
		return nil, nil
	}
	return e.value, nil
}

// Set stores a value with the given TTL. A non-positive TTL never expires.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	if evicted := c.entries.Add(key, e); evicted {
		c.logger.Debug("memory cache evicted oldest entry", zap.Int("len", c.entries.Len()))
	}
	return nil
}

// Delete removes a value by key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Clear removes all cached values.
func (c *Cache) Clear(_ context.Context) error {
	n := c.entries.Len()
	c.entries.Purge()
	c.logger.Info("memory cache cleared", zap.Int("key_count", n))
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	return c.entries.Len()
}
