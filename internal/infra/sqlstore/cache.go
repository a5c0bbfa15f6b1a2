package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cache implements the domain.Cache interface on a cache_entries table.
// Expired rows are invisible to Get and removed by PurgeExpired.
type Cache struct {
	db        *gorm.DB
	keyPrefix string
	logger    *zap.Logger
	now       func() time.Time
}

// NewCache creates a new SQL-backed cache. The schema must already be migrated.
func NewCache(db *gorm.DB, keyPrefix string, logger *zap.Logger) *Cache {
	return &Cache{
		db:        db,
		keyPrefix: keyPrefix,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get retrieves a value by key. Returns nil if the key is missing or expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	var model CacheEntryModel
	err := c.db.WithContext(ctx).
		Where("cache_key = ? AND (expires_at = 0 OR expires_at > ?)", c.buildKey(key), c.now().UnixMilli()).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cache entry %s: %w", key, err)
	}

	return model.Value, nil
}

// Set upserts a value with the given TTL. A non-positive TTL never expires.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	model := CacheEntryModel{
		CacheKey:  c.buildKey(key),
		Value:     value,
		UpdatedAt: c.now(),
	}
	if ttl > 0 {
		model.ExpiresAt = c.now().Add(ttl).UnixMilli()
	}

	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("setting cache entry %s: %w", key, err)
	}

	return nil
}

// Delete removes a value by key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.db.WithContext(ctx).
		Where("cache_key = ?", c.buildKey(key)).
		Delete(&CacheEntryModel{}).Error
	if err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}

// Clear removes every entry under the prefix.
func (c *Cache) Clear(ctx context.Context) error {
	res := c.db.WithContext(ctx).
		Where(c.prefixMatch()).
		Delete(&CacheEntryModel{})
	if res.Error != nil {
		return fmt.Errorf("clearing cache entries: %w", res.Error)
	}

	c.logger.Info("sql cache cleared", zap.Int64("key_count", res.RowsAffected))
	return nil
}

// PurgeExpired deletes expired rows under the prefix and returns how many were removed.
func (c *Cache) PurgeExpired(ctx context.Context) (int64, error) {
	res := c.db.WithContext(ctx).
		Where(c.prefixMatch()).
		Where("expires_at <> 0 AND expires_at <= ?", c.now().UnixMilli()).
		Delete(&CacheEntryModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("purging expired cache entries: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		c.logger.Debug("purged expired cache entries", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func (c *Cache) buildKey(key string) string {
	return c.keyPrefix + ":" + key
}

func (c *Cache) prefixMatch() clause.Expr {
	return gorm.Expr("cache_key LIKE ? ESCAPE '\\'", escapeLike(c.keyPrefix)+":%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
