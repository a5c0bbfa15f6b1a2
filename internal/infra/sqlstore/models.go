package sqlstore

import "time"

// CacheEntryModel is the GORM model for the cache_entries table.
// Expiry is unix milliseconds so comparisons behave the same on every driver.
type CacheEntryModel struct {
	CacheKey  string    `gorm:"type:varchar(255);primaryKey"`
	Value     []byte    `gorm:"not null"`
	ExpiresAt int64     `gorm:"not null;index"` // 0 never expires
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for CacheEntryModel.
func (CacheEntryModel) TableName() string {
	return "cache_entries"
}
