// Package migrations provides database migrations using gormigrate.
// Every migration must run on both PostgreSQL and SQLite.
package migrations

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrations returns all database migrations.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		createCacheEntries(),
	}
}

// Run executes all pending migrations.
func Run(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations())
	return m.Migrate()
}

// Rollback rolls back the last migration.
func Rollback(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations())
	return m.RollbackLast()
}

// createCacheEntries creates the cache_entries table. The model is frozen here
// so later changes to the live model do not alter this migration.
func createCacheEntries() *gormigrate.Migration {
	type cacheEntry struct {
		CacheKey  string `gorm:"type:varchar(255);primaryKey"`
		Value     []byte `gorm:"not null"`
		ExpiresAt int64  `gorm:"not null;default:0;index"`
		UpdatedAt time.Time
	}

	return &gormigrate.Migration{
		ID: "001_create_cache_entries",
		Migrate: func(tx *gorm.DB) error {
			return tx.Table("cache_entries").Migrator().CreateTable(&cacheEntry{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("cache_entries")
		},
	}
}
