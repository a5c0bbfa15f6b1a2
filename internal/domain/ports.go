package domain

import (
	"context"
	"time"
)

// SourceAdapter is one content registry.
// Implementations: internal/infra/registry/curseforge/, internal/infra/registry/modrinth/
//
// Adapters only translate requests and responses; they never combine data from
// another source. Not-found records are reported with an error wrapping
// ErrNotFound, every other failure with a *SourceError.
type SourceAdapter interface {
	// Source returns the registry this adapter talks to.
	Source() Source

	// Search runs one page of a query against the registry.
	Search(ctx context.Context, q SourceQuery) (*SourcePage, error)

	// FetchDetail retrieves the full project record for a native id.
	FetchDetail(ctx context.Context, nativeID string) (*ContentDetail, error)

	// FetchVersions lists the versions of a project. Filters the registry
	// cannot express are ignored, so results may be only partially filtered.
	FetchVersions(ctx context.Context, nativeID string, filter VersionFilter) ([]*Version, error)

	// HealthCheck verifies the registry is reachable.
	HealthCheck(ctx context.Context) error
}

// LoaderVersionResolver answers which loader releases exist for a game version.
// Implementations: internal/infra/loadermeta/
type LoaderVersionResolver interface {
	LoaderVersions(ctx context.Context, loader Loader, gameVersion string) ([]LoaderVersion, error)
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/memory/, internal/infra/redis/, internal/infra/sqlstore/
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
