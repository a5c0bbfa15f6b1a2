package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is used when a query does not specify one.
	DefaultPageSize = 20

	// MaxPageSize is the largest page CurseForge serves in one request.
	MaxPageSize = 50

	maxTermLength = 200
)

// Query is one abstract search across the registries.
type Query struct {
	// Text search
	Term string

	// Filters
	GameVersion string
	Loader      Loader
	Category    string
	ContentType ContentType
	Scope       SourceScope

	// Sorting
	Sort SortKey

	// Pagination
	Page     int // 1-based
	PageSize int
}

// DefaultQuery returns a query for the first page of popular mods across all sources.
func DefaultQuery() Query {
	return Query{
		ContentType: ContentTypeMod,
		Scope:       ScopeAll,
		Sort:        SortPopularity,
		Page:        1,
		PageSize:    DefaultPageSize,
	}
}

// Normalize canonicalizes free-form fields and corrects out-of-range pagination.
// Two queries that normalize to the same value share a cache entry.
func (q *Query) Normalize() {
	q.Term = strings.Join(strings.Fields(q.Term), " ")
	q.GameVersion = strings.TrimSpace(q.GameVersion)
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))
	q.Loader = Loader(strings.ToLower(strings.TrimSpace(string(q.Loader))))

	if q.ContentType == "" {
		q.ContentType = ContentTypeMod
	}
	if q.Scope == "" {
		q.Scope = ScopeAll
	}
	if q.Sort == "" {
		q.Sort = SortPopularity
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

// Validate rejects queries with values outside the unified vocabulary or with
// contradictory filters. Every error wraps ErrInvalidQuery.
func (q *Query) Validate() error {
	if len(q.Term) > maxTermLength {
		return fmt.Errorf("%w: search term longer than %d characters", ErrInvalidQuery, maxTermLength)
	}
	if _, err := ParseLoader(string(q.Loader)); err != nil {
		return err
	}
	if !slices.Contains(ContentTypes(), q.ContentType) {
		return fmt.Errorf("%w: unknown content type %q", ErrInvalidQuery, q.ContentType)
	}
	if !slices.Contains(SortKeys(), q.Sort) {
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidQuery, q.Sort)
	}
	switch q.Scope {
	case ScopeAll, ScopeCurseForge, ScopeModrinth:
	default:
		return fmt.Errorf("%w: unknown source scope %q", ErrInvalidQuery, q.Scope)
	}
	if q.Loader != "" && !q.ContentType.SupportsLoader() {
		return fmt.Errorf("%w: %s projects have no loader, cannot filter by %q", ErrInvalidQuery, q.ContentType, q.Loader)
	}
	return nil
}

// Offset is the position of the first item of the requested page in the combined listing.
func (q *Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// CacheKey identifies the normalized query. Every field takes part, including page and sort.
func (q *Query) CacheKey() string {
	canonical := strings.Join([]string{
		"term=" + strings.ToLower(q.Term),
		"gv=" + q.GameVersion,
		"loader=" + string(q.Loader),
		"category=" + q.Category,
		"type=" + string(q.ContentType),
		"scope=" + string(q.Scope),
		"sort=" + string(q.Sort),
		"page=" + strconv.Itoa(q.Page),
		"size=" + strconv.Itoa(q.PageSize),
	}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return "search:" + hex.EncodeToString(sum[:16])
}

// SourceQuery is the slice of a Query that one registry is asked to serve.
type SourceQuery struct {
	Term        string
	GameVersion string
	Loader      Loader
	Category    string
	ContentType ContentType
	Sort        SortKey
	Offset      int
	Limit       int
}

// SourcePage is one registry's answer to a SourceQuery.
type SourcePage struct {
	Items []*ContentSummary
	Total int64 // total hits the registry reports for the query
}

// QueryResult holds one merged page of results.
type QueryResult struct {
	Items    []*ContentSummary `json:"items"`
	Total    int64             `json:"total"` // best-effort sum over sources that answered
	HasMore  bool              `json:"has_more"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`

	// UnavailableSources lists active sources whose request failed.
	UnavailableSources []Source `json:"unavailable_sources,omitempty"`
}

// Degraded reports whether any active source failed to contribute.
func (r *QueryResult) Degraded() bool {
	return len(r.UnavailableSources) > 0
}
