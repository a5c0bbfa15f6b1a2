package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestQuery_Normalize(t *testing.T) {
	q := Query{
		Term:        "  applied   energistics ",
		GameVersion: " 1.20.1 ",
		Loader:      " Forge",
		Category:    "Storage ",
		Page:        0,
		PageSize:    500,
	}
	q.Normalize()

	if q.Term != "applied energistics" {
		t.Errorf("expected collapsed term, got %q", q.Term)
	}
	if q.GameVersion != "1.20.1" {
		t.Errorf("expected trimmed game version, got %q", q.GameVersion)
	}
	if q.Loader != LoaderForge {
		t.Errorf("expected lower-cased loader, got %q", q.Loader)
	}
	if q.Category != "storage" {
		t.Errorf("expected lower-cased category, got %q", q.Category)
	}
	if q.ContentType != ContentTypeMod || q.Scope != ScopeAll || q.Sort != SortPopularity {
		t.Errorf("expected defaults, got type=%q scope=%q sort=%q", q.ContentType, q.Scope, q.Sort)
	}
	if q.Page != 1 {
		t.Errorf("expected page corrected to 1, got %d", q.Page)
	}
	if q.PageSize != MaxPageSize {
		t.Errorf("expected page size clamped to %d, got %d", MaxPageSize, q.PageSize)
	}

	empty := Query{}
	empty.Normalize()
	if empty.PageSize != DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", DefaultPageSize, empty.PageSize)
	}
}

func TestQuery_Validate(t *testing.T) {
	base := DefaultQuery()

	tests := []struct {
		name    string
		mutate  func(q *Query)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Query) {}},
		{name: "every filter", mutate: func(q *Query) {
			q.Term = "storage"
			q.GameVersion = "1.20.1"
			q.Loader = LoaderFabric
			q.Category = "storage"
			q.Sort = SortDownloads
			q.Scope = ScopeModrinth
		}},
		{name: "modpack with loader", mutate: func(q *Query) {
			q.ContentType = ContentTypeModpack
			q.Loader = LoaderQuilt
		}},
		{name: "unknown category is not an error", mutate: func(q *Query) { q.Category = "made-up" }},
		{name: "unknown loader", mutate: func(q *Query) { q.Loader = "rift" }, wantErr: true},
		{name: "unknown sort", mutate: func(q *Query) { q.Sort = "rating" }, wantErr: true},
		{name: "unknown scope", mutate: func(q *Query) { q.Scope = "github" }, wantErr: true},
		{name: "unknown content type", mutate: func(q *Query) { q.ContentType = "world" }, wantErr: true},
		{name: "resource pack with loader", mutate: func(q *Query) {
			q.ContentType = ContentTypeResourcePack
			q.Loader = LoaderForge
		}, wantErr: true},
		{name: "shader with loader", mutate: func(q *Query) {
			q.ContentType = ContentTypeShader
			q.Loader = LoaderFabric
		}, wantErr: true},
		{name: "term too long", mutate: func(q *Query) { q.Term = strings.Repeat("a", 201) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuery) {
					t.Errorf("expected ErrInvalidQuery, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestQuery_Offset(t *testing.T) {
	q := Query{Page: 3, PageSize: 20}
	if q.Offset() != 40 {
		t.Errorf("expected offset 40, got %d", q.Offset())
	}
}

func TestQuery_CacheKey(t *testing.T) {
	a := DefaultQuery()
	a.Term = "Storage"
	b := DefaultQuery()
	b.Term = "storage"

	if a.CacheKey() != b.CacheKey() {
		t.Error("expected term case to be ignored by the cache key")
	}
	if !strings.HasPrefix(a.CacheKey(), "search:") {
		t.Errorf("expected search: prefix, got %q", a.CacheKey())
	}

	variants := []func(q *Query){
		func(q *Query) { q.Page = 2 },
		func(q *Query) { q.PageSize = 10 },
		func(q *Query) { q.Sort = SortName },
		func(q *Query) { q.Scope = ScopeModrinth },
		func(q *Query) { q.Loader = LoaderFabric },
		func(q *Query) { q.GameVersion = "1.20.1" },
		func(q *Query) { q.Category = "magic" },
		func(q *Query) { q.ContentType = ContentTypeModpack },
	}
	for i, mutate := range variants {
		c := DefaultQuery()
		c.Term = "storage"
		mutate(&c)
		if c.CacheKey() == b.CacheKey() {
			t.Errorf("variant %d: expected a distinct cache key", i)
		}
	}
}

func TestQueryResult_Degraded(t *testing.T) {
	r := &QueryResult{}
	if r.Degraded() {
		t.Error("expected healthy result")
	}
	r.UnavailableSources = []Source{SourceCurseForge}
	if !r.Degraded() {
		t.Error("expected degraded result")
	}
}
