// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"strings"

	"content-discovery-service/internal/domain"
)

// SearchRequest represents the query parameters of a federated search.
type SearchRequest struct {
	Term        string `query:"q" validate:"max=200"`
	GameVersion string `query:"game_version" validate:"max=32"`
	Loader      string `query:"loader" validate:"omitempty,loader"`
	Category    string `query:"category" validate:"max=64"`
	Type        string `query:"type" validate:"omitempty,content_type"`
	Source      string `query:"source" validate:"omitempty,source_scope"`
	Sort        string `query:"sort" validate:"omitempty,sort_key"`
	Page        int    `query:"page" validate:"omitempty,min=1"`
	PageSize    int    `query:"page_size" validate:"omitempty,min=1,max=50"`
}

// ToQuery converts SearchRequest to a domain.Query. Unset fields keep the
// defaults of domain.DefaultQuery.
func (r *SearchRequest) ToQuery() domain.Query {
	q := domain.DefaultQuery()

	q.Term = r.Term
	q.GameVersion = r.GameVersion
	q.Loader = domain.Loader(r.Loader)
	q.Category = r.Category

	if r.Type != "" {
		q.ContentType = domain.ContentType(r.Type)
	}
	if r.Source != "" {
		q.Scope = domain.SourceScope(r.Source)
	}
	if r.Sort != "" {
		q.Sort = domain.SortKey(r.Sort)
	}
	if r.Page > 0 {
		q.Page = r.Page
	}
	if r.PageSize > 0 {
		q.PageSize = r.PageSize
	}

	return q
}

// VersionsRequest narrows a project's version listing.
type VersionsRequest struct {
	Loader      string `query:"loader" validate:"omitempty,loader"`
	GameVersion string `query:"game_version" validate:"max=32"`
}

// ToFilter converts VersionsRequest to a domain.VersionFilter.
func (r *VersionsRequest) ToFilter() domain.VersionFilter {
	return domain.VersionFilter{
		Loader:      domain.Loader(strings.ToLower(strings.TrimSpace(r.Loader))),
		GameVersion: strings.TrimSpace(r.GameVersion),
	}
}

// LoaderVersionsRequest selects the game version whose loader releases are listed.
type LoaderVersionsRequest struct {
	Loader      string `params:"loader" validate:"required,loader"`
	GameVersion string `query:"game_version" validate:"required,max=32"`
}

// WarmRequest is the optional body of a manual cache warm. Empty fields fall
// back to the warmer configuration.
type WarmRequest struct {
	ContentTypes []string `json:"content_types" validate:"omitempty,dive,content_type"`
	PageSize     int      `json:"page_size" validate:"omitempty,min=1,max=50"`
}

// Types converts the requested content types, or returns fallback when none were given.
func (r *WarmRequest) Types(fallback []domain.ContentType) []domain.ContentType {
	if len(r.ContentTypes) == 0 {
		return fallback
	}
	types := make([]domain.ContentType, len(r.ContentTypes))
	for i, t := range r.ContentTypes {
		types[i] = domain.ContentType(t)
	}
	return types
}
