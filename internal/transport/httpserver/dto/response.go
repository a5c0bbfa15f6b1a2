package dto

import (
	"content-discovery-service/internal/app/service"
	"content-discovery-service/internal/domain"
)

// SearchResponse represents one merged page of search results.
type SearchResponse struct {
	Items      []*domain.ContentSummary `json:"items"`
	Pagination PaginationMeta           `json:"pagination"`

	// Degraded is set when at least one source failed to contribute.
	Degraded           bool     `json:"degraded"`
	UnavailableSources []string `json:"unavailable_sources,omitempty"`
}

// PaginationMeta holds pagination metadata.
type PaginationMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	HasMore  bool  `json:"has_more"`
}

// FromQueryResult converts domain.QueryResult to SearchResponse.
func FromQueryResult(result *domain.QueryResult) SearchResponse {
	items := result.Items
	if items == nil {
		items = []*domain.ContentSummary{}
	}

	resp := SearchResponse{
		Items: items,
		Pagination: PaginationMeta{
			Total:    result.Total,
			Page:     result.Page,
			PageSize: result.PageSize,
			HasMore:  result.HasMore,
		},
		Degraded: result.Degraded(),
	}
	for _, src := range result.UnavailableSources {
		resp.UnavailableSources = append(resp.UnavailableSources, string(src))
	}
	return resp
}

// VersionsResponse lists the versions of one project.
type VersionsResponse struct {
	ID       string            `json:"id"`
	Versions []*domain.Version `json:"versions"`
	Count    int               `json:"count"`
}

// FromVersions converts a version listing to VersionsResponse.
func FromVersions(id string, versions []*domain.Version) VersionsResponse {
	if versions == nil {
		versions = []*domain.Version{}
	}
	return VersionsResponse{ID: id, Versions: versions, Count: len(versions)}
}

// LoaderVersionsResponse lists the releases of a loader for a game version.
type LoaderVersionsResponse struct {
	Loader      string                 `json:"loader"`
	GameVersion string                 `json:"game_version"`
	Versions    []domain.LoaderVersion `json:"versions"`
}

// SourceStatusResponse is the health of one registry.
type SourceStatusResponse struct {
	Source         string `json:"source"`
	Healthy        bool   `json:"healthy"`
	CircuitBreaker string `json:"circuit_breaker,omitempty"`
	Latency        string `json:"latency"`
	Error          string `json:"error,omitempty"`
}

// SourcesResponse represents the response of the source health endpoint.
type SourcesResponse struct {
	Sources []SourceStatusResponse `json:"sources"`
	Healthy int                    `json:"healthy"`
	Total   int                    `json:"total"`
}

// FromSourceStatuses converts service.SourceStatus slice to SourcesResponse.
func FromSourceStatuses(statuses []service.SourceStatus) SourcesResponse {
	resp := SourcesResponse{
		Sources: make([]SourceStatusResponse, len(statuses)),
		Total:   len(statuses),
	}

	for i, s := range statuses {
		if s.Healthy {
			resp.Healthy++
		}
		resp.Sources[i] = SourceStatusResponse{
			Source:         string(s.Source),
			Healthy:        s.Healthy,
			CircuitBreaker: s.Breaker,
			Latency:        s.Latency.String(),
			Error:          s.Error,
		}
	}

	return resp
}

// WarmResponse represents the response of a manual cache warm.
type WarmResponse struct {
	ContentTypes []domain.ContentType `json:"content_types"`
	PageSize     int                  `json:"page_size"`
	Duration     string               `json:"duration"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
