// Package modrinth implements the Modrinth registry adapter.
package modrinth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/infra/registry"
	"content-discovery-service/internal/vocab"
)

// API paths.
const (
	searchPath   = "/v2/search"
	projectPath  = "/v2/project/{id}"
	membersPath  = "/v2/project/{id}/members"
	versionsPath = "/v2/project/{id}/version"
)

// maxLimit is the largest page Modrinth serves.
const maxLimit = 100

// Client implements domain.SourceAdapter for Modrinth.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new Modrinth client. cfg.UserAgent must be set; Modrinth
// rejects anonymous clients.
func New(cfg registry.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client: registry.NewRestyClient(cfg),
		cb:     registry.NewCircuitBreaker[*resty.Response]("modrinth", cfg.CB, logger),
		logger: logger,
	}
}

// Source returns domain.SourceModrinth.
func (c *Client) Source() domain.Source {
	return domain.SourceModrinth
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

// Search runs one page of a query against Modrinth.
func (c *Client) Search(ctx context.Context, q domain.SourceQuery) (*domain.SourcePage, error) {
	limit, keep := q.Limit, q.Limit
	if limit <= 0 {
		// Ask for one hit so total_hits is still reported.
		limit, keep = 1, 0
	}
	limit = min(limit, maxLimit)

	facets, err := buildFacets(q)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("facets", facets)
	params.Set("index", vocab.ModrinthIndex(q.Sort))
	params.Set("offset", strconv.Itoa(max(q.Offset, 0)))
	params.Set("limit", strconv.Itoa(limit))
	if q.Term != "" {
		params.Set("query", q.Term)
	}

	var result SearchResponse
	if err := c.get(ctx, "search", searchPath, "", params, &result); err != nil {
		return nil, err
	}

	hits := result.Hits
	if len(hits) > keep {
		hits = hits[:keep]
	}

	items := make([]*domain.ContentSummary, 0, len(hits))
	for i := range hits {
		items = append(items, hits[i].ToSummary())
	}

	c.logger.Debug("modrinth search completed",
		zap.Int("count", len(items)),
		zap.Int64("total", result.TotalHits),
	)

	return &domain.SourcePage{Items: items, Total: result.TotalHits}, nil
}

// FetchDetail retrieves a project and its team. A team lookup failure leaves
// the author list empty rather than failing the detail.
func (c *Client) FetchDetail(ctx context.Context, nativeID string) (*domain.ContentDetail, error) {
	var project Project
	if err := c.get(ctx, "detail", projectPath, nativeID, nil, &project); err != nil {
		return nil, err
	}

	var members []Member
	if err := c.get(ctx, "members", membersPath, nativeID, nil, &members); err != nil {
		c.logger.Warn("modrinth team lookup failed",
			zap.String("project", nativeID),
			zap.Error(err),
		)
		members = nil
	}

	return project.ToDetail(members), nil
}

// FetchVersions lists the versions of a project. Both filters are applied by Modrinth.
func (c *Client) FetchVersions(ctx context.Context, nativeID string, filter domain.VersionFilter) ([]*domain.Version, error) {
	params := url.Values{}
	if filter.Loader != "" {
		loaders, err := jsonList(vocab.ModrinthLoader(filter.Loader))
		if err != nil {
			return nil, err
		}
		params.Set("loaders", loaders)
	}
	if filter.GameVersion != "" {
		versions, err := jsonList(filter.GameVersion)
		if err != nil {
			return nil, err
		}
		params.Set("game_versions", versions)
	}

	var result []Version
	if err := c.get(ctx, "versions", versionsPath, nativeID, params, &result); err != nil {
		return nil, err
	}

	versions := make([]*domain.Version, 0, len(result))
	for i := range result {
		versions = append(versions, result[i].ToVersion())
	}

	return versions, nil
}

// HealthCheck verifies Modrinth is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}

// get performs a GET through the circuit breaker. A 404 is reported as
// domain.ErrNotFound, every other failure as a *domain.SourceError.
func (c *Client) get(ctx context.Context, op, path, id string, params url.Values, result any) error {
	_, err := c.cb.Execute(func() (*resty.Response, error) {
		req := c.client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(params).
			SetResult(result)
		if id != "" {
			req.SetPathParam("id", id)
		}

		r, err := req.Get(path)
		if err != nil {
			return nil, err
		}
		if r.StatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("modrinth %s: %w", op, domain.ErrNotFound)
		}
		if r.IsError() {
			return nil, fmt.Errorf("modrinth returned status %d: %s", r.StatusCode(), errorDescription(r.Body()))
		}

		return r, nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}

		c.logger.Warn("modrinth request failed",
			zap.String("op", op),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return domain.NewSourceError(domain.SourceModrinth, op, err)
	}

	return nil
}

// errorDescription extracts the human-readable part of a Modrinth error body
// ({"error": "...", "description": "..."}).
func errorDescription(body []byte) string {
	if !gjson.ValidBytes(body) {
		return "unexpected error body"
	}
	if d := gjson.GetBytes(body, "description"); d.Exists() {
		return d.String()
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		return e.String()
	}
	return "no description"
}
