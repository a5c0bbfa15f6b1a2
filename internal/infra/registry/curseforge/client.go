// Package curseforge implements the CurseForge registry adapter.
package curseforge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/infra/registry"
	"content-discovery-service/internal/vocab"
)

// API paths.
const (
	searchPath      = "/v1/mods/search"
	modPath         = "/v1/mods/{modId}"
	descriptionPath = "/v1/mods/{modId}/description"
	filesPath       = "/v1/mods/{modId}/files"
	gamePath        = "/v1/games/{gameId}"
)

const (
	// maxResultWindow is the largest index+pageSize CurseForge serves.
	maxResultWindow = 10000

	filesPageSize = 50
)

// Client implements domain.SourceAdapter for CurseForge.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new CurseForge client. cfg.Headers must carry the x-api-key header.
func New(cfg registry.ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client: registry.NewRestyClient(cfg),
		cb:     registry.NewCircuitBreaker[*resty.Response]("curseforge", cfg.CB, logger),
		logger: logger,
	}
}

// Source returns domain.SourceCurseForge.
func (c *Client) Source() domain.Source {
	return domain.SourceCurseForge
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

// Search runs one page of a query against CurseForge.
func (c *Client) Search(ctx context.Context, q domain.SourceQuery) (*domain.SourcePage, error) {
	index, pageSize, keep := window(q.Offset, q.Limit)

	params := url.Values{}
	params.Set("gameId", strconv.Itoa(vocab.CurseForgeGameID))
	params.Set("classId", strconv.Itoa(vocab.CurseForgeClass(q.ContentType)))
	params.Set("sortField", strconv.Itoa(vocab.CurseForgeSortField(q.Sort)))
	params.Set("sortOrder", vocab.CurseForgeSortOrder(q.Sort))
	params.Set("index", strconv.Itoa(index))
	params.Set("pageSize", strconv.Itoa(pageSize))
	if q.Term != "" {
		params.Set("searchFilter", q.Term)
	}
	if q.GameVersion != "" {
		params.Set("gameVersion", q.GameVersion)
	}
	if code := vocab.CurseForgeLoader(q.Loader); code != vocab.CurseForgeAnyLoader {
		params.Set("modLoaderType", strconv.Itoa(code))
	}
	if id := vocab.CurseForgeCategory(q.ContentType, q.Category); id != vocab.CurseForgeAnyCategory {
		params.Set("categoryId", strconv.Itoa(id))
	}

	var result SearchResponse
	if err := c.get(ctx, "search", searchPath, nil, params, &result); err != nil {
		return nil, err
	}

	mods := result.Data
	if len(mods) > keep {
		mods = mods[:keep]
	}

	items := make([]*domain.ContentSummary, 0, len(mods))
	for i := range mods {
		items = append(items, mods[i].ToSummary())
	}

	c.logger.Debug("curseforge search completed",
		zap.Int("count", len(items)),
		zap.Int64("total", result.Pagination.TotalCount),
	)

	return &domain.SourcePage{Items: items, Total: result.Pagination.TotalCount}, nil
}

// FetchDetail retrieves a project and its HTML description.
func (c *Client) FetchDetail(ctx context.Context, nativeID string) (*domain.ContentDetail, error) {
	pathParams := map[string]string{"modId": nativeID}

	var mod ModResponse
	if err := c.get(ctx, "detail", modPath, pathParams, nil, &mod); err != nil {
		return nil, err
	}
	if mod.Data.GameID != 0 && mod.Data.GameID != vocab.CurseForgeGameID {
		return nil, fmt.Errorf("curseforge project %s belongs to game %d: %w", nativeID, mod.Data.GameID, domain.ErrNotFound)
	}

	var desc DescriptionResponse
	if err := c.get(ctx, "description", descriptionPath, pathParams, nil, &desc); err != nil {
		return nil, err
	}

	return mod.Data.ToDetail(desc.Data), nil
}

// FetchVersions lists the files of a project, newest first.
//
// Files are paged through until CurseForge's reported total or its result
// window is reached. The game version filter is applied by CurseForge. The
// loader filter is applied here against the loader names found in each file's
// tags; files that carry no loader tag are kept, so loader filtering is partial.
// modLoaderType is not sent because CurseForge would drop those untagged files.
func (c *Client) FetchVersions(ctx context.Context, nativeID string, filter domain.VersionFilter) ([]*domain.Version, error) {
	files, err := c.fetchFiles(ctx, nativeID, filter.GameVersion)
	if err != nil {
		return nil, err
	}

	versions := make([]*domain.Version, 0, len(files))
	for i := range files {
		v := files[i].ToVersion()
		if filter.Loader != "" && len(v.Loaders) > 0 && !slices.Contains(v.Loaders, filter.Loader) {
			continue
		}
		versions = append(versions, v)
	}

	slices.SortStableFunc(versions, func(a, b *domain.Version) int {
		return b.DatePublished.Compare(a.DatePublished)
	})

	return versions, nil
}

// fetchFiles collects every page of /files.
func (c *Client) fetchFiles(ctx context.Context, nativeID, gameVersion string) ([]File, error) {
	var files []File
	for index := 0; index < maxResultWindow; index += filesPageSize {
		params := url.Values{}
		params.Set("index", strconv.Itoa(index))
		params.Set("pageSize", strconv.Itoa(min(filesPageSize, maxResultWindow-index)))
		if gameVersion != "" {
			params.Set("gameVersion", gameVersion)
		}

		var page FilesResponse
		if err := c.get(ctx, "versions", filesPath, map[string]string{"modId": nativeID}, params, &page); err != nil {
			return nil, err
		}
		files = append(files, page.Data...)

		if len(page.Data) == 0 || int64(index+len(page.Data)) >= page.Pagination.TotalCount {
			break
		}
	}

	if len(files) >= maxResultWindow {
		c.logger.Warn("curseforge file list truncated at the result window",
			zap.String("mod_id", nativeID),
			zap.Int("files", len(files)),
		)
	}

	return files, nil
}

// HealthCheck verifies CurseForge is reachable and the API key is accepted.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("gameId", strconv.Itoa(vocab.CurseForgeGameID)).
		Get(gamePath)
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
func (c *Client) get(ctx context.Context, op, path string, pathParams map[string]string, params url.Values, result any) error {
	_, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetPathParams(pathParams).
			SetQueryParamsFromValues(params).
			SetResult(result).
			Get(path)
		if err != nil {
			return nil, err
		}
		if r.StatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("curseforge %s: %w", op, domain.ErrNotFound)
		}
		if r.IsError() {
			return nil, fmt.Errorf("curseforge returned status %d", r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}

		c.logger.Warn("curseforge request failed",
			zap.String("op", op),
			zap.Error(err),
			zap.String("state", c.cb.State().String()),
		)

		return domain.NewSourceError(domain.SourceCurseForge, op, err)
	}

	return nil
}

// window clamps a request to the results CurseForge can serve. When nothing of
// the requested window is reachable, one item is still requested so the total
// can be reported, and keep is 0.
func window(offset, limit int) (index, pageSize, keep int) {
	offset = max(offset, 0)
	if limit <= 0 || offset >= maxResultWindow {
		return 0, 1, 0
	}

	pageSize = min(limit, domain.MaxPageSize, maxResultWindow-offset)
	return offset, pageSize, pageSize
}
