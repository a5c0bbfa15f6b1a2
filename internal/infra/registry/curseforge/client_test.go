package curseforge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/infra/registry"
)

const baseURL = "https://curseforge.example.com"

func newTestClient() *Client {
	cfg := registry.ClientConfig{
		BaseURL: baseURL,
		Headers: map[string]string{"x-api-key": "test-key"},
		Timeout: 5 * time.Second,
		Retry: registry.RetryConfig{
			MaxAttempts: 1,
			WaitTime:    10 * time.Millisecond,
			MaxWaitTime: 50 * time.Millisecond,
		},
		CB: registry.CBConfig{
			MaxRequests:  5,
			Interval:     60 * time.Second,
			Timeout:      15 * time.Second,
			FailureRatio: 0.6,
		},
	}
	client := New(cfg, zap.NewNop())

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(client.client.GetClient())

	return client
}

func jsonResponder(status int, body string) httpmock.Responder {
	return func(*http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(status, body)
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	}
}

const searchBody = `{
	"data": [
		{
			"id": 238222,
			"gameId": 432,
			"classId": 6,
			"name": "Just Enough Items (JEI)",
			"slug": "jei",
			"links": {"websiteUrl": "https://www.curseforge.com/minecraft/mc-mods/jei"},
			"summary": "View Items and Recipes",
			"downloadCount": 300000000,
			"thumbsUpCount": 1200,
			"categories": [
				{"id": 421, "name": "API and Library", "slug": "library-api"},
				{"id": 423, "name": "Map and Information", "slug": "map-information"},
				{"id": 421, "name": "API and Library", "slug": "library-api"}
			],
			"authors": [{"id": 1, "name": "mezz"}, {"id": 2, "name": "helper"}],
			"logo": {"thumbnailUrl": "https://media.example.com/jei-thumb.png", "url": "https://media.example.com/jei.png"},
			"latestFilesIndexes": [
				{"gameVersion": "1.20.1", "fileId": 1, "modLoader": 1},
				{"gameVersion": "1.20.1", "fileId": 2, "modLoader": 4},
				{"gameVersion": "1.19.2", "fileId": 3, "modLoader": 1},
				{"gameVersion": "1.12.2", "fileId": 4}
			],
			"dateCreated": "2015-11-23T20:48:53.303Z",
			"dateModified": "2024-05-01T12:00:00Z"
		},
		{
			"id": 32274,
			"gameId": 432,
			"name": "JourneyMap",
			"slug": "journeymap",
			"summary": "Real-time mapping",
			"downloadCount": 200000000,
			"thumbsUpCount": 0,
			"categories": [],
			"authors": [{"id": 3, "name": "techbrew"}],
			"latestFilesIndexes": [],
			"dateCreated": "2014-01-01T00:00:00Z",
			"dateModified": "2024-04-01T00:00:00Z"
		}
	],
	"pagination": {"index": 10, "pageSize": 10, "resultCount": 2, "totalCount": 120}
}`

// TestCurseForge_Search_Success tests request encoding and normalization.
func TestCurseForge_Search_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()

	var query url.Values
	var apiKey string
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/search",
		func(req *http.Request) (*http.Response, error) {
			query = req.URL.Query()
			apiKey = req.Header.Get("x-api-key")
			return jsonResponder(200, searchBody)(req)
		})

	page, err := client.Search(context.Background(), domain.SourceQuery{
		Term:        "storage",
		GameVersion: "1.20.1",
		Loader:      domain.LoaderFabric,
		Category:    "storage",
		ContentType: domain.ContentTypeMod,
		Sort:        domain.SortDownloads,
		Offset:      10,
		Limit:       10,
	})

	require.NoError(t, err)
	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, "432", query.Get("gameId"))
	assert.Equal(t, "6", query.Get("classId"))
	assert.Equal(t, "storage", query.Get("searchFilter"))
	assert.Equal(t, "1.20.1", query.Get("gameVersion"))
	assert.Equal(t, "4", query.Get("modLoaderType"))
	assert.Equal(t, "420", query.Get("categoryId"))
	assert.Equal(t, "6", query.Get("sortField"))
	assert.Equal(t, "desc", query.Get("sortOrder"))
	assert.Equal(t, "10", query.Get("index"))
	assert.Equal(t, "10", query.Get("pageSize"))

	assert.Equal(t, int64(120), page.Total)
	require.Len(t, page.Items, 2)

	jei := page.Items[0]
	assert.Equal(t, "cf-238222", jei.ID)
	assert.Equal(t, domain.SourceCurseForge, jei.Source)
	assert.Equal(t, "Just Enough Items (JEI)", jei.Name)
	assert.Equal(t, "jei", jei.Slug)
	assert.Equal(t, int64(300000000), jei.Downloads)
	require.NotNil(t, jei.Followers)
	assert.Equal(t, int64(1200), *jei.Followers)
	assert.Equal(t, []string{"mezz", "helper"}, jei.Authors)
	assert.Equal(t, []string{"library", "map-information"}, jei.Categories)
	assert.Equal(t, []string{"1.20.1", "1.19.2", "1.12.2"}, jei.GameVersions)
	assert.Equal(t, []domain.Loader{domain.LoaderForge, domain.LoaderFabric}, jei.Loaders)
	assert.Equal(t, "https://media.example.com/jei-thumb.png", jei.IconURL)
	assert.Equal(t, "https://www.curseforge.com/minecraft/mc-mods/jei", jei.WebsiteURL)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), jei.DateUpdated.UTC())

	journeymap := page.Items[1]
	assert.Equal(t, "cf-32274", journeymap.ID)
	assert.Empty(t, journeymap.IconURL)
	assert.NotNil(t, journeymap.Categories)
	assert.NotNil(t, journeymap.Loaders)
}

// TestCurseForge_Search_OmitsUnsetFilters tests that "any" values are not sent.
func TestCurseForge_Search_OmitsUnsetFilters(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()

	var query url.Values
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/search",
		func(req *http.Request) (*http.Response, error) {
			query = req.URL.Query()
			return jsonResponder(200, `{"data": [], "pagination": {"totalCount": 0}}`)(req)
		})

	_, err := client.Search(context.Background(), domain.SourceQuery{
		Category:    "not-a-category",
		ContentType: domain.ContentTypeShader,
		Sort:        domain.SortName,
		Limit:       20,
	})

	require.NoError(t, err)
	assert.Equal(t, "6552", query.Get("classId"))
	assert.Equal(t, "4", query.Get("sortField"))
	assert.Equal(t, "asc", query.Get("sortOrder"))
	for _, key := range []string{"searchFilter", "gameVersion", "modLoaderType", "categoryId"} {
		assert.False(t, query.Has(key), "unexpected %s parameter", key)
	}
}

// TestCurseForge_Search_Window tests the zero-quota and result-window ceiling cases.
func TestCurseForge_Search_Window(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name         string
		offset       int
		limit        int
		wantIndex    string
		wantPageSize string
		wantItems    int
	}{
		{"zero quota", 0, 0, "0", "1", 0},
		{"past the ceiling", 10000, 10, "0", "1", 0},
		{"straddling the ceiling", 9995, 10, "9995", "5", 2},
		{"oversized limit", 0, 500, "0", "50", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			client := newTestClient()

			var query url.Values
			httpmock.RegisterResponder("GET", baseURL+"/v1/mods/search",
				func(req *http.Request) (*http.Response, error) {
					query = req.URL.Query()
					return jsonResponder(200, searchBody)(req)
				})

			page, err := client.Search(context.Background(), domain.SourceQuery{
				ContentType: domain.ContentTypeMod,
				Sort:        domain.SortDownloads,
				Offset:      tt.offset,
				Limit:       tt.limit,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, query.Get("index"))
			assert.Equal(t, tt.wantPageSize, query.Get("pageSize"))
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, int64(120), page.Total)
		})
	}
}

// TestCurseForge_Search_Failures tests that transport failures become source errors.
func TestCurseForge_Search_Failures(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"500 Internal Server Error", httpmock.NewStringResponder(500, "Server Error")},
		{"403 Forbidden", httpmock.NewStringResponder(403, "Forbidden")},
		{"429 Too Many Requests", httpmock.NewStringResponder(429, "Slow down")},
		{"network error", httpmock.NewErrorResponder(errors.New("connection refused"))},
		{"malformed json", jsonResponder(200, `{"data": [`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			client := newTestClient()
			httpmock.RegisterResponder("GET", baseURL+"/v1/mods/search", tt.responder)

			page, err := client.Search(context.Background(), domain.SourceQuery{Limit: 10})

			require.Error(t, err)
			assert.Nil(t, page)
			assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

			var srcErr *domain.SourceError
			require.ErrorAs(t, err, &srcErr)
			assert.Equal(t, domain.SourceCurseForge, srcErr.Source)
			assert.Equal(t, "search", srcErr.Op)
		})
	}
}

// TestCurseForge_FetchDetail_Success tests the two-request detail fetch.
func TestCurseForge_FetchDetail_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()

	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/238222", jsonResponder(200, `{
		"data": {
			"id": 238222,
			"gameId": 432,
			"name": "Just Enough Items (JEI)",
			"slug": "jei",
			"summary": "View Items and Recipes",
			"downloadCount": 5,
			"thumbsUpCount": 1,
			"authors": [{"name": "mezz"}],
			"screenshots": [
				{"title": "Recipes", "description": "Recipe view", "thumbnailUrl": "https://media.example.com/t.png", "url": "https://media.example.com/s.png"}
			],
			"dateCreated": "2015-11-23T20:48:53Z",
			"dateModified": "2024-05-01T12:00:00Z"
		}
	}`))
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/238222/description",
		jsonResponder(200, `{"data": "<p>JEI is an item and recipe viewing mod.</p>"}`))

	detail, err := client.FetchDetail(context.Background(), "238222")

	require.NoError(t, err)
	assert.Equal(t, "cf-238222", detail.ID)
	assert.Equal(t, "<p>JEI is an item and recipe viewing mod.</p>", detail.Body)
	assert.Equal(t, time.Date(2015, 11, 23, 20, 48, 53, 0, time.UTC), detail.DateCreated.UTC())
	assert.Nil(t, detail.License)
	require.Len(t, detail.Screenshots, 1)
	assert.Equal(t, domain.Screenshot{
		URL:          "https://media.example.com/s.png",
		ThumbnailURL: "https://media.example.com/t.png",
		Title:        "Recipes",
		Description:  "Recipe view",
	}, detail.Screenshots[0])
}

// TestCurseForge_FetchDetail_NotFound tests 404 handling.
func TestCurseForge_FetchDetail_NotFound(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/99999999", httpmock.NewStringResponder(404, "Not Found"))

	detail, err := client.FetchDetail(context.Background(), "99999999")

	require.Error(t, err)
	assert.Nil(t, detail)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrSourceUnavailable)
}

// TestCurseForge_FetchDetail_OtherGame tests that non-Minecraft projects are not found.
func TestCurseForge_FetchDetail_OtherGame(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/1234",
		jsonResponder(200, `{"data": {"id": 1234, "gameId": 1, "name": "WoW addon"}}`))

	_, err := client.FetchDetail(context.Background(), "1234")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

// TestCurseForge_NotFoundKeepsBreakerClosed tests that 404s are not breaker failures.
func TestCurseForge_NotFoundKeepsBreakerClosed(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/1", httpmock.NewStringResponder(404, "Not Found"))

	for range 10 {
		_, err := client.FetchDetail(context.Background(), "1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	}

	assert.Equal(t, "closed", client.BreakerState())
}

// TestCurseForge_BreakerOpensOnFailures tests that repeated failures open the breaker.
func TestCurseForge_BreakerOpensOnFailures(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/search", httpmock.NewStringResponder(503, "Unavailable"))

	for range 3 {
		_, err := client.Search(context.Background(), domain.SourceQuery{Limit: 10})
		require.Error(t, err)
	}
	assert.Equal(t, "open", client.BreakerState())

	calls := httpmock.GetTotalCallCount()
	_, err := client.Search(context.Background(), domain.SourceQuery{Limit: 10})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Equal(t, calls, httpmock.GetTotalCallCount(), "open breaker must not reach the registry")
}

// TestCurseForge_FetchVersions tests file normalization and partial loader filtering.
func TestCurseForge_FetchVersions(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()

	var query url.Values
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/238222/files",
		func(req *http.Request) (*http.Response, error) {
			query = req.URL.Query()
			return jsonResponder(200, `{
				"data": [
					{
						"id": 4593548, "displayName": "jei-1.20.1-forge-15.2.0.27", "fileName": "jei-1.20.1-forge-15.2.0.27.jar",
						"releaseType": 1, "fileDate": "2023-09-01T00:00:00Z", "fileLength": 1234567, "downloadCount": 100,
						"downloadUrl": "https://edge.forgecdn.net/files/4593/548/jei-1.20.1-forge-15.2.0.27.jar",
						"gameVersions": ["1.20.1", "Forge", "Client", "Java 17"]
					},
					{
						"id": 4712866, "displayName": "jei-1.20.1-fabric-15.2.0.27", "fileName": "jei-1.20.1-fabric-15.2.0.27.jar",
						"releaseType": 2, "fileDate": "2023-10-01T00:00:00Z", "fileLength": 7654321, "downloadCount": 50,
						"downloadUrl": null,
						"gameVersions": ["1.20.1", "Fabric"]
					},
					{
						"id": 4000001, "displayName": "jei-universal", "fileName": "jei-universal.jar",
						"releaseType": 9, "fileDate": "2023-08-01T00:00:00Z", "fileLength": 1, "downloadCount": 1,
						"gameVersions": ["1.20.1"]
					}
				],
				"pagination": {"index": 0, "pageSize": 50, "resultCount": 3, "totalCount": 3}
			}`)(req)
		})

	versions, err := client.FetchVersions(context.Background(), "238222", domain.VersionFilter{
		Loader:      domain.LoaderFabric,
		GameVersion: "1.20.1",
	})

	require.NoError(t, err)
	assert.Equal(t, "1.20.1", query.Get("gameVersion"))
	assert.False(t, query.Has("modLoaderType"))

	// The forge-only file is dropped; the untagged file is kept.
	require.Len(t, versions, 2)

	fabric := versions[0]
	assert.Equal(t, "4712866", fabric.ID)
	assert.Equal(t, "jei-1.20.1-fabric-15.2.0.27", fabric.VersionNumber)
	assert.Equal(t, []string{"1.20.1"}, fabric.GameVersions)
	assert.Equal(t, []domain.Loader{domain.LoaderFabric}, fabric.Loaders)
	assert.Equal(t, domain.ReleaseTypeBeta, fabric.ReleaseType)
	assert.Equal(t, "https://edge.forgecdn.net/files/4712/866/jei-1.20.1-fabric-15.2.0.27.jar", fabric.FileURL)
	assert.Equal(t, int64(7654321), fabric.FileSize)

	universal := versions[1]
	assert.Equal(t, "4000001", universal.ID)
	assert.Empty(t, universal.Loaders)
	assert.Equal(t, domain.ReleaseTypeAlpha, universal.ReleaseType)
	assert.Equal(t, "https://edge.forgecdn.net/files/4000/1/jei-universal.jar", universal.FileURL)
}

// TestCurseForge_FetchVersions_Paging tests that every page of files is read
// before the loader filter runs.
func TestCurseForge_FetchVersions_Paging(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()

	// 50 newest files are Forge, the 10 oldest Fabric.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	all := make([]File, 60)
	for i := range all {
		loader := "Forge"
		if i >= 50 {
			loader = "Fabric"
		}
		all[i] = File{
			ID:           int64(1000 + i),
			ModID:        238222,
			DisplayName:  fmt.Sprintf("file-%d", i),
			FileName:     fmt.Sprintf("file-%d.jar", i),
			ReleaseType:  1,
			FileDate:     base.Add(-time.Duration(i) * time.Hour),
			GameVersions: []string{"1.20.1", loader},
		}
	}

	var indexes []string
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/238222/files",
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			indexes = append(indexes, q.Get("index"))
			index, _ := strconv.Atoi(q.Get("index"))
			size, _ := strconv.Atoi(q.Get("pageSize"))
			start := min(index, len(all))
			end := min(start+size, len(all))
			return httpmock.NewJsonResponse(200, FilesResponse{
				Data: all[start:end],
				Pagination: Pagination{
					Index:       index,
					PageSize:    size,
					ResultCount: end - start,
					TotalCount:  int64(len(all)),
				},
			})
		})

	versions, err := client.FetchVersions(context.Background(), "238222", domain.VersionFilter{})
	require.NoError(t, err)
	assert.Len(t, versions, 60)
	assert.Equal(t, []string{"0", "50"}, indexes)
	assert.Equal(t, "1000", versions[0].ID)
	assert.Equal(t, "1059", versions[59].ID)

	fabric, err := client.FetchVersions(context.Background(), "238222", domain.VersionFilter{Loader: domain.LoaderFabric})
	require.NoError(t, err)
	require.Len(t, fabric, 10)
	for _, v := range fabric {
		assert.Equal(t, []domain.Loader{domain.LoaderFabric}, v.Loaders)
	}
}

// TestCurseForge_FetchVersions_NotFound tests 404 handling for versions.
func TestCurseForge_FetchVersions_NotFound(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()
	httpmock.RegisterResponder("GET", baseURL+"/v1/mods/5/files", httpmock.NewStringResponder(404, "Not Found"))

	_, err := client.FetchVersions(context.Background(), "5", domain.VersionFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestCurseForge_HealthCheck tests the health endpoint.
func TestCurseForge_HealthCheck(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient()

	httpmock.RegisterResponder("GET", baseURL+"/v1/games/432", jsonResponder(200, `{"data": {"id": 432}}`))
	assert.NoError(t, client.HealthCheck(context.Background()))

	httpmock.RegisterResponder("GET", baseURL+"/v1/games/432", httpmock.NewStringResponder(403, "Forbidden"))
	err := client.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
