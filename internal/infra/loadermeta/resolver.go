// Package loadermeta resolves which mod loader releases exist for a game version
// from each loader's public metadata service.
package loadermeta

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/infra/registry"
)

// Metadata paths, relative to each loader's base URL.
const (
	fabricPath   = "/v2/versions/loader/{game}"
	quiltPath    = "/v3/versions/loader/{game}"
	forgePath    = "/net/minecraftforge/forge/promotions_slim.json"
	neoForgePath = "/releases/net/neoforged/neoforge/maven-metadata.xml"
)

// Endpoints holds the base URL of each loader's metadata service.
type Endpoints struct {
	Fabric   string
	Quilt    string
	Forge    string
	NeoForge string
}

// Resolver implements domain.LoaderVersionResolver.
type Resolver struct {
	endpoints Endpoints
	client    *resty.Client
	cb        *gobreaker.CircuitBreaker[*resty.Response]
	logger    *zap.Logger
}

// New creates a new Resolver. cfg.BaseURL is ignored; requests go to endpoints.
func New(endpoints Endpoints, cfg registry.ClientConfig, logger *zap.Logger) *Resolver {
	cfg.BaseURL = ""

	return &Resolver{
		endpoints: endpoints,
		client:    registry.NewRestyClient(cfg),
		cb:        registry.NewCircuitBreaker[*resty.Response]("loadermeta", cfg.CB, logger),
		logger:    logger,
	}
}

// LoaderVersions lists the releases of loader for gameVersion, newest first.
// An unknown game version yields an empty list.
func (r *Resolver) LoaderVersions(ctx context.Context, loader domain.Loader, gameVersion string) ([]domain.LoaderVersion, error) {
	gameVersion = strings.TrimSpace(gameVersion)
	if gameVersion == "" {
		return nil, fmt.Errorf("%w: game version is required", domain.ErrInvalidQuery)
	}

	switch loader {
	case domain.LoaderFabric:
		var entries []FabricEntry
		found, err := r.getJSON(ctx, loader, r.endpoints.Fabric+fabricPath, gameVersion, &entries)
		if err != nil || !found {
			return empty(err)
		}
		return fabricToDomain(entries), nil

	case domain.LoaderQuilt:
		var entries []QuiltEntry
		found, err := r.getJSON(ctx, loader, r.endpoints.Quilt+quiltPath, gameVersion, &entries)
		if err != nil || !found {
			return empty(err)
		}
		return quiltToDomain(entries), nil

	case domain.LoaderForge:
		var promos ForgePromotions
		found, err := r.getJSON(ctx, loader, r.endpoints.Forge+forgePath, "", &promos)
		if err != nil || !found {
			return empty(err)
		}
		return forgeToDomain(promos, gameVersion), nil

	case domain.LoaderNeoForge:
		resp, err := r.get(ctx, loader, r.endpoints.NeoForge+neoForgePath, "", nil)
		if err != nil || resp == nil {
			return empty(err)
		}
		var meta MavenMetadata
		if err := xml.Unmarshal(resp.Body(), &meta); err != nil {
			return nil, fmt.Errorf("parsing neoforge maven metadata: %w: %w", domain.ErrSourceUnavailable, err)
		}
		return neoForgeToDomain(meta, gameVersion), nil

	default:
		return nil, fmt.Errorf("%w: unknown loader %q", domain.ErrInvalidQuery, loader)
	}
}

func empty(err error) ([]domain.LoaderVersion, error) {
	if err != nil {
		return nil, err
	}
	return []domain.LoaderVersion{}, nil
}

func (r *Resolver) getJSON(ctx context.Context, loader domain.Loader, url, game string, result any) (bool, error) {
	resp, err := r.get(ctx, loader, url, game, result)
	return resp != nil, err
}

// get fetches url through the circuit breaker. A missing document (404, or 400
// for a game version the service does not know) returns a nil response and no error.
func (r *Resolver) get(ctx context.Context, loader domain.Loader, url, game string, result any) (*resty.Response, error) {
	resp, err := r.cb.Execute(func() (*resty.Response, error) {
		req := r.client.R().SetContext(ctx)
		if game != "" {
			req.SetPathParam("game", game)
		}
		if result != nil {
			req.SetResult(result)
		} else {
			req.SetHeader("Accept", "application/xml")
		}

		resp, err := req.Get(url)
		if err != nil {
			return nil, err
		}
		switch {
		case resp.StatusCode() == http.StatusNotFound, resp.StatusCode() == http.StatusBadRequest:
			return nil, nil
		case resp.IsError():
			return nil, fmt.Errorf("%s metadata returned status %d", loader, resp.StatusCode())
		}

		return resp, nil
	})

	if err != nil {
		r.logger.Warn("loader metadata request failed",
			zap.String("loader", string(loader)),
			zap.Error(err),
			zap.String("state", r.cb.State().String()),
		)

		return nil, fmt.Errorf("fetching %s versions: %w: %w", loader, domain.ErrSourceUnavailable, err)
	}

	return resp, nil
}
