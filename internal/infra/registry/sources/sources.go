// Package sources builds the configured registry adapters.
package sources

import (
	"go.uber.org/zap"

	"content-discovery-service/internal/config"
	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/infra/loadermeta"
	"content-discovery-service/internal/infra/registry"
	"content-discovery-service/internal/infra/registry/curseforge"
	"content-discovery-service/internal/infra/registry/modrinth"
)

// NewAdapters creates every active registry adapter, curated registry first.
//
// CurseForge is skipped when it has no API key; Modrinth needs none. The
// returned slice may be empty when both are disabled.
func NewAdapters(cfg config.RegistriesConfig, logger *zap.Logger) []domain.SourceAdapter {
	adapters := make([]domain.SourceAdapter, 0, 2)

	// CurseForge
	if cfg.CurseForge.Active(true) {
		cf := clientConfig(cfg.CurseForge)
		cf.Headers = map[string]string{"x-api-key": cfg.CurseForge.APIKey}
		adapters = append(adapters, curseforge.New(cf, logger.Named("curseforge")))
	} else if cfg.CurseForge.Enabled {
		logger.Warn("curseforge enabled without an api key, searching modrinth only")
	}

	// Modrinth
	if cfg.Modrinth.Active(false) {
		adapters = append(adapters, modrinth.New(clientConfig(cfg.Modrinth), logger.Named("modrinth")))
	}

	return adapters
}

// NewLoaderResolver creates the loader metadata resolver. It returns nil when
// no loader endpoint is configured.
func NewLoaderResolver(cfg config.LoaderMetaConfig, logger *zap.Logger) *loadermeta.Resolver {
	endpoints := loadermeta.Endpoints{
		Fabric:   cfg.FabricURL,
		Quilt:    cfg.QuiltURL,
		Forge:    cfg.ForgeURL,
		NeoForge: cfg.NeoForgeURL,
	}
	if endpoints == (loadermeta.Endpoints{}) {
		return nil
	}

	return loadermeta.New(endpoints, registry.ClientConfig{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Retry:     retryConfig(cfg.Retry),
		CB:        cbConfig(cfg.CB),
	}, logger.Named("loadermeta"))
}

func clientConfig(e config.RegistryEndpoint) registry.ClientConfig {
	return registry.ClientConfig{
		BaseURL:   e.BaseURL,
		UserAgent: e.UserAgent,
		Timeout:   e.Timeout,
		Retry:     retryConfig(e.Retry),
		CB:        cbConfig(e.CB),
	}
}

func retryConfig(r config.RetryConfig) registry.RetryConfig {
	return registry.RetryConfig{
		MaxAttempts: r.MaxAttempts,
		WaitTime:    r.WaitTime,
		MaxWaitTime: r.MaxWaitTime,
	}
}

func cbConfig(cb config.CBConfig) registry.CBConfig {
	return registry.CBConfig{
		MaxRequests:  cb.MaxRequests,
		Interval:     cb.Interval,
		Timeout:      cb.Timeout,
		FailureRatio: cb.FailureRatio,
	}
}
