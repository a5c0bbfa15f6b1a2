// Package service provides application use cases.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"content-discovery-service/internal/app/querycache"
	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/metrics"
)

// TTLs sets the freshness window of each query class.
type TTLs struct {
	Search   time.Duration
	Detail   time.Duration
	Versions time.Duration
	Loaders  time.Duration
}

// breakerReporter is implemented by adapters that sit behind a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// SourceStatus is the health of one registry.
type SourceStatus struct {
	Source  domain.Source `json:"source"`
	Healthy bool          `json:"healthy"`
	Breaker string        `json:"circuit_breaker,omitempty"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// DiscoveryService federates searches across the registries and resolves
// project details, versions and loader releases through the query cache.
type DiscoveryService struct {
	adapters []domain.SourceAdapter
	bySource map[domain.Source]domain.SourceAdapter
	loaders  domain.LoaderVersionResolver
	cache    *querycache.Cache
	ttl      TTLs
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewDiscoveryService creates a new DiscoveryService. loaders and m may be nil.
func NewDiscoveryService(
	adapters []domain.SourceAdapter,
	loaders domain.LoaderVersionResolver,
	cache *querycache.Cache,
	ttl TTLs,
	m *metrics.Metrics,
	logger *zap.Logger,
) *DiscoveryService {
	bySource := make(map[domain.Source]domain.SourceAdapter, len(adapters))
	for _, a := range adapters {
		bySource[a.Source()] = a
	}

	return &DiscoveryService{
		adapters: adapters,
		bySource: bySource,
		loaders:  loaders,
		cache:    cache,
		ttl:      ttl,
		metrics:  m,
		logger:   logger,
	}
}

// Sources returns the active registries, curated first.
func (s *DiscoveryService) Sources() []domain.Source {
	out := make([]domain.Source, 0, len(s.adapters))
	for _, a := range s.adapters {
		out = append(out, a.Source())
	}
	return out
}

// Search runs q against every active source in scope and merges the pages.
//
// A failing source is left out of the result and listed in UnavailableSources.
// Only when every source fails does Search return an error.
func (s *DiscoveryService) Search(ctx context.Context, q domain.Query) (*domain.QueryResult, error) {
	q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	sources, err := s.sourcesFor(q.Scope)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("searching",
		zap.String("term", q.Term),
		zap.String("scope", string(q.Scope)),
		zap.String("sort", string(q.Sort)),
		zap.Int("page", q.Page),
		zap.Int("page_size", q.PageSize),
	)

	return querycache.Fetch(ctx, s.cache, q.CacheKey(), s.ttl.Search, func(ctx context.Context) (*domain.QueryResult, error) {
		return s.federate(ctx, q, sources)
	})
}

// federate fans the query out to every source concurrently and waits for all of them.
func (s *DiscoveryService) federate(ctx context.Context, q domain.Query, sources []domain.Source) (*domain.QueryResult, error) {
	subs := domain.SplitPage(q.Page, q.PageSize, sources)
	outcomes := make([]domain.SourceOutcome, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(idx int, sub domain.SubQuery) {
			defer wg.Done()
			outcomes[idx] = s.searchSource(ctx, q, sub)
		}(i, sub)
	}
	wg.Wait()

	result := domain.MergePages(outcomes, q.Sort, q.Page, q.PageSize)

	if len(result.UnavailableSources) == len(subs) {
		errs := make([]error, 0, len(outcomes))
		for _, o := range outcomes {
			errs = append(errs, o.Err)
		}
		return nil, fmt.Errorf("all sources failed: %w", errors.Join(errs...))
	}

	if result.Degraded() {
		s.metrics.RecordDegradedSearch()
		s.logger.Warn("search degraded",
			zap.Any("unavailable", result.UnavailableSources),
			zap.Int64("total", result.Total),
		)
	}

	s.logger.Debug("search completed",
		zap.Int64("total", result.Total),
		zap.Int("count", len(result.Items)),
		zap.Bool("has_more", result.HasMore),
	)

	return result, nil
}

func (s *DiscoveryService) searchSource(ctx context.Context, q domain.Query, sub domain.SubQuery) domain.SourceOutcome {
	outcome := domain.SourceOutcome{Source: sub.Source}
	start := time.Now()

	page, err := s.bySource[sub.Source].Search(ctx, domain.SourceQuery{
		Term:        q.Term,
		GameVersion: q.GameVersion,
		Loader:      q.Loader,
		Category:    q.Category,
		ContentType: q.ContentType,
		Sort:        q.Sort,
		Offset:      sub.Offset,
		Limit:       sub.Limit,
	})
	s.record(sub.Source, "search", err, time.Since(start))

	if err != nil {
		s.logger.Warn("source search failed",
			zap.String("source", string(sub.Source)),
			zap.Error(err),
		)
		outcome.Err = err
		return outcome
	}

	outcome.Page = page
	return outcome
}

// GetDetail returns the full project record for a unified id.
func (s *DiscoveryService) GetDetail(ctx context.Context, id string) (*domain.ContentDetail, error) {
	adapter, native, err := s.resolve(id)
	if err != nil {
		return nil, err
	}

	return querycache.Fetch(ctx, s.cache, querycache.DetailKey(id), s.ttl.Detail, func(ctx context.Context) (*domain.ContentDetail, error) {
		start := time.Now()
		detail, err := adapter.FetchDetail(ctx, native)
		s.record(adapter.Source(), "detail", err, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", id, err)
		}
		return detail, nil
	})
}

// GetVersions lists the versions of a project, newest first. Filters the
// owning registry cannot apply are dropped, so results may be only partially filtered.
func (s *DiscoveryService) GetVersions(ctx context.Context, id string, filter domain.VersionFilter) ([]*domain.Version, error) {
	loader, err := domain.ParseLoader(string(filter.Loader))
	if err != nil {
		return nil, err
	}
	filter.Loader = loader
	filter.GameVersion = strings.TrimSpace(filter.GameVersion)

	adapter, native, err := s.resolve(id)
	if err != nil {
		return nil, err
	}

	return querycache.Fetch(ctx, s.cache, querycache.VersionsKey(id, filter), s.ttl.Versions, func(ctx context.Context) ([]*domain.Version, error) {
		start := time.Now()
		versions, err := adapter.FetchVersions(ctx, native, filter)
		s.record(adapter.Source(), "versions", err, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("fetching versions of %s: %w", id, err)
		}
		return versions, nil
	})
}

// LoaderVersions lists the releases of loader for a game version, newest first.
func (s *DiscoveryService) LoaderVersions(ctx context.Context, loaderName, gameVersion string) ([]domain.LoaderVersion, error) {
	loader, err := domain.ParseLoader(loaderName)
	if err != nil {
		return nil, err
	}
	gameVersion = strings.TrimSpace(gameVersion)
	if loader == "" || gameVersion == "" {
		return nil, fmt.Errorf("%w: loader and game version are required", domain.ErrInvalidQuery)
	}
	if s.loaders == nil {
		return nil, fmt.Errorf("loader metadata: %w", domain.ErrSourceUnavailable)
	}

	return querycache.Fetch(ctx, s.cache, querycache.LoadersKey(loader, gameVersion), s.ttl.Loaders, func(ctx context.Context) ([]domain.LoaderVersion, error) {
		return s.loaders.LoaderVersions(ctx, loader, gameVersion)
	})
}

// Invalidate drops every cached result.
func (s *DiscoveryService) Invalidate(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clearing query cache: %w", err)
	}
	s.logger.Info("query cache invalidated")
	return nil
}

// Warm refreshes the first page of the popularity-sorted landing query of
// each content type, replacing fresh entries. Failures are joined.
func (s *DiscoveryService) Warm(ctx context.Context, types []domain.ContentType, pageSize int) error {
	sources, err := s.sourcesFor(domain.ScopeAll)
	if err != nil {
		s.metrics.RecordWarmRun(false)
		return err
	}

	var errs []error
	refreshed := 0
	for _, t := range types {
		q := domain.DefaultQuery()
		q.ContentType = t
		q.PageSize = pageSize
		q.Normalize()
		if err := q.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}

		err := querycache.Refresh(ctx, s.cache, q.CacheKey(), s.ttl.Search, func(ctx context.Context) (*domain.QueryResult, error) {
			return s.federate(ctx, q, sources)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("warming %s: %w", t, err))
			continue
		}
		refreshed++
	}

	err = errors.Join(errs...)
	s.metrics.RecordWarmRun(err == nil)
	s.logger.Info("cache warm completed",
		zap.Int("refreshed", refreshed),
		zap.Int("failed", len(errs)),
	)

	return err
}

// SourceHealth checks every active registry concurrently.
func (s *DiscoveryService) SourceHealth(ctx context.Context) []SourceStatus {
	statuses := make([]SourceStatus, len(s.adapters))

	var wg sync.WaitGroup
	for i, a := range s.adapters {
		wg.Add(1)
		go func(idx int, a domain.SourceAdapter) {
			defer wg.Done()

			start := time.Now()
			err := a.HealthCheck(ctx)
			st := SourceStatus{
				Source:  a.Source(),
				Healthy: err == nil,
				Latency: time.Since(start),
			}
			if err != nil {
				st.Error = err.Error()
			}
			if br, ok := a.(breakerReporter); ok {
				st.Breaker = br.BreakerState()
			}
			statuses[idx] = st
		}(i, a)
	}
	wg.Wait()

	return statuses
}

// sourcesFor returns the active sources a scope covers, in adapter order.
func (s *DiscoveryService) sourcesFor(scope domain.SourceScope) ([]domain.Source, error) {
	var out []domain.Source
	for _, a := range s.adapters {
		if scope.Includes(a.Source()) {
			out = append(out, a.Source())
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no active source for scope %q", domain.ErrSourceUnavailable, scope)
	}
	return out, nil
}

// resolve maps a unified id to the adapter of its source and the native id.
func (s *DiscoveryService) resolve(id string) (domain.SourceAdapter, string, error) {
	src, native, err := domain.ParseContentID(id)
	if err != nil {
		return nil, "", err
	}
	adapter, ok := s.bySource[src]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s is not configured", domain.ErrSourceUnavailable, src)
	}
	return adapter, native, nil
}

func (s *DiscoveryService) record(src domain.Source, op string, err error, d time.Duration) {
	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, domain.ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}
	s.metrics.RecordSourceRequest(string(src), op, outcome, d)
}
