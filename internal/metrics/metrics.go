// Package metrics holds the Prometheus instruments of the discovery service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "content_discovery"

// Cache lookup results.
const (
	CacheHit       = "hit"
	CacheMiss      = "miss"
	CacheStale     = "stale"
	CacheCoalesced = "coalesced"
)

// Source request outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics groups every instrument. A nil *Metrics records nothing.
type Metrics struct {
	cacheLookups     *prometheus.CounterVec
	sourceRequests   *prometheus.CounterVec
	sourceLatency    *prometheus.HistogramVec
	degradedSearches prometheus.Counter
	warmRuns         *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
// If reg is nil, it returns nil (no-op metrics).
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Query cache lookups by result.",
		}, []string{"result"}),
		sourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Registry requests by source, operation and outcome.",
		}, []string{"source", "op", "outcome"}),
		sourceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of registry requests in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source", "op"}),
		degradedSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_searches_total",
			Help:      "Searches answered without one or more sources.",
		}),
		warmRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_warm_runs_total",
			Help:      "Cache warming runs by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		m.cacheLookups, m.sourceRequests, m.sourceLatency, m.degradedSearches, m.warmRuns,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordCacheLookup counts one query cache lookup.
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordSourceRequest counts one registry request and observes its duration.
func (m *Metrics) RecordSourceRequest(source, op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.sourceRequests.WithLabelValues(source, op, outcome).Inc()
	m.sourceLatency.WithLabelValues(source, op).Observe(d.Seconds())
}

// RecordDegradedSearch counts a search that lost at least one source.
func (m *Metrics) RecordDegradedSearch() {
	if m == nil {
		return
	}
	m.degradedSearches.Inc()
}

// RecordWarmRun counts one cache warming run.
func (m *Metrics) RecordWarmRun(success bool) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeError
	}
	m.warmRuns.WithLabelValues(outcome).Inc()
}
