package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NilRegisterer(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	// nil metrics must be safe to use
	m.RecordCacheLookup(CacheHit)
	m.RecordSourceRequest("modrinth", "search", OutcomeSuccess, time.Second)
	m.RecordDegradedSearch()
	m.RecordWarmRun(true)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.RecordCacheLookup(CacheHit)
	m.RecordCacheLookup(CacheHit)
	m.RecordCacheLookup(CacheMiss)
	m.RecordSourceRequest("curseforge", "search", OutcomeSuccess, 120*time.Millisecond)
	m.RecordSourceRequest("curseforge", "search", OutcomeError, 3*time.Second)
	m.RecordDegradedSearch()
	m.RecordWarmRun(true)
	m.RecordWarmRun(false)
	m.RecordWarmRun(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourceRequests.WithLabelValues("curseforge", "search", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degradedSearches))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.warmRuns.WithLabelValues(OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.sourceLatency))
}
