package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-discovery-service/internal/config"
	"content-discovery-service/internal/domain"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Registries: config.RegistriesConfig{
			CurseForge: config.RegistryEndpoint{Enabled: true, BaseURL: "https://api.curseforge.com", Timeout: time.Second},
			Modrinth:   config.RegistryEndpoint{Enabled: true, BaseURL: "https://api.modrinth.com", UserAgent: "test", Timeout: time.Second},
		},
		Cache: config.CacheConfig{
			Backend:          backend,
			KeyPrefix:        "test",
			SearchTTL:        time.Minute,
			DetailTTL:        time.Minute,
			VersionsTTL:      time.Minute,
			LoadersTTL:       time.Minute,
			DegradedTTL:      time.Second,
			StaleRetention:   time.Hour,
			MemoryMaxEntries: 16,
		},
	}
}

func roundTrip(t *testing.T, store domain.Cache) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestOpenCache_Memory(t *testing.T) {
	b, err := OpenCache(context.Background(), testConfig(config.CacheBackendMemory), zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	roundTrip(t, b.Store)
	assert.Nil(t, b.Purger)
	assert.Nil(t, b.Redis)
	assert.NoError(t, b.Ready(context.Background()))
}

func TestOpenCache_SQLite(t *testing.T) {
	cfg := testConfig(config.CacheBackendSQLite)
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "cache", "discover.db")

	b, err := OpenCache(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	roundTrip(t, b.Store)
	assert.NotNil(t, b.Purger)
	assert.NoError(t, b.Ready(context.Background()))

	require.NoError(t, b.Close())
	assert.Error(t, b.Ready(context.Background()))
}

func TestOpenCache_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := testConfig(config.CacheBackendRedis)
	cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: port}

	b, err := OpenCache(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	roundTrip(t, b.Store)
	assert.NotNil(t, b.Redis)
	assert.True(t, mr.Exists("test:k"))
	assert.NoError(t, b.Ready(context.Background()))

	mr.Close()
	assert.Error(t, b.Ready(context.Background()))
}

func TestOpenCache_Unknown(t *testing.T) {
	_, err := OpenCache(context.Background(), testConfig("memcached"), zap.NewNop())
	assert.Error(t, err)
}

func TestNewDiscoveryService(t *testing.T) {
	b, err := OpenCache(context.Background(), testConfig(config.CacheBackendMemory), zap.NewNop())
	require.NoError(t, err)

	// no api key, so only modrinth is active
	svc := NewDiscoveryService(testConfig(config.CacheBackendMemory), b.Store, nil, zap.NewNop())
	assert.Equal(t, []domain.Source{domain.SourceModrinth}, svc.Sources())

	// no loader endpoints configured
	_, err = svc.LoaderVersions(context.Background(), "fabric", "1.20.1")
	assert.True(t, errors.Is(err, domain.ErrSourceUnavailable))
}

func TestContentTypes(t *testing.T) {
	types, err := ContentTypes([]string{"mod", " Shader"})
	require.NoError(t, err)
	assert.Equal(t, []domain.ContentType{domain.ContentTypeMod, domain.ContentTypeShader}, types)

	_, err = ContentTypes([]string{"world"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}
