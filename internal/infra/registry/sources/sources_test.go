package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-discovery-service/internal/config"
	"content-discovery-service/internal/domain"
)

func endpoint(enabled bool, key string) config.RegistryEndpoint {
	return config.RegistryEndpoint{
		Enabled:   enabled,
		BaseURL:   "https://registry.example.com",
		APIKey:    key,
		UserAgent: "test",
		Timeout:   time.Second,
	}
}

func sourcesOf(adapters []domain.SourceAdapter) []domain.Source {
	out := make([]domain.Source, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a.Source())
	}
	return out
}

func TestNewAdapters(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.RegistriesConfig
		want []domain.Source
	}{
		{
			name: "both active",
			cfg:  config.RegistriesConfig{CurseForge: endpoint(true, "key"), Modrinth: endpoint(true, "")},
			want: []domain.Source{domain.SourceCurseForge, domain.SourceModrinth},
		},
		{
			name: "curseforge without key",
			cfg:  config.RegistriesConfig{CurseForge: endpoint(true, ""), Modrinth: endpoint(true, "")},
			want: []domain.Source{domain.SourceModrinth},
		},
		{
			name: "modrinth disabled",
			cfg:  config.RegistriesConfig{CurseForge: endpoint(true, "key"), Modrinth: endpoint(false, "")},
			want: []domain.Source{domain.SourceCurseForge},
		},
		{
			name: "nothing enabled",
			cfg:  config.RegistriesConfig{},
			want: []domain.Source{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapters := NewAdapters(tt.cfg, zap.NewNop())
			require.NotNil(t, adapters)
			assert.Equal(t, tt.want, sourcesOf(adapters))
		})
	}
}

func TestNewLoaderResolver(t *testing.T) {
	assert.Nil(t, NewLoaderResolver(config.LoaderMetaConfig{}, zap.NewNop()))

	r := NewLoaderResolver(config.LoaderMetaConfig{
		FabricURL: "https://meta.fabricmc.net",
		Timeout:   time.Second,
	}, zap.NewNop())
	assert.NotNil(t, r)
}
