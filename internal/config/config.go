// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cache backends.
const (
	CacheBackendMemory   = "memory"
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
	CacheBackendSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Registries RegistriesConfig `mapstructure:"registries"`
	LoaderMeta LoaderMetaConfig `mapstructure:"loader_meta"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Database   DatabaseConfig   `mapstructure:"database"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Warmer     WarmerConfig     `mapstructure:"warmer"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
}

// RegistriesConfig holds the settings of both content registries.
type RegistriesConfig struct {
	CurseForge RegistryEndpoint `mapstructure:"curseforge"`
	Modrinth   RegistryEndpoint `mapstructure:"modrinth"`
}

// RegistryEndpoint holds a single registry's configuration.
type RegistryEndpoint struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`    // CurseForge only
	UserAgent string        `mapstructure:"user_agent"` // required by Modrinth
	Timeout   time.Duration `mapstructure:"timeout"`
	Retry     RetryConfig   `mapstructure:"retry"`
	CB        CBConfig      `mapstructure:"circuit_breaker"`
}

// Active reports whether the registry should be queried. CurseForge refuses
// requests without a key, so an endpoint with Enabled but no key is only active
// when keyRequired is false.
func (e RegistryEndpoint) Active(keyRequired bool) bool {
	if !e.Enabled {
		return false
	}
	return !keyRequired || e.APIKey != ""
}

// LoaderMetaConfig holds the loader metadata endpoints.
type LoaderMetaConfig struct {
	FabricURL   string        `mapstructure:"fabric_url"`
	QuiltURL    string        `mapstructure:"quilt_url"`
	ForgeURL    string        `mapstructure:"forge_url"`
	NeoForgeURL string        `mapstructure:"neoforge_url"`
	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retry       RetryConfig   `mapstructure:"retry"`
	CB          CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// CacheConfig holds query cache settings.
type CacheConfig struct {
	Backend          string        `mapstructure:"backend"` // memory, redis, postgres, sqlite
	KeyPrefix        string        `mapstructure:"key_prefix"`
	SearchTTL        time.Duration `mapstructure:"search_ttl"`
	DetailTTL        time.Duration `mapstructure:"detail_ttl"`
	VersionsTTL      time.Duration `mapstructure:"versions_ttl"`
	LoadersTTL       time.Duration `mapstructure:"loaders_ttl"`
	DegradedTTL      time.Duration `mapstructure:"degraded_ttl"`
	StaleRetention   time.Duration `mapstructure:"stale_retention"`
	MemoryMaxEntries int           `mapstructure:"memory_max_entries"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// SQLiteConfig holds the embedded cache database settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig holds Redis connection settings for the shared cache and distributed locking.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WarmerConfig holds background cache warmer settings.
type WarmerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	OnStartup    bool          `mapstructure:"on_startup"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PageSize     int           `mapstructure:"page_size"`
	ContentTypes []string      `mapstructure:"content_types"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	// Environment variable settings
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis, CacheBackendPostgres, CacheBackendSQLite:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Registries.Modrinth.Enabled && c.Registries.Modrinth.UserAgent == "" {
		return fmt.Errorf("registries.modrinth.user_agent is required")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "content-discovery-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)

	// CurseForge defaults
	v.SetDefault("registries.curseforge.enabled", true)
	v.SetDefault("registries.curseforge.base_url", "https://api.curseforge.com")
	v.SetDefault("registries.curseforge.api_key", "")
	v.SetDefault("registries.curseforge.timeout", "10s")
	v.SetDefault("registries.curseforge.retry.max_attempts", 2)
	v.SetDefault("registries.curseforge.retry.wait_time", "500ms")
	v.SetDefault("registries.curseforge.retry.max_wait_time", "3s")
	v.SetDefault("registries.curseforge.circuit_breaker.max_requests", 3)
	v.SetDefault("registries.curseforge.circuit_breaker.interval", "60s")
	v.SetDefault("registries.curseforge.circuit_breaker.timeout", "30s")
	v.SetDefault("registries.curseforge.circuit_breaker.failure_ratio", 0.5)

	// Modrinth defaults
	v.SetDefault("registries.modrinth.enabled", true)
	v.SetDefault("registries.modrinth.base_url", "https://api.modrinth.com")
	v.SetDefault("registries.modrinth.user_agent", "content-discovery-service/1.0")
	v.SetDefault("registries.modrinth.timeout", "10s")
	v.SetDefault("registries.modrinth.retry.max_attempts", 2)
	v.SetDefault("registries.modrinth.retry.wait_time", "500ms")
	v.SetDefault("registries.modrinth.retry.max_wait_time", "3s")
	v.SetDefault("registries.modrinth.circuit_breaker.max_requests", 3)
	v.SetDefault("registries.modrinth.circuit_breaker.interval", "60s")
	v.SetDefault("registries.modrinth.circuit_breaker.timeout", "30s")
	v.SetDefault("registries.modrinth.circuit_breaker.failure_ratio", 0.5)

	// Loader metadata defaults
	v.SetDefault("loader_meta.fabric_url", "https://meta.fabricmc.net")
	v.SetDefault("loader_meta.quilt_url", "https://meta.quiltmc.org")
	v.SetDefault("loader_meta.forge_url", "https://files.minecraftforge.net")
	v.SetDefault("loader_meta.neoforge_url", "https://maven.neoforged.net")
	v.SetDefault("loader_meta.user_agent", "content-discovery-service/1.0")
	v.SetDefault("loader_meta.timeout", "10s")
	v.SetDefault("loader_meta.retry.max_attempts", 2)
	v.SetDefault("loader_meta.retry.wait_time", "500ms")
	v.SetDefault("loader_meta.retry.max_wait_time", "3s")
	v.SetDefault("loader_meta.circuit_breaker.max_requests", 3)
	v.SetDefault("loader_meta.circuit_breaker.interval", "60s")
	v.SetDefault("loader_meta.circuit_breaker.timeout", "30s")
	v.SetDefault("loader_meta.circuit_breaker.failure_ratio", 0.5)

	// Cache defaults
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.key_prefix", "content-discovery")
	v.SetDefault("cache.search_ttl", "5m")
	v.SetDefault("cache.detail_ttl", "10m")
	v.SetDefault("cache.versions_ttl", "10m")
	v.SetDefault("cache.loaders_ttl", "10m")
	v.SetDefault("cache.degraded_ttl", "30s")
	v.SetDefault("cache.stale_retention", "1h")
	v.SetDefault("cache.memory_max_entries", 2048)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "content_discovery")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")

	// SQLite defaults
	v.SetDefault("sqlite.path", "content-cache.db")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Warmer defaults
	v.SetDefault("warmer.enabled", false)
	v.SetDefault("warmer.interval", "4m")
	v.SetDefault("warmer.on_startup", true)
	v.SetDefault("warmer.timeout", "30s")
	v.SetDefault("warmer.page_size", 20)
	v.SetDefault("warmer.content_types", []string{"mod", "modpack"})

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
