package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/denoland-id/denoid/pkg/observability"
	"github.com/denoland-id/denoid/pkg/provider/airtable"
	"github.com/denoland-id/denoid/pkg/provider/sqlsource"
	"github.com/denoland-id/denoid/pkg/ratelimit"
	"github.com/denoland-id/denoid/pkg/snapshot"
)

// Provider types
const (
	ProviderAirtable = "airtable"
	ProviderSQL      = "sql"
	ProviderFile     = "file"
)

// Store types
const (
	StoreNone  = "none"
	StoreFile  = "file"
	StoreRedis = "redis"
	StoreS3    = "s3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Upstream module source
	Provider ProviderConfig

	// Snapshot rebuild schedule and persistence
	Snapshot SnapshotConfig
	Store    StoreConfig

	// Search result cache
	Search SearchConfig

	// Per-client limit on the JSON API; zero requests disables it
	RateLimit ratelimit.Config

	// Path to the site YAML file; empty uses built-in defaults
	SiteConfigPath string

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string

	// Origins allowed to call the JSON API from browsers
	CORSOrigins []string

	// Proxies (addresses or CIDRs) whose forwarding headers identify the
	// client for API rate limiting
	TrustedProxies []string
}

// ProviderConfig selects and configures the module source
type ProviderConfig struct {
	Type     string
	Airtable airtable.Config
	SQL      SQLConfig
	FilePath string
}

// SQLConfig configures the SQL module source
type SQLConfig struct {
	Driver string
	DSN    string
	Table  string
}

// SnapshotConfig controls how often snapshots are rebuilt
type SnapshotConfig struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	// MaxStaleness is the snapshot age after which readiness fails; zero disables it
	MaxStaleness time.Duration
}

// StoreConfig selects where the last good snapshot is persisted
type StoreConfig struct {
	Type     string
	FilePath string
	Redis    snapshot.RedisConfig
	S3       snapshot.S3Config
}

// SearchConfig sizes the filtered view cache
type SearchConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
	OTelSampleRatio    float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:         loadServerConfig(),
		Provider:       loadProviderConfig(),
		Snapshot:       loadSnapshotConfig(),
		Store:          loadStoreConfig(),
		Search:         loadSearchConfig(),
		RateLimit:      loadRateLimitConfig(),
		SiteConfigPath: getEnv("DENOID_SITE_CONFIG", ""),
		Observability:  loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("DENOID_HOST", "0.0.0.0"),
		Port:            getEnv("DENOID_PORT", "8080"),
		ReadTimeout:     getEnvDuration("DENOID_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("DENOID_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("DENOID_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("DENOID_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("DENOID_HEALTH_PORT", "9090"),
		CORSOrigins:     getEnvList("DENOID_CORS_ORIGINS"),
		TrustedProxies:  getEnvList("DENOID_TRUSTED_PROXIES"),
	}
}

func loadProviderConfig() ProviderConfig {
	return ProviderConfig{
		Type: strings.ToLower(getEnv("DENOID_PROVIDER", ProviderAirtable)),
		Airtable: airtable.Config{
			BaseURL:  getEnv("DENOID_AIRTABLE_URL", airtable.DefaultBaseURL),
			Token:    getEnv("DENOID_AIRTABLE_TOKEN", ""),
			BaseID:   getEnv("DENOID_AIRTABLE_BASE_ID", ""),
			Table:    getEnv("DENOID_AIRTABLE_TABLE", "modules"),
			PageSize: getEnvInt("DENOID_AIRTABLE_PAGE_SIZE", airtable.DefaultPageSize),
		},
		SQL: SQLConfig{
			Driver: getEnv("DENOID_SQL_DRIVER", "postgres"),
			DSN:    getEnv("DENOID_SQL_DSN", ""),
			Table:  getEnv("DENOID_SQL_TABLE", sqlsource.DefaultTable),
		},
		FilePath: getEnv("DENOID_FILE_PATH", ""),
	}
}

func loadSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		Interval:     getEnvDuration("DENOID_SNAPSHOT_INTERVAL", snapshot.DefaultInterval),
		FetchTimeout: getEnvDuration("DENOID_FETCH_TIMEOUT", 30*time.Second),
		MaxStaleness: getEnvDuration("DENOID_MAX_STALENESS", 10*time.Minute),
	}
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		Type:     strings.ToLower(getEnv("DENOID_STORE", StoreNone)),
		FilePath: getEnv("DENOID_STORE_FILE", ""),
		Redis: snapshot.RedisConfig{
			URL:      getEnv("DENOID_REDIS_URL", ""),
			Password: getEnv("DENOID_REDIS_PASSWORD", ""),
			DB:       getEnvInt("DENOID_REDIS_DB", 0),
			PoolSize: getEnvInt("DENOID_REDIS_POOL_SIZE", 10),
			Key:      getEnv("DENOID_REDIS_KEY", snapshot.DefaultRedisKey),
			TTL:      getEnvDuration("DENOID_REDIS_TTL", 0),
		},
		S3: snapshot.S3Config{
			Endpoint:     getEnv("DENOID_S3_ENDPOINT", ""),
			Region:       getEnv("DENOID_S3_REGION", "us-east-1"),
			Bucket:       getEnv("DENOID_S3_BUCKET", ""),
			Key:          getEnv("DENOID_S3_KEY", snapshot.DefaultS3Key),
			AccessKey:    getEnv("DENOID_S3_ACCESS_KEY", ""),
			SecretKey:    getEnv("DENOID_S3_SECRET_KEY", ""),
			UsePathStyle: getEnvBool("DENOID_S3_USE_PATH_STYLE", false),
		},
	}
}

func loadSearchConfig() SearchConfig {
	return SearchConfig{
		CacheSize: getEnvInt("DENOID_SEARCH_CACHE_SIZE", 256),
		CacheTTL:  getEnvDuration("DENOID_SEARCH_CACHE_TTL", 5*time.Minute),
	}
}

func loadRateLimitConfig() ratelimit.Config {
	defaults := ratelimit.DefaultConfig()
	return ratelimit.Config{
		RequestsPerWindow: getEnvInt("DENOID_API_RATE_LIMIT", defaults.RequestsPerWindow),
		Window:            getEnvDuration("DENOID_API_RATE_WINDOW", defaults.Window),
		Burst:             getEnvInt("DENOID_API_RATE_BURST", defaults.Burst),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("DENOID_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("DENOID_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("DENOID_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("DENOID_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("DENOID_OTEL_SERVICE_NAME", "denoid"),
		OTelServiceVersion: getEnv("DENOID_OTEL_SERVICE_VERSION", "dev"),
		OTelInsecure:       getEnvBool("DENOID_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("DENOID_OTEL_SAMPLE_RATIO", 1),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if err := c.Provider.Validate(); err != nil {
		return err
	}

	if c.Snapshot.Interval < time.Second {
		return fmt.Errorf("snapshot interval must be at least 1s, got %s", c.Snapshot.Interval)
	}
	if c.Snapshot.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.Snapshot.MaxStaleness < 0 {
		return fmt.Errorf("max staleness must not be negative")
	}
	if c.Snapshot.MaxStaleness > 0 && c.Snapshot.MaxStaleness < c.Snapshot.Interval {
		return fmt.Errorf("max staleness (%s) must not be shorter than the snapshot interval (%s)",
			c.Snapshot.MaxStaleness, c.Snapshot.Interval)
	}

	if err := c.Store.Validate(); err != nil {
		return err
	}

	if c.Search.CacheSize < 0 {
		return fmt.Errorf("search cache size must not be negative")
	}

	if c.RateLimit.RequestsPerWindow < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("API rate limit and burst must not be negative")
	}
	if c.RateLimit.RequestsPerWindow > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("API rate window must be positive when rate limiting is enabled")
	}
	if _, err := ratelimit.NewIPResolver(c.Server.TrustedProxies); err != nil {
		return err
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// Validate checks the settings required by the selected provider
func (p ProviderConfig) Validate() error {
	switch p.Type {
	case ProviderAirtable:
		if p.Airtable.Token == "" {
			return fmt.Errorf("DENOID_AIRTABLE_TOKEN is required for the airtable provider")
		}
		if p.Airtable.BaseID == "" {
			return fmt.Errorf("DENOID_AIRTABLE_BASE_ID is required for the airtable provider")
		}
	case ProviderSQL:
		if p.SQL.DSN == "" {
			return fmt.Errorf("DENOID_SQL_DSN is required for the sql provider")
		}
		if p.SQL.Driver != "postgres" && p.SQL.Driver != "sqlite3" {
			return fmt.Errorf("invalid sql driver: %s (must be postgres or sqlite3)", p.SQL.Driver)
		}
	case ProviderFile:
		if p.FilePath == "" {
			return fmt.Errorf("DENOID_FILE_PATH is required for the file provider")
		}
	default:
		return fmt.Errorf("invalid provider type: %s (must be airtable, sql, or file)", p.Type)
	}
	return nil
}

// Validate checks the settings required by the selected store
func (s StoreConfig) Validate() error {
	switch s.Type {
	case StoreNone:
	case StoreFile:
		if s.FilePath == "" {
			return fmt.Errorf("DENOID_STORE_FILE is required for the file store")
		}
	case StoreRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("DENOID_REDIS_URL is required for the redis store")
		}
	case StoreS3:
		if s.S3.Bucket == "" {
			return fmt.Errorf("DENOID_S3_BUCKET is required for the s3 store")
		}
	default:
		return fmt.Errorf("invalid store type: %s (must be none, file, redis, or s3)", s.Type)
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma separated environment variable as a list
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
