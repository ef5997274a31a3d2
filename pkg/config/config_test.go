package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/denoland-id/denoid/pkg/observability"
	"github.com/denoland-id/denoid/pkg/provider/airtable"
	"github.com/denoland-id/denoid/pkg/ratelimit"
	"github.com/denoland-id/denoid/pkg/snapshot"
)

// validConfig returns a configuration that passes Validate
func validConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8080", HealthPort: "9090"},
		Provider: ProviderConfig{
			Type:     ProviderAirtable,
			Airtable: airtable.Config{Token: "key", BaseID: "app123"},
		},
		Snapshot: SnapshotConfig{
			Interval:     10 * time.Second,
			FetchTimeout: 30 * time.Second,
			MaxStaleness: 10 * time.Minute,
		},
		Store: StoreConfig{Type: StoreNone},
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("DENOID_TEST_STRING", "custom")
	t.Setenv("DENOID_TEST_BOOL", "1")
	t.Setenv("DENOID_TEST_INT", "42")
	t.Setenv("DENOID_TEST_BAD_INT", "forty-two")
	t.Setenv("DENOID_TEST_FLOAT", "0.25")
	t.Setenv("DENOID_TEST_DURATION", "90s")
	t.Setenv("DENOID_TEST_LIST", " https://a.example , ,https://b.example")

	if got := getEnv("DENOID_TEST_STRING", "default"); got != "custom" {
		t.Errorf("getEnv() = %q, want custom", got)
	}
	if got := getEnv("DENOID_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv() = %q, want default", got)
	}
	if !getEnvBool("DENOID_TEST_BOOL", false) {
		t.Error("getEnvBool() = false, want true")
	}
	if got := getEnvInt("DENOID_TEST_INT", 0); got != 42 {
		t.Errorf("getEnvInt() = %d, want 42", got)
	}
	if got := getEnvInt("DENOID_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvInt() with invalid value = %d, want default 7", got)
	}
	if got := getEnvFloat("DENOID_TEST_FLOAT", 1); got != 0.25 {
		t.Errorf("getEnvFloat() = %v, want 0.25", got)
	}
	if got := getEnvDuration("DENOID_TEST_DURATION", 0); got != 90*time.Second {
		t.Errorf("getEnvDuration() = %v, want 90s", got)
	}
	want := []string{"https://a.example", "https://b.example"}
	if got := getEnvList("DENOID_TEST_LIST"); !reflect.DeepEqual(got, want) {
		t.Errorf("getEnvList() = %v, want %v", got, want)
	}
	if got := getEnvList("DENOID_TEST_UNSET"); got != nil {
		t.Errorf("getEnvList() on unset = %v, want nil", got)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DENOID_AIRTABLE_TOKEN", "key")
	t.Setenv("DENOID_AIRTABLE_BASE_ID", "app123")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "8080" || cfg.Server.HealthPort != "9090" {
		t.Errorf("unexpected ports %s/%s", cfg.Server.Port, cfg.Server.HealthPort)
	}
	if cfg.Provider.Type != ProviderAirtable {
		t.Errorf("Provider.Type = %s, want airtable", cfg.Provider.Type)
	}
	if cfg.Provider.Airtable.BaseURL != airtable.DefaultBaseURL {
		t.Errorf("Airtable.BaseURL = %s", cfg.Provider.Airtable.BaseURL)
	}
	if cfg.Provider.Airtable.Table != "modules" {
		t.Errorf("Airtable.Table = %s, want modules", cfg.Provider.Airtable.Table)
	}
	if cfg.Snapshot.Interval != snapshot.DefaultInterval {
		t.Errorf("Snapshot.Interval = %v, want %v", cfg.Snapshot.Interval, snapshot.DefaultInterval)
	}
	if cfg.Store.Type != StoreNone {
		t.Errorf("Store.Type = %s, want none", cfg.Store.Type)
	}
	if cfg.Store.Redis.Key != snapshot.DefaultRedisKey {
		t.Errorf("Store.Redis.Key = %s", cfg.Store.Redis.Key)
	}
	if cfg.Observability.LogLevel != observability.InfoLevel {
		t.Errorf("LogLevel = %v, want info", cfg.Observability.LogLevel)
	}
	if cfg.Observability.OTelEnabled {
		t.Error("OTel should be disabled by default")
	}
	if cfg.RateLimit != ratelimit.DefaultConfig() {
		t.Errorf("RateLimit = %+v, want defaults", cfg.RateLimit)
	}
}

func TestLoadConfig_Custom(t *testing.T) {
	t.Setenv("DENOID_PROVIDER", "SQL")
	t.Setenv("DENOID_SQL_DRIVER", "sqlite3")
	t.Setenv("DENOID_SQL_DSN", "file:modules.db")
	t.Setenv("DENOID_SNAPSHOT_INTERVAL", "1m")
	t.Setenv("DENOID_MAX_STALENESS", "0")
	t.Setenv("DENOID_STORE", "redis")
	t.Setenv("DENOID_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DENOID_LOG_LEVEL", "debug")
	t.Setenv("DENOID_SITE_CONFIG", "/etc/denoid/site.yaml")
	t.Setenv("DENOID_CORS_ORIGINS", "https://denoland.id")
	t.Setenv("DENOID_TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Provider.Type != ProviderSQL || cfg.Provider.SQL.Driver != "sqlite3" {
		t.Errorf("unexpected provider %+v", cfg.Provider)
	}
	if cfg.Snapshot.Interval != time.Minute {
		t.Errorf("Snapshot.Interval = %v, want 1m", cfg.Snapshot.Interval)
	}
	if cfg.Snapshot.MaxStaleness != 0 {
		t.Errorf("MaxStaleness = %v, want 0", cfg.Snapshot.MaxStaleness)
	}
	if cfg.Store.Type != StoreRedis || cfg.Store.Redis.URL != "redis://localhost:6379/0" {
		t.Errorf("unexpected store %+v", cfg.Store)
	}
	if cfg.Observability.LogLevel != observability.DebugLevel {
		t.Errorf("LogLevel = %v, want debug", cfg.Observability.LogLevel)
	}
	if cfg.SiteConfigPath != "/etc/denoid/site.yaml" {
		t.Errorf("SiteConfigPath = %s", cfg.SiteConfigPath)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"https://denoland.id"}) {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if !reflect.DeepEqual(cfg.Server.TrustedProxies, []string{"10.0.0.0/8", "127.0.0.1"}) {
		t.Errorf("TrustedProxies = %v", cfg.Server.TrustedProxies)
	}
}

func TestLoadConfig_MissingAirtableToken(t *testing.T) {
	t.Setenv("DENOID_AIRTABLE_BASE_ID", "app123")

	_, err := LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "DENOID_AIRTABLE_TOKEN") {
		t.Fatalf("LoadConfig() error = %v, want missing token", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing server port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"missing health port", func(c *Config) { c.Server.HealthPort = "" }, "health port is required"},
		{"same ports", func(c *Config) { c.Server.HealthPort = "8080" }, "server port and health port must be different"},
		{"unknown provider", func(c *Config) { c.Provider.Type = "mongo" }, "invalid provider type"},
		{"sql without dsn", func(c *Config) {
			c.Provider = ProviderConfig{Type: ProviderSQL, SQL: SQLConfig{Driver: "postgres"}}
		}, "DENOID_SQL_DSN"},
		{"sql with bad driver", func(c *Config) {
			c.Provider = ProviderConfig{Type: ProviderSQL, SQL: SQLConfig{Driver: "mysql", DSN: "x"}}
		}, "invalid sql driver"},
		{"file without path", func(c *Config) { c.Provider = ProviderConfig{Type: ProviderFile} }, "DENOID_FILE_PATH"},
		{"interval too short", func(c *Config) { c.Snapshot.Interval = 100 * time.Millisecond }, "at least 1s"},
		{"zero fetch timeout", func(c *Config) { c.Snapshot.FetchTimeout = 0 }, "fetch timeout"},
		{"staleness shorter than interval", func(c *Config) { c.Snapshot.MaxStaleness = time.Second }, "max staleness"},
		{"staleness disabled", func(c *Config) { c.Snapshot.MaxStaleness = 0 }, ""},
		{"unknown store", func(c *Config) { c.Store.Type = "memcached" }, "invalid store type"},
		{"file store without path", func(c *Config) { c.Store.Type = StoreFile }, "DENOID_STORE_FILE"},
		{"redis store without url", func(c *Config) { c.Store.Type = StoreRedis }, "DENOID_REDIS_URL"},
		{"s3 store without bucket", func(c *Config) { c.Store.Type = StoreS3 }, "DENOID_S3_BUCKET"},
		{"negative cache size", func(c *Config) { c.Search.CacheSize = -1 }, "search cache size"},
		{"negative rate limit", func(c *Config) { c.RateLimit.RequestsPerWindow = -1 }, "must not be negative"},
		{"rate limit without window", func(c *Config) {
			c.RateLimit = ratelimit.Config{RequestsPerWindow: 10}
		}, "API rate window"},
		{"rate limit disabled", func(c *Config) { c.RateLimit = ratelimit.Config{} }, ""},
		{"invalid trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"proxy.local"} }, "invalid trusted proxy"},
		{"trusted proxies", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "127.0.0.1"} }, ""},
		{"otel without endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelServiceName = "denoid"
		}, "OpenTelemetry endpoint is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
