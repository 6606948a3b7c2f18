// internal/common/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: colleges
    user: app
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	rc := cfg.Recommendation
	assert.Equal(t, 24*time.Hour, rc.FreshnessWindow)
	assert.Equal(t, CacheBackendPostgres, rc.CacheBackend)
	assert.Equal(t, CatalogSourcePostgres, rc.CatalogSource)
	assert.Equal(t, "colleges", rc.CatalogIndex)
	assert.Equal(t, "INR", rc.DefaultCurrency)
	assert.Equal(t, 0.012, rc.CurrencyRates["INR"])
	assert.Equal(t, 30000.0, rc.BudgetBrackets.ConstrainedMaxUSD)
	assert.Equal(t, 60000.0, rc.BudgetBrackets.ModerateMaxUSD)
	assert.True(t, rc.Weights.IsZero())

	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 10, cfg.Database.Redis.PoolSize)
	assert.Equal(t, 3, cfg.Database.Elasticsearch.MaxRetries)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromFile_ParsesRecommendationSection(t *testing.T) {
	body := minimalYAML + `
  redis:
    address: localhost:6379
recommendation:
  freshness_window: 12h
  cache_backend: redis
  default_currency: usd
  currency_rates:
    usd: 1
    jpy: 0.0067
  weights:
    major_alignment: 0.3
    academic_fit: 0.2
    test_compatibility: 0.1
    country_preference: 0.1
    cost_alignment: 0.15
    admission_probability: 0.15
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.Recommendation.FreshnessWindow)
	assert.Equal(t, CacheBackendRedis, cfg.Recommendation.CacheBackend)
	assert.Equal(t, "USD", cfg.Recommendation.DefaultCurrency)
	assert.Equal(t, 0.0067, cfg.Recommendation.CurrencyRates["JPY"])
	assert.Equal(t, 0.3, cfg.Recommendation.Weights.MajorAlignment)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_ES_URL", "http://es:9200")

	body := `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: ${TEST_DB_HOST}
    database: colleges
    user: app
  elasticsearch:
    addresses:
      - ${TEST_ES_URL}
recommendation:
  catalog_source: elasticsearch
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "http://es:9200", cfg.Database.Elasticsearch.GetURL())
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Camunda.BrokerAddress = "localhost:26500"
		cfg.Database.Postgres = PostgresConfig{Host: "h", Database: "d", User: "u"}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing broker", func(c *Config) { c.Camunda.BrokerAddress = "" }, "broker_address"},
		{"redis backend without address", func(c *Config) { c.Recommendation.CacheBackend = CacheBackendRedis }, "redis.address"},
		{"unknown backend", func(c *Config) { c.Recommendation.CacheBackend = "memcached" }, "cache_backend"},
		{"es catalog without address", func(c *Config) { c.Recommendation.CatalogSource = CatalogSourceElasticsearch }, "elasticsearch"},
		{"brackets out of order", func(c *Config) { c.Recommendation.BudgetBrackets.ModerateMaxUSD = 10000 }, "budget_brackets"},
		{"weights off", func(c *Config) { c.Recommendation.Weights = WeightsConfig{MajorAlignment: 0.5} }, "sum to 1"},
		{"sns without topic", func(c *Config) { c.Notifications.SNS.Enabled = true }, "topic_arn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"classify-college-fit": {Enabled: false, Timeout: 1000}}}

	assert.False(t, IsWorkerEnabled(cfg, "classify-college-fit"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "unknown").Timeout)
	assert.Equal(t, time.Second, GetDuration(GetWorkerConfig(cfg, "classify-college-fit").Timeout))
}
