// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig               `mapstructure:"app"`
	Camunda        CamundaConfig           `mapstructure:"camunda"`
	Database       DatabaseConfig          `mapstructure:"database"`
	Workers        map[string]WorkerConfig `mapstructure:"workers"`
	Recommendation RecommendationConfig    `mapstructure:"recommendation"`
	Logging        LoggingConfig           `mapstructure:"logging"`
	Notifications  NotificationConfig      `mapstructure:"notifications"`
	Server         ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	URL        string   `mapstructure:"url"` // single URL, used when addresses is empty
	MaxRetries int      `mapstructure:"max_retries"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Recommendation engine ---

const (
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"

	CatalogSourcePostgres      = "postgres"
	CatalogSourceElasticsearch = "elasticsearch"
)

// RecommendationConfig drives the fit engine and its cache.
type RecommendationConfig struct {
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
	CacheBackend    string        `mapstructure:"cache_backend"`
	CatalogSource   string        `mapstructure:"catalog_source"`
	CatalogIndex    string        `mapstructure:"catalog_index"`
	CatalogPageSize int           `mapstructure:"catalog_page_size"`
	ProfileCacheTTL time.Duration `mapstructure:"profile_cache_ttl"`
	DefaultCurrency string        `mapstructure:"default_currency"`
	// CurrencyRates maps ISO codes to the USD value of one unit.
	CurrencyRates  map[string]float64   `mapstructure:"currency_rates"`
	BudgetBrackets BudgetBracketsConfig `mapstructure:"budget_brackets"`
	Weights        WeightsConfig        `mapstructure:"weights"`
}

type BudgetBracketsConfig struct {
	ConstrainedMaxUSD float64 `mapstructure:"constrained_max_usd"`
	ModerateMaxUSD    float64 `mapstructure:"moderate_max_usd"`
}

// WeightsConfig overrides the scoring weights. All zero means use the defaults.
type WeightsConfig struct {
	MajorAlignment       float64 `mapstructure:"major_alignment"`
	AcademicFit          float64 `mapstructure:"academic_fit"`
	TestCompatibility    float64 `mapstructure:"test_compatibility"`
	CountryPreference    float64 `mapstructure:"country_preference"`
	CostAlignment        float64 `mapstructure:"cost_alignment"`
	AdmissionProbability float64 `mapstructure:"admission_probability"`
}

func (w WeightsConfig) IsZero() bool {
	return w == WeightsConfig{}
}

// NotificationConfig holds settings for recommendation events.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ServerConfig is the health/metrics HTTP listener.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}
