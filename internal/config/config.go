// Package config loads the layered configuration surface enumerated in
// spec §6: crawling, proxy budget, quality thresholds, trending windows,
// and search caching, plus the ambient app/database/logging sections.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration object, mapstructure-tagged per
// section the way the teacher's config does.
type Config struct {
	App      App      `mapstructure:"app"`
	Database Database `mapstructure:"database"`
	Logging  Logging  `mapstructure:"logging"`
	Crawl    Crawl    `mapstructure:"crawl"`
	Proxy    Proxy    `mapstructure:"proxy"`
	Quality  Quality  `mapstructure:"quality"`
	Trending Trending `mapstructure:"trending"`
	Search   Search   `mapstructure:"search"`
}

// App holds process-identity settings.
type App struct {
	WorkerID string `mapstructure:"worker_id"`
	Env      string `mapstructure:"env"`
}

// Database holds the Postgres DSN for the persisted content store and
// the data directory backing the worker registry / search cache's
// SQLite file (registry.New creates "registry.db" under this directory).
type Database struct {
	PostgresDSN  string `mapstructure:"postgres_dsn"`
	RegistryPath string `mapstructure:"registry_path"`
}

// Logging controls the slog handler level.
type Logging struct {
	Level string `mapstructure:"level"`
}

// Crawl holds the crawling tunables of spec §6.
type Crawl struct {
	DefaultDelay           time.Duration `mapstructure:"default_delay"`
	MaxRetries             int           `mapstructure:"max_retries"`
	RetryDelay             time.Duration `mapstructure:"retry_delay"`
	Timeout                time.Duration `mapstructure:"timeout"`
	MaxContentSize         int64         `mapstructure:"max_content_size"`
	MaxRedirects           int           `mapstructure:"max_redirects"`
	MaxConcurrentPerDomain int           `mapstructure:"max_concurrent_per_domain"`
	UserAgent              string        `mapstructure:"user_agent"`
	BatchSize              int           `mapstructure:"batch_size"`
	MaxConcurrentRequests  int           `mapstructure:"max_concurrent_requests"`
	CycleDelaySeconds      int           `mapstructure:"cycle_delay_seconds"`
	MaxURLsPerCycle        int           `mapstructure:"max_urls_per_cycle"`
}

// ProxyEndpointConfig is one configured proxy in the pool.
type ProxyEndpointConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Proxy holds the rotating-proxy budget tunables of spec §6.
type Proxy struct {
	Endpoints   []ProxyEndpointConfig `mapstructure:"endpoints"`
	DailyBudget float64               `mapstructure:"daily_budget"`
	CostPerGB   float64               `mapstructure:"cost_per_gb"`
}

// Quality holds the gate thresholds and reputation bounds of spec §6.
type Quality struct {
	MinScore         float64 `mapstructure:"min_score"`
	DefaultThreshold float64 `mapstructure:"default_threshold"`
	PremiumThreshold float64 `mapstructure:"premium_threshold"`
	ShadowMode       bool    `mapstructure:"shadow_mode"`
	MinReputation    float64 `mapstructure:"min_reputation"`
	MaxReputation    float64 `mapstructure:"max_reputation"`
}

// Trending holds the trend-detector tunables of spec §6.
type Trending struct {
	MinBurstRatio  float64 `mapstructure:"min_burst_ratio"`
	MinTrendScore  float64 `mapstructure:"min_trend_score"`
	MinOccurrences int     `mapstructure:"min_occurrences"`
	CooldownHours  int     `mapstructure:"cooldown_hours"`
	MaxTerms       int     `mapstructure:"max_terms"`
}

// Search holds the search-engine cache tunables of spec §6.
type Search struct {
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// Load reads configuration from (in order of increasing precedence) a
// .env file in the working directory, a config file named "config"
// (searched under ".", "./config", "/etc/sportsfeed"), and environment
// variables in the <SECTION>_<FIELD> scheme, mirroring the teacher's
// viper + godotenv layering. An explicit path, if given as the first
// element of configFile, overrides the search path entirely (mirroring
// the teacher's --config flag); pass "" to use the default search.
func Load(configFile ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if len(configFile) > 0 && configFile[0] != "" {
		v.SetConfigFile(configFile[0])
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/sportsfeed")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.worker_id", "")
	v.SetDefault("app.env", "development")

	v.SetDefault("database.postgres_dsn", "postgres://localhost:5432/sportsfeed?sslmode=disable")
	v.SetDefault("database.registry_path", "./sportsfeed-data")

	v.SetDefault("logging.level", "info")

	v.SetDefault("crawl.default_delay", 2*time.Second)
	v.SetDefault("crawl.max_retries", 3)
	v.SetDefault("crawl.retry_delay", 1*time.Second)
	v.SetDefault("crawl.timeout", 15*time.Second)
	v.SetDefault("crawl.max_content_size", int64(5<<20))
	v.SetDefault("crawl.max_redirects", 5)
	v.SetDefault("crawl.max_concurrent_per_domain", 2)
	v.SetDefault("crawl.user_agent", "sportsfeed-bot/1.0 (+https://sportsfeed.example/bot)")
	v.SetDefault("crawl.batch_size", 20)
	v.SetDefault("crawl.max_concurrent_requests", 8)
	v.SetDefault("crawl.cycle_delay_seconds", 60)
	v.SetDefault("crawl.max_urls_per_cycle", 200)

	v.SetDefault("proxy.daily_budget", 0.0)
	v.SetDefault("proxy.cost_per_gb", 0.0)

	v.SetDefault("quality.min_score", 0.5)
	v.SetDefault("quality.default_threshold", 0.65)
	v.SetDefault("quality.premium_threshold", 0.85)
	v.SetDefault("quality.shadow_mode", true)
	v.SetDefault("quality.min_reputation", 0.0)
	v.SetDefault("quality.max_reputation", 1.0)

	v.SetDefault("trending.min_burst_ratio", 3.0)
	v.SetDefault("trending.min_trend_score", 0.5)
	v.SetDefault("trending.min_occurrences", 5)
	v.SetDefault("trending.cooldown_hours", 6)
	v.SetDefault("trending.max_terms", 25)

	v.SetDefault("search.cache_enabled", true)
	v.SetDefault("search.cache_ttl", 5*time.Minute)
}

// Validate applies the invariants a correct gate/reputation/worker
// configuration must hold, the way the teacher's own config.Validate
// checks threshold ordering and positive rates.
func (c *Config) Validate() error {
	if c.Quality.MinScore > c.Quality.DefaultThreshold {
		return fmt.Errorf("config: quality.min_score must be <= quality.default_threshold")
	}
	if c.Quality.DefaultThreshold > c.Quality.PremiumThreshold {
		return fmt.Errorf("config: quality.default_threshold must be <= quality.premium_threshold")
	}
	if c.Quality.MinReputation > c.Quality.MaxReputation {
		return fmt.Errorf("config: quality.min_reputation must be <= quality.max_reputation")
	}
	if c.Crawl.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("config: crawl.max_concurrent_requests must be positive")
	}
	if c.Crawl.BatchSize <= 0 {
		return fmt.Errorf("config: crawl.batch_size must be positive")
	}
	return nil
}

// ProxyEndpointHosts is a convenience conversion used by cmd wiring and
// diagnostics.
func (c *Config) ProxyEndpointHosts() []string {
	hosts := make([]string, 0, len(c.Proxy.Endpoints))
	for _, e := range c.Proxy.Endpoints {
		hosts = append(hosts, fmt.Sprintf("%s:%d", e.Host, e.Port))
	}
	return hosts
}
