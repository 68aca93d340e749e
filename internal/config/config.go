package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dshills/wikipath-mcp/internal/pagesource"
	"github.com/dshills/wikipath-mcp/internal/search"
	"github.com/dshills/wikipath-mcp/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. WIKIPATH_SEARCH_USE_BFS
const EnvPrefix = "WIKIPATH"

// Config holds all configuration for wikipath
type Config struct {
	Search  SearchConfig  `mapstructure:"search"`
	Wiki    WikiConfig    `mapstructure:"wiki"`
	Source  SourceConfig  `mapstructure:"source"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Log     LogConfig     `mapstructure:"log"`
}

// SearchConfig holds the crawl options
type SearchConfig struct {
	WordUniqueness   bool          `mapstructure:"word_uniqueness"`
	NeighborsToCheck int           `mapstructure:"neighbors_to_check"`
	UseBFS           bool          `mapstructure:"use_bfs"`
	Workers          int           `mapstructure:"workers"`
	MaxSteps         int           `mapstructure:"max_steps"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// WikiConfig holds MediaWiki client settings
type WikiConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	AllNamespaces     bool          `mapstructure:"all_namespaces"`
}

// SourceConfig selects the page source
type SourceConfig struct {
	Kind        string `mapstructure:"kind"` // wikipedia, fixture
	FixturePath string `mapstructure:"fixture_path"`
}

// CacheConfig holds the page cache settings
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	DBPath  string        `mapstructure:"db_path"`
	LRUSize int           `mapstructure:"lru_size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// BreakerConfig holds circuit breaker settings
type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
	TripRatio   float64       `mapstructure:"trip_ratio"`
}

// RetryConfig holds backoff settings for the MediaWiki client
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
	MaxDelay   time.Duration `mapstructure:"max_delay"`
	Multiplier float64       `mapstructure:"multiplier"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment binding
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Short form kept for parity with other tools that take a DB path
	_ = v.BindEnv("cache.db_path", EnvPrefix+"_CACHE_DB_PATH", EnvPrefix+"_DB_PATH")

	return v
}

// ReadFile loads a config file into v. An empty path searches for
// .wikipath.yaml in the home and working directories; not finding one is fine.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(".wikipath")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.Cache.DBPath = expandHome(config.Cache.DBPath)
	config.Source.FixturePath = expandHome(config.Source.FixturePath)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings no component can run with
func (c *Config) Validate() error {
	if c.Search.NeighborsToCheck <= 0 {
		return fmt.Errorf("%w: search.neighbors_to_check must be positive", types.ErrConfiguration)
	}
	if c.Search.MaxSteps < 0 {
		return fmt.Errorf("%w: search.max_steps must be >= 0", types.ErrConfiguration)
	}
	switch c.Source.Kind {
	case pagesource.KindWikipedia:
	case pagesource.KindFixture:
		if c.Source.FixturePath == "" {
			return fmt.Errorf("%w: source.fixture_path is required for the fixture source", types.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown source.kind %q", types.ErrConfiguration, c.Source.Kind)
	}
	if c.Wiki.RequestsPerSecond <= 0 {
		return fmt.Errorf("%w: wiki.requests_per_second must be positive", types.ErrConfiguration)
	}
	if c.Breaker.TripRatio <= 0 || c.Breaker.TripRatio > 1 {
		return fmt.Errorf("%w: breaker.trip_ratio must be in (0, 1]", types.ErrConfiguration)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json", types.ErrConfiguration)
	}
	return nil
}

// SearchOptions builds engine options for one run
func (c *Config) SearchOptions(source, target string) search.Config {
	return search.Config{
		Source:           types.NormalizeTitle(source),
		Target:           types.NormalizeTitle(target),
		WordUniqueness:   c.Search.WordUniqueness,
		NeighborsToCheck: c.Search.NeighborsToCheck,
		UseBFS:           c.Search.UseBFS,
		Workers:          c.Search.Workers,
		MaxSteps:         c.Search.MaxSteps,
		Timeout:          c.Search.Timeout,
	}
}

// SourceOptions builds the page source factory options
func (c *Config) SourceOptions() pagesource.Config {
	return pagesource.Config{
		Kind:        c.Source.Kind,
		FixturePath: c.Source.FixturePath,
		Wikipedia: pagesource.WikipediaConfig{
			Endpoint:          c.Wiki.Endpoint,
			UserAgent:         c.Wiki.UserAgent,
			RequestsPerSecond: c.Wiki.RequestsPerSecond,
			Burst:             c.Wiki.Burst,
			HTTPTimeout:       c.Wiki.HTTPTimeout,
			AllNamespaces:     c.Wiki.AllNamespaces,
			Retry: pagesource.RetryConfig{
				MaxRetries: c.Retry.MaxRetries,
				BaseDelay:  c.Retry.BaseDelay,
				MaxDelay:   c.Retry.MaxDelay,
				Multiplier: c.Retry.Multiplier,
			},
		},
		CacheEnabled: c.Cache.Enabled,
		Cache: pagesource.CacheConfig{
			LRUSize: c.Cache.LRUSize,
			TTL:     c.Cache.TTL,
		},
		BreakerEnabled: c.Breaker.Enabled,
		Breaker: pagesource.BreakerConfig{
			MaxRequests: c.Breaker.MaxRequests,
			Interval:    c.Breaker.Interval,
			Timeout:     c.Breaker.Timeout,
			TripRatio:   c.Breaker.TripRatio,
		},
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Search defaults
	v.SetDefault("search.word_uniqueness", true)
	v.SetDefault("search.neighbors_to_check", search.DefaultNeighborsToCheck)
	v.SetDefault("search.use_bfs", false)
	v.SetDefault("search.workers", search.DefaultWorkers)
	v.SetDefault("search.max_steps", 0)
	v.SetDefault("search.timeout", "0s")

	// MediaWiki defaults
	v.SetDefault("wiki.endpoint", pagesource.DefaultEndpoint)
	v.SetDefault("wiki.user_agent", pagesource.DefaultUserAgent)
	v.SetDefault("wiki.requests_per_second", pagesource.DefaultRequestsPerSecond)
	v.SetDefault("wiki.burst", pagesource.DefaultBurst)
	v.SetDefault("wiki.http_timeout", pagesource.DefaultHTTPTimeout.String())
	v.SetDefault("wiki.all_namespaces", false)

	// Page source defaults
	v.SetDefault("source.kind", pagesource.KindWikipedia)
	v.SetDefault("source.fixture_path", "")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.db_path", DefaultDBPath)
	v.SetDefault("cache.lru_size", pagesource.DefaultLRUSize)
	v.SetDefault("cache.ttl", pagesource.DefaultCacheTTL.String())

	// Circuit breaker defaults
	breaker := pagesource.DefaultBreakerConfig()
	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.max_requests", breaker.MaxRequests)
	v.SetDefault("breaker.interval", breaker.Interval.String())
	v.SetDefault("breaker.timeout", breaker.Timeout.String())
	v.SetDefault("breaker.trip_ratio", breaker.TripRatio)

	// Retry defaults
	retry := pagesource.DefaultRetryConfig()
	v.SetDefault("retry.max_retries", retry.MaxRetries)
	v.SetDefault("retry.base_delay", retry.BaseDelay.String())
	v.SetDefault("retry.max_delay", retry.MaxDelay.String())
	v.SetDefault("retry.multiplier", retry.Multiplier)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// DefaultDBPath is the default location of the page cache
const DefaultDBPath = "~/.wikipath/wikipath.db"

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
