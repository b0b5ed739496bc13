// Package config loads runtime settings from an optional config file, a
// .env file and CINE_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CINE"

// Config is the full runtime configuration.
type Config struct {
	NewsAPI    NewsAPIConfig
	Cache      CacheConfig
	Server     ServerConfig
	Search     SearchConfig
	Enrich     EnrichConfig
	Publishers PublishersConfig
	Log        LogConfig
}

// NewsAPIConfig configures the outbound search call.
type NewsAPIConfig struct {
	Endpoint string
	APIKey   string
	Language string
	SortBy   string
	PageSize int
	Timeout  time.Duration
}

// CacheConfig configures result memoization. An empty Path keeps results in memory.
type CacheConfig struct {
	Path string
	TTL  time.Duration
}

type ServerConfig struct {
	Addr string
}

type SearchConfig struct {
	DefaultQuery string
}

// EnrichConfig controls og:image / og:description backfilling.
type EnrichConfig struct {
	Enabled bool
	Workers int
	Timeout time.Duration
}

type PublishersConfig struct {
	File string
}

type LogConfig struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("newsapi.endpoint", "https://newsapi.org/v2/everything")
	v.SetDefault("newsapi.api_key", "")
	v.SetDefault("newsapi.language", "en")
	v.SetDefault("newsapi.sort_by", "publishedAt")
	v.SetDefault("newsapi.page_size", 30)
	v.SetDefault("newsapi.timeout", 15*time.Second)

	v.SetDefault("cache.path", "data/cine-khobor.db")
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("search.default_query", "movies")

	v.SetDefault("enrich.enabled", false)
	v.SetDefault("enrich.workers", 10)
	v.SetDefault("enrich.timeout", 10*time.Second)

	v.SetDefault("publishers.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration. path may be empty, in which case only defaults,
// .env and the environment are used.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		NewsAPI: NewsAPIConfig{
			Endpoint: strings.TrimSpace(v.GetString("newsapi.endpoint")),
			APIKey:   strings.TrimSpace(v.GetString("newsapi.api_key")),
			Language: strings.TrimSpace(v.GetString("newsapi.language")),
			SortBy:   strings.TrimSpace(v.GetString("newsapi.sort_by")),
			PageSize: v.GetInt("newsapi.page_size"),
			Timeout:  v.GetDuration("newsapi.timeout"),
		},
		Cache: CacheConfig{
			Path: strings.TrimSpace(v.GetString("cache.path")),
			TTL:  v.GetDuration("cache.ttl"),
		},
		Server: ServerConfig{Addr: strings.TrimSpace(v.GetString("server.addr"))},
		Search: SearchConfig{DefaultQuery: strings.TrimSpace(v.GetString("search.default_query"))},
		Enrich: EnrichConfig{
			Enabled: v.GetBool("enrich.enabled"),
			Workers: v.GetInt("enrich.workers"),
			Timeout: v.GetDuration("enrich.timeout"),
		},
		Publishers: PublishersConfig{File: strings.TrimSpace(v.GetString("publishers.file"))},
		Log: LogConfig{
			Level:  strings.TrimSpace(v.GetString("log.level")),
			Format: strings.TrimSpace(v.GetString("log.format")),
		},
	}

	// NEWSAPI_KEY is the name NewsAPI's own docs use.
	if cfg.NewsAPI.APIKey == "" {
		cfg.NewsAPI.APIKey = strings.TrimSpace(os.Getenv("NEWSAPI_KEY"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	switch {
	case c.NewsAPI.APIKey == "":
		return errors.New("newsapi.api_key is required (set CINE_NEWSAPI_API_KEY or NEWSAPI_KEY)")
	case c.NewsAPI.Endpoint == "":
		return errors.New("newsapi.endpoint is required")
	case c.NewsAPI.PageSize < 1 || c.NewsAPI.PageSize > 100:
		return fmt.Errorf("newsapi.page_size must be between 1 and 100, got %d", c.NewsAPI.PageSize)
	case c.NewsAPI.Timeout <= 0:
		return errors.New("newsapi.timeout must be positive")
	case c.Cache.TTL <= 0:
		return errors.New("cache.ttl must be positive")
	case c.Server.Addr == "":
		return errors.New("server.addr is required")
	case c.Enrich.Enabled && c.Enrich.Workers <= 0:
		return errors.New("enrich.workers must be positive when enrichment is enabled")
	case c.Enrich.Enabled && c.Enrich.Timeout <= 0:
		return errors.New("enrich.timeout must be positive when enrichment is enabled")
	}
	return nil
}
