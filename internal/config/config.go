// Package config loads folio.yml and FOLIO_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folio-cms/folio/internal/sites"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FOLIO_DATABASE_URL
const EnvPrefix = "FOLIO"

// Config represents the folio configuration
type Config struct {
	Sites      []sites.Site     `mapstructure:"sites"`
	Revisions  RevisionsConfig  `mapstructure:"revisions"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Content    ContentConfig    `mapstructure:"content"`
	Blueprints BlueprintsConfig `mapstructure:"blueprints"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
}

// RevisionsConfig holds the process-wide revisions default
type RevisionsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DatabaseConfig selects the collection store. The file driver keeps
// collections as YAML under content.path.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

// ContentConfig represents content locations
type ContentConfig struct {
	Path string `mapstructure:"path"`
}

// BlueprintsConfig represents blueprint locations
type BlueprintsConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Driver string        `mapstructure:"driver"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// RedisConfig represents the redis connection used by the redis cache driver
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var (
	databaseDrivers = []string{"file", "sqlite3", "pgx", "postgres"}
	cacheDrivers    = []string{"none", "memory", "redis"}
	logLevels       = []string{"debug", "info", "warn", "error"}
)

// Load loads the configuration. An empty path looks for folio.yml or
// folio.yaml in the working directory; a missing file means defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("revisions.enabled", false)
	v.SetDefault("database.driver", "file")
	v.SetDefault("database.url", "")
	v.SetDefault("content.path", "content/collections")
	v.SetDefault("blueprints.path", "resources/blueprints")
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.prefix", "folio:")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// SiteRegistry builds the site registry. No configured sites means the
// implicit single site.
func (c *Config) SiteRegistry() (*sites.Registry, error) {
	return sites.New(c.Sites)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if !contains(databaseDrivers, cfg.Database.Driver) {
		return fmt.Errorf("database.driver must be one of %s, got: %s",
			strings.Join(databaseDrivers, ", "), cfg.Database.Driver)
	}
	if cfg.Database.Driver != "file" && cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required for the %s driver", cfg.Database.Driver)
	}
	if !contains(cacheDrivers, cfg.Cache.Driver) {
		return fmt.Errorf("cache.driver must be one of %s, got: %s",
			strings.Join(cacheDrivers, ", "), cfg.Cache.Driver)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got: %s", cfg.Cache.TTL)
	}
	if !contains(logLevels, strings.ToLower(cfg.Log.Level)) {
		return fmt.Errorf("log.level must be one of %s, got: %s",
			strings.Join(logLevels, ", "), cfg.Log.Level)
	}
	if _, err := cfg.SiteRegistry(); err != nil {
		return fmt.Errorf("invalid sites: %w", err)
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
