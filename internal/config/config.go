// Package config handles configuration loading for yfin.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Client   ClientConfig   `mapstructure:"client"   yaml:"client"`
	Retry    RetryConfig    `mapstructure:"retry"    yaml:"retry"`
	Cache    CacheConfig    `mapstructure:"cache"    yaml:"cache"`
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Stream   StreamConfig   `mapstructure:"stream"   yaml:"stream"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// ClientConfig holds HTTP transport settings.
type ClientConfig struct {
	UserAgent         string  `mapstructure:"user_agent"          yaml:"user_agent"`
	TimeoutSec        int     `mapstructure:"timeout_sec"         yaml:"timeout_sec"`
	ConnectTimeoutSec int     `mapstructure:"connect_timeout_sec" yaml:"connect_timeout_sec"`
	Proxy             string  `mapstructure:"proxy"               yaml:"proxy"`
	RateLimitRPS      float64 `mapstructure:"rate_limit_rps"      yaml:"rate_limit_rps"`
	RateLimitBurst    int     `mapstructure:"rate_limit_burst"    yaml:"rate_limit_burst"`
}

// RetryConfig holds the retry engine policy.
type RetryConfig struct {
	Enabled    bool   `mapstructure:"enabled"     yaml:"enabled"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
	Strategy   string `mapstructure:"strategy"    yaml:"strategy"` // "fixed" or "exponential"
	BaseMs     int    `mapstructure:"base_ms"     yaml:"base_ms"`
	Factor     float64 `mapstructure:"factor"     yaml:"factor"`
	MaxMs      int    `mapstructure:"max_ms"      yaml:"max_ms"`
	Jitter     bool   `mapstructure:"jitter"      yaml:"jitter"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	TTLSec  int  `mapstructure:"ttl_sec" yaml:"ttl_sec"`
}

// DownloadConfig holds multi-symbol download settings.
type DownloadConfig struct {
	Concurrency int  `mapstructure:"concurrency" yaml:"concurrency"`
	Repair      bool `mapstructure:"repair"      yaml:"repair"`
	Rounding    bool `mapstructure:"rounding"    yaml:"rounding"`
}

// StreamConfig holds live streaming settings.
type StreamConfig struct {
	PollIntervalSec int  `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	ForcePolling    bool `mapstructure:"force_polling"     yaml:"force_polling"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// CacheTTL returns the cache TTL as a duration, or 0 when caching is off.
func (c *Config) CacheTTL() time.Duration {
	if !c.Cache.Enabled {
		return 0
	}
	return time.Duration(c.Cache.TTLSec) * time.Second
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Client.TimeoutSec) * time.Second
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.yfin/config.yaml (home directory)
//  3. /etc/yfin/config.yaml (system)
//
// Environment variables override config file values.
// Format: YFIN_<SECTION>_<KEY>, e.g., YFIN_CLIENT_PROXY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".yfin"))
	v.AddConfigPath("/etc/yfin")

	v.SetEnvPrefix("YFIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("YFIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Client defaults
	v.SetDefault("client.timeout_sec", 30)
	v.SetDefault("client.connect_timeout_sec", 0) // 0 = transport default
	v.SetDefault("client.rate_limit_rps", 0) // 0 = unlimited
	v.SetDefault("client.rate_limit_burst", 1)

	// Retry defaults
	v.SetDefault("retry.enabled", true)
	v.SetDefault("retry.max_retries", 4)
	v.SetDefault("retry.strategy", "exponential")
	v.SetDefault("retry.base_ms", 200)
	v.SetDefault("retry.factor", 2.0)
	v.SetDefault("retry.max_ms", 3000)
	v.SetDefault("retry.jitter", true)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl_sec", 300) // 5 minutes

	// Download defaults
	v.SetDefault("download.concurrency", 8)
	v.SetDefault("download.repair", false)
	v.SetDefault("download.rounding", false)

	// Stream defaults
	v.SetDefault("stream.poll_interval_sec", 10)
	v.SetDefault("stream.force_polling", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
