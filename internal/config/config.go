package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"
)

// Config is the top-level configuration structure.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Backend BackendConfig `json:"backend"`
	Feed    FeedConfig    `json:"feed"`
	Redis   RedisConfig   `json:"redis"`
}

type ServerConfig struct {
	Port     int    `json:"port"`
	LogLevel string `json:"log_level"`
}

// BackendConfig describes the simulation API the stores read from.
type BackendConfig struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
	Timeout string `json:"timeout"`

	TimeoutD time.Duration `json:"-"`
}

// FeedConfig tunes the event feed. RefreshInterval reloads both stores
// periodically; empty or zero disables it.
type FeedConfig struct {
	Limit           int    `json:"limit"`
	RefreshInterval string `json:"refresh_interval"`

	RefreshIntervalD time.Duration `json:"-"`
}

// RedisConfig enables change notifications on Redis Streams when URL is set.
type RedisConfig struct {
	URL          string `json:"url"`
	StreamPrefix string `json:"stream_prefix"`
}

const (
	DefaultPort         = 8080
	DefaultBaseURL      = "http://localhost:8000"
	DefaultTimeout      = 15 * time.Second
	DefaultFeedLimit    = 50
	DefaultStreamPrefix = "nuka:view:"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file and substitutes environment variable references.
// A missing file is not an error: defaults are returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	var cfg Config
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Backend.Timeout != "" {
		d, err := time.ParseDuration(cfg.Backend.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse backend timeout %q: %w", cfg.Backend.Timeout, err)
		}
		cfg.Backend.TimeoutD = d
	}
	if cfg.Feed.RefreshInterval != "" {
		d, err := time.ParseDuration(cfg.Feed.RefreshInterval)
		if err != nil {
			return nil, fmt.Errorf("parse feed refresh interval %q: %w", cfg.Feed.RefreshInterval, err)
		}
		cfg.Feed.RefreshIntervalD = d
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBaseURL
	}
	if c.Backend.TimeoutD <= 0 {
		c.Backend.TimeoutD = DefaultTimeout
	}
	if c.Feed.Limit <= 0 {
		c.Feed.Limit = DefaultFeedLimit
	}
	if c.Redis.StreamPrefix == "" {
		c.Redis.StreamPrefix = DefaultStreamPrefix
	}
}
