// Package config loads the prompt catalog configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values
const (
	EnvDir              = "PROMPT_CATALOG_DIR"
	EnvSource           = "PROMPT_CATALOG_SOURCE"
	EnvFavoritesBackend = "PROMPT_CATALOG_FAVORITES_BACKEND"
	EnvRedisAddr        = "PROMPT_CATALOG_REDIS_ADDR"
	EnvLogLevel         = "PROMPT_CATALOG_LOG_LEVEL"
)

// Config is the full application configuration
type Config struct {
	Dir       string          `yaml:"dir"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Favorites FavoritesConfig `yaml:"favorites"`
	Server    ServerConfig    `yaml:"server"`
	UI        UIConfig        `yaml:"ui"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type CatalogConfig struct {
	Source  string `yaml:"source"`
	Timeout string `yaml:"timeout"`
}

type FavoritesConfig struct {
	Backend    string `yaml:"backend"`
	Key        string `yaml:"key"`
	Path       string `yaml:"path"`
	SQLitePath string `yaml:"sqlite_path"`
	RedisAddr  string `yaml:"redis_addr"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type UIConfig struct {
	ToastDuration string `yaml:"toast_duration"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

var validBackends = map[string]bool{"file": true, "sqlite": true, "redis": true, "memory": true}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// DefaultDir returns the base directory, honoring PROMPT_CATALOG_DIR
func DefaultDir() string {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prompt-catalog"
	}
	return filepath.Join(home, ".prompt-catalog")
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Source:  "./data/prompts.json",
			Timeout: "10s",
		},
		Favorites: FavoritesConfig{
			Backend: "file",
			Key:     "gptp_fav",
		},
		Server:  ServerConfig{Port: 8080},
		UI:      UIConfig{ToastDuration: "1400ms"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path (or <dir>/config.yaml when empty), applies environment
// overrides and fills derived paths. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(DefaultDir(), "config.yaml")
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.fillPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDir); v != "" {
		c.Dir = v
	}
	if v := os.Getenv(EnvSource); v != "" {
		c.Catalog.Source = v
	}
	if v := os.Getenv(EnvFavoritesBackend); v != "" {
		c.Favorites.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Favorites.RedisAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) fillPaths() {
	if c.Dir == "" {
		c.Dir = DefaultDir()
	}
	if c.Favorites.Path == "" {
		c.Favorites.Path = filepath.Join(c.Dir, "favorites.json")
	}
	if c.Favorites.SQLitePath == "" {
		c.Favorites.SQLitePath = filepath.Join(c.Dir, "favorites.db")
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(c.Dir, "logs", "prompt-catalog.log")
	}
}

// Validate rejects unknown backends, levels and bad durations
func (c *Config) Validate() error {
	c.Favorites.Backend = strings.ToLower(c.Favorites.Backend)
	if !validBackends[c.Favorites.Backend] {
		return fmt.Errorf("invalid favorites backend %q", c.Favorites.Backend)
	}
	if c.Favorites.Backend == "redis" && c.Favorites.RedisAddr == "" {
		return fmt.Errorf("favorites backend redis requires redis_addr")
	}
	if strings.TrimSpace(c.Favorites.Key) == "" {
		return fmt.Errorf("favorites key must not be empty")
	}
	if strings.TrimSpace(c.Catalog.Source) == "" {
		return fmt.Errorf("catalog source must not be empty")
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := positiveDuration("catalog.timeout", c.Catalog.Timeout); err != nil {
		return err
	}
	if _, err := positiveDuration("ui.toast_duration", c.UI.ToastDuration); err != nil {
		return err
	}
	return nil
}

// CatalogTimeout returns the parsed catalog timeout
func (c *Config) CatalogTimeout() time.Duration {
	d, _ := positiveDuration("catalog.timeout", c.Catalog.Timeout)
	return d
}

// ToastDuration returns the parsed toast auto-dismiss delay
func (c *Config) ToastDuration() time.Duration {
	d, _ := positiveDuration("ui.toast_duration", c.UI.ToastDuration)
	return d
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}
