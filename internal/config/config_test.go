package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvSource, EnvFavoritesBackend, EnvRedisAddr, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvDir, dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./data/prompts.json", cfg.Catalog.Source)
	assert.Equal(t, 10*time.Second, cfg.CatalogTimeout())
	assert.Equal(t, "file", cfg.Favorites.Backend)
	assert.Equal(t, "gptp_fav", cfg.Favorites.Key)
	assert.Equal(t, filepath.Join(dir, "favorites.json"), cfg.Favorites.Path)
	assert.Equal(t, filepath.Join(dir, "favorites.db"), cfg.Favorites.SQLitePath)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1400*time.Millisecond, cfg.ToastDuration())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvDir, dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  source: https://example.com/prompts.json
favorites:
  backend: SQLite
server:
  port: 9000
logging:
  level: debug
`), 0644))

	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/prompts.json", cfg.Catalog.Source)
	assert.Equal(t, "sqlite", cfg.Favorites.Backend)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Favorites.Backend = "etcd" }},
		{"redis without addr", func(c *Config) { c.Favorites.Backend = "redis" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"zero timeout", func(c *Config) { c.Catalog.Timeout = "0s" }},
		{"bad toast", func(c *Config) { c.UI.ToastDuration = "soon" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty key", func(c *Config) { c.Favorites.Key = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
