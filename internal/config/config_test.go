package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/dartfocus/internal/cache"
	"github.com/rshade/dartfocus/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "pebble", cfg.Cache.Backend)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8970", cfg.Server.Listen)
	assert.Equal(t, "https://opendart.fss.or.kr/api", cfg.DART.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.DART.Timeout.Std())
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
cache:
  backend: sqlite
  path: /tmp/dartfocus-test/cache.db
  enabled: true
  sweep_interval: 5m
server:
  listen: ":9000"
policies:
  company-info:
    ttl: 1h
    max_entries: 42
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SweepInterval.Std())
	assert.Equal(t, ":9000", cfg.Server.Listen)

	table, err := cfg.PolicyTable()
	require.NoError(t, err)

	policy, err := table.Lookup(cache.CategoryCompanyInfo)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, policy.TTL)
	assert.Equal(t, 42, policy.MaxEntries)

	// Untouched categories keep their defaults.
	policy, err = table.Lookup(cache.CategoryNews)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, policy.TTL)
}

func TestLoad_DurationForms(t *testing.T) {
	path := writeConfig(t, `
dart:
  timeout: 45
cache:
  sweep_interval: 1h30m
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	// Bare integers are seconds, duration strings parse as written.
	assert.Equal(t, 45*time.Second, cfg.DART.Timeout.Std())
	assert.Equal(t, 90*time.Minute, cfg.Cache.SweepInterval.Std())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "env-key")
	t.Setenv(config.EnvLogLevel, "warn")
	t.Setenv(config.EnvListen, ":7777")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":7777", cfg.Server.Listen)

	key, err := cfg.RequireAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown backend",
			content: `
cache:
  backend: redis
`,
		},
		{
			name: "unknown policy category",
			content: `
policies:
  weather-report:
    ttl: 1h
    max_entries: 10
`,
		},
		{
			name: "zero capacity override",
			content: `
policies:
  company-info:
    max_entries: -1
`,
		},
		{
			name:    "malformed yaml",
			content: "cache: [unclosed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestRequireAPIKey_Missing(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	if cfg.DART.APIKey != "" {
		t.Skip("api key present in environment")
	}

	_, err = cfg.RequireAPIKey()
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestOpenStore_Backends(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name    string
		backend string
		path    string
	}{
		{name: "memory", backend: "memory"},
		{name: "pebble", backend: "pebble", path: filepath.Join(tmp, "pebble")},
		{name: "sqlite", backend: "sqlite", path: filepath.Join(tmp, "cache.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Backend = tt.backend
			cfg.Cache.Path = tt.path

			store, err := cfg.OpenStore()
			require.NoError(t, err)
			assert.NoError(t, store.Close())
		})
	}
}
