// Package config loads and validates the dartfocus YAML configuration,
// applies DARTFOCUS_* environment overrides, and materializes the cache
// policy table used by the cache engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/dartfocus/internal/cache"
)

// Environment variables recognized at load time. Flags beat env vars beat
// file values beat defaults.
const (
	// EnvAPIKey overrides dart.api_key. The OpenDART key is a credential
	// and normally arrives through the environment, not the config file.
	EnvAPIKey = "DARTFOCUS_API_KEY"

	// EnvCacheDir overrides cache.path.
	EnvCacheDir = "DARTFOCUS_CACHE_DIR"

	// EnvCacheEnabled overrides cache.enabled.
	EnvCacheEnabled = "DARTFOCUS_CACHE_ENABLED"

	// EnvLogLevel overrides logging.level.
	EnvLogLevel = "DARTFOCUS_LOG_LEVEL"

	// EnvListen overrides server.listen.
	EnvListen = "DARTFOCUS_LISTEN"
)

// Config validation errors.
var (
	ErrInvalidBackend = errors.New("cache backend must be pebble, sqlite, or memory")
	ErrMissingAPIKey  = errors.New("dart api key is not configured")
)

// Config is the root configuration document.
type Config struct {
	Logging  LoggingConfig           `yaml:"logging"`
	Cache    CacheConfig             `yaml:"cache"`
	DART     DARTConfig              `yaml:"dart"`
	Server   ServerConfig            `yaml:"server"`
	Policies map[string]PolicyConfig `yaml:"policies"`
}

// LoggingConfig controls the zerolog setup.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// CacheConfig controls the durable cache store and its maintenance.
type CacheConfig struct {
	// Backend selects the Store implementation: pebble (default), sqlite,
	// or memory (no durability, useful for development).
	Backend string `yaml:"backend"`

	// Path is the store location: a directory for pebble, a file for
	// sqlite. Ignored by the memory backend.
	Path string `yaml:"path"`

	// Enabled turns caching off entirely when false; every tool call then
	// fetches fresh.
	Enabled bool `yaml:"enabled"`

	// SweepInterval is how often the background sweeper removes expired
	// entries. Zero disables the sweeper.
	SweepInterval Duration `yaml:"sweep_interval"`
}

// DARTConfig describes the upstream OpenDART API.
type DARTConfig struct {
	BaseURL string   `yaml:"base_url"`
	APIKey  string   `yaml:"api_key"`
	Timeout Duration `yaml:"timeout"`
}

// ServerConfig controls the embedded HTTP server.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// PolicyConfig is one per-category cache policy override in the config file.
type PolicyConfig struct {
	TTL        Duration `yaml:"ttl"`
	MaxEntries int      `yaml:"max_entries"`
}

// Duration wraps time.Duration with YAML support for both Go duration
// strings ("24h", "90m") and bare integers meaning seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid duration: expected scalar, got %v", value.Kind)
	}
	raw := value.Value

	if seconds, err := strconv.Atoi(raw); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Cache: CacheConfig{
			Backend:       "pebble",
			Path:          defaultCachePath(),
			Enabled:       true,
			SweepInterval: Duration(10 * time.Minute),
		},
		DART: DARTConfig{
			BaseURL: "https://opendart.fss.or.kr/api",
			Timeout: Duration(30 * time.Second),
		},
		Server: ServerConfig{Listen: ":8970"},
	}
}

// defaultCachePath places the cache under the user home, mirroring where the
// rest of the dartfocus state lives.
func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".dartfocus", "cache")
	}
	return filepath.Join(home, ".dartfocus", "cache")
}

// Load builds the effective configuration: defaults, overlaid by the YAML
// file at path when it exists, overlaid by environment variables. A missing
// file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Fall through to defaults.
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.DART.APIKey = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv(EnvCacheEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Server.Listen = v
	}
}

// Validate checks the configuration for fatal-at-startup problems. The API
// key is deliberately not required here: cache-only commands (stats, clear,
// sweep) work without one, and commands that do reach upstream check it via
// RequireAPIKey.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "pebble", "sqlite", "memory":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidBackend, c.Cache.Backend)
	}

	if c.Cache.Backend != "memory" && c.Cache.Enabled && c.Cache.Path == "" {
		return errors.New("cache.path cannot be empty for a durable backend")
	}

	if c.DART.BaseURL == "" {
		return errors.New("dart.base_url cannot be empty")
	}
	if c.DART.Timeout.Std() <= 0 {
		return errors.New("dart.timeout must be positive")
	}

	if _, err := c.PolicyTable(); err != nil {
		return err
	}

	return nil
}

// RequireAPIKey returns the configured OpenDART key or an error telling the
// operator how to provide one.
func (c *Config) RequireAPIKey() (string, error) {
	if c.DART.APIKey == "" {
		return "", fmt.Errorf("%w: set %s or dart.api_key", ErrMissingAPIKey, EnvAPIKey)
	}
	return c.DART.APIKey, nil
}

// PolicyTable materializes the cache policy table: built-in defaults with
// the file's per-category overrides applied. Overrides naming an unknown
// category are a fatal misconfiguration, never silently mapped to a default.
func (c *Config) PolicyTable() (cache.PolicyTable, error) {
	table := cache.DefaultPolicyTable()

	for name, override := range c.Policies {
		category := cache.Category(name)
		if !category.Valid() {
			return nil, fmt.Errorf("%w: policy override %q", cache.ErrUnknownCategory, name)
		}

		policy := table[category]
		if override.TTL.Std() != 0 {
			policy.TTL = override.TTL.Std()
		}
		if override.MaxEntries != 0 {
			policy.MaxEntries = override.MaxEntries
		}
		table[category] = policy
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// OpenStore constructs the configured Store backend.
func (c *Config) OpenStore() (cache.Store, error) {
	switch c.Cache.Backend {
	case "pebble":
		return cache.NewPebbleStore(c.Cache.Path)
	case "sqlite":
		return cache.NewSQLiteStore(c.Cache.Path)
	case "memory":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidBackend, c.Cache.Backend)
	}
}
