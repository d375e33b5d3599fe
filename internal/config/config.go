package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/kanban/pkg/kvstore"
)

// DefaultPath is where kanban looks for its configuration.
const DefaultPath = "kanban.yml"

// KanbanConfig represents the top-level kanban.yml configuration
type KanbanConfig struct {
	Version string        `yaml:"version"`
	Board   BoardConfig   `yaml:"board"`
	Store   StoreConfig   `yaml:"store"`
	Search  SearchConfig  `yaml:"search"`
	Offline OfflineConfig `yaml:"offline"`
	Log     LogConfig     `yaml:"log"`
}

// BoardConfig selects the board opened by default
type BoardConfig struct {
	ID string `yaml:"id"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Backend   string `yaml:"backend"`             // memory, sqlite or redis
	Path      string `yaml:"path,omitempty"`      // sqlite database file
	RedisURL  string `yaml:"redis_url,omitempty"` // redis://host:port/db
	Namespace string `yaml:"namespace,omitempty"` // key prefix on a shared Redis
}

// SearchConfig tunes the debounced search cache
type SearchConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	MinQueryLength int           `yaml:"min_query_length"`
	CacheExpiry    time.Duration `yaml:"cache_expiry"`
	MaxResults     int           `yaml:"max_results"`
	LookupDelay    time.Duration `yaml:"lookup_delay"`
	Source         string        `yaml:"source"` // board or mock
}

// OfflineConfig tunes the simulated sync
type OfflineConfig struct {
	SyncDelay time.Duration `yaml:"sync_delay"`
}

// LogConfig selects log level and output format
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no kanban.yml exists.
func Default() *KanbanConfig {
	c := &KanbanConfig{Version: "1.0"}
	// Validate only fills defaults on an empty config.
	_ = c.Validate()
	return c
}

// Validate applies defaults and checks every field.
func (c *KanbanConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Board.ID == "" {
		c.Board.ID = "main"
	}

	if c.Store.Backend == "" {
		c.Store.Backend = kvstore.BackendSQLite
	}
	switch c.Store.Backend {
	case kvstore.BackendMemory:
	case kvstore.BackendSQLite:
		if c.Store.Path == "" {
			c.Store.Path = ".kanban/kanban.db"
		}
	case kvstore.BackendRedis:
		if c.Store.RedisURL == "" {
			c.Store.RedisURL = "redis://localhost:6379/0"
		}
	default:
		return fmt.Errorf("store.backend: invalid value '%s' (must be 'memory', 'sqlite', or 'redis')", c.Store.Backend)
	}
	if c.Store.Namespace == "" {
		c.Store.Namespace = "default"
	}

	if err := c.Search.validate(); err != nil {
		return err
	}

	if c.Offline.SyncDelay == 0 {
		c.Offline.SyncDelay = 100 * time.Millisecond
	}
	if c.Offline.SyncDelay < 0 {
		return fmt.Errorf("offline.sync_delay must be >= 0, got %s", c.Offline.SyncDelay)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format: invalid value '%s' (must be 'text' or 'json')", c.Log.Format)
	}

	return nil
}

func (s *SearchConfig) validate() error {
	if s.Debounce == 0 {
		s.Debounce = 300 * time.Millisecond
	}
	if s.MinQueryLength == 0 {
		s.MinQueryLength = 2
	}
	if s.CacheExpiry == 0 {
		s.CacheExpiry = 5 * time.Minute
	}
	if s.MaxResults == 0 {
		s.MaxResults = 50
	}
	if s.LookupDelay == 0 {
		s.LookupDelay = 200 * time.Millisecond
	}
	if s.Source == "" {
		s.Source = "board"
	}

	if s.Debounce < 0 {
		return fmt.Errorf("search.debounce must be >= 0, got %s", s.Debounce)
	}
	if s.MinQueryLength < 1 {
		return fmt.Errorf("search.min_query_length must be >= 1, got %d", s.MinQueryLength)
	}
	if s.CacheExpiry < 0 {
		return fmt.Errorf("search.cache_expiry must be >= 0, got %s", s.CacheExpiry)
	}
	if s.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be >= 1, got %d", s.MaxResults)
	}
	if s.Source != "board" && s.Source != "mock" {
		return fmt.Errorf("search.source: invalid value '%s' (must be 'board' or 'mock')", s.Source)
	}
	return nil
}

// StoreOptions converts the store section for kvstore.Open.
func (c *KanbanConfig) StoreOptions() kvstore.Options {
	return kvstore.Options{
		Backend:   c.Store.Backend,
		Path:      c.Store.Path,
		RedisURL:  c.Store.RedisURL,
		Namespace: c.Store.Namespace,
	}
}

// Load reads and validates kanban.yml from the specified path
func Load(path string) (*KanbanConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config KanbanConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not
// exist. Any other failure is returned.
func LoadOrDefault(path string) (*KanbanConfig, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg = &KanbanConfig{Version: "1.0"}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays KANBAN_* environment variables.
func (c *KanbanConfig) applyEnv() {
	if v := os.Getenv("KANBAN_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("KANBAN_REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("KANBAN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
