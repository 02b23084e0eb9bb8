// Package config provides configuration loading and structs for the portfolio search service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devansh3112/product-harmony-sphere/internal/ranking"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool                  `yaml:"debug"`
	Server     ServerConfig          `yaml:"server"`
	Storage    StorageConfig         `yaml:"storage"`
	Search     SearchConfig          `yaml:"search"`
	History    HistoryConfig         `yaml:"history"`
	Analytics  AnalyticsConfig       `yaml:"analytics"`
	Ranking    ranking.ScoringConfig `yaml:"ranking"`
	Vocabulary VocabularyConfig      `yaml:"vocabulary"`
	Watch      WatchConfig           `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the catalog database, Bleve index, catalog file and history.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
	CatalogPath    string `yaml:"catalog_path"`
	HistoryDir     string `yaml:"history_dir"`
	// ExtraCatalogPaths are read-only YAML catalogs searched after the primary source.
	ExtraCatalogPaths []string `yaml:"extra_catalog_paths,omitempty"`
}

// Candidate source names accepted by search.source.
const (
	SourceStatic = "static"
	SourceFile   = "file"
	SourceSQLite = "sqlite"
	SourceBleve  = "bleve"
)

// SearchConfig holds search pipeline settings.
type SearchConfig struct {
	Source         string  `yaml:"source"`
	DebounceMS     int     `yaml:"debounce_ms"`
	FetchTimeoutMS int     `yaml:"fetch_timeout_ms"`
	MinScore       float64 `yaml:"min_score"`
	FuzzyThreshold int     `yaml:"fuzzy_threshold"`
	SnippetLength  int     `yaml:"snippet_length"`
	MaxSuggestions int     `yaml:"max_suggestions"`
	// CacheSize bounds the result cache; a negative value disables it.
	CacheSize    int `yaml:"cache_size"`
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	// SimulatedLatencyMS delays the static source, mimicking a network round trip.
	SimulatedLatencyMS int `yaml:"simulated_latency_ms"`
}

// DebounceDelay returns debounce_ms as a duration.
func (s *SearchConfig) DebounceDelay() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// FetchTimeout returns fetch_timeout_ms as a duration.
func (s *SearchConfig) FetchTimeout() time.Duration {
	return time.Duration(s.FetchTimeoutMS) * time.Millisecond
}

// History backends accepted by history.backend.
const (
	HistoryFile   = "file"
	HistorySQLite = "sqlite"
	HistoryMemory = "memory"
)

// HistoryConfig holds recent-search persistence settings.
type HistoryConfig struct {
	Backend    string `yaml:"backend"`
	Key        string `yaml:"key"`
	MaxEntries int    `yaml:"max_entries"`
}

// Analytics sink names accepted by analytics.sinks.
const (
	SinkLog        = "log"
	SinkPrometheus = "prometheus"
	SinkRedis      = "redis"
)

// AnalyticsConfig holds analytics sink settings.
type AnalyticsConfig struct {
	Sinks       []string `yaml:"sinks"`
	BufferSize  int      `yaml:"buffer_size"`
	RedisURL    string   `yaml:"redis_url"`
	RedisStream string   `yaml:"redis_stream"`
}

// HasSink reports whether name is among the configured sinks.
func (a *AnalyticsConfig) HasSink(name string) bool {
	for _, s := range a.Sinks {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// VocabularyConfig lists the known categories and tags offered as suggestions.
// Empty lists fall back to the reference vocabulary.
type VocabularyConfig struct {
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
}

// WatchConfig holds catalog hot-reload settings.
type WatchConfig struct {
	Enabled    *bool `yaml:"enabled"`
	DebounceMS int   `yaml:"debounce_ms"`
}

// EnabledOrDefault returns whether to watch the catalog file; defaults to true when unset.
func (w *WatchConfig) EnabledOrDefault() bool {
	if w.Enabled != nil {
		return *w.Enabled
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Storage.CatalogPath = expandPath(cfg.Storage.CatalogPath, configDir)
	cfg.Storage.HistoryDir = expandPath(cfg.Storage.HistoryDir, configDir)
	for i, p := range cfg.Storage.ExtraCatalogPaths {
		cfg.Storage.ExtraCatalogPaths[i] = expandPath(p, configDir)
	}

	return &cfg, nil
}

// Validate rejects unknown source and backend names.
func (c *Config) Validate() error {
	switch c.Search.Source {
	case SourceStatic, SourceFile, SourceSQLite, SourceBleve:
	default:
		return fmt.Errorf("unknown search source %q", c.Search.Source)
	}
	switch c.History.Backend {
	case HistoryFile, HistorySQLite, HistoryMemory:
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	for _, s := range c.Analytics.Sinks {
		switch strings.ToLower(s) {
		case SinkLog, SinkPrometheus, SinkRedis:
		default:
			return fmt.Errorf("unknown analytics sink %q", s)
		}
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("search.max_limit (%d) is below search.default_limit (%d)", c.Search.MaxLimit, c.Search.DefaultLimit)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
