package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr            string `json:"addr" yaml:"addr" toml:"addr"`
	EndpointsDir    string `json:"endpoints_dir" yaml:"endpoints_dir" toml:"endpoints_dir"`
	MemBudgetMB     int    `json:"mem_budget_mb" yaml:"mem_budget_mb" toml:"mem_budget_mb"`
	MemMarginMB     int    `json:"mem_margin_mb" yaml:"mem_margin_mb" toml:"mem_margin_mb"`
	DefaultEndpoint string `json:"default_endpoint" yaml:"default_endpoint" toml:"default_endpoint"`

	// Notes persistence and embedding service.
	NotesSnapshot    string `json:"notes_snapshot" yaml:"notes_snapshot" toml:"notes_snapshot"`
	EmbeddingURL     string `json:"embedding_url" yaml:"embedding_url" toml:"embedding_url"`
	EmbeddingKey     string `json:"embedding_key" yaml:"embedding_key" toml:"embedding_key"`
	EmbeddingModel   string `json:"embedding_model" yaml:"embedding_model" toml:"embedding_model"`
	QueryCacheTTLSec int    `json:"query_cache_ttl_sec" yaml:"query_cache_ttl_sec" toml:"query_cache_ttl_sec"`

	// Generation bounds, in seconds.
	StepTimeoutSec int `json:"step_timeout_sec" yaml:"step_timeout_sec" toml:"step_timeout_sec"`
	MaxWaitSec     int `json:"max_wait_sec" yaml:"max_wait_sec" toml:"max_wait_sec"`
}

// StepTimeout converts the configured seconds to a duration (0 if unset).
func (c Config) StepTimeout() time.Duration { return time.Duration(c.StepTimeoutSec) * time.Second }

// MaxWait converts the configured seconds to a duration (0 if unset).
func (c Config) MaxWait() time.Duration { return time.Duration(c.MaxWaitSec) * time.Second }

// QueryCacheTTL converts the configured seconds to a duration (0 if unset).
func (c Config) QueryCacheTTL() time.Duration {
	return time.Duration(c.QueryCacheTTLSec) * time.Second
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
