// Package config loads service configuration from a file. Format is chosen
// by extension; environment variables override nothing here, main merges the
// two.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service. Zero values mean
// "unspecified" and are replaced by defaults in main.
type Config struct {
	Addr   string `json:"addr" yaml:"addr" toml:"addr"`
	Model  string `json:"model" yaml:"model" toml:"model"`
	System string `json:"system" yaml:"system" toml:"system"`
	// BaseURL overrides the OpenAI API endpoint, e.g. for a proxy.
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
	OrgID   string `json:"org_id" yaml:"org_id" toml:"org_id"`
	// MaxRetries bounds empty-response retries per topk query.
	MaxRetries int `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	// RequestsPerSecond gates outbound backend calls; zero disables.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst" toml:"burst"`
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
