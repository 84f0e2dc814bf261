package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	HTTPAddr           string  `json:"httpAddr" yaml:"httpAddr"`
	LogLevel           string  `json:"logLevel" yaml:"logLevel"`
	LogFormat          string  `json:"logFormat" yaml:"logFormat"`
	DefaultCount       int     `json:"defaultCount" yaml:"defaultCount"`
	MaxCount           int     `json:"maxCount" yaml:"maxCount"`
	MaxStreamNameBytes int     `json:"maxStreamNameBytes" yaml:"maxStreamNameBytes"`
	EnableMetrics      bool    `json:"enableMetrics" yaml:"enableMetrics"`
	EnableTracing      bool    `json:"enableTracing" yaml:"enableTracing"`
	TracingEndpoint    string  `json:"tracingEndpoint" yaml:"tracingEndpoint"`
	TracingSampleRate  float64 `json:"tracingSampleRate" yaml:"tracingSampleRate"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:           ":8080",
		LogLevel:           "info",
		LogFormat:          "text",
		DefaultCount:       10,
		MaxCount:           10000,
		MaxStreamNameBytes: 256,
		EnableMetrics:      true,
		TracingEndpoint:    "localhost:4317",
		TracingSampleRate:  1,
	}
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("config: httpAddr is required")
	}
	if c.DefaultCount <= 0 {
		return fmt.Errorf("config: defaultCount must be positive, got %d", c.DefaultCount)
	}
	if c.MaxCount < c.DefaultCount {
		return fmt.Errorf("config: maxCount (%d) must be >= defaultCount (%d)", c.MaxCount, c.DefaultCount)
	}
	if c.MaxStreamNameBytes <= 0 {
		return fmt.Errorf("config: maxStreamNameBytes must be positive, got %d", c.MaxStreamNameBytes)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("config: tracingSampleRate must be within [0, 1], got %g", c.TracingSampleRate)
	}
	if c.EnableTracing && c.TracingEndpoint == "" {
		return fmt.Errorf("config: tracingEndpoint is required when tracing is enabled")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown logFormat %q", c.LogFormat)
	}
	return nil
}

// Load reads configuration from a JSON or YAML file (by extension), on top of
// Default(). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}
