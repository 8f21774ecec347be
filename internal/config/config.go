/*
PURPOSE:
  Defines the configuration structure and loading logic for dex-bench.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of the LLM gateway, model list, concurrency and retries.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support .env files and environment overrides (LLM_*, DEX_BENCH_*).

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/llm, internal/store
  - Dependencies: gopkg.in/yaml.v3, github.com/joho/godotenv

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing config file falls back to defaults.
  - Validate() rejects values the scheduler cannot run with.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults match the original model roster and retry policy (3 retries).

USAGE:
  cfg, err := config.Load("dex-bench.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update DefaultConfig().

RELATED FILES:
  - internal/cli/root.go
  - internal/config/env.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config represents the full configuration for dex-bench.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Models         []string      `yaml:"models"`
	DocsDir        string        `yaml:"docs_dir"`
	ResultsDir     string        `yaml:"results_dir"`
	Store          string        `yaml:"store"` // "file" or "sqlite"
	SQLitePath     string        `yaml:"sqlite_path"`
	Concurrency    int           `yaml:"concurrency"`
	Retries        int           `yaml:"retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RateLimitRPM caps requests per minute to the gateway; 0 disables it.
	RateLimitRPM int      `yaml:"rate_limit_rpm"`
	Temperature  *float64 `yaml:"temperature"`
	LogLevel     string   `yaml:"log_level"`
	LogJSON      bool     `yaml:"log_json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:4000/v1",
		Models: []string{
			"openai/gpt-oss-20b",
			"google/gemma-3-12b-it",
			"google/gemma-3-27b-it",
			"qwen/qwen3-vl-30b-a3b-instruct",
		},
		DocsDir:        "./docs",
		ResultsDir:     "./results",
		Store:          StoreFile,
		SQLitePath:     "./results/runs.db",
		Concurrency:    1,
		Retries:        3,
		RetryDelay:     2 * time.Second,
		RequestTimeout: 5 * time.Minute,
		LogLevel:       "info",
	}
}

// DefaultPaths are searched in order when no config path is given.
var DefaultPaths = []string{"dex-bench.yaml", "dex-bench.yml", "bench.yaml"}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultPaths in order.
// If no file found, returns default config.
// Environment overrides are applied last in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else {
		for _, name := range DefaultPaths {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				break
			}
		}
	}

	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the scheduler and stores depend on.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return errors.Newf("concurrency must be a positive integer, got %d", c.Concurrency)
	}
	if c.Retries < 0 {
		return errors.Newf("retries must be a non-negative integer, got %d", c.Retries)
	}
	if len(c.Models) == 0 {
		return errors.WithHint(errors.New("no models configured"), "add a models: list to dex-bench.yaml")
	}
	switch c.Store {
	case StoreFile, StoreSQLite:
	default:
		return errors.Newf("unknown store backend %q (want %q or %q)", c.Store, StoreFile, StoreSQLite)
	}
	if c.RateLimitRPM < 0 {
		return errors.Newf("rate_limit_rpm must not be negative, got %d", c.RateLimitRPM)
	}
	return nil
}
