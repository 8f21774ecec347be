/*
PURPOSE:
  Environment overrides for Config: .env file first, then LLM_* and DEX_BENCH_* variables.

ERROR HANDLING:
  - A missing .env is fine; a malformed one or a non-numeric integer variable is an error.

RELATED FILES:
  - internal/config/config.go
*/

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// EnvFile is loaded (if present) before environment overrides are read.
// Variables already set in the process environment win over the file.
var EnvFile = ".env"

// ApplyEnv overlays LLM_BASE_URL, LLM_API_KEY and DEX_BENCH_* variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := godotenv.Load(EnvFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to load %s", EnvFile)
	}

	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("DEX_BENCH_MODELS"); v != "" {
		cfg.Models = splitList(v)
	}
	if v := os.Getenv("DEX_BENCH_DOCS_DIR"); v != "" {
		cfg.DocsDir = v
	}
	if v := os.Getenv("DEX_BENCH_RESULTS_DIR"); v != "" {
		cfg.ResultsDir = v
	}
	if v := os.Getenv("DEX_BENCH_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("DEX_BENCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	var err error
	if cfg.Concurrency, err = envInt("DEX_BENCH_CONCURRENCY", cfg.Concurrency); err != nil {
		return err
	}
	if cfg.Retries, err = envInt("DEX_BENCH_RETRIES", cfg.Retries); err != nil {
		return err
	}
	if cfg.RateLimitRPM, err = envInt("DEX_BENCH_RATE_LIMIT_RPM", cfg.RateLimitRPM); err != nil {
		return err
	}
	if v := os.Getenv("DEX_BENCH_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "invalid DEX_BENCH_REQUEST_TIMEOUT")
		}
		cfg.RequestTimeout = d
	}
	return nil
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback, errors.Wrapf(err, "invalid %s", name)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
