// Package config loads client settings from a YAML file overlaid with
// GITNOSTR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI needs to build an engine.
type Config struct {
	// Database is the SQLite file of the local replica and name cache.
	Database string `yaml:"database" env:"GITNOSTR_DATABASE"`

	// Sources are additional replica databases fanned out to alongside
	// Database.
	Sources []string `yaml:"sources" env:"GITNOSTR_SOURCES" envSeparator:","`

	// RedisURL, when set, moves the name cache to Redis.
	RedisURL string `yaml:"redis_url" env:"GITNOSTR_REDIS_URL"`

	// SecretKey signs published events. Hex or nsec.
	SecretKey string `yaml:"secret_key" env:"GITNOSTR_SECRET_KEY"`

	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"GITNOSTR_FETCH_TIMEOUT"`
	LogLevel     string        `yaml:"log_level" env:"GITNOSTR_LOG_LEVEL"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Database:     "gitnostr.db",
		FetchTimeout: 15 * time.Second,
		LogLevel:     "info",
	}
}

// Load reads path (skipped when empty), then applies the environment, then
// validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database) == "" {
		errs = append(errs, errors.New("database must not be empty"))
	}
	seen := map[string]string{filepath.Clean(c.Database): "database"}
	for i, s := range c.Sources {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, fmt.Errorf("sources[%d] must not be empty", i))
			continue
		}
		p := filepath.Clean(s)
		if prev, ok := seen[p]; ok {
			errs = append(errs, fmt.Errorf("sources[%d] repeats %s (%s)", i, prev, s))
			continue
		}
		seen[p] = fmt.Sprintf("sources[%d]", i)
	}
	if c.FetchTimeout < 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must not be negative, got %s", c.FetchTimeout))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
