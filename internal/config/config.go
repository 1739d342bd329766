// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

// Package config loads billsync configuration with layered sources:
// built-in defaults, an optional YAML file, and BILLSYNC_-prefixed
// environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/fedbillx/billsync/internal/congress"
	"github.com/fedbillx/billsync/internal/ratelimit"
	"github.com/fedbillx/billsync/internal/validation"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/billsync/config.yaml",
	"/etc/billsync/config.yml",
}

// ConfigPathEnvVar overrides the config file search entirely.
const ConfigPathEnvVar = "BILLSYNC_CONFIG_PATH"

// envPrefix scopes all other environment overrides.
const envPrefix = "BILLSYNC_"

// Config is the root billsync configuration.
type Config struct {
	Logging   LoggingConfig    `koanf:"logging"`
	Metrics   MetricsConfig    `koanf:"metrics"`
	Congress  CongressConfig   `koanf:"congress"`
	RateLimit ratelimit.Config `koanf:"rate_limit"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls the Prometheus endpoint exposed by serve mode.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Listen  string `koanf:"listen" validate:"required_if=Enabled true"`
}

// CongressConfig holds Congress.gov API client settings.
type CongressConfig struct {
	// APIKey is the api.data.gov key. Required for probe and serve.
	APIKey string `koanf:"api_key"`

	// BaseURL overrides the hosted API root.
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment layers.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Listen:  "127.0.0.1:9234",
		},
		Congress: CongressConfig{
			APIKey:  "",
			BaseURL: congress.DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		RateLimit: congress.DefaultRateLimitConfig(),
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks struct tags plus the rate limit section's cross-field
// constraints.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	return nil
}

// findConfigFile returns the first existing config file, honoring
// BILLSYNC_CONFIG_PATH.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// configSections maps environment name prefixes (after BILLSYNC_) to
// koanf sections.
var configSections = []string{
	"rate_limit",
	"congress",
	"logging",
	"metrics",
}

// envTransformFunc maps environment variable names to koanf paths:
//
//	BILLSYNC_CONGRESS_API_KEY      -> congress.api_key
//	BILLSYNC_RATE_LIMIT_BURST_SIZE -> rate_limit.burst_size
//	BILLSYNC_LOGGING_LEVEL         -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	for _, section := range configSections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	// Unknown keys pass through; koanf ignores paths that match no
	// struct field.
	return key
}
