// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package ratelimit

import (
	"testing"
	"time"
)

// TestDefaultConfig_Valid verifies the shipped defaults pass validation
func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

// TestConfig_Validate covers per-field constraints
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero rate", func(c *Config) { c.RequestsPerSecond = 0 }, true},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, true},
		{"zero burst", func(c *Config) { c.BurstSize = 0 }, true},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, true},
		{"zero retries ok", func(c *Config) { c.MaxRetries = 0 }, false},
		{"zero initial backoff", func(c *Config) { c.InitialBackoff = 0 }, true},
		{"zero max backoff", func(c *Config) { c.MaxBackoff = 0 }, true},
		{"multiplier below one", func(c *Config) { c.BackoffMultiplier = 0.5 }, true},
		{"multiplier exactly one ok", func(c *Config) { c.BackoffMultiplier = 1.0 }, false},
		{"zero failure threshold", func(c *Config) { c.FailureThreshold = 0 }, true},
		{"zero recovery timeout", func(c *Config) { c.RecoveryTimeout = 0 }, true},
		{"zero half-open calls", func(c *Config) { c.HalfOpenMaxCalls = 0 }, true},
		{"max backoff below initial", func(c *Config) {
			c.InitialBackoff = 10 * time.Second
			c.MaxBackoff = time.Second
		}, true},
		{"max backoff equals initial ok", func(c *Config) {
			c.InitialBackoff = 5 * time.Second
			c.MaxBackoff = 5 * time.Second
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
		})
	}
}
