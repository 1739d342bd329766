// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package ratelimit

import (
	"fmt"
	"time"

	"github.com/fedbillx/billsync/internal/validation"
)

// Config holds the immutable configuration supplied when constructing a
// Limiter. Zero values are rejected by Validate; use DefaultConfig as a
// starting point and override per upstream.
type Config struct {
	// RequestsPerSecond is the sustained token refill rate.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`

	// BurstSize is the token bucket capacity (maximum burst).
	BurstSize int `koanf:"burst_size" validate:"min=1"`

	// MaxRetries bounds retry attempts after the initial one. Zero disables
	// retries entirely.
	MaxRetries int `koanf:"max_retries" validate:"min=0"`

	// InitialBackoff is the first retry delay.
	InitialBackoff time.Duration `koanf:"initial_backoff" validate:"gt=0"`

	// MaxBackoff caps each individual backoff sleep. The internally stored
	// backoff value keeps growing geometrically past this cap so the growth
	// curve stays deterministic; only the sleep duration is clamped.
	MaxBackoff time.Duration `koanf:"max_backoff" validate:"gt=0"`

	// BackoffMultiplier is the geometric growth factor between attempts.
	BackoffMultiplier float64 `koanf:"backoff_multiplier" validate:"gte=1"`

	// FailureThreshold is the consecutive-failure count that opens the
	// circuit from the closed state.
	FailureThreshold int `koanf:"failure_threshold" validate:"min=1"`

	// RecoveryTimeout is how long an open circuit rejects calls before the
	// next admission check transitions it to half-open.
	RecoveryTimeout time.Duration `koanf:"recovery_timeout" validate:"gt=0"`

	// HalfOpenMaxCalls bounds probe calls admitted while half-open.
	HalfOpenMaxCalls int `koanf:"half_open_max_calls" validate:"min=1"`

	// LogRateLimits enables logging of token-bucket waits.
	LogRateLimits bool `koanf:"log_rate_limits"`

	// LogCircuitState enables logging of circuit state transitions.
	LogCircuitState bool `koanf:"log_circuit_state"`
}

// DefaultConfig returns the general-purpose defaults: 10 req/s with a burst
// of 20, three retries backing off 1s to 60s at 2x, and a breaker that opens
// after 5 consecutive failures with a 60s recovery window.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10.0,
		BurstSize:         20,
		MaxRetries:        3,
		InitialBackoff:    time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 2.0,
		FailureThreshold:  5,
		RecoveryTimeout:   60 * time.Second,
		HalfOpenMaxCalls:  3,
		LogRateLimits:     true,
		LogCircuitState:   true,
	}
}

// Validate checks field constraints and cross-field consistency.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c); err != nil {
		return fmt.Errorf("rate limit config: %w", err)
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("rate limit config: max_backoff (%s) must be >= initial_backoff (%s)",
			c.MaxBackoff, c.InitialBackoff)
	}
	return nil
}
