// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package congress

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fedbillx/billsync/internal/ratelimit"
)

// quickRLConfig keeps resilient-client tests fast: no retries, generous
// bucket, small failure threshold, and quiet logging.
func quickRLConfig() ratelimit.Config {
	cfg := DefaultRateLimitConfig()
	cfg.RequestsPerSecond = 1000
	cfg.BurstSize = 1000
	cfg.MaxRetries = 0
	cfg.FailureThreshold = 2
	cfg.RecoveryTimeout = time.Hour
	cfg.LogRateLimits = false
	cfg.LogCircuitState = false
	return cfg
}

func newTestResilientClient(t *testing.T, handler http.Handler, cfg ratelimit.Config) *ResilientClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rc, err := NewResilientClient(ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	}, cfg)
	if err != nil {
		t.Fatalf("NewResilientClient: %v", err)
	}
	return rc
}

// TestDefaultRateLimitConfig verifies the quota-tuned defaults
func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}
	if cfg.RequestsPerSecond != 1.0 || cfg.BurstSize != 5 {
		t.Errorf("Expected 1 req/s burst 5, got %f/%d", cfg.RequestsPerSecond, cfg.BurstSize)
	}
	if cfg.MaxRetries != 3 || cfg.InitialBackoff != 2*time.Second || cfg.MaxBackoff != 30*time.Second {
		t.Errorf("Unexpected retry settings: %d retries, %s..%s",
			cfg.MaxRetries, cfg.InitialBackoff, cfg.MaxBackoff)
	}
	if cfg.FailureThreshold != 3 || cfg.RecoveryTimeout != 60*time.Second {
		t.Errorf("Unexpected breaker settings: threshold %d, recovery %s",
			cfg.FailureThreshold, cfg.RecoveryTimeout)
	}
}

// TestResilientClient_ListBills verifies the happy path records stats
func TestResilientClient_ListBills(t *testing.T) {
	rc := newTestResilientClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(billListJSON))
	}), quickRLConfig())

	resp, err := rc.ListBills(context.Background(), ListBillsOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(resp.Bills) != 2 {
		t.Errorf("Expected 2 bills, got %d", len(resp.Bills))
	}

	stats := rc.Stats()
	if stats.TotalRequests != 1 || stats.SuccessfulRequests != 1 {
		t.Errorf("Expected 1/1 total/successful, got %d/%d",
			stats.TotalRequests, stats.SuccessfulRequests)
	}
	if got := rc.CircuitState(); got != ratelimit.StateClosed {
		t.Errorf("Expected closed circuit, got %s", got)
	}
}

// TestResilientClient_CircuitOpensOnRepeatedFailures verifies upstream
// errors open the shared breaker and stop hitting the server
func TestResilientClient_CircuitOpensOnRepeatedFailures(t *testing.T) {
	var hits atomic.Int64
	rc := newTestResilientClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}), quickRLConfig())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := rc.ListBills(ctx, ListBillsOptions{}); err == nil {
			t.Fatalf("Call %d: expected error", i)
		}
	}
	if got := rc.CircuitState(); got != ratelimit.StateOpen {
		t.Fatalf("Expected open circuit after 2 failures, got %s", got)
	}

	// Both endpoints share the breaker, so GetBill is rejected too.
	_, err := rc.GetBill(ctx, 118, "hr", "3076")
	if !errors.Is(err, ratelimit.ErrCircuitOpen) {
		t.Fatalf("Expected ErrCircuitOpen, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("Expected server untouched after circuit opened, got %d hits", hits.Load())
	}

	stats := rc.Stats()
	if stats.FailedRequests != 2 || stats.CircuitBreakerRejections != 1 {
		t.Errorf("Expected 2 failures / 1 rejection, got %d/%d",
			stats.FailedRequests, stats.CircuitBreakerRejections)
	}
}

// TestResilientClient_ResetStats verifies stats passthrough
func TestResilientClient_ResetStats(t *testing.T) {
	rc := newTestResilientClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(billListJSON))
	}), quickRLConfig())

	if _, err := rc.ListBills(context.Background(), ListBillsOptions{}); err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	rc.ResetStats()
	if got := rc.Stats().TotalRequests; got != 0 {
		t.Errorf("Expected counters zeroed, got %d", got)
	}
}
