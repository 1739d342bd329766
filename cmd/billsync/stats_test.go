// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/fedbillx/billsync/internal/ratelimit"
)

// TestPrintStats verifies every counter is rendered and the open-circuit
// guidance only appears when warranted
func TestPrintStats(t *testing.T) {
	ts := time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)
	stats := ratelimit.Stats{
		TotalRequests:            20,
		SuccessfulRequests:       17,
		FailedRequests:           3,
		RateLimitedRequests:      2,
		CircuitBreakerRejections: 1,
		TotalRetryAttempts:       4,
		LastRequestTime:          &ts,
		CircuitState:             ratelimit.StateClosed,
	}

	var buf strings.Builder
	printStats(&buf, "congress.gov", stats)
	out := buf.String()

	for _, want := range []string{
		"congress.gov",
		"Total requests:              20",
		"Successful requests:         17",
		"Failed requests:             3",
		"Rate limited requests:       2",
		"Circuit breaker rejections:  1",
		"Total retry attempts:        4",
		"Success rate:                85.00%",
		"Last request:                2026-08-14T09:30:00Z",
		"Last failure:                never",
		"Circuit state:               closed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "OPEN") {
		t.Error("Expected no open-circuit warning for a closed breaker")
	}

	stats.CircuitState = ratelimit.StateOpen
	buf.Reset()
	printStats(&buf, "congress.gov", stats)
	if !strings.Contains(buf.String(), "circuit breaker is OPEN") {
		t.Error("Expected operator guidance when the circuit is open")
	}
}

// TestPrintStatsJSON verifies the JSON snapshot keeps the state name
func TestPrintStatsJSON(t *testing.T) {
	var buf strings.Builder
	err := printStatsJSON(&buf, ratelimit.Stats{
		TotalRequests: 5,
		CircuitState:  ratelimit.StateHalfOpen,
	})
	if err != nil {
		t.Fatalf("printStatsJSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(buf.String()), &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v:\n%s", err, buf.String())
	}
	if got := decoded["circuit_state"]; got != "half-open" {
		t.Errorf("Expected circuit_state \"half-open\", got %v", got)
	}
	if got := decoded["total_requests"]; got != float64(5) {
		t.Errorf("Expected total_requests 5, got %v", got)
	}
}
