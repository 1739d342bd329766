// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/fedbillx/billsync/internal/ratelimit"
)

// printStats renders the limiter statistics as an operator-facing table.
func printStats(w io.Writer, upstream string, s ratelimit.Stats) {
	fmt.Fprintf(w, "\nOutbound request statistics (%s)\n", upstream)
	fmt.Fprintf(w, "  Total requests:              %d\n", s.TotalRequests)
	fmt.Fprintf(w, "  Successful requests:         %d\n", s.SuccessfulRequests)
	fmt.Fprintf(w, "  Failed requests:             %d\n", s.FailedRequests)
	fmt.Fprintf(w, "  Rate limited requests:       %d\n", s.RateLimitedRequests)
	fmt.Fprintf(w, "  Circuit breaker rejections:  %d\n", s.CircuitBreakerRejections)
	fmt.Fprintf(w, "  Total retry attempts:        %d\n", s.TotalRetryAttempts)
	fmt.Fprintf(w, "  Success rate:                %s\n", s.SuccessRatePercent())
	fmt.Fprintf(w, "  Last request:                %s\n", formatTime(s.LastRequestTime))
	fmt.Fprintf(w, "  Last failure:                %s\n", formatTime(s.LastFailureTime))
	fmt.Fprintf(w, "  Circuit state:               %s\n", s.CircuitState)

	if s.CircuitState == ratelimit.StateOpen {
		fmt.Fprintf(w, "\nWARNING: circuit breaker is OPEN - requests are failing fast.\n")
		fmt.Fprintf(w, "The upstream will be probed again after the recovery timeout elapses.\n")
	}
}

// printStatsJSON emits the same snapshot as indented JSON for scripting.
func printStatsJSON(w io.Writer, s ratelimit.Stats) error {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.RFC3339)
}
