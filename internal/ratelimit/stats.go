// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of limiter activity. Counters are
// monotonically non-decreasing between resets; a snapshot is internally
// consistent because every mutation and read shares one critical section.
type Stats struct {
	// TotalRequests counts attempts: every work invocation (retries
	// included) plus admission waits canceled before work could run.
	TotalRequests int64 `json:"total_requests"`

	// SuccessfulRequests counts attempts whose work returned nil error.
	SuccessfulRequests int64 `json:"successful_requests"`

	// FailedRequests counts failed attempts: work errors and canceled
	// admission waits. Never exceeds TotalRequests.
	FailedRequests int64 `json:"failed_requests"`

	// RateLimitedRequests counts pauses waiting for token replenishment.
	RateLimitedRequests int64 `json:"rate_limited_requests"`

	// CircuitBreakerRejections counts Execute calls refused by an open
	// circuit without invoking work.
	CircuitBreakerRejections int64 `json:"circuit_breaker_rejections"`

	// TotalRetryAttempts counts re-invocations scheduled after failures.
	TotalRetryAttempts int64 `json:"total_retry_attempts"`

	// LastRequestTime is the start of the most recent attempt, nil before
	// the first one.
	LastRequestTime *time.Time `json:"last_request_time,omitempty"`

	// LastFailureTime is the most recent failed attempt, nil if none.
	LastFailureTime *time.Time `json:"last_failure_time,omitempty"`

	// CircuitState is the breaker state observed when the snapshot was
	// taken.
	CircuitState State `json:"circuit_state"`
}

// SuccessRate returns successful/total in [0, 1], or 0 before any requests.
func (s Stats) SuccessRate() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.SuccessfulRequests) / float64(s.TotalRequests)
}

// SuccessRatePercent formats the success rate for operator display,
// e.g. "85.00%".
func (s Stats) SuccessRatePercent() string {
	return fmt.Sprintf("%.2f%%", s.SuccessRate()*100)
}

// statsRecorder accumulates counters under one mutex so no counter from a
// single event can be observed ahead of another.
type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func (r *statsRecorder) recordRequestStart(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.TotalRequests++
	t := now
	r.stats.LastRequestTime = &t
}

func (r *statsRecorder) recordSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.SuccessfulRequests++
}

func (r *statsRecorder) recordFailure(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.FailedRequests++
	t := now
	r.stats.LastFailureTime = &t
}

func (r *statsRecorder) recordRateLimited() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.RateLimitedRequests++
}

func (r *statsRecorder) recordRejection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.CircuitBreakerRejections++
}

func (r *statsRecorder) recordRetry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.TotalRetryAttempts++
}

// snapshot copies the counters. Timestamp pointers are duplicated so the
// caller's copy is immune to later resets.
func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats
	if r.stats.LastRequestTime != nil {
		t := *r.stats.LastRequestTime
		s.LastRequestTime = &t
	}
	if r.stats.LastFailureTime != nil {
		t := *r.stats.LastFailureTime
		s.LastFailureTime = &t
	}
	return s
}

// reset zeroes every counter and clears both timestamps atomically.
func (r *statsRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = Stats{}
}
