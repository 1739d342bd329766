// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus instrumentation for the outbound-call resilience layer:
// - Outbound request outcomes per upstream
// - Token-bucket waits (count + duration)
// - Retry attempts and backoff sleeps
// - Circuit breaker state, transitions, and rejections

var (
	// Outbound Request Metrics
	OutboundRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_requests_total",
			Help: "Total number of outbound API requests by outcome",
		},
		[]string{"upstream", "result"}, // result: "success", "failure", "rejected"
	)

	OutboundRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outbound_request_duration_seconds",
			Help:    "Duration of outbound API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"upstream"},
	)

	// Rate Limiting Metrics
	RateLimitWaits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_waits_total",
			Help: "Total number of times execution paused waiting for tokens",
		},
		[]string{"upstream"},
	)

	RateLimitWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rate_limit_wait_duration_seconds",
			Help:    "Time spent waiting for token bucket replenishment",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"upstream"},
	)

	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts after failed outbound calls",
		},
		[]string{"upstream"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	CircuitBreakerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejections_total",
			Help: "Total number of calls rejected by an open circuit breaker",
		},
		[]string{"name"},
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)
)

// RecordOutboundRequest records one completed outbound call with its outcome.
// result must be one of "success", "failure", "rejected".
func RecordOutboundRequest(upstream, result string, duration time.Duration) {
	OutboundRequests.WithLabelValues(upstream, result).Inc()
	if result != "rejected" {
		OutboundRequestDuration.WithLabelValues(upstream).Observe(duration.Seconds())
	}
}

// RecordRateLimitWait records one pause waiting for token replenishment.
func RecordRateLimitWait(upstream string, wait time.Duration) {
	RateLimitWaits.WithLabelValues(upstream).Inc()
	RateLimitWaitDuration.WithLabelValues(upstream).Observe(wait.Seconds())
}

// RecordRetryAttempt records one retry of a failed outbound call.
func RecordRetryAttempt(upstream string) {
	RetryAttempts.WithLabelValues(upstream).Inc()
}

// RecordCircuitTransition records a breaker state change and updates the
// state gauge. stateValue follows the 0=closed, 1=half-open, 2=open encoding.
func RecordCircuitTransition(name, fromState, toState string, stateValue float64) {
	CircuitBreakerTransitions.WithLabelValues(name, fromState, toState).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(stateValue)
}

// Handler returns the Prometheus exposition handler for the CLI serve mode.
func Handler() http.Handler {
	return promhttp.Handler()
}
