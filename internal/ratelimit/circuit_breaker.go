// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package ratelimit

import (
	"sync"
	"time"

	"github.com/fedbillx/billsync/internal/logging"
	"github.com/fedbillx/billsync/internal/metrics"
)

// State is a circuit breaker state.
type State int

const (
	// StateClosed admits all calls. Initial state.
	StateClosed State = iota

	// StateHalfOpen admits a bounded number of probe calls to test whether
	// the upstream has recovered.
	StateHalfOpen

	// StateOpen rejects all calls until the recovery timeout elapses.
	StateOpen
)

// String returns the state name used in logs, metrics, and stats output.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the state name so stats snapshots read naturally.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// metricValue encodes the state for the Prometheus gauge
// (0=closed, 1=half-open, 2=open).
func (s State) metricValue() float64 {
	return float64(s)
}

// circuitBreaker is a three-state breaker driven entirely by
// callAllowed/recordSuccess/recordFailure; there is no background timer.
// The Open to HalfOpen transition happens as a side effect of the first
// admission check at or after lastFailureTime + recoveryTimeout.
//
// Recovery probing is deliberately conservative: any single failure while
// half-open reopens the circuit and restarts the recovery clock.
type circuitBreaker struct {
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	halfOpenMaxCalls int
	logTransitions   bool

	// now is injectable for deterministic tests; defaults to time.Now.
	now func() time.Time

	mu              sync.Mutex
	state           State
	failureCount    int // consecutive failures since last reset to closed
	lastFailureTime time.Time
	halfOpenCalls   int // probes admitted in the current half-open period
}

func newCircuitBreaker(name string, cfg Config, now func() time.Time) *circuitBreaker {
	if now == nil {
		now = time.Now
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(StateClosed.metricValue())
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
	return &circuitBreaker{
		name:             name,
		failureThreshold: cfg.FailureThreshold,
		recoveryTimeout:  cfg.RecoveryTimeout,
		halfOpenMaxCalls: cfg.HalfOpenMaxCalls,
		logTransitions:   cfg.LogCircuitState,
		now:              now,
		state:            StateClosed,
	}
}

// callAllowed reports whether a call may proceed, with two side effects:
// an expired open circuit transitions to half-open (admitting that call),
// and a half-open admission counts against halfOpenMaxCalls.
func (cb *circuitBreaker) callAllowed() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if !cb.lastFailureTime.IsZero() && cb.now().Sub(cb.lastFailureTime) >= cb.recoveryTimeout {
			cb.transitionTo(StateHalfOpen)
			return true
		}
		return false

	case StateHalfOpen:
		if cb.halfOpenCalls < cb.halfOpenMaxCalls {
			cb.halfOpenCalls++
			return true
		}
		return false

	default:
		return false
	}
}

// recordSuccess closes a half-open circuit and clears the consecutive
// failure count.
func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.transitionTo(StateClosed)
	}
	cb.failureCount = 0
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cb.name).Set(0)
}

// recordFailure counts a failure and opens the circuit when warranted.
// A failure observed while already open still restamps lastFailureTime,
// pushing recovery out.
func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = cb.now()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cb.name).Set(float64(cb.failureCount))

	switch {
	case cb.state == StateHalfOpen:
		// Single strike: any half-open failure reopens immediately.
		cb.transitionTo(StateOpen)
	case cb.state == StateClosed && cb.failureCount >= cb.failureThreshold:
		cb.transitionTo(StateOpen)
	}
}

// currentState returns the state without side effects.
func (cb *circuitBreaker) currentState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// transitionTo moves the breaker to newState. Must be called with mu held.
func (cb *circuitBreaker) transitionTo(newState State) {
	oldState := cb.state
	if oldState == newState {
		return
	}
	cb.state = newState

	switch newState {
	case StateHalfOpen:
		cb.halfOpenCalls = 0
	case StateClosed:
		cb.failureCount = 0
		cb.halfOpenCalls = 0
	}

	metrics.RecordCircuitTransition(cb.name, oldState.String(), newState.String(), newState.metricValue())

	if cb.logTransitions {
		logging.Info().
			Str("name", cb.name).
			Str("from", oldState.String()).
			Str("to", newState.String()).
			Msg("[CIRCUIT BREAKER] State transition")
	}
}
