// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/fedbillx/billsync/internal/logging"
	"github.com/fedbillx/billsync/internal/metrics"
)

// WorkFunc is one unit of outbound work, in practice a single HTTP
// request-and-parse operation. It must return a non-nil error for any
// transport failure or non-2xx response; the limiter treats all errors
// uniformly with no special-casing of status codes.
type WorkFunc func(ctx context.Context) (interface{}, error)

// Limiter orchestrates the token bucket, circuit breaker, and retry loop
// around outbound calls to one upstream service.
type Limiter struct {
	name    string
	cfg     Config
	bucket  *tokenBucket
	breaker *circuitBreaker
	stats   statsRecorder

	// now and sleep are injectable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Limiter for the named upstream. The name labels logs and
// metrics; each upstream must own its own instance.
func New(name string, cfg Config) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{
		name:    name,
		cfg:     cfg,
		bucket:  newTokenBucket(cfg.RequestsPerSecond, cfg.BurstSize, nil),
		breaker: newCircuitBreaker(name, cfg, nil),
		now:     time.Now,
		sleep:   sleepContext,
	}, nil
}

// sleepContext blocks for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute runs work under the limiter's admission, breaker, and retry
// policy.
//
// The circuit breaker gate runs exactly once, up front: an open circuit
// fails the whole call with *CircuitOpenError before any token is consumed.
// Past the gate, the call is attempted up to MaxRetries+1 times with
// exponential backoff between failures; the last error is propagated when
// the budget is exhausted. Token-bucket waits are never themselves fatal
// unless they recur across every attempt.
//
// Cancellation of ctx during either sleep, or an error from work caused by
// ctx, stops the loop immediately; the failure is still recorded in stats.
func (l *Limiter) Execute(ctx context.Context, work WorkFunc) (interface{}, error) {
	if !l.breaker.callAllowed() {
		l.stats.recordRejection()
		state := l.breaker.currentState()
		metrics.RecordOutboundRequest(l.name, "rejected", 0)
		metrics.CircuitBreakerRejections.WithLabelValues(l.name).Inc()
		logging.Warn().
			Str("upstream", l.name).
			Str("state", state.String()).
			Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, &CircuitOpenError{Name: l.name, State: state}
	}

	var lastErr error
	retryCount := 0
	backoff := l.cfg.InitialBackoff

	for retryCount <= l.cfg.MaxRetries {
		admitted, wait := l.bucket.consume(1)
		if !admitted {
			l.stats.recordRateLimited()
			metrics.RecordRateLimitWait(l.name, wait)
			if l.cfg.LogRateLimits {
				logging.Info().
					Str("upstream", l.name).
					Dur("wait", wait).
					Msg("[RATE LIMIT] Token bucket empty, waiting")
			}
			if err := l.sleep(ctx, wait); err != nil {
				// A canceled wait counts as a full failed attempt even
				// though work never ran, so FailedRequests stays covered
				// by TotalRequests.
				now := l.now()
				l.stats.recordRequestStart(now)
				l.stats.recordFailure(now)
				return nil, fmt.Errorf("canceled while waiting for rate limit: %w", err)
			}
			if admitted, _ = l.bucket.consume(1); !admitted {
				// Still no token after the computed wait: another caller won
				// the contested refill. Burn a retry slot instead of
				// invoking work without admission.
				lastErr = ErrRateLimited
				if retryCount < l.cfg.MaxRetries {
					if err := l.backoffSleep(ctx, &backoff, retryCount, lastErr); err != nil {
						return nil, err
					}
					retryCount++
					continue
				}
				break
			}
		}

		start := l.now()
		l.stats.recordRequestStart(start)
		result, err := work(ctx)
		elapsed := l.now().Sub(start)

		if err == nil {
			l.stats.recordSuccess()
			l.breaker.recordSuccess()
			metrics.RecordOutboundRequest(l.name, "success", elapsed)
			return result, nil
		}

		lastErr = err
		l.stats.recordFailure(l.now())
		l.breaker.recordFailure()
		metrics.RecordOutboundRequest(l.name, "failure", elapsed)

		// Cancellation is a fail-fast path: recorded as a failure above,
		// no further retries.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("canceled: %w", err)
		}

		if retryCount < l.cfg.MaxRetries {
			if serr := l.backoffSleep(ctx, &backoff, retryCount, err); serr != nil {
				return nil, serr
			}
			retryCount++
			continue
		}
		break
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", l.cfg.MaxRetries+1, lastErr)
}

// backoffSleep sleeps min(backoff, MaxBackoff), grows the stored backoff
// geometrically (uncapped, so the curve stays deterministic), and records
// the retry in stats and metrics.
func (l *Limiter) backoffSleep(ctx context.Context, backoff *time.Duration, retryCount int, cause error) error {
	sleepFor := *backoff
	if sleepFor > l.cfg.MaxBackoff {
		sleepFor = l.cfg.MaxBackoff
	}

	l.stats.recordRetry()
	metrics.RecordRetryAttempt(l.name)
	logging.Warn().
		Err(cause).
		Str("upstream", l.name).
		Int("attempt", retryCount+1).
		Int("max_retries", l.cfg.MaxRetries).
		Dur("backoff", sleepFor).
		Msg("[RATE LIMIT] Request failed, retrying")

	if err := l.sleep(ctx, sleepFor); err != nil {
		return fmt.Errorf("canceled during backoff: %w", err)
	}

	*backoff = time.Duration(float64(*backoff) * l.cfg.BackoffMultiplier)
	return nil
}

// Name returns the upstream label the limiter was constructed with.
func (l *Limiter) Name() string {
	return l.name
}

// State returns the circuit breaker's current state without side effects.
func (l *Limiter) State() State {
	return l.breaker.currentState()
}

// Stats returns a consistent snapshot of activity counters plus the
// breaker state.
func (l *Limiter) Stats() Stats {
	s := l.stats.snapshot()
	s.CircuitState = l.breaker.currentState()
	return s
}

// ResetStats zeroes all counters and timestamps. Breaker and bucket state
// are untouched; this is an operator action, not a recovery mechanism.
func (l *Limiter) ResetStats() {
	l.stats.reset()
}

// Do runs work under the limiter and returns a typed result, avoiding the
// interface{} assertion at every call site.
func Do[T any](ctx context.Context, l *Limiter, work func(ctx context.Context) (T, error)) (T, error) {
	result, err := l.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return work(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("ratelimit: unexpected result type %T", result)
	}
	return typed, nil
}
