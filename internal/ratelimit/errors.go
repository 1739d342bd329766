// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package ratelimit

import (
	"errors"
	"fmt"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call
	// without invoking the work function. Callers should back off and let
	// the recovery timeout elapse rather than retrying immediately.
	ErrCircuitOpen = errors.New("circuit breaker is open - service unavailable")

	// ErrRateLimited signals that the token bucket stayed empty across a
	// wait-and-recheck cycle. It is resolved internally by the retry loop
	// and only surfaces if it recurs across the entire retry budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// CircuitOpenError carries the breaker state observed at rejection time.
// It unwraps to ErrCircuitOpen so callers can match with errors.Is.
type CircuitOpenError struct {
	// Name identifies the upstream whose circuit rejected the call.
	Name string

	// State is the breaker state at the moment of rejection.
	State State
}

// Error implements the error interface.
func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("%s: circuit breaker for %q is %s", ErrCircuitOpen.Error(), e.Name, e.State)
}

// Unwrap lets errors.Is(err, ErrCircuitOpen) match.
func (e *CircuitOpenError) Unwrap() error {
	return ErrCircuitOpen
}
