// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package ratelimit

import (
	"math"
	"sync"
	"time"
)

// tokenBucket implements continuous-refill token bucket admission control.
//
// Tokens accrue linearly at rate per second up to capacity. consume either
// admits the request (subtracting tokens) or reports the exact wait needed
// for the deficit to refill, without partial consumption. The refill,
// compare, and subtract sequence is one critical section; no caller can
// observe a partially updated balance.
type tokenBucket struct {
	rate     float64 // tokens added per second
	capacity int

	mu         sync.Mutex
	tokens     float64 // invariant: 0 <= tokens <= capacity
	lastUpdate time.Time

	// now is injectable for deterministic tests; defaults to time.Now.
	now func() time.Time
}

// newTokenBucket creates a bucket starting at full capacity, allowing an
// immediate burst.
func newTokenBucket(rate float64, capacity int, now func() time.Time) *tokenBucket {
	if now == nil {
		now = time.Now
	}
	return &tokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastUpdate: now(),
		now:        now,
	}
}

// consume attempts to take n tokens from the bucket.
//
// Returns (true, 0) when admitted. Otherwise returns (false, wait) where
// wait is exactly (n - tokens) / rate: the time for enough tokens to accrue
// assuming no competing consumers. The balance is not mutated on failure.
func (tb *tokenBucket) consume(n int) (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	elapsed := now.Sub(tb.lastUpdate)

	// Refill is linear in elapsed time, never retroactive. A non-monotonic
	// clock (elapsed < 0) refills nothing.
	if elapsed > 0 {
		tb.tokens = math.Min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.rate)
	}
	tb.lastUpdate = now

	if tb.tokens >= float64(n) {
		tb.tokens -= float64(n)
		return true, 0
	}

	needed := float64(n) - tb.tokens
	wait := time.Duration(needed / tb.rate * float64(time.Second))
	return false, wait
}

// balance reports the current token count after a refill, for tests and
// diagnostics.
func (tb *tokenBucket) balance() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if elapsed := now.Sub(tb.lastUpdate); elapsed > 0 {
		tb.tokens = math.Min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.rate)
		tb.lastUpdate = now
	}
	return tb.tokens
}
