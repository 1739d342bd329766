// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// manualClock is a settable time source for deterministic timing tests.
type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestLimiter builds a Limiter whose clock is manual and whose sleeps
// advance that clock instead of blocking, so retry and refill timing are
// exact.
func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *manualClock) {
	t.Helper()

	l, err := New("test-upstream", cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clk := newManualClock()
	l.now = clk.now
	l.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		clk.advance(d)
		return nil
	}
	l.bucket = newTokenBucket(cfg.RequestsPerSecond, cfg.BurstSize, clk.now)
	l.breaker = newCircuitBreaker("test-upstream", cfg, clk.now)
	return l, clk
}
