// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package ratelimit

import (
	"math"
	"sync"
	"testing"
	"time"
)

// TestTokenBucket_StartsFull verifies a new bucket allows an immediate burst
func TestTokenBucket_StartsFull(t *testing.T) {
	clk := newManualClock()
	tb := newTokenBucket(2.0, 5, clk.now)

	for i := 0; i < 5; i++ {
		admitted, wait := tb.consume(1)
		if !admitted {
			t.Fatalf("Expected token %d of 5 to be admitted", i+1)
		}
		if wait != 0 {
			t.Errorf("Expected zero wait on admission, got %v", wait)
		}
	}

	admitted, _ := tb.consume(1)
	if admitted {
		t.Error("Expected rejection after burst exhausted with no time advancing")
	}
}

// TestTokenBucket_Conservation verifies cumulative consumption never exceeds
// capacity when no time advances between calls
func TestTokenBucket_Conservation(t *testing.T) {
	clk := newManualClock()
	tb := newTokenBucket(10.0, 8, clk.now)

	consumed := 0
	for i := 0; i < 20; i++ {
		if admitted, _ := tb.consume(1); admitted {
			consumed++
		}
	}

	if consumed != 8 {
		t.Errorf("Expected exactly 8 tokens consumed from capacity-8 bucket, got %d", consumed)
	}
}

// TestTokenBucket_RefillExact verifies refill is linear and exact under a
// fixed clock
func TestTokenBucket_RefillExact(t *testing.T) {
	clk := newManualClock()
	tb := newTokenBucket(2.0, 10, clk.now)

	// Drain completely.
	for i := 0; i < 10; i++ {
		tb.consume(1)
	}
	if got := tb.balance(); got != 0 {
		t.Fatalf("Expected empty bucket, got %f", got)
	}

	// 1.5s at 2 tokens/s refills exactly 3 tokens.
	clk.advance(1500 * time.Millisecond)
	if got := tb.balance(); math.Abs(got-3.0) > 1e-9 {
		t.Errorf("Expected exactly 3 tokens after 1.5s at 2/s, got %f", got)
	}

	// Refill clamps at capacity.
	clk.advance(time.Hour)
	if got := tb.balance(); got != 10 {
		t.Errorf("Expected refill clamped at capacity 10, got %f", got)
	}
}

// TestTokenBucket_WaitTimeIsDeficitOverRate verifies rejections report the
// exact wait for the deficit to accrue
func TestTokenBucket_WaitTimeIsDeficitOverRate(t *testing.T) {
	clk := newManualClock()
	tb := newTokenBucket(2.0, 2, clk.now)

	tb.consume(1)
	tb.consume(1)

	admitted, wait := tb.consume(1)
	if admitted {
		t.Fatal("Expected rejection from empty bucket")
	}
	// Deficit of 1 token at 2 tokens/s is 500ms.
	if wait != 500*time.Millisecond {
		t.Errorf("Expected 500ms wait, got %v", wait)
	}

	// Partial refill shrinks the deficit: after 250ms there are 0.5 tokens,
	// so 0.5 remain to accrue at 2/s = 250ms.
	clk.advance(250 * time.Millisecond)
	admitted, wait = tb.consume(1)
	if admitted {
		t.Fatal("Expected rejection with only half a token")
	}
	if wait != 250*time.Millisecond {
		t.Errorf("Expected 250ms wait, got %v", wait)
	}
}

// TestTokenBucket_NoPartialConsumption verifies a rejected consume leaves
// the balance untouched
func TestTokenBucket_NoPartialConsumption(t *testing.T) {
	clk := newManualClock()
	tb := newTokenBucket(1.0, 3, clk.now)

	tb.consume(2) // balance 1

	admitted, _ := tb.consume(3)
	if admitted {
		t.Fatal("Expected rejection when requesting 3 with balance 1")
	}
	if got := tb.balance(); got != 1 {
		t.Errorf("Expected balance unchanged at 1 after rejection, got %f", got)
	}

	// The remaining token is still consumable.
	if admitted, _ := tb.consume(1); !admitted {
		t.Error("Expected remaining token to be consumable after a rejection")
	}
}

// TestTokenBucket_NonMonotonicClock verifies a backwards clock refills
// nothing rather than going negative
func TestTokenBucket_NonMonotonicClock(t *testing.T) {
	clk := newManualClock()
	tb := newTokenBucket(5.0, 2, clk.now)

	tb.consume(2)
	clk.advance(-time.Second)

	admitted, _ := tb.consume(1)
	if admitted {
		t.Error("Expected rejection: backwards clock must not mint tokens")
	}
	if got := tb.balance(); got < 0 {
		t.Errorf("Expected non-negative balance, got %f", got)
	}
}

// TestTokenBucket_ConcurrentConsume verifies the critical section under
// contention: exactly capacity tokens admitted, no lost updates
func TestTokenBucket_ConcurrentConsume(t *testing.T) {
	clk := newManualClock()
	tb := newTokenBucket(1.0, 50, clk.now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admittedCount := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if admitted, _ := tb.consume(1); admitted {
				mu.Lock()
				admittedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admittedCount != 50 {
		t.Errorf("Expected exactly 50 admissions under contention, got %d", admittedCount)
	}
}
