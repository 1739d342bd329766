// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

// Package ratelimit governs every outbound call billsync makes to an
// external, rate-limited, occasionally-failing API.
//
// A Limiter composes three cooperating pieces around an arbitrary unit of
// work:
//
//   - a token bucket that caps the sustained request rate with burst
//     tolerance,
//   - a three-state circuit breaker (closed / open / half-open) that stops
//     calls to a persistently failing upstream and probes for recovery,
//   - bounded exponential-backoff retry for transient failures.
//
// Control flow per Execute call: circuit breaker gate, token bucket
// admission (sleeping for replenishment when empty), work invocation, then
// success/failure accounting feeding both the breaker and the live Stats
// snapshot. The breaker gate runs once per Execute call, not per retry: a
// circuit that opens mid-loop finishes its committed backoff sequence, and
// the next Execute call is what gets rejected.
//
// Each upstream service gets its own Limiter; instances must not be shared
// across upstreams. All methods are safe for concurrent use. Blocking
// sleeps (token waits and backoff) block only the calling goroutine and
// hold no locks while sleeping.
package ratelimit
