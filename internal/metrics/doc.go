// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

// Package metrics provides Prometheus instrumentation for billsync.
//
// All collectors are registered with the default registry via promauto at
// package load. The rate limiter and circuit breaker publish through the
// Record* helpers so callers never touch label values directly; the CLI's
// serve mode exposes the standard /metrics endpoint via Handler().
package metrics
