// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

/*
resilient_client.go - Rate-Limited Congress.gov Client

This file wraps Client in a single ratelimit.Limiter so every outbound
request shares one token bucket, one circuit breaker, and one retry
policy. The hosted API allows 1,000 requests per hour; the default
sustained rate of 1 req/s with a burst of 5 keeps steady-state ingestion
comfortably inside that quota while still absorbing short bursts during
backfill.

All API methods route through the same limiter instance, so stats and
breaker state reflect total traffic to the upstream rather than
per-endpoint slices.
*/

//nolint:staticcheck // File documentation, not package doc
package congress

import (
	"context"
	"time"

	"github.com/fedbillx/billsync/internal/ratelimit"
)

// DefaultRateLimitConfig returns the limiter settings tuned for the
// hosted Congress.gov API quota.
func DefaultRateLimitConfig() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	cfg.RequestsPerSecond = 1.0
	cfg.BurstSize = 5
	cfg.MaxRetries = 3
	cfg.InitialBackoff = 2 * time.Second
	cfg.MaxBackoff = 30 * time.Second
	cfg.BackoffMultiplier = 2.0
	cfg.FailureThreshold = 3
	cfg.RecoveryTimeout = 60 * time.Second
	return cfg
}

// ResilientClient is a Client whose every request passes through a
// shared rate limiter and circuit breaker.
type ResilientClient struct {
	client  *Client
	limiter *ratelimit.Limiter
}

// NewResilientClient wraps a Congress.gov client in a limiter built
// from rlCfg.
func NewResilientClient(clientCfg ClientConfig, rlCfg ratelimit.Config) (*ResilientClient, error) {
	client, err := NewClient(clientCfg)
	if err != nil {
		return nil, err
	}
	limiter, err := ratelimit.New("congress.gov", rlCfg)
	if err != nil {
		return nil, err
	}
	return &ResilientClient{
		client:  client,
		limiter: limiter,
	}, nil
}

// ListBills fetches one page of bills under the limiter's policy.
func (rc *ResilientClient) ListBills(ctx context.Context, opts ListBillsOptions) (*BillListResponse, error) {
	return ratelimit.Do(ctx, rc.limiter, func(ctx context.Context) (*BillListResponse, error) {
		return rc.client.ListBills(ctx, opts)
	})
}

// GetBill fetches one bill's detail record under the limiter's policy.
func (rc *ResilientClient) GetBill(ctx context.Context, congress int, billType, number string) (*BillDetailResponse, error) {
	return ratelimit.Do(ctx, rc.limiter, func(ctx context.Context) (*BillDetailResponse, error) {
		return rc.client.GetBill(ctx, congress, billType, number)
	})
}

// Limiter exposes the underlying limiter, mainly for stats display.
func (rc *ResilientClient) Limiter() *ratelimit.Limiter {
	return rc.limiter
}

// Stats returns the limiter's activity snapshot.
func (rc *ResilientClient) Stats() ratelimit.Stats {
	return rc.limiter.Stats()
}

// ResetStats zeroes the limiter's counters.
func (rc *ResilientClient) ResetStats() {
	rc.limiter.ResetStats()
}

// CircuitState returns the breaker state without side effects.
func (rc *ResilientClient) CircuitState() ratelimit.State {
	return rc.limiter.State()
}
