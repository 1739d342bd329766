// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fedbillx/billsync/internal/config"
	"github.com/fedbillx/billsync/internal/congress"
	"github.com/fedbillx/billsync/internal/logging"
)

// runProbe issues a bounded set of Congress.gov calls through the
// limiter and prints the resulting statistics. It is the operator's way
// to verify connectivity, API key validity, and limiter behavior before
// enabling scheduled ingestion.
func runProbe(cfg *config.Config, opts probeOptions) error {
	rc, err := newResilientClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Every fetch in this probe session carries one correlation ID.
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)

	var firstPage *congress.BillListResponse
	for page := 0; page < opts.pages; page++ {
		resp, err := rc.ListBills(ctx, congress.ListBillsOptions{
			Limit:  opts.pageSize,
			Offset: page * opts.pageSize,
		})
		if err != nil {
			log.Error().Err(err).Int("page", page).Msg("Bill list fetch failed")
			break
		}
		if firstPage == nil {
			firstPage = resp
		}
		log.Info().
			Int("page", page).
			Int("bills", len(resp.Bills)).
			Int("total_count", resp.Pagination.Count).
			Msg("Fetched bill list page")
	}

	if firstPage != nil && opts.details > 0 {
		n := opts.details
		if n > len(firstPage.Bills) {
			n = len(firstPage.Bills)
		}
		for _, bill := range firstPage.Bills[:n] {
			number := bill.Number
			detail, err := rc.GetBill(ctx, bill.Congress, bill.Type, number)
			if err != nil {
				log.Error().
					Err(err).
					Int("congress", bill.Congress).
					Str("bill", bill.Type+number).
					Msg("Bill detail fetch failed")
				continue
			}
			event := log.Info().
				Int("congress", detail.Bill.Congress).
				Str("bill", detail.Bill.Type+detail.Bill.Number).
				Str("title", detail.Bill.Title)
			if detail.Bill.PolicyArea != nil {
				event = event.Str("policy_area", detail.Bill.PolicyArea.Name)
			}
			event.Msg("Fetched bill detail")
		}
	}

	if opts.jsonStats {
		return printStatsJSON(os.Stdout, rc.Stats())
	}
	printStats(os.Stdout, rc.Limiter().Name(), rc.Stats())
	return nil
}

// newResilientClient builds the Congress.gov client from the merged
// configuration.
func newResilientClient(cfg *config.Config) (*congress.ResilientClient, error) {
	if cfg.Congress.APIKey == "" {
		return nil, fmt.Errorf("congress API key not configured (set BILLSYNC_CONGRESS_API_KEY " +
			"or congress.api_key in config.yaml)")
	}
	return congress.NewResilientClient(congress.ClientConfig{
		BaseURL: cfg.Congress.BaseURL,
		APIKey:  cfg.Congress.APIKey,
		Timeout: cfg.Congress.Timeout,
	}, cfg.RateLimit)
}
