// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

// Package main is the billsync operator CLI.
//
// Billsync is the outbound-call resilience layer FedBillX uses to ingest
// legislative data from the Congress.gov v3 API. Every request passes
// through a token-bucket rate limiter, a three-state circuit breaker, and
// a bounded exponential-backoff retry loop, so a misbehaving upstream
// degrades ingestion instead of breaking it.
//
// # Commands
//
//	billsync probe   Issue a bounded set of API calls through the limiter
//	                 and print the resulting statistics.
//	billsync serve   Expose Prometheus metrics, optionally polling the
//	                 bill list on an interval to keep them live.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (BILLSYNC_ prefix, e.g. BILLSYNC_CONGRESS_API_KEY)
//   - Config file (config.yaml, or BILLSYNC_CONFIG_PATH)
//   - Built-in defaults
//
// The defaults keep steady-state traffic inside the hosted API's 1,000
// requests/hour quota: 1 req/s sustained with a burst of 5.
//
// # Example Usage
//
//	export BILLSYNC_CONGRESS_API_KEY=your-api-data-gov-key
//	billsync probe -pages 2 -details 3
//
//	billsync serve -poll 5m
package main

import (
	"fmt"
	"os"

	"github.com/fedbillx/billsync/internal/config"
	"github.com/fedbillx/billsync/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "billsync: %v\n", err)
		return 1
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	switch args[0] {
	case "probe":
		opts, err := parseProbeFlags(args[1:])
		if err != nil {
			return 2
		}
		if err := runProbe(cfg, opts); err != nil {
			logging.Error().Err(err).Msg("Probe failed")
			return 1
		}
		return 0

	case "serve":
		opts, err := parseServeFlags(args[1:])
		if err != nil {
			return 2
		}
		if err := runServe(cfg, opts); err != nil {
			logging.Error().Err(err).Msg("Serve failed")
			return 1
		}
		return 0

	case "help", "-h", "--help":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "billsync: unknown command %q\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: billsync <command> [flags]

Commands:
  probe   Issue API calls through the rate limiter and print statistics
  serve   Expose Prometheus metrics (and optionally poll the bill list)
  help    Show this message

Run "billsync <command> -h" for command flags.
`)
}
