// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package main

import (
	"flag"
	"time"
)

// probeOptions holds flags for the probe command.
type probeOptions struct {
	// pages is how many bill-list pages to fetch.
	pages int

	// details is how many bills from the first page to fetch in full.
	details int

	// pageSize is the list page size sent to the API.
	pageSize int

	// jsonStats prints the final statistics as JSON instead of a table.
	jsonStats bool
}

func parseProbeFlags(args []string) (probeOptions, error) {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	opts := probeOptions{}
	fs.IntVar(&opts.pages, "pages", 1, "bill list pages to fetch")
	fs.IntVar(&opts.details, "details", 0, "bills from the first page to fetch in full")
	fs.IntVar(&opts.pageSize, "page-size", 20, "list page size (1-250)")
	fs.BoolVar(&opts.jsonStats, "json", false, "print statistics as JSON")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// serveOptions holds flags for the serve command.
type serveOptions struct {
	// listen overrides the configured metrics listen address when set.
	listen string

	// poll fetches one bill-list page on this interval; zero disables
	// polling.
	poll time.Duration
}

func parseServeFlags(args []string) (serveOptions, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	opts := serveOptions{}
	fs.StringVar(&opts.listen, "listen", "", "metrics listen address (overrides config)")
	fs.DurationVar(&opts.poll, "poll", 0, "bill list polling interval (0 disables)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}
