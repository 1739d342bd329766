// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/fedbillx/billsync/internal/config"
	"github.com/fedbillx/billsync/internal/congress"
	"github.com/fedbillx/billsync/internal/logging"
	"github.com/fedbillx/billsync/internal/metrics"
)

// runServe exposes the Prometheus endpoint and, when polling is enabled,
// keeps the limiter's metrics live by fetching one bill-list page per
// interval. Shuts down gracefully on SIGINT and SIGTERM.
func runServe(cfg *config.Config, opts serveOptions) error {
	listen := cfg.Metrics.Listen
	if opts.listen != "" {
		listen = opts.listen
	}
	if listen == "" {
		return fmt.Errorf("no metrics listen address configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rc *congress.ResilientClient
	if opts.poll > 0 {
		var err error
		rc, err = newResilientClient(cfg)
		if err != nil {
			return err
		}
		go pollLoop(ctx, rc, opts.poll)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if rc != nil {
		mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(rc.Stats()); err != nil {
				logging.Error().Err(err).Msg("Failed to encode stats")
			}
		})
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("listen", listen).Msg("Metrics server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// pollLoop fetches one bill-list page per interval until ctx is
// canceled. Failures are logged and absorbed; the limiter's breaker
// decides when to stop hitting the upstream. Each poll run carries its
// own correlation ID so its fetch can be tied back to the run.
func pollLoop(ctx context.Context, rc *congress.ResilientClient, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx := logging.ContextWithNewCorrelationID(ctx)
			log := logging.Ctx(runCtx)
			resp, err := rc.ListBills(runCtx, congress.ListBillsOptions{Limit: 20})
			if err != nil {
				log.Warn().Err(err).Msg("Poll fetch failed")
				continue
			}
			log.Debug().
				Int("bills", len(resp.Bills)).
				Msg("Poll fetch complete")
		}
	}
}
