// Package worker runs periodic background scans for sync-enabled
// mailboxes.
package worker

import (
	"context"
	"time"

	"jobtrack_server/core/port/in"
	"jobtrack_server/core/port/out"
	"jobtrack_server/pkg/apperr"

	"github.com/rs/zerolog"
)

const (
	// Grace period after boot before the first sweep.
	startupDelay = 30 * time.Second

	// Upper bound for one full sweep across all owners.
	sweepTimeout = 10 * time.Minute
)

// ScanWorker sweeps sync-enabled mailboxes on a ticker. The per-owner
// scan lock is the only coordination: when a scan is already running
// for an owner the sweep skips them, it never queues behind them.
type ScanWorker struct {
	scans    in.ScanService
	accounts out.MailAccountRepository
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger
}

func NewScanWorker(scans in.ScanService, accounts out.MailAccountRepository, interval time.Duration, log zerolog.Logger) *ScanWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ScanWorker{
		scans:    scans,
		accounts: accounts,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		log:      log.With().Str("component", "scan_worker").Logger(),
	}
}

// Start begins the sweep loop.
func (w *ScanWorker) Start() {
	w.log.Info().Dur("interval", w.interval).Msg("scan worker starting")
	go w.run()
}

// Stop cancels the loop and any in-flight sweep.
func (w *ScanWorker) Stop() {
	w.log.Info().Msg("scan worker stopping")
	w.cancel()
}

func (w *ScanWorker) run() {
	select {
	case <-w.ctx.Done():
		return
	case <-time.After(startupDelay):
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep()
	for {
		select {
		case <-w.ctx.Done():
			w.log.Info().Msg("scan worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

// sweep scans every sync-enabled mailbox once. Failures are per-owner;
// one broken account never stops the others.
func (w *ScanWorker) sweep() {
	ctx, cancel := context.WithTimeout(w.ctx, sweepTimeout)
	defer cancel()

	accounts, err := w.accounts.ListSyncEnabled(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to list sync-enabled accounts")
		return
	}
	if len(accounts) == 0 {
		return
	}
	w.log.Info().Int("accounts", len(accounts)).Msg("sweep started")

	for _, account := range accounts {
		if ctx.Err() != nil {
			return
		}

		report, err := w.scans.Scan(ctx, account.UserID, nil)
		if err != nil {
			if apperr.AsAppError(err).Code == apperr.CodeScanInProgress {
				w.log.Debug().Str("user_id", account.UserID.String()).Msg("scan already running, skipped")
				continue
			}
			w.log.Error().Err(err).Str("user_id", account.UserID.String()).Msg("background scan failed")
			continue
		}

		w.log.Info().
			Str("user_id", account.UserID.String()).
			Int("fetched", report.Fetched).
			Int("imported", report.Imported).
			Int("transitioned", report.Transitioned).
			Str("status", string(report.Status)).
			Msg("background scan finished")
	}
}
