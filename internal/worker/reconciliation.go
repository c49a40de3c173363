// internal/worker/reconciliation.go
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"shopbot/internal/domain"
	"shopbot/internal/notify"
	"shopbot/internal/service"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultInterval    = 5 * time.Minute
	DefaultBatchSize   = 100
	DefaultConcurrency = 4
)

// Stats summarises one reconciliation pass.
type Stats struct {
	Checked  int
	Credited int
	Failed   int
}

// ReconciliationWorker periodically checks unpaid payment intents against the
// provider and credits the confirmed ones. Intents are handled independently:
// a provider error leaves the intent unpaid for the next pass.
type ReconciliationWorker struct {
	payments    service.PaymentService
	notifier    notify.Notifier
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	concurrency int
}

// NewReconciliationWorker creates a worker. Non-positive settings fall back to defaults.
func NewReconciliationWorker(
	payments service.PaymentService,
	notifier notify.Notifier,
	logger *slog.Logger,
	interval time.Duration,
	concurrency int,
) *ReconciliationWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &ReconciliationWorker{
		payments:    payments,
		notifier:    notifier,
		logger:      logger,
		interval:    interval,
		batchSize:   DefaultBatchSize,
		concurrency: concurrency,
	}
}

// Run executes a pass every interval until ctx is cancelled.
func (rw *ReconciliationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("Reconciliation worker started", "interval", rw.interval.String())

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("Reconciliation worker stopped")
			return
		case <-ticker.C:
			if _, err := rw.RunOnce(ctx); err != nil {
				rw.logger.Error("Reconciliation pass failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single reconciliation pass over every unpaid intent,
// walking them in id order one batch at a time.
func (rw *ReconciliationWorker) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats
	var lastID int64

	for {
		intents, err := rw.payments.PendingIntents(ctx, lastID, rw.batchSize)
		if err != nil {
			return stats, fmt.Errorf("reconcile: %w", err)
		}
		if len(intents) == 0 {
			break
		}

		rw.logger.Debug("Checking unpaid payment intents", "count", len(intents), "after_id", lastID)

		batch := rw.reconcileBatch(ctx, intents)
		stats.Checked += batch.Checked
		stats.Credited += batch.Credited
		stats.Failed += batch.Failed

		if len(intents) < rw.batchSize {
			break
		}
		lastID = intents[len(intents)-1].ID
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("reconcile: %w", err)
		}
	}

	if stats.Credited > 0 || stats.Failed > 0 {
		rw.logger.Info("Reconciliation pass finished",
			"checked", stats.Checked, "credited", stats.Credited, "failed", stats.Failed)
	}
	return stats, nil
}

func (rw *ReconciliationWorker) reconcileBatch(ctx context.Context, intents []domain.PaymentIntent) Stats {
	var credited, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(rw.concurrency)

	for _, intent := range intents {
		intent := intent
		g.Go(func() error {
			ok, err := rw.reconcile(ctx, intent)
			switch {
			case err != nil:
				failed.Add(1)
			case ok:
				credited.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return Stats{Checked: len(intents), Credited: int(credited.Load()), Failed: int(failed.Load())}
}

func (rw *ReconciliationWorker) reconcile(ctx context.Context, intent domain.PaymentIntent) (bool, error) {
	credited, err := rw.payments.ConfirmTopUp(ctx, intent.Label)
	if err != nil {
		rw.logger.Warn("Payment not confirmed, retrying next pass",
			"label", intent.Label, "user_id", intent.UserID, "error", err)
		return false, err
	}
	if !credited {
		return false, nil
	}

	rw.logger.Info("Top-up credited", "label", intent.Label, "user_id", intent.UserID, "amount", intent.Amount.String())

	text := fmt.Sprintf("✅ We received your payment of %s. Your balance has been topped up!", intent.Amount.StringFixed(2))
	if err := rw.notifier.Notify(ctx, intent.UserID, text); err != nil {
		rw.logger.Error("Failed to notify user about top-up",
			"label", intent.Label, "user_id", intent.UserID, "error", err)
	}
	return true, nil
}
