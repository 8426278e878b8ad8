package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/SscSPs/async_payments_app/internal/middleware"
)

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	reconciliation portssvc.ReconciliationSvc
	logger         *slog.Logger
	timeout        time.Duration
}

// NewJobs creates a new Jobs runner. Each run is cancelled after timeout; zero disables it.
func NewJobs(reconciliation portssvc.ReconciliationSvc, logger *slog.Logger, timeout time.Duration) *Jobs {
	return &Jobs{
		reconciliation: reconciliation,
		logger:         logger,
		timeout:        timeout,
	}
}

// SweepLedgers blocks expired async ledgers and reconciles the rest.
func (j *Jobs) SweepLedgers() {
	j.run("ledger sweep", j.reconciliation.SweepAndBlockOrReconcile)
}

// RollbackExpired reverses pending transactions past the reconciliation window.
func (j *Jobs) RollbackExpired() {
	j.run("rollback sweep", j.reconciliation.RollbackExpiredPending)
}

// ReprocessPending re-validates pending transactions inside the window.
func (j *Jobs) ReprocessPending() {
	j.run("reprocess sweep", j.reconciliation.ReprocessPending)
}

func (j *Jobs) run(name string, sweep func(context.Context) domain.SweepReport) {
	logger := j.logger.With(slog.String("job", name))
	logger.Info("starting scheduled job")

	ctx := middleware.WithLogger(context.Background(), logger)
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	report := sweep(ctx)
	if report.Failed > 0 {
		logger.Warn("scheduled job finished with failures",
			slog.Int("scanned", report.Scanned),
			slog.Int("failed", report.Failed))
		return
	}
	logger.Info("scheduled job finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("succeeded", report.Succeeded),
		slog.String("duration", report.Duration))
}
