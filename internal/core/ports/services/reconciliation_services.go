package services

import (
	"context"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
)

// ReconciliationSvc reconciles async ledgers and drives the periodic sweeps.
type ReconciliationSvc interface {
	// ReconcileLedger moves an async ledger's balance into its owner's sync ledger.
	// A blocked ledger is only reconciled when unblock is true.
	ReconcileLedger(ctx context.Context, asyncAccountID string, unblock bool) (*domain.ReconciliationResult, error)

	// SweepAndBlockOrReconcile blocks expired async ledgers and reconciles the rest.
	SweepAndBlockOrReconcile(ctx context.Context) domain.SweepReport

	// RollbackExpiredPending reverses pending transactions older than the window.
	RollbackExpiredPending(ctx context.Context) domain.SweepReport

	// ReprocessPending re-validates pending transactions within the window.
	ReprocessPending(ctx context.Context) domain.SweepReport
}
