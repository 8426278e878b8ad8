package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/SscSPs/async_payments_app/internal/platform/metrics"
	"github.com/SscSPs/async_payments_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// Sweep job names, used in reports, logs and metrics.
const (
	JobLedgerSweep    = "ledger_sweep"
	JobRollbackSweep  = "rollback_sweep"
	JobReprocessSweep = "reprocess_sweep"
)

const reconciliationDescription = "async balance reconciled into sync ledger"

// reconciliationEngine settles async ledgers into sync ledgers and drives the pending
// transaction lifecycle.
type reconciliationEngine struct {
	BaseService
	store      portsrepo.LedgerStore
	identities portsrepo.IdentityProvider
	reverser   portssvc.TransactionEngineSvc
	policy     domain.LimitPolicy
	after      *postCommit
}

// NewReconciliationService creates the reconciliation engine. reverser is the transaction
// engine used by the rollback sweep; cache must be the one the engine writes to.
func NewReconciliationService(
	store portsrepo.LedgerStore,
	identities portsrepo.IdentityProvider,
	reverser portssvc.TransactionEngineSvc,
	cache *StatusCache,
	sinks Sinks,
	policy domain.LimitPolicy,
	options ...ServiceOption,
) portssvc.ReconciliationSvc {
	base := newBaseService(options...)
	return &reconciliationEngine{
		BaseService: base,
		store:       store,
		identities:  identities,
		reverser:    reverser,
		policy:      policy,
		after:       newPostCommit(base, cache, sinks),
	}
}

var _ portssvc.ReconciliationSvc = (*reconciliationEngine)(nil)

// ReconcileLedger moves the whole async balance into the owner's sync ledger, stamps the
// reconciliation time and clears the block. A blocked ledger needs unblock=true.
// A ledger with nothing to move is left as is, except that an explicit unblock still
// clears the flag.
func (s *reconciliationEngine) ReconcileLedger(ctx context.Context, asyncAccountID string, unblock bool) (*domain.ReconciliationResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("async_account_id", asyncAccountID))

	acc, err := s.store.FindAsyncAccountByID(ctx, asyncAccountID)
	if err != nil {
		return nil, err
	}
	ownerID := acc.OwnerID
	snapshot, err := s.ownerSnapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var result domain.ReconciliationResult
	err = s.store.WithTx(ctx, func(tx portsrepo.LedgerTx) error {
		l, err := lockLedgers(ctx, tx, []string{ownerID}, []string{ownerID})
		if err != nil {
			return err
		}
		syncAcc, ok := l.sync[ownerID]
		if !ok {
			return fmt.Errorf("%w: sync ledger of user %s", apperrors.ErrNotFound, ownerID)
		}
		asyncAcc, ok := l.async[ownerID]
		if !ok {
			return fmt.Errorf("%w: async ledger %s", apperrors.ErrNotFound, asyncAccountID)
		}
		if asyncAcc.Blocked && !unblock {
			return fmt.Errorf("%w: async ledger %s needs an explicit unblock to reconcile", apperrors.ErrLedgerBlocked, asyncAccountID)
		}

		now := s.Now()
		wasBlocked := asyncAcc.Blocked
		result = domain.ReconciliationResult{
			AsyncAccountID: asyncAcc.AccountID,
			OwnerID:        ownerID,
			MovedAmount:    decimal.Zero,
			SyncBalance:    syncAcc.Balance,
			AsyncBalance:   asyncAcc.Balance,
			Blocked:        asyncAcc.Blocked,
			ReconciledAt:   now,
		}

		if !asyncAcc.Balance.IsPositive() {
			if !wasBlocked {
				return nil
			}
			asyncAcc.MarkReconciled(now)
			asyncAcc.Touch(domain.SystemActor, now)
			result.Blocked = false
			result.Unblocked = true
			return tx.UpdateAsyncAccount(ctx, asyncAcc)
		}

		moved := asyncAcc.Balance
		if err := accounting.ValidateBalanced([]accounting.Leg{
			accounting.DebitLeg(accounting.AsyncLedger(ownerID), moved),
			accounting.CreditLeg(accounting.SyncLedger(ownerID), moved),
		}); err != nil {
			return err
		}
		if err := syncAcc.Credit(moved); err != nil {
			return err
		}
		asyncAcc.Balance = decimal.Zero
		asyncAcc.MarkReconciled(now)
		syncAcc.Touch(domain.SystemActor, now)
		asyncAcc.Touch(domain.SystemActor, now)

		recon := domain.Transaction{
			TransactionID: s.NewID(),
			OriginUserID:  ownerID,
			DestUserID:    ownerID,
			Amount:        moved,
			OperationKind: domain.OperationReconciliation,
			Channel:       domain.ChannelInternet,
			Gateway:       domain.GatewayInternal,
			Status:        domain.StatusSettled,
			CreatedAt:     now,
			UpdatedAt:     now,
			Origin:        snapshot,
			Destination:   snapshot,
		}
		recon.SetDescription(reconciliationDescription)

		if err := tx.UpdateSyncAccount(ctx, syncAcc); err != nil {
			return err
		}
		if err := tx.UpdateAsyncAccount(ctx, asyncAcc); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, recon); err != nil {
			return err
		}

		result.MovedAmount = moved
		result.SyncBalance = syncAcc.Balance
		result.AsyncBalance = asyncAcc.Balance
		result.Blocked = false
		result.Unblocked = wasBlocked
		result.Transaction = &recon
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Transaction != nil {
		logger.Info("Async ledger reconciled",
			slog.String("owner_id", ownerID),
			slog.String("moved_amount", result.MovedAmount.String()),
			slog.Bool("unblocked", result.Unblocked))
		s.after.statusChanged(ctx, *result.Transaction)
	} else if result.Unblocked {
		logger.Info("Async ledger unblocked without balance movement", slog.String("owner_id", ownerID))
	}
	return &result, nil
}

// ownerSnapshot returns the identity snapshot of ownerID, empty when none is registered.
func (s *reconciliationEngine) ownerSnapshot(ctx context.Context, ownerID string) (domain.PartySnapshot, error) {
	user, err := s.identities.FindIdentity(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.PartySnapshot{}, nil
		}
		return domain.PartySnapshot{}, fmt.Errorf("failed to load identity of %s: %w", ownerID, err)
	}
	return user.Snapshot(), nil
}

// SweepAndBlockOrReconcile blocks every unblocked async ledger that drifted past the
// reconciliation window and reconciles the others. Ledgers are handled independently.
func (s *reconciliationEngine) SweepAndBlockOrReconcile(ctx context.Context) (report domain.SweepReport) {
	var finish func(*domain.SweepReport)
	report, finish = s.startSweep(ctx, JobLedgerSweep)
	defer finish(&report)

	accounts, err := s.store.ListUnblockedAsyncAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list async ledgers", slog.String("job", JobLedgerSweep))
		report.Failed++
		return report
	}

	for _, acc := range accounts {
		report.Scanned++
		now := s.Now()

		if acc.Expired(now, s.policy.ReconciliationWindow) {
			blocked, err := s.blockLedger(ctx, acc.OwnerID, now)
			switch {
			case err != nil:
				report.Failed++
				s.LogError(ctx, err, "Failed to block expired async ledger",
					slog.String("async_account_id", acc.AccountID))
			case blocked:
				report.Blocked++
				s.LogInfo(ctx, "Async ledger blocked after reconciliation window",
					slog.String("async_account_id", acc.AccountID),
					slog.String("owner_id", acc.OwnerID),
					slog.Duration("since_reconciled", acc.SinceReconciled(now)))
			default:
				report.Skipped++
			}
			continue
		}

		result, err := s.ReconcileLedger(ctx, acc.AccountID, false)
		switch {
		case err != nil && apperrors.IsBusiness(err):
			report.Skipped++
			s.LogDebug(ctx, "Async ledger skipped",
				slog.String("async_account_id", acc.AccountID),
				slog.String("reason", err.Error()))
		case err != nil:
			report.Failed++
			s.LogError(ctx, err, "Failed to reconcile async ledger",
				slog.String("async_account_id", acc.AccountID))
		case result.Transaction == nil:
			report.Skipped++
		default:
			report.Succeeded++
		}
	}
	return report
}

// blockLedger blocks the owner's async ledger if it is still unblocked and expired once
// locked. It reports whether the ledger was blocked by this call.
func (s *reconciliationEngine) blockLedger(ctx context.Context, ownerID string, now time.Time) (bool, error) {
	blocked := false
	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerTx) error {
		l, err := lockLedgers(ctx, tx, nil, []string{ownerID})
		if err != nil {
			return err
		}
		acc, err := l.asyncOf(ownerID)
		if err != nil {
			return err
		}
		if acc.Blocked || !acc.Expired(now, s.policy.ReconciliationWindow) {
			return nil
		}
		acc.Blocked = true
		acc.Touch(domain.SystemActor, now)
		blocked = true
		return tx.UpdateAsyncAccount(ctx, acc)
	})
	return blocked, err
}

// RollbackExpiredPending reverses every pending transaction older than the window. A
// transaction whose reversal is refused for a business reason moves to ERROR with the
// reason, so no expired transaction stays pending. Store faults leave it for the next pass.
//
// Expiry normally ends in ROLLBACK. An offline transfer whose destination can no longer
// cover the amount from its async and sync ledgers ends in ERROR instead, with no ledger
// moves, since rolling it back would create value.
func (s *reconciliationEngine) RollbackExpiredPending(ctx context.Context) (report domain.SweepReport) {
	var finish func(*domain.SweepReport)
	report, finish = s.startSweep(ctx, JobRollbackSweep)
	defer finish(&report)

	pending, err := s.store.FindTransactionsByStatus(ctx, domain.StatusPending)
	if err != nil {
		s.LogError(ctx, err, "Failed to load pending transactions", slog.String("job", JobRollbackSweep))
		report.Failed++
		return report
	}

	for _, txn := range pending {
		report.Scanned++
		if txn.Age(s.Now()) <= s.policy.ReconciliationWindow {
			report.Skipped++
			continue
		}

		_, err := s.reverser.Reverse(ctx, txn.TransactionID)
		switch {
		case err == nil:
			report.Succeeded++
		case errors.Is(err, apperrors.ErrAlreadyProcessed), errors.Is(err, apperrors.ErrNotFound):
			report.Skipped++
		case apperrors.IsBusiness(err):
			report.Failed++
			s.markError(ctx, txn.TransactionID, "rollback failed: "+err.Error())
		default:
			report.Failed++
			s.LogError(ctx, err, "Failed to roll back expired transaction",
				slog.String("transaction_id", txn.TransactionID))
		}
	}
	return report
}

// markError moves a still-pending transaction to ERROR in its own store transaction.
func (s *reconciliationEngine) markError(ctx context.Context, transactionID, reason string) {
	var out domain.Transaction
	changed := false
	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerTx) error {
		txn, err := tx.LockTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.Status != domain.StatusPending {
			return nil
		}
		if err := failPending(ctx, tx, txn, reason, s.Now()); err != nil {
			return err
		}
		out = *txn
		changed = true
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to mark transaction as errored", slog.String("transaction_id", transactionID))
		return
	}
	if changed {
		s.LogInfo(ctx, "Transaction moved to ERROR",
			slog.String("transaction_id", transactionID),
			slog.String("reason", out.Description))
		s.after.statusChanged(ctx, out)
	}
}

// ReprocessPending re-validates pending transactions still inside the window. A
// transaction that passes is SETTLED; one that fails has its ledger moves compensated
// and is moved to ERROR with the reason in its description.
func (s *reconciliationEngine) ReprocessPending(ctx context.Context) (report domain.SweepReport) {
	var finish func(*domain.SweepReport)
	report, finish = s.startSweep(ctx, JobReprocessSweep)
	defer finish(&report)

	pending, err := s.store.FindTransactionsByStatus(ctx, domain.StatusPending)
	if err != nil {
		s.LogError(ctx, err, "Failed to load pending transactions", slog.String("job", JobReprocessSweep))
		report.Failed++
		return report
	}

	for _, txn := range pending {
		report.Scanned++
		if txn.Age(s.Now()) > s.policy.ReconciliationWindow {
			// Left to the rollback sweep.
			report.Skipped++
			continue
		}

		outcome, err := s.reprocess(ctx, txn)
		if err != nil {
			report.Failed++
			s.LogError(ctx, err, "Failed to reprocess pending transaction",
				slog.String("transaction_id", txn.TransactionID))
			continue
		}
		switch outcome {
		case domain.StatusSettled:
			report.Succeeded++
		case domain.StatusError:
			report.Failed++
		default:
			report.Skipped++
		}
	}
	return report
}

// reprocess settles or fails one pending transaction and returns the status it ended in.
// An empty status means the transaction was no longer pending.
func (s *reconciliationEngine) reprocess(ctx context.Context, candidate domain.Transaction) (domain.TransactionStatus, error) {
	origin, originErr := s.identities.FindIdentity(ctx, candidate.OriginUserID)
	if originErr != nil && !errors.Is(originErr, apperrors.ErrNotFound) {
		return "", originErr
	}

	var (
		out     domain.Transaction
		changed bool
		reason  error
	)
	run := func(compensateFirst bool) error {
		return s.store.WithTx(ctx, func(tx portsrepo.LedgerTx) error {
			txn, err := tx.LockTransaction(ctx, candidate.TransactionID)
			if err != nil {
				return err
			}
			if txn.Status != domain.StatusPending {
				return nil
			}
			now := s.Now()

			if reason == nil {
				if err := s.revalidate(ctx, tx, txn, origin, originErr); err != nil {
					if !apperrors.IsBusiness(err) {
						return err
					}
					reason = err
				}
			}

			if reason == nil {
				if err := txn.TransitionTo(domain.StatusSettled, now); err != nil {
					return err
				}
				if err := tx.UpdateTransaction(ctx, *txn); err != nil {
					return err
				}
			} else {
				msg := "reprocess failed: " + reason.Error()
				if compensateFirst {
					if err := compensate(ctx, tx, txn, domain.SystemActor, now); err != nil {
						return err
					}
				} else {
					msg += " (value not recovered)"
				}
				if err := failPending(ctx, tx, txn, msg, now); err != nil {
					return err
				}
			}
			out = *txn
			changed = true
			return nil
		})
	}

	err := run(true)
	if err != nil && reason != nil && apperrors.IsBusiness(err) {
		// The credited side no longer holds the value: record the failure without moving money.
		s.LogError(ctx, err, "Compensation refused, failing transaction without ledger moves",
			slog.String("transaction_id", candidate.TransactionID))
		err = run(false)
	}
	if err != nil {
		return "", err
	}
	if !changed {
		return "", nil
	}

	if out.Status == domain.StatusError {
		s.LogInfo(ctx, "Pending transaction failed re-validation",
			slog.String("transaction_id", out.TransactionID),
			slog.String("reason", out.Description))
	} else {
		s.LogInfo(ctx, "Pending transaction settled", slog.String("transaction_id", out.TransactionID))
	}
	s.after.statusChanged(ctx, out)
	return out.Status, nil
}

// revalidate checks a pending transaction against the rules execute enforces. It
// returns the business reason it fails, or a store error.
func (s *reconciliationEngine) revalidate(ctx context.Context, tx portsrepo.LedgerTx, txn *domain.Transaction, origin *domain.User, originErr error) error {
	if originErr != nil {
		return fmt.Errorf("%w: user %s is not registered", apperrors.ErrAccountNotFound, txn.OriginUserID)
	}

	parties := []string{txn.OriginUserID, txn.DestUserID}
	l, err := lockLedgers(ctx, tx, parties, parties)
	if err != nil {
		return err
	}
	for _, owner := range uniqueSorted(parties) {
		if _, err := l.syncOf(owner); err != nil {
			return err
		}
		asyncAcc, err := l.asyncOf(owner)
		if err != nil {
			return err
		}
		if err := asyncAcc.EnsureUsable(); err != nil {
			return err
		}
	}

	if txn.Channel.IsOffline() {
		if s.policy.ExceedsOfflineCap(txn.Amount) {
			return fmt.Errorf("%w: %s is above the offline cap of %s", apperrors.ErrLimitExceeded, txn.Amount, s.policy.OfflineTransferCap)
		}
		if s.policy.RequiresKYC(txn.Amount) && !origin.KYCValidated {
			return fmt.Errorf("%w: user %s has not validated identity", apperrors.ErrKycRequired, origin.UserID)
		}
	}
	return nil
}

// startSweep returns a fresh report and the func that finalizes, logs and records it.
func (s *reconciliationEngine) startSweep(ctx context.Context, job string) (domain.SweepReport, func(*domain.SweepReport)) {
	started := time.Now()
	report := domain.SweepReport{Job: job, StartedAt: s.Now()}
	s.LogInfo(ctx, "Starting sweep", slog.String("job", job))

	return report, func(r *domain.SweepReport) {
		elapsed := time.Since(started)
		r.Duration = elapsed.String()
		metrics.SweepDuration.WithLabelValues(job).Observe(elapsed.Seconds())
		metrics.ObserveSweep(job, r.Succeeded, r.Blocked, r.Skipped, r.Failed)
		s.LogInfo(ctx, "Finished sweep",
			slog.String("job", job),
			slog.Int("scanned", r.Scanned),
			slog.Int("succeeded", r.Succeeded),
			slog.Int("blocked", r.Blocked),
			slog.Int("skipped", r.Skipped),
			slog.Int("failed", r.Failed),
			slog.String("duration", r.Duration))
	}
}
