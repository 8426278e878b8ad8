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
)

// dailyLimitWindow is the trailing period summed for the daily cap.
const dailyLimitWindow = 24 * time.Hour

// transactionService executes, reverses and answers queries about transactions.
type transactionService struct {
	BaseService
	store      portsrepo.LedgerStore
	identities portsrepo.IdentityProvider
	policy     domain.LimitPolicy
	after      *postCommit
}

// NewTransactionService creates the transaction engine. cache is shared with the
// reconciliation engine.
func NewTransactionService(
	store portsrepo.LedgerStore,
	identities portsrepo.IdentityProvider,
	cache *StatusCache,
	sinks Sinks,
	policy domain.LimitPolicy,
	options ...ServiceOption,
) portssvc.TransactionSvcFacade {
	base := newBaseService(options...)
	return &transactionService{
		BaseService: base,
		store:       store,
		identities:  identities,
		policy:      policy,
		after:       newPostCommit(base, cache, sinks),
	}
}

// Ensure transactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// Execute validates and routes req, then commits it.
func (s *transactionService) Execute(ctx context.Context, req domain.TransferRequest) (*domain.Transaction, error) {
	op, err := domain.ParseOperation(req)
	if err != nil {
		s.rejected(ctx, err, slog.String("origin_user_id", req.OriginUserID), slog.String("channel", string(req.Channel)))
		return nil, err
	}
	return s.ExecuteOperation(ctx, op)
}

// ExecuteOperation commits an already routed operation. Ledger moves and the transaction
// record are written in one store transaction.
func (s *transactionService) ExecuteOperation(ctx context.Context, op domain.OperationRequest) (*domain.Transaction, error) {
	if op == nil {
		err := fmt.Errorf("%w: operation is required", apperrors.ErrInvalidArgument)
		s.rejected(ctx, err)
		return nil, err
	}
	if err := domain.ValidateAmount(op.Value()); err != nil {
		s.rejected(ctx, err)
		return nil, err
	}
	if op.Kind() != domain.OperationInternalTopUp && op.Origin() == op.Destination() {
		err := fmt.Errorf("%w: origin and destination must differ", apperrors.ErrInvalidArgument)
		s.rejected(ctx, err)
		return nil, err
	}
	if err := accounting.ValidateBalanced(operationLegs(op)); err != nil {
		s.rejected(ctx, err)
		return nil, err
	}
	logger := s.GetLogger(ctx).With(
		slog.String("operation_kind", string(op.Kind())),
		slog.String("origin_user_id", op.Origin()),
		slog.String("dest_user_id", op.Destination()),
		slog.String("amount", op.Value().String()),
	)

	if offline, ok := op.(domain.AsyncTransfer); ok && s.policy.ExceedsOfflineCap(offline.Amount) {
		err := fmt.Errorf("%w: %s is above the offline cap of %s", apperrors.ErrLimitExceeded, offline.Amount, s.policy.OfflineTransferCap)
		s.rejected(ctx, err)
		return nil, err
	}

	originUser, destUser, err := s.parties(ctx, op.Origin(), op.Destination())
	if err != nil {
		s.rejected(ctx, err)
		return nil, err
	}

	if _, ok := op.(domain.AsyncTransfer); ok && s.policy.RequiresKYC(op.Value()) && !originUser.KYCValidated {
		err := fmt.Errorf("%w: user %s must validate identity to send %s offline", apperrors.ErrKycRequired, originUser.UserID, op.Value())
		s.rejected(ctx, err)
		return nil, err
	}

	now := s.Now()
	txn := newTransaction(s.NewID(), op, now, originUser.Snapshot(), destUser.Snapshot())

	err = s.store.WithTx(ctx, func(tx portsrepo.LedgerTx) error {
		switch o := op.(type) {
		case domain.InternalTopUp:
			return s.applyTopUp(ctx, tx, o, txn, now)
		case domain.SyncTransfer:
			return s.applySyncTransfer(ctx, tx, o, txn, now)
		case domain.AsyncTransfer:
			return s.applyAsyncTransfer(ctx, tx, o, txn, now)
		}
		return fmt.Errorf("%w: unsupported operation %T", apperrors.ErrInvalidArgument, op)
	})
	if err != nil {
		s.rejected(ctx, err)
		return nil, err
	}

	logger.Info("Transaction committed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("status", string(txn.Status)))
	s.after.statusChanged(ctx, *txn)
	s.after.transferCommitted(ctx, *txn, s.policy)
	return txn, nil
}

func newTransaction(id string, op domain.OperationRequest, now time.Time, origin, dest domain.PartySnapshot) *domain.Transaction {
	txn := &domain.Transaction{
		TransactionID: id,
		OriginUserID:  op.Origin(),
		DestUserID:    op.Destination(),
		Amount:        op.Value(),
		OperationKind: op.Kind(),
		Status:        domain.StatusSettled,
		CreatedAt:     now,
		UpdatedAt:     now,
		Origin:        origin,
		Destination:   dest,
	}
	switch o := op.(type) {
	case domain.InternalTopUp:
		txn.Channel = domain.ChannelAsyncInternal
		txn.Gateway = domain.GatewayInternal
		txn.SetDescription(o.Description)
	case domain.SyncTransfer:
		txn.Channel = domain.ChannelInternet
		txn.Gateway = o.Gateway
		txn.SetDescription(o.Description)
	case domain.AsyncTransfer:
		// Offline value stays pending until the reprocessing sweep confirms it.
		txn.Channel = o.Channel
		txn.Gateway = o.Gateway
		txn.Status = domain.StatusPending
		txn.SetDescription(o.Description)
	}
	return txn
}

// parties loads the identity of both sides; a missing identity means the user holds no ledgers.
func (s *transactionService) parties(ctx context.Context, originID, destID string) (*domain.User, *domain.User, error) {
	origin, err := s.identity(ctx, originID)
	if err != nil {
		return nil, nil, err
	}
	if destID == originID {
		return origin, origin, nil
	}
	dest, err := s.identity(ctx, destID)
	if err != nil {
		return nil, nil, err
	}
	return origin, dest, nil
}

func (s *transactionService) identity(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.identities.FindIdentity(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s is not registered", apperrors.ErrAccountNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load identity of %s: %w", userID, err)
	}
	return user, nil
}

// checkDailyLimit runs after the origin's ledgers are locked so concurrent transfers of the
// same user cannot both pass on a stale sum.
func (s *transactionService) checkDailyLimit(ctx context.Context, tx portsrepo.LedgerTx, op domain.OperationRequest, now time.Time) error {
	if !s.policy.DailyLimitApplies(op) {
		return nil
	}
	sent, err := tx.SumOutgoingSince(ctx, op.Origin(), s.policy.DailyLimitKinds(), now.Add(-dailyLimitWindow))
	if err != nil {
		return err
	}
	if total := sent.Add(op.Value()); total.GreaterThan(s.policy.DailyLimitCap) {
		return fmt.Errorf("%w: %s sent in the last 24h plus %s exceeds %s", apperrors.ErrDailyLimitExceeded, sent, op.Value(), s.policy.DailyLimitCap)
	}
	return nil
}

func (s *transactionService) applyTopUp(ctx context.Context, tx portsrepo.LedgerTx, op domain.InternalTopUp, txn *domain.Transaction, now time.Time) error {
	l, err := lockLedgers(ctx, tx, []string{op.UserID}, []string{op.UserID})
	if err != nil {
		return err
	}
	syncAcc, err := l.syncOf(op.UserID)
	if err != nil {
		return err
	}
	asyncAcc, err := l.asyncOf(op.UserID)
	if err != nil {
		return err
	}
	if err := asyncAcc.EnsureUsable(); err != nil {
		return err
	}
	if err := s.checkDailyLimit(ctx, tx, op, now); err != nil {
		return err
	}

	if err := syncAcc.Debit(op.Amount); err != nil {
		return err
	}
	if err := asyncAcc.Credit(op.Amount); err != nil {
		return err
	}
	syncAcc.Touch(op.UserID, now)
	asyncAcc.Touch(op.UserID, now)

	if err := tx.UpdateSyncAccount(ctx, syncAcc); err != nil {
		return err
	}
	if err := tx.UpdateAsyncAccount(ctx, asyncAcc); err != nil {
		return err
	}
	return tx.InsertTransaction(ctx, *txn)
}

func (s *transactionService) applySyncTransfer(ctx context.Context, tx portsrepo.LedgerTx, op domain.SyncTransfer, txn *domain.Transaction, now time.Time) error {
	l, err := lockLedgers(ctx, tx, []string{op.OriginUserID, op.DestUserID}, nil)
	if err != nil {
		return err
	}
	origin, err := l.syncOf(op.OriginUserID)
	if err != nil {
		return err
	}
	dest, err := l.syncOf(op.DestUserID)
	if err != nil {
		return err
	}
	if err := s.checkDailyLimit(ctx, tx, op, now); err != nil {
		return err
	}

	if err := origin.Debit(op.Amount); err != nil {
		return err
	}
	if err := dest.Credit(op.Amount); err != nil {
		return err
	}
	origin.Touch(op.OriginUserID, now)
	dest.Touch(op.OriginUserID, now)

	if err := tx.UpdateSyncAccount(ctx, origin); err != nil {
		return err
	}
	if err := tx.UpdateSyncAccount(ctx, dest); err != nil {
		return err
	}
	return tx.InsertTransaction(ctx, *txn)
}

func (s *transactionService) applyAsyncTransfer(ctx context.Context, tx portsrepo.LedgerTx, op domain.AsyncTransfer, txn *domain.Transaction, now time.Time) error {
	l, err := lockLedgers(ctx, tx, nil, []string{op.OriginUserID, op.DestUserID})
	if err != nil {
		return err
	}
	origin, err := l.asyncOf(op.OriginUserID)
	if err != nil {
		return err
	}
	dest, err := l.asyncOf(op.DestUserID)
	if err != nil {
		return err
	}
	if err := origin.EnsureUsable(); err != nil {
		return err
	}
	if err := dest.EnsureUsable(); err != nil {
		return err
	}
	if err := s.checkDailyLimit(ctx, tx, op, now); err != nil {
		return err
	}

	if err := origin.Debit(op.Amount); err != nil {
		return err
	}
	if err := dest.Credit(op.Amount); err != nil {
		return err
	}
	origin.Touch(op.OriginUserID, now)
	dest.Touch(op.OriginUserID, now)

	if err := tx.UpdateAsyncAccount(ctx, origin); err != nil {
		return err
	}
	if err := tx.UpdateAsyncAccount(ctx, dest); err != nil {
		return err
	}
	return tx.InsertTransaction(ctx, *txn)
}

// Reverse returns the value of a pending transaction to its origin's sync ledger and marks
// it ROLLBACK. A transaction already in ROLLBACK is returned unchanged; SETTLED and ERROR
// transactions cannot be reversed.
func (s *transactionService) Reverse(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	logger := s.GetLogger(ctx).With(slog.String("transaction_id", transactionID))

	var (
		out     domain.Transaction
		changed bool
	)
	err := s.store.WithTx(ctx, func(tx portsrepo.LedgerTx) error {
		txn, err := tx.LockTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		switch txn.Status {
		case domain.StatusRollback:
			out = *txn
			return nil
		case domain.StatusSettled, domain.StatusError:
			return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrAlreadyProcessed, txn.TransactionID, txn.Status)
		}

		now := s.Now()
		if err := compensate(ctx, tx, txn, domain.SystemActor, now); err != nil {
			return err
		}
		if err := txn.TransitionTo(domain.StatusRollback, now); err != nil {
			return err
		}
		if err := tx.UpdateTransaction(ctx, *txn); err != nil {
			return err
		}
		out = *txn
		changed = true
		return nil
	})
	if err != nil {
		if apperrors.IsBusiness(err) {
			logger.Warn("Reversal refused", slog.String("error", err.Error()))
		} else {
			logger.Error("Reversal failed", slog.String("error", err.Error()))
		}
		return nil, err
	}

	if changed {
		logger.Info("Transaction rolled back", slog.String("amount", out.Amount.String()))
		s.after.statusChanged(ctx, out)
	} else {
		s.after.cache.Put(out.TransactionID, out.Status)
	}
	return &out, nil
}

// rejected logs and counts a refused transfer.
func (s *transactionService) rejected(ctx context.Context, err error, attrs ...any) {
	reason := rejectionReason(err)
	metrics.RejectionsTotal.WithLabelValues(reason).Inc()
	args := append([]any{slog.String("reason", reason), slog.String("error", err.Error())}, attrs...)
	if reason == "internal" {
		s.GetLogger(ctx).Error("Transaction failed", args...)
		return
	}
	s.GetLogger(ctx).Warn("Transaction rejected", args...)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, apperrors.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, apperrors.ErrLedgerBlocked):
		return "ledger_blocked"
	case errors.Is(err, apperrors.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, apperrors.ErrDailyLimitExceeded):
		return "daily_limit_exceeded"
	case errors.Is(err, apperrors.ErrKycRequired):
		return "kyc_required"
	}
	return "internal"
}
