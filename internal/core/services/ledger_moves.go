package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	"github.com/SscSPs/async_payments_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// lockedLedgers holds the ledgers locked inside one store transaction.
type lockedLedgers struct {
	sync  map[string]domain.SyncAccount
	async map[string]domain.AsyncAccount
}

// lockLedgers locks sync ledgers before async ledgers, each set in owner id order.
func lockLedgers(ctx context.Context, tx portsrepo.LedgerTx, syncOwners, asyncOwners []string) (lockedLedgers, error) {
	l := lockedLedgers{
		sync:  map[string]domain.SyncAccount{},
		async: map[string]domain.AsyncAccount{},
	}
	var err error
	if owners := uniqueSorted(syncOwners); len(owners) > 0 {
		if l.sync, err = tx.LockSyncAccounts(ctx, owners); err != nil {
			return l, err
		}
	}
	if owners := uniqueSorted(asyncOwners); len(owners) > 0 {
		if l.async, err = tx.LockAsyncAccounts(ctx, owners); err != nil {
			return l, err
		}
	}
	return l, nil
}

func (l lockedLedgers) syncOf(ownerID string) (domain.SyncAccount, error) {
	acc, ok := l.sync[ownerID]
	if !ok {
		return acc, fmt.Errorf("%w: sync ledger of user %s", apperrors.ErrAccountNotFound, ownerID)
	}
	return acc, nil
}

func (l lockedLedgers) asyncOf(ownerID string) (domain.AsyncAccount, error) {
	acc, ok := l.async[ownerID]
	if !ok {
		return acc, fmt.Errorf("%w: async ledger of user %s", apperrors.ErrAccountNotFound, ownerID)
	}
	return acc, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// compensate returns the value of txn to the origin's sync ledger and takes it back from
// the ledger that was credited. For offline transfers a shortfall on the destination's
// async ledger is covered from its sync ledger. Every balance check runs before the first
// write, so a failed compensation (apperrors.ErrInsufficientFunds when the credited side
// already spent the value) leaves the ledgers untouched.
func compensate(ctx context.Context, tx portsrepo.LedgerTx, txn *domain.Transaction, actor string, now time.Time) error {
	amount := txn.Amount
	origin, dest := txn.OriginUserID, txn.DestUserID

	switch txn.OperationKind {
	case domain.OperationInternalTopUp:
		l, err := lockLedgers(ctx, tx, []string{origin}, []string{origin})
		if err != nil {
			return err
		}
		syncAcc, err := l.syncOf(origin)
		if err != nil {
			return err
		}
		asyncAcc, err := l.asyncOf(origin)
		if err != nil {
			return err
		}
		if err := asyncAcc.Debit(amount); err != nil {
			return err
		}
		if err := syncAcc.Credit(amount); err != nil {
			return err
		}
		syncAcc.Touch(actor, now)
		asyncAcc.Touch(actor, now)
		if err := tx.UpdateSyncAccount(ctx, syncAcc); err != nil {
			return err
		}
		return tx.UpdateAsyncAccount(ctx, asyncAcc)

	case domain.OperationSyncTransfer:
		l, err := lockLedgers(ctx, tx, []string{origin, dest}, nil)
		if err != nil {
			return err
		}
		originSync, err := l.syncOf(origin)
		if err != nil {
			return err
		}
		destSync, err := l.syncOf(dest)
		if err != nil {
			return err
		}
		if err := destSync.Debit(amount); err != nil {
			return err
		}
		if err := originSync.Credit(amount); err != nil {
			return err
		}
		originSync.Touch(actor, now)
		destSync.Touch(actor, now)
		if err := tx.UpdateSyncAccount(ctx, destSync); err != nil {
			return err
		}
		return tx.UpdateSyncAccount(ctx, originSync)

	case domain.OperationAsyncTransfer:
		l, err := lockLedgers(ctx, tx, []string{origin, dest}, []string{dest})
		if err != nil {
			return err
		}
		originSync, err := l.syncOf(origin)
		if err != nil {
			return err
		}
		destSync, err := l.syncOf(dest)
		if err != nil {
			return err
		}
		destAsync, err := l.asyncOf(dest)
		if err != nil {
			return err
		}

		fromAsync := decimal.Min(destAsync.Balance, amount)
		shortfall := amount.Sub(fromAsync)
		if err := accounting.ValidateBalanced([]accounting.Leg{
			accounting.DebitLeg(accounting.AsyncLedger(dest), fromAsync),
			accounting.DebitLeg(accounting.SyncLedger(dest), shortfall),
			accounting.CreditLeg(accounting.SyncLedger(origin), amount),
		}); err != nil {
			return err
		}
		if fromAsync.IsPositive() {
			if err := destAsync.Debit(fromAsync); err != nil {
				return err
			}
		}
		if shortfall.IsPositive() {
			if err := destSync.Debit(shortfall); err != nil {
				return err
			}
		}
		if err := originSync.Credit(amount); err != nil {
			return err
		}

		if fromAsync.IsPositive() {
			destAsync.Touch(actor, now)
			if err := tx.UpdateAsyncAccount(ctx, destAsync); err != nil {
				return err
			}
		}
		if shortfall.IsPositive() {
			destSync.Touch(actor, now)
			if err := tx.UpdateSyncAccount(ctx, destSync); err != nil {
				return err
			}
		}
		originSync.Touch(actor, now)
		return tx.UpdateSyncAccount(ctx, originSync)
	}

	return fmt.Errorf("%w: %s transactions cannot be reversed", apperrors.ErrInvalidArgument, txn.OperationKind)
}

// operationLegs returns the debit and credit legs op applies.
func operationLegs(op domain.OperationRequest) []accounting.Leg {
	switch o := op.(type) {
	case domain.InternalTopUp:
		return []accounting.Leg{
			accounting.DebitLeg(accounting.SyncLedger(o.UserID), o.Amount),
			accounting.CreditLeg(accounting.AsyncLedger(o.UserID), o.Amount),
		}
	case domain.SyncTransfer:
		return []accounting.Leg{
			accounting.DebitLeg(accounting.SyncLedger(o.OriginUserID), o.Amount),
			accounting.CreditLeg(accounting.SyncLedger(o.DestUserID), o.Amount),
		}
	case domain.AsyncTransfer:
		return []accounting.Leg{
			accounting.DebitLeg(accounting.AsyncLedger(o.OriginUserID), o.Amount),
			accounting.CreditLeg(accounting.AsyncLedger(o.DestUserID), o.Amount),
		}
	}
	return nil
}

// failPending moves a pending transaction to ERROR with reason as its description.
func failPending(ctx context.Context, tx portsrepo.LedgerTx, txn *domain.Transaction, reason string, now time.Time) error {
	if err := txn.TransitionTo(domain.StatusError, now); err != nil {
		return err
	}
	txn.SetDescription(reason)
	return tx.UpdateTransaction(ctx, *txn)
}
