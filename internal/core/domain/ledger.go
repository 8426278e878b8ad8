package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// SyncAccount is the always-reachable ledger of a user, settled immediately over INTERNET.
type SyncAccount struct {
	AccountID string          `json:"accountID"`
	OwnerID   string          `json:"ownerID"` // 1:1 with the user
	Balance   decimal.Decimal `json:"balance"`
	AuditFields
}

// AsyncAccount is the offline-capable ledger of a user. It accumulates value moved over
// SMS, NFC or Bluetooth and must be reconciled into the sync ledger within the window.
type AsyncAccount struct {
	AccountID        string          `json:"accountID"`
	OwnerID          string          `json:"ownerID"`
	Balance          decimal.Decimal `json:"balance"`
	Blocked          bool            `json:"blocked"`
	LastReconciledAt *time.Time      `json:"lastReconciledAt,omitempty"`
	AuditFields
}

// CheckDebit validates that amount can be taken from balance without going negative.
func CheckDebit(balance, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidArgument, amount)
	}
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s is lower than %s", apperrors.ErrInsufficientFunds, balance, amount)
	}
	return nil
}

// CheckCredit validates a credit amount.
func CheckCredit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidArgument, amount)
	}
	return nil
}

func (a *SyncAccount) Debit(amount decimal.Decimal) error {
	if err := CheckDebit(a.Balance, amount); err != nil {
		return fmt.Errorf("sync ledger of %s: %w", a.OwnerID, err)
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (a *SyncAccount) Credit(amount decimal.Decimal) error {
	if err := CheckCredit(amount); err != nil {
		return err
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

func (a *AsyncAccount) Debit(amount decimal.Decimal) error {
	if err := CheckDebit(a.Balance, amount); err != nil {
		return fmt.Errorf("async ledger of %s: %w", a.OwnerID, err)
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (a *AsyncAccount) Credit(amount decimal.Decimal) error {
	if err := CheckCredit(amount); err != nil {
		return err
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// EnsureUsable returns ErrLedgerBlocked when the ledger is blocked.
func (a *AsyncAccount) EnsureUsable() error {
	if a.Blocked {
		return fmt.Errorf("%w: async ledger %s of %s", apperrors.ErrLedgerBlocked, a.AccountID, a.OwnerID)
	}
	return nil
}

// SinceReconciled returns the time elapsed since the last reconciliation. A ledger that was
// never reconciled counts from its creation.
func (a *AsyncAccount) SinceReconciled(now time.Time) time.Duration {
	ref := a.CreatedAt
	if a.LastReconciledAt != nil {
		ref = *a.LastReconciledAt
	}
	return now.Sub(ref)
}

// Expired reports whether the ledger drifted past the reconciliation window.
func (a *AsyncAccount) Expired(now time.Time, window time.Duration) bool {
	return a.SinceReconciled(now) > window
}

// MarkReconciled stamps the reconciliation time and clears the block.
func (a *AsyncAccount) MarkReconciled(now time.Time) {
	t := now
	a.LastReconciledAt = &t
	a.Blocked = false
}

// NewLedgerPair builds the sync and async ledgers opened together for a user.
func NewLedgerPair(syncID, asyncID, ownerID string, now time.Time) (SyncAccount, AsyncAccount) {
	audit := AuditFields{CreatedAt: now, CreatedBy: ownerID, LastUpdatedAt: now, LastUpdatedBy: ownerID}
	reconciled := now
	return SyncAccount{
			AccountID:   syncID,
			OwnerID:     ownerID,
			Balance:     decimal.Zero,
			AuditFields: audit,
		}, AsyncAccount{
			AccountID:        asyncID,
			OwnerID:          ownerID,
			Balance:          decimal.Zero,
			LastReconciledAt: &reconciled,
			AuditFields:      audit,
		}
}

// LedgerPair is the sync and async ledger of one user.
type LedgerPair struct {
	Sync  SyncAccount
	Async AsyncAccount
}
