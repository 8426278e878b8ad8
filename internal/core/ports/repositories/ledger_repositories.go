package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations on sync and async ledgers outside a transaction.
type LedgerReader interface {
	// FindSyncAccountByOwner retrieves the sync ledger of a user.
	FindSyncAccountByOwner(ctx context.Context, ownerID string) (*domain.SyncAccount, error)

	// FindAsyncAccountByOwner retrieves the async ledger of a user.
	FindAsyncAccountByOwner(ctx context.Context, ownerID string) (*domain.AsyncAccount, error)

	// FindAsyncAccountByID retrieves an async ledger by its own id.
	FindAsyncAccountByID(ctx context.Context, accountID string) (*domain.AsyncAccount, error)

	// ListUnblockedAsyncAccounts returns every async ledger that is not blocked.
	ListUnblockedAsyncAccounts(ctx context.Context) ([]domain.AsyncAccount, error)
}

// LedgerWriter defines write operations on ledgers outside a transaction.
type LedgerWriter interface {
	// OpenLedgers persists a user's sync and async ledgers together.
	OpenLedgers(ctx context.Context, syncAcc domain.SyncAccount, asyncAcc domain.AsyncAccount) error
}

// LedgerTx is the set of operations available inside a store transaction. Lock methods
// take row locks that are held until the transaction ends; callers lock transaction rows
// first, then sync ledgers, then async ledgers.
type LedgerTx interface {
	// LockSyncAccounts locks the sync ledgers of the given owners, in owner id order.
	// Missing owners are absent from the result.
	LockSyncAccounts(ctx context.Context, ownerIDs []string) (map[string]domain.SyncAccount, error)

	// LockAsyncAccounts locks the async ledgers of the given owners, in owner id order.
	LockAsyncAccounts(ctx context.Context, ownerIDs []string) (map[string]domain.AsyncAccount, error)

	// LockTransaction locks one transaction row.
	LockTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	UpdateSyncAccount(ctx context.Context, acc domain.SyncAccount) error
	UpdateAsyncAccount(ctx context.Context, acc domain.AsyncAccount) error
	InsertTransaction(ctx context.Context, txn domain.Transaction) error
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// SumOutgoingSince sums the amounts of the origin's transactions of the given kinds
	// created at or after since, ignoring ROLLBACK and ERROR records.
	SumOutgoingSince(ctx context.Context, originUserID string, kinds []domain.OperationKind, since time.Time) (decimal.Decimal, error)
}

// LedgerRepositoryFacade combines ledger reads and writes.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
