package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
)

// TransactionReader defines read operations on transaction records.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction; apperrors.ErrNotFound when missing.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByStatus returns every transaction in the given status, oldest first.
	FindTransactionsByStatus(ctx context.Context, status domain.TransactionStatus) ([]domain.Transaction, error)

	// FindTransactionsByOwnerAndDateRange returns transactions where the user is origin or
	// destination, created within [from, to).
	FindTransactionsByOwnerAndDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]domain.Transaction, error)

	// SearchTransactions returns transactions matching filter, newest first.
	SearchTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// LedgerStore is everything the payment engines need from persistence.
type LedgerStore interface {
	LedgerRepositoryFacade
	TransactionReader
	TransactionManager
}
