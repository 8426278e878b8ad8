package services

import (
	"context"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/dto"
)

// TransactionEngineSvc executes and reverses transfers.
type TransactionEngineSvc interface {
	// Execute validates, routes and commits a transfer.
	Execute(ctx context.Context, req domain.TransferRequest) (*domain.Transaction, error)

	// ExecuteOperation commits an already routed operation.
	ExecuteOperation(ctx context.Context, op domain.OperationRequest) (*domain.Transaction, error)

	// Reverse returns the value of a pending transaction to its origin and marks it ROLLBACK.
	// Reversing a ROLLBACK transaction is a no-op.
	Reverse(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

// TransactionQuerySvc answers read-side questions about transactions.
type TransactionQuerySvc interface {
	GetTransaction(ctx context.Context, transactionID string, requestingUserID string) (*domain.Transaction, error)

	// GetStatus reads the status cache and falls back to the store on a miss.
	GetStatus(ctx context.Context, transactionID string) (*dto.TransactionStatusResponse, error)

	ListSent(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
	ListReceived(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
	SearchTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionSvcFacade combines the engine and the query side.
type TransactionSvcFacade interface {
	TransactionEngineSvc
	TransactionQuerySvc
}
