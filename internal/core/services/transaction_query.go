package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/dto"
)

const (
	statusSourceCache = "cache"
	statusSourceStore = "store"
)

// GetTransaction returns a transaction the requesting user took part in. Transactions of
// other users are reported as not found.
func (s *transactionService) GetTransaction(ctx context.Context, transactionID string, requestingUserID string) (*domain.Transaction, error) {
	txn, err := s.store.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.OriginUserID != requestingUserID && txn.DestUserID != requestingUserID {
		s.LogDebug(ctx, "Transaction requested by a non-party",
			slog.String("transaction_id", transactionID),
			slog.String("user_id", requestingUserID))
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return txn, nil
}

// GetStatus answers from the status cache and falls back to the store on a miss,
// repopulating the cache with what the store holds.
func (s *transactionService) GetStatus(ctx context.Context, transactionID string) (*dto.TransactionStatusResponse, error) {
	if status, err := s.after.cache.Get(transactionID); err == nil {
		return &dto.TransactionStatusResponse{TransactionID: transactionID, Status: status, Source: statusSourceCache}, nil
	}

	txn, err := s.store.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	s.after.cache.Put(txn.TransactionID, txn.Status)
	return &dto.TransactionStatusResponse{TransactionID: txn.TransactionID, Status: txn.Status, Source: statusSourceStore}, nil
}

// ListSent returns the transactions userID originated, newest first.
func (s *transactionService) ListSent(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	return s.search(ctx, userID, params, func(f *domain.TransactionFilter) {
		f.UserID = ""
		f.OriginUserID = userID
	})
}

// ListReceived returns the transactions userID received, newest first.
func (s *transactionService) ListReceived(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	return s.search(ctx, userID, params, func(f *domain.TransactionFilter) {
		f.UserID = ""
		f.DestUserID = userID
	})
}

// SearchTransactions returns transactions where userID is either party.
func (s *transactionService) SearchTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	return s.search(ctx, userID, params, nil)
}

func (s *transactionService) search(ctx context.Context, userID string, params dto.ListTransactionsParams, scope func(*domain.TransactionFilter)) (*dto.ListTransactionsResponse, error) {
	filter, err := params.ToFilter(userID)
	if err != nil {
		return nil, err
	}
	if scope != nil {
		scope(&filter)
	}

	txns, err := s.store.SearchTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to search transactions", slog.String("user_id", userID))
		return nil, err
	}
	resp := dto.ToListTransactionsResponse(txns, filter.Limit)
	return &resp, nil
}
