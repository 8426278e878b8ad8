package dto

import (
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconcileLedgerParams are the query parameters of a manual reconciliation.
type ReconcileLedgerParams struct {
	Unblock bool `form:"unblock"`
}

// ReconciliationResponse is the API view of a reconciliation.
type ReconciliationResponse struct {
	AsyncAccountID string               `json:"asyncAccountID"`
	OwnerID        string               `json:"ownerID"`
	MovedAmount    decimal.Decimal      `json:"movedAmount" swaggertype:"string"`
	SyncBalance    decimal.Decimal      `json:"syncBalance" swaggertype:"string"`
	AsyncBalance   decimal.Decimal      `json:"asyncBalance" swaggertype:"string"`
	Unblocked      bool                 `json:"unblocked"`
	Transaction    *TransactionResponse `json:"transaction,omitempty"`
	ReconciledAt   time.Time            `json:"reconciledAt"`
}

// ToReconciliationResponse converts a domain.ReconciliationResult.
func ToReconciliationResponse(r *domain.ReconciliationResult) ReconciliationResponse {
	resp := ReconciliationResponse{
		AsyncAccountID: r.AsyncAccountID,
		OwnerID:        r.OwnerID,
		MovedAmount:    r.MovedAmount,
		SyncBalance:    r.SyncBalance,
		AsyncBalance:   r.AsyncBalance,
		Unblocked:      r.Unblocked,
		ReconciledAt:   r.ReconciledAt,
	}
	if r.Transaction != nil {
		txn := ToTransactionResponse(r.Transaction)
		resp.Transaction = &txn
	}
	return resp
}
