package dto

import (
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SyncAccountResponse is the API view of a sync ledger.
type SyncAccountResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance" swaggertype:"string"`
}

// AsyncAccountResponse is the API view of an async ledger.
type AsyncAccountResponse struct {
	AccountID        string          `json:"accountID"`
	Balance          decimal.Decimal `json:"balance" swaggertype:"string"`
	Blocked          bool            `json:"blocked"`
	LastReconciledAt *time.Time      `json:"lastReconciledAt,omitempty"`
}

// LedgersResponse holds both ledgers of a user.
type LedgersResponse struct {
	OwnerID string               `json:"ownerID"`
	Sync    SyncAccountResponse  `json:"sync"`
	Async   AsyncAccountResponse `json:"async"`
}

// ToLedgersResponse converts the ledger pair of a user.
func ToLedgersResponse(pair *domain.LedgerPair) LedgersResponse {
	return LedgersResponse{
		OwnerID: pair.Sync.OwnerID,
		Sync: SyncAccountResponse{
			AccountID: pair.Sync.AccountID,
			Balance:   pair.Sync.Balance,
		},
		Async: AsyncAccountResponse{
			AccountID:        pair.Async.AccountID,
			Balance:          pair.Async.Balance,
			Blocked:          pair.Async.Blocked,
			LastReconciledAt: pair.Async.LastReconciledAt,
		},
	}
}
