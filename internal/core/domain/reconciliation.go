package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationResult describes the outcome of reconciling one async ledger.
type ReconciliationResult struct {
	AsyncAccountID string          `json:"asyncAccountID"`
	OwnerID        string          `json:"ownerID"`
	MovedAmount    decimal.Decimal `json:"movedAmount"`
	SyncBalance    decimal.Decimal `json:"syncBalance"`
	AsyncBalance   decimal.Decimal `json:"asyncBalance"`
	Blocked        bool            `json:"blocked"`
	Unblocked      bool            `json:"unblocked"`
	Transaction    *Transaction    `json:"transaction,omitempty"` // nil when nothing moved
	ReconciledAt   time.Time       `json:"reconciledAt"`
}

// SweepReport summarizes one pass of a periodic job.
type SweepReport struct {
	Job       string    `json:"job"`
	Scanned   int       `json:"scanned"`
	Succeeded int       `json:"succeeded"`
	Blocked   int       `json:"blocked,omitempty"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"startedAt"`
	Duration  string    `json:"duration"`
}
