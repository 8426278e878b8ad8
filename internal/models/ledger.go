package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// SyncAccount is a row of sync_accounts.
type SyncAccount struct {
	AccountID string          `db:"account_id"`
	OwnerID   string          `db:"owner_id"` // unique
	Balance   decimal.Decimal `db:"balance"`
	AuditFields
}

// AsyncAccount is a row of async_accounts.
type AsyncAccount struct {
	AccountID        string          `db:"account_id"`
	OwnerID          string          `db:"owner_id"` // unique
	Balance          decimal.Decimal `db:"balance"`
	Blocked          bool            `db:"blocked"`
	LastReconciledAt sql.NullTime    `db:"last_reconciled_at"`
	AuditFields
}
