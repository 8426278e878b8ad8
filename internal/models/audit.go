package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditLogEntry is a row of audit_log.
type AuditLogEntry struct {
	Sequence      int64           `db:"sequence"`
	TransactionID string          `db:"transaction_id"`
	OriginUserID  string          `db:"origin_user_id"`
	DestUserID    string          `db:"dest_user_id"`
	Amount        decimal.Decimal `db:"amount"`
	RecordedAt    time.Time       `db:"recorded_at"`
	ContentHash   string          `db:"content_hash"`
	PrevHash      string          `db:"prev_hash"`
	ChainHash     string          `db:"chain_hash"`
}

// HighValueFlag is a row of high_value_flags.
type HighValueFlag struct {
	TransactionID string          `db:"transaction_id"`
	OriginUserID  string          `db:"origin_user_id"`
	DestUserID    string          `db:"dest_user_id"`
	Amount        decimal.Decimal `db:"amount"`
	FlaggedAt     time.Time       `db:"flagged_at"`
	Description   string          `db:"description"`
}
