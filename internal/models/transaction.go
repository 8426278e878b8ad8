package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of transactions. Party snapshots are stored denormalized.
type Transaction struct {
	TransactionID  string          `db:"transaction_id"`
	OriginUserID   string          `db:"origin_user_id"`
	DestUserID     string          `db:"dest_user_id"`
	Amount         decimal.Decimal `db:"amount"`
	OperationKind  string          `db:"operation_kind"`
	Channel        string          `db:"channel"`
	Gateway        string          `db:"gateway"`
	Status         string          `db:"status"`
	Description    string          `db:"description"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	OriginName     string          `db:"origin_name"`
	OriginEmail    string          `db:"origin_email"`
	OriginDocument string          `db:"origin_document"`
	DestName       string          `db:"dest_name"`
	DestEmail      string          `db:"dest_email"`
	DestDocument   string          `db:"dest_document"`
}
