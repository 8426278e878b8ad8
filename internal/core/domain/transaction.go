package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// OperationKind classifies the economic event a transaction records.
type OperationKind string

const (
	OperationInternalTopUp  OperationKind = "INTERNAL_TOPUP"
	OperationSyncTransfer   OperationKind = "SYNC_TRANSFER"
	OperationAsyncTransfer  OperationKind = "ASYNC_TRANSFER"
	OperationReconciliation OperationKind = "RECONCILIATION"
)

// Channel is the connection method the transfer travelled over.
type Channel string

const (
	ChannelInternet      Channel = "INTERNET"
	ChannelSMS           Channel = "SMS"
	ChannelNFC           Channel = "NFC"
	ChannelBluetooth     Channel = "BLUETOOTH"
	ChannelAsyncInternal Channel = "ASYNC_INTERNAL"
)

// IsOffline reports whether the channel works without connectivity.
func (c Channel) IsOffline() bool {
	return c == ChannelSMS || c == ChannelNFC || c == ChannelBluetooth
}

func (c Channel) Valid() bool {
	switch c {
	case ChannelInternet, ChannelSMS, ChannelNFC, ChannelBluetooth, ChannelAsyncInternal:
		return true
	}
	return false
}

// Gateway is a payment gateway tag. No live integration sits behind it.
type Gateway string

const (
	GatewayPagarme  Gateway = "PAGARME"
	GatewayStripe   Gateway = "STRIPE"
	GatewayDrex     Gateway = "DREX"
	GatewayInternal Gateway = "INTERNAL"
)

func (g Gateway) Valid() bool {
	switch g {
	case GatewayPagarme, GatewayStripe, GatewayDrex, GatewayInternal:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusSettled  TransactionStatus = "SETTLED"
	StatusRollback TransactionStatus = "ROLLBACK"
	StatusError    TransactionStatus = "ERROR"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSettled, StatusRollback, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusSettled || s == StatusRollback || s == StatusError
}

// CanTransition reports whether from -> to is a legal lifecycle move.
// Only PENDING may move, and only to one of the terminal states.
func CanTransition(from, to TransactionStatus) bool {
	return from == StatusPending && to.IsTerminal()
}

// MaxDescriptionLength bounds Transaction.Description.
const MaxDescriptionLength = 140

// AmountScale is the number of decimal places ledgers and transactions store.
const AmountScale = 2

// ValidateAmount rejects amounts that are not positive or that carry more decimal places
// than the ledgers store. Storing such an amount would round it and create or destroy value.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrInvalidArgument)
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrInvalidArgument, amount, AmountScale)
	}
	return nil
}

// PartySnapshot is the display identity of a party captured when the transaction is created.
type PartySnapshot struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
}

// Transaction is one economic event between two ledgers.
type Transaction struct {
	TransactionID string            `json:"transactionID"`
	OriginUserID  string            `json:"originUserID"`
	DestUserID    string            `json:"destUserID"`
	Amount        decimal.Decimal   `json:"amount"`
	OperationKind OperationKind     `json:"operationKind"`
	Channel       Channel           `json:"channel"`
	Gateway       Gateway           `json:"gateway"`
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Origin        PartySnapshot     `json:"origin"`
	Destination   PartySnapshot     `json:"destination"`
}

// TransitionTo moves the transaction to the given status and stamps UpdatedAt.
func (t *Transaction) TransitionTo(to TransactionStatus, now time.Time) error {
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("%w: transaction %s cannot move from %s to %s", apperrors.ErrAlreadyProcessed, t.TransactionID, t.Status, to)
	}
	t.Status = to
	t.UpdatedAt = now
	return nil
}

// SetDescription stores desc truncated to MaxDescriptionLength runes.
func (t *Transaction) SetDescription(desc string) {
	t.Description = TruncateDescription(desc)
}

// Age returns how long ago the transaction was created.
func (t *Transaction) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// TruncateDescription cuts desc to MaxDescriptionLength runes.
func TruncateDescription(desc string) string {
	r := []rune(desc)
	if len(r) <= MaxDescriptionLength {
		return desc
	}
	return string(r[:MaxDescriptionLength])
}

// TransactionFilter narrows a transaction search. Zero values are ignored.
type TransactionFilter struct {
	UserID         string // matches origin or destination
	OriginUserID   string
	DestUserID     string
	Status         TransactionStatus
	OperationKind  OperationKind
	Channel        Channel
	Gateway        Gateway
	MinAmount      *decimal.Decimal
	MaxAmount      *decimal.Decimal
	From           *time.Time
	To             *time.Time
	Limit          int
	AfterCreatedAt *time.Time // keyset cursor: rows strictly older than (AfterCreatedAt, AfterID)
	AfterID        string
}

// StatusChangedEvent is published whenever a transaction reaches a new status.
type StatusChangedEvent struct {
	TransactionID string            `json:"transactionID"`
	OperationKind OperationKind     `json:"operationKind"`
	Status        TransactionStatus `json:"status"`
	OriginUserID  string            `json:"originUserID"`
	DestUserID    string            `json:"destUserID"`
	Amount        decimal.Decimal   `json:"amount"`
	OccurredAt    time.Time         `json:"occurredAt"`
}

// NewStatusChangedEvent builds the event for t.
func NewStatusChangedEvent(t Transaction, now time.Time) StatusChangedEvent {
	return StatusChangedEvent{
		TransactionID: t.TransactionID,
		OperationKind: t.OperationKind,
		Status:        t.Status,
		OriginUserID:  t.OriginUserID,
		DestUserID:    t.DestUserID,
		Amount:        t.Amount,
		OccurredAt:    now,
	}
}
