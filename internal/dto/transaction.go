package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// CreateTransactionRequest is the body of POST /transactions. The origin user is the
// authenticated caller.
type CreateTransactionRequest struct {
	DestUserID  string          `json:"destUserID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"50.00"`
	Channel     domain.Channel  `json:"channel" binding:"required,oneof=INTERNET SMS NFC BLUETOOTH ASYNC_INTERNAL"`
	Gateway     domain.Gateway  `json:"gateway" binding:"omitempty,oneof=PAGARME STRIPE DREX INTERNAL"`
	Description string          `json:"description" binding:"max=140"`
}

// ToTransferRequest builds the engine request for originUserID.
func (r CreateTransactionRequest) ToTransferRequest(originUserID string) domain.TransferRequest {
	return domain.TransferRequest{
		OriginUserID: originUserID,
		DestUserID:   r.DestUserID,
		Amount:       r.Amount,
		Channel:      r.Channel,
		Gateway:      r.Gateway,
		Description:  r.Description,
	}
}

// PartyResponse is the identity snapshot of a party.
type PartyResponse struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
}

// TransactionResponse is the API view of a transaction.
type TransactionResponse struct {
	TransactionID string                   `json:"transactionID"`
	OriginUserID  string                   `json:"originUserID"`
	DestUserID    string                   `json:"destUserID"`
	Amount        decimal.Decimal          `json:"amount" swaggertype:"string"`
	OperationKind domain.OperationKind     `json:"operationKind"`
	Channel       domain.Channel           `json:"channel"`
	Gateway       domain.Gateway           `json:"gateway"`
	Status        domain.TransactionStatus `json:"status"`
	Description   string                   `json:"description"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
	Origin        PartyResponse            `json:"origin"`
	Destination   PartyResponse            `json:"destination"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		OriginUserID:  t.OriginUserID,
		DestUserID:    t.DestUserID,
		Amount:        t.Amount,
		OperationKind: t.OperationKind,
		Channel:       t.Channel,
		Gateway:       t.Gateway,
		Status:        t.Status,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Origin:        PartyResponse(t.Origin),
		Destination:   PartyResponse(t.Destination),
	}
}

// ToTransactionResponses converts a slice of transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return out
}

// TransactionStatusResponse answers a status poll.
type TransactionStatusResponse struct {
	TransactionID string                   `json:"transactionID"`
	Status        domain.TransactionStatus `json:"status"`
	Source        string                   `json:"source"` // "cache" or "store"
}

// ListTransactionsParams defines query parameters for searching transactions.
type ListTransactionsParams struct {
	Status    domain.TransactionStatus `form:"status" binding:"omitempty,oneof=PENDING SETTLED ROLLBACK ERROR"`
	Kind      domain.OperationKind     `form:"kind" binding:"omitempty,oneof=INTERNAL_TOPUP SYNC_TRANSFER ASYNC_TRANSFER RECONCILIATION"`
	Channel   domain.Channel           `form:"channel" binding:"omitempty,oneof=INTERNET SMS NFC BLUETOOTH ASYNC_INTERNAL"`
	Gateway   domain.Gateway           `form:"gateway" binding:"omitempty,oneof=PAGARME STRIPE DREX INTERNAL"`
	MinAmount string                   `form:"minAmount"`
	MaxAmount string                   `form:"maxAmount"`
	From      time.Time                `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        time.Time                `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int                      `form:"limit,default=20"`
	NextToken string                   `form:"nextToken"`
}

// ToFilter converts the query into a domain filter scoped to userID.
func (p ListTransactionsParams) ToFilter(userID string) (domain.TransactionFilter, error) {
	f := domain.TransactionFilter{
		UserID:        userID,
		Status:        p.Status,
		OperationKind: p.Kind,
		Channel:       p.Channel,
		Gateway:       p.Gateway,
		Limit:         normalizeLimit(p.Limit),
	}
	var err error
	if f.MinAmount, err = parseAmount("minAmount", p.MinAmount); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseAmount("maxAmount", p.MaxAmount); err != nil {
		return f, err
	}
	if !p.From.IsZero() {
		from := p.From.UTC()
		f.From = &from
	}
	if !p.To.IsZero() {
		to := p.To.UTC()
		f.To = &to
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return f, fmt.Errorf("%w: from must be before to", apperrors.ErrValidation)
	}
	if p.NextToken != "" {
		createdAt, id, err := pagination.DecodeToken(p.NextToken)
		if err != nil {
			return f, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		f.AfterCreatedAt = &createdAt
		f.AfterID = id
	}
	return f, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func parseAmount(field, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a decimal", apperrors.ErrValidation, field)
	}
	return &d, nil
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToListTransactionsResponse builds a page; a next token is set when the page is full.
func ToListTransactionsResponse(txns []domain.Transaction, limit int) ListTransactionsResponse {
	resp := ListTransactionsResponse{Transactions: ToTransactionResponses(txns)}
	if limit > 0 && len(txns) == limit {
		last := txns[len(txns)-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		resp.NextToken = &token
	}
	return resp
}
