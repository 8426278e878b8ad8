package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.TransactionStatus
		to   domain.TransactionStatus
		want bool
	}{
		{"pending to settled", domain.StatusPending, domain.StatusSettled, true},
		{"pending to rollback", domain.StatusPending, domain.StatusRollback, true},
		{"pending to error", domain.StatusPending, domain.StatusError, true},
		{"pending to pending", domain.StatusPending, domain.StatusPending, false},
		{"settled to rollback", domain.StatusSettled, domain.StatusRollback, false},
		{"rollback to settled", domain.StatusRollback, domain.StatusSettled, false},
		{"error to pending", domain.StatusError, domain.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransaction_TransitionTo(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := created.Add(time.Hour)
	txn := domain.Transaction{TransactionID: "t-1", Status: domain.StatusPending, CreatedAt: created, UpdatedAt: created}

	require.NoError(t, txn.TransitionTo(domain.StatusSettled, now))
	assert.Equal(t, domain.StatusSettled, txn.Status)
	assert.Equal(t, now, txn.UpdatedAt)

	err := txn.TransitionTo(domain.StatusRollback, now.Add(time.Minute))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyProcessed)
	assert.Equal(t, domain.StatusSettled, txn.Status, "terminal status must not change")
	assert.Equal(t, now, txn.UpdatedAt)
}

func TestTruncateDescription(t *testing.T) {
	short := "topup"
	assert.Equal(t, short, domain.TruncateDescription(short))

	long := strings.Repeat("é", domain.MaxDescriptionLength+10)
	got := domain.TruncateDescription(long)
	assert.Equal(t, domain.MaxDescriptionLength, len([]rune(got)))
}

func TestValidateAmount(t *testing.T) {
	for _, ok := range []string{"0.01", "1", "10.5", "500.00", "10000.01"} {
		assert.NoError(t, domain.ValidateAmount(decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"0", "-1", "0.005", "0.001", "10.125"} {
		assert.ErrorIs(t, domain.ValidateAmount(decimal.RequireFromString(bad)), apperrors.ErrInvalidArgument, bad)
	}
}

func TestNewStatusChangedEvent(t *testing.T) {
	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID: "t-9",
		OperationKind: domain.OperationAsyncTransfer,
		Status:        domain.StatusPending,
		OriginUserID:  "a",
		DestUserID:    "b",
		Amount:        decimal.NewFromInt(20),
	}

	evt := domain.NewStatusChangedEvent(txn, now)
	assert.Equal(t, "t-9", evt.TransactionID)
	assert.Equal(t, domain.StatusPending, evt.Status)
	assert.True(t, evt.Amount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, now, evt.OccurredAt)
}
