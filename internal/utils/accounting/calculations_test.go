package accounting

import (
	"testing"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateSignedAmount(t *testing.T) {
	got, err := CalculateSignedAmount(DebitLeg(SyncLedger("alice"), d("12.50")))
	assert.NoError(t, err)
	assert.True(t, d("-12.50").Equal(got))

	got, err = CalculateSignedAmount(CreditLeg(AsyncLedger("alice"), d("12.50")))
	assert.NoError(t, err)
	assert.True(t, d("12.50").Equal(got))

	_, err = CalculateSignedAmount(Leg{Ledger: "x", Side: "SIDEWAYS", Amount: d("1")})
	assert.Error(t, err)
}

func TestValidateBalanced(t *testing.T) {
	tests := []struct {
		name    string
		legs    []Leg
		wantErr bool
	}{
		{"simple transfer", []Leg{DebitLeg("sync:a", d("10")), CreditLeg("sync:b", d("10"))}, false},
		{"split debit", []Leg{
			DebitLeg("async:b", d("30")),
			DebitLeg("sync:b", d("20")),
			CreditLeg("sync:a", d("50")),
		}, false},
		{"zero leg ignored", []Leg{
			DebitLeg("async:b", d("50")),
			DebitLeg("sync:b", decimal.Zero),
			CreditLeg("sync:a", d("50")),
		}, false},
		{"unbalanced", []Leg{DebitLeg("sync:a", d("10")), CreditLeg("sync:b", d("10.01"))}, true},
		{"credit only", []Leg{CreditLeg("sync:b", d("10"))}, true},
		{"negative leg", []Leg{DebitLeg("sync:a", d("-10")), CreditLeg("sync:b", d("-10"))}, true},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBalanced(tt.legs)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInternal)
				return
			}
			assert.NoError(t, err)
		})
	}
}
