package accounting

import (
	"fmt"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Side is the direction of a leg.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// Leg is one balance change of a ledger move.
type Leg struct {
	Ledger string // e.g. "sync:alice"
	Side   Side
	Amount decimal.Decimal
}

// DebitLeg and CreditLeg build legs for ledger.
func DebitLeg(ledger string, amount decimal.Decimal) Leg {
	return Leg{Ledger: ledger, Side: Debit, Amount: amount}
}

func CreditLeg(ledger string, amount decimal.Decimal) Leg {
	return Leg{Ledger: ledger, Side: Credit, Amount: amount}
}

// SyncLedger and AsyncLedger name the ledgers of ownerID.
func SyncLedger(ownerID string) string  { return "sync:" + ownerID }
func AsyncLedger(ownerID string) string { return "async:" + ownerID }

// CalculateSignedAmount returns the change the leg applies to its ledger's balance.
// A debit lowers the balance, a credit raises it.
func CalculateSignedAmount(leg Leg) (decimal.Decimal, error) {
	switch leg.Side {
	case Debit:
		return leg.Amount.Neg(), nil
	case Credit:
		return leg.Amount, nil
	}
	return decimal.Zero, fmt.Errorf("unknown side '%s' on ledger %s", leg.Side, leg.Ledger)
}

// ValidateBalanced checks that a move neither creates nor destroys value: it needs at
// least one debit and one credit, every non-empty leg must be positive and the signed
// amounts must sum to zero. Zero legs are ignored so callers can pass optional legs.
func ValidateBalanced(legs []Leg) error {
	sum := decimal.Zero
	var debits, credits int
	for _, leg := range legs {
		if leg.Amount.IsZero() {
			continue
		}
		if leg.Amount.IsNegative() {
			return fmt.Errorf("%w: negative leg %s on %s", apperrors.ErrInternal, leg.Amount, leg.Ledger)
		}
		signed, err := CalculateSignedAmount(leg)
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}
		if leg.Side == Debit {
			debits++
		} else {
			credits++
		}
		sum = sum.Add(signed)
	}
	if debits == 0 || credits == 0 {
		return fmt.Errorf("%w: a move needs a debit and a credit leg", apperrors.ErrInternal)
	}
	if !sum.IsZero() {
		return fmt.Errorf("%w: ledger move does not balance, net %s", apperrors.ErrInternal, sum)
	}
	return nil
}
