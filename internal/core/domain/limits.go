package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyLimitScope selects which transactions count towards the daily cap.
type DailyLimitScope string

const (
	// DailyLimitTopUps counts only intra-user top-ups of the async ledger.
	DailyLimitTopUps DailyLimitScope = "topup"
	// DailyLimitAll counts every outgoing transfer of the origin user.
	DailyLimitAll DailyLimitScope = "all"
)

// LimitPolicy holds the thresholds enforced by the transaction engine and the
// reconciliation window used by the sweeps.
type LimitPolicy struct {
	OfflineTransferCap   decimal.Decimal
	KYCThreshold         decimal.Decimal
	DailyLimitCap        decimal.Decimal
	DailyLimitThreshold  decimal.Decimal
	DailyLimitScope      DailyLimitScope
	HighValueThreshold   decimal.Decimal
	ReconciliationWindow time.Duration
}

// DefaultLimitPolicy returns the production thresholds.
func DefaultLimitPolicy() LimitPolicy {
	return LimitPolicy{
		OfflineTransferCap:   decimal.NewFromInt(500),
		KYCThreshold:         decimal.NewFromInt(500),
		DailyLimitCap:        decimal.NewFromInt(1000),
		DailyLimitThreshold:  decimal.NewFromInt(10000),
		DailyLimitScope:      DailyLimitTopUps,
		HighValueThreshold:   decimal.NewFromInt(10000),
		ReconciliationWindow: 72 * time.Hour,
	}
}

// DailyLimitApplies reports whether the daily cap is checked for op.
// Amounts above the threshold are reported through the high-value flag instead.
func (p LimitPolicy) DailyLimitApplies(op OperationRequest) bool {
	if op.Value().GreaterThan(p.DailyLimitThreshold) {
		return false
	}
	if p.DailyLimitScope == DailyLimitAll {
		return true
	}
	return op.Kind() == OperationInternalTopUp
}

// DailyLimitKinds lists the operation kinds summed for the daily cap.
func (p LimitPolicy) DailyLimitKinds() []OperationKind {
	if p.DailyLimitScope == DailyLimitAll {
		return []OperationKind{OperationInternalTopUp, OperationSyncTransfer, OperationAsyncTransfer}
	}
	return []OperationKind{OperationInternalTopUp}
}

// IsHighValue reports whether amount must be flagged for regulatory reporting.
func (p LimitPolicy) IsHighValue(amount decimal.Decimal) bool {
	return amount.GreaterThan(p.HighValueThreshold)
}

// ExceedsOfflineCap reports whether amount is above the per-transaction offline cap.
func (p LimitPolicy) ExceedsOfflineCap(amount decimal.Decimal) bool {
	return amount.GreaterThan(p.OfflineTransferCap)
}

// RequiresKYC reports whether amount needs a validated identity on offline channels.
func (p LimitPolicy) RequiresKYC(amount decimal.Decimal) bool {
	return amount.GreaterThan(p.KYCThreshold)
}
