package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeAuditHash(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	amount := decimal.NewFromInt(120)

	h1 := domain.ComputeAuditHash("a", "b", amount, at)
	h2 := domain.ComputeAuditHash("a", "b", amount, at)
	h3 := domain.ComputeAuditHash("a", "b", amount, at.Add(time.Millisecond))

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2, "same fields and nonce hash the same")
	assert.NotEqual(t, h1, h3, "wall-clock nonce changes the hash")
}

func buildChain(records ...domain.AuditRecord) []domain.AuditEntry {
	prev := domain.GenesisHash
	entries := make([]domain.AuditEntry, 0, len(records))
	for i, r := range records {
		chain := domain.ChainHash(prev, r.ContentHash)
		entries = append(entries, domain.AuditEntry{Sequence: int64(i + 1), Record: r, PrevHash: prev, ChainHash: chain})
		prev = chain
	}
	return entries
}

func TestVerifyAuditChain(t *testing.T) {
	now := time.Now().UTC()
	txn := domain.Transaction{TransactionID: "t1", OriginUserID: "a", DestUserID: "b", Amount: decimal.NewFromInt(10)}
	entries := buildChain(
		domain.NewAuditRecord(txn, now),
		domain.NewAuditRecord(txn, now.Add(time.Second)),
		domain.NewAuditRecord(txn, now.Add(2*time.Second)),
	)

	_, ok := domain.VerifyAuditChain(entries)
	assert.True(t, ok)

	entries[1].Record.ContentHash = "tampered"
	brokenAt, ok := domain.VerifyAuditChain(entries)
	assert.False(t, ok)
	assert.Equal(t, int64(2), brokenAt)
}

func TestVerifyAuditChain_FieldTamper(t *testing.T) {
	now := time.Now().UTC()
	txn := domain.Transaction{TransactionID: "t1", OriginUserID: "a", DestUserID: "b", Amount: decimal.NewFromInt(10)}

	tests := []struct {
		name   string
		tamper func(*domain.AuditRecord)
	}{
		{"amount", func(r *domain.AuditRecord) { r.Amount = decimal.NewFromInt(9999) }},
		{"destination", func(r *domain.AuditRecord) { r.DestUserID = "mallory" }},
		{"origin", func(r *domain.AuditRecord) { r.OriginUserID = "mallory" }},
		{"timestamp", func(r *domain.AuditRecord) { r.Timestamp = r.Timestamp.Add(time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := buildChain(
				domain.NewAuditRecord(txn, now),
				domain.NewAuditRecord(txn, now.Add(time.Second)),
			)
			tt.tamper(&entries[0].Record)

			brokenAt, ok := domain.VerifyAuditChain(entries)
			assert.False(t, ok)
			assert.Equal(t, int64(1), brokenAt)
		})
	}
}

func TestAuditRecord_IntactAfterStoreRoundTrip(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC)
	record := domain.NewAuditRecord(domain.Transaction{OriginUserID: "a", DestUserID: "b", Amount: decimal.RequireFromString("10.5")}, at)

	// NUMERIC(20,2) and timestamptz hand back a padded scale and microsecond precision.
	record.Amount = decimal.RequireFromString("10.50")
	record.Timestamp = at.Truncate(time.Microsecond).In(time.FixedZone("BRT", -3*3600))
	assert.True(t, record.Intact())
}

func TestVerifyAuditChain_Empty(t *testing.T) {
	_, ok := domain.VerifyAuditChain(nil)
	assert.True(t, ok)
}

func TestLimitPolicy(t *testing.T) {
	p := domain.DefaultLimitPolicy()

	topUp := domain.InternalTopUp{UserID: "a", Amount: decimal.NewFromInt(100)}
	transfer := domain.SyncTransfer{OriginUserID: "a", DestUserID: "b", Amount: decimal.NewFromInt(100)}
	bigTopUp := domain.InternalTopUp{UserID: "a", Amount: decimal.NewFromFloat(10000.01)}

	assert.True(t, p.DailyLimitApplies(topUp))
	assert.False(t, p.DailyLimitApplies(transfer), "default scope counts top-ups only")
	assert.False(t, p.DailyLimitApplies(bigTopUp), "amounts above the threshold skip the daily cap")

	p.DailyLimitScope = domain.DailyLimitAll
	assert.True(t, p.DailyLimitApplies(transfer))
	assert.Len(t, p.DailyLimitKinds(), 3)

	assert.True(t, p.IsHighValue(decimal.NewFromFloat(10000.01)))
	assert.False(t, p.IsHighValue(decimal.NewFromInt(10000)))
	assert.True(t, p.ExceedsOfflineCap(decimal.NewFromInt(501)))
	assert.False(t, p.ExceedsOfflineCap(decimal.NewFromInt(500)))
}
