package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncAccountMapping_NullReconciliation(t *testing.T) {
	acc := domain.AsyncAccount{AccountID: "a1", OwnerID: "alice", Balance: decimal.NewFromInt(5)}

	m := ToModelAsyncAccount(acc)
	assert.False(t, m.LastReconciledAt.Valid)

	back := ToDomainAsyncAccount(m)
	assert.Nil(t, back.LastReconciledAt)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	acc.LastReconciledAt = &at
	back = ToDomainAsyncAccount(ToModelAsyncAccount(acc))
	require.NotNil(t, back.LastReconciledAt)
	assert.True(t, at.Equal(*back.LastReconciledAt))
}

func TestTransactionMapping_FlattensSnapshots(t *testing.T) {
	txn := domain.Transaction{
		TransactionID: "t1",
		Status:        domain.StatusPending,
		Origin:        domain.PartySnapshot{Name: "Alice", Email: "a@x.io", Document: "1"},
		Destination:   domain.PartySnapshot{Name: "Bob", Email: "b@x.io", Document: "2"},
	}

	m := ToModelTransaction(txn)
	assert.Equal(t, "Bob", m.DestName)
	assert.Equal(t, "PENDING", m.Status)
	assert.Equal(t, txn.Destination, ToDomainTransaction(m).Destination)
}

func TestAuditFieldsMapping(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("BRT", -3*3600))

	m := ToModelAuditFields(domain.AuditFields{CreatedAt: at, CreatedBy: "alice", LastUpdatedAt: at})
	assert.Equal(t, "alice", m.CreatedBy)
	assert.Equal(t, domain.SystemActor, m.LastUpdatedBy, "rows touched without a caller belong to the system actor")
	assert.Equal(t, time.UTC, m.CreatedAt.Location())

	back := ToDomainAuditFields(m)
	assert.True(t, at.Equal(back.CreatedAt))
	assert.Equal(t, time.UTC, back.LastUpdatedAt.Location())
}
