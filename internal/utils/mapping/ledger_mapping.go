package mapping

import (
	"database/sql"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/models"
)

func ToModelSyncAccount(d domain.SyncAccount) models.SyncAccount {
	return models.SyncAccount{
		AccountID:   d.AccountID,
		OwnerID:     d.OwnerID,
		Balance:     d.Balance,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainSyncAccount(m models.SyncAccount) domain.SyncAccount {
	return domain.SyncAccount{
		AccountID:   m.AccountID,
		OwnerID:     m.OwnerID,
		Balance:     m.Balance,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAsyncAccount converts a domain AsyncAccount; a nil LastReconciledAt becomes NULL.
func ToModelAsyncAccount(d domain.AsyncAccount) models.AsyncAccount {
	m := models.AsyncAccount{
		AccountID:   d.AccountID,
		OwnerID:     d.OwnerID,
		Balance:     d.Balance,
		Blocked:     d.Blocked,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	if d.LastReconciledAt != nil {
		m.LastReconciledAt = sql.NullTime{Time: *d.LastReconciledAt, Valid: true}
	}
	return m
}

func ToDomainAsyncAccount(m models.AsyncAccount) domain.AsyncAccount {
	d := domain.AsyncAccount{
		AccountID:   m.AccountID,
		OwnerID:     m.OwnerID,
		Balance:     m.Balance,
		Blocked:     m.Blocked,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.LastReconciledAt.Valid {
		t := m.LastReconciledAt.Time.UTC()
		d.LastReconciledAt = &t
	}
	return d
}
