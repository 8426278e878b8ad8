package mapping

import (
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/models"
)

// auditActor fills the NOT NULL actor columns of users, sync_accounts and async_accounts.
// Rows changed without a caller, such as by a sweep, are attributed to the system actor.
func auditActor(actor string) string {
	if actor == "" {
		return domain.SystemActor
	}
	return actor
}

// ToModelAuditFields converts the created/updated stamps of a user or ledger row.
func ToModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     d.CreatedAt.UTC(),
		CreatedBy:     auditActor(d.CreatedBy),
		LastUpdatedAt: d.LastUpdatedAt.UTC(),
		LastUpdatedBy: auditActor(d.LastUpdatedBy),
	}
}

// ToDomainAuditFields converts the stamps read back from a row. Timestamps come back in UTC
// whatever the session time zone.
func ToDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt.UTC(),
		CreatedBy:     m.CreatedBy,
		LastUpdatedAt: m.LastUpdatedAt.UTC(),
		LastUpdatedBy: m.LastUpdatedBy,
	}
}
