package repositories

import (
	"context"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
)

// AuditSink accepts audit records into the append-only hash-chained log.
type AuditSink interface {
	Append(ctx context.Context, record domain.AuditRecord) error
}

// AuditLogReader reads the audit chain back for verification.
type AuditLogReader interface {
	ListAuditEntries(ctx context.Context) ([]domain.AuditEntry, error)
}

// AuditRepositoryFacade combines the audit sink and its reader.
type AuditRepositoryFacade interface {
	AuditSink
	AuditLogReader
}

// RegulatorySink receives high-value flags.
type RegulatorySink interface {
	Flag(ctx context.Context, flag domain.HighValueFlag) error
}

// EventPublisher announces transaction status changes to other services.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event domain.StatusChangedEvent) error
}
