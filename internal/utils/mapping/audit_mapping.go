package mapping

import (
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/models"
)

func ToDomainAuditEntry(m models.AuditLogEntry) domain.AuditEntry {
	return domain.AuditEntry{
		Sequence: m.Sequence,
		Record: domain.AuditRecord{
			TransactionID: m.TransactionID,
			OriginUserID:  m.OriginUserID,
			DestUserID:    m.DestUserID,
			Amount:        m.Amount,
			Timestamp:     m.RecordedAt.UTC(),
			ContentHash:   m.ContentHash,
		},
		PrevHash:  m.PrevHash,
		ChainHash: m.ChainHash,
	}
}

func ToModelHighValueFlag(d domain.HighValueFlag) models.HighValueFlag {
	return models.HighValueFlag{
		TransactionID: d.TransactionID,
		OriginUserID:  d.OriginUserID,
		DestUserID:    d.DestUserID,
		Amount:        d.Amount,
		FlaggedAt:     d.Timestamp,
		Description:   d.Description,
	}
}
