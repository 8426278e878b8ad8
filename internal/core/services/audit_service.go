package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/SscSPs/async_payments_app/internal/dto"
)

type auditService struct {
	BaseService
	log portsrepo.AuditLogReader
}

// NewAuditService creates the service verifying the audit hash chain.
func NewAuditService(log portsrepo.AuditLogReader, options ...ServiceOption) portssvc.AuditSvc {
	return &auditService{BaseService: newBaseService(options...), log: log}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

// VerifyChain walks the audit log from the genesis hash and reports the first entry whose
// links do not match.
func (s *auditService) VerifyChain(ctx context.Context) (*dto.AuditVerificationResponse, error) {
	entries, err := s.log.ListAuditEntries(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to read audit log")
		return nil, err
	}

	resp := &dto.AuditVerificationResponse{Entries: len(entries), Intact: true}
	if len(entries) > 0 {
		resp.HeadHash = entries[len(entries)-1].ChainHash
	}
	if brokenAt, ok := domain.VerifyAuditChain(entries); !ok {
		resp.Intact = false
		resp.BrokenAtSequence = &brokenAt
		s.GetLogger(ctx).Warn("Audit chain broken", slog.Int64("sequence", brokenAt))
	}
	return resp, nil
}
