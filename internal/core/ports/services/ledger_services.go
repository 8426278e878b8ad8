package services

import (
	"context"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/dto"
)

// LedgerSvc opens and reads the ledgers of a user.
type LedgerSvc interface {
	OpenLedgers(ctx context.Context, userID string) (*domain.LedgerPair, error)
	GetLedgers(ctx context.Context, userID string) (*domain.LedgerPair, error)
}

// AuditSvc checks the audit log.
type AuditSvc interface {
	VerifyChain(ctx context.Context) (*dto.AuditVerificationResponse, error)
}
