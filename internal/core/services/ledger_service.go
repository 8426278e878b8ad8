package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ledgerService opens and reads the ledger pair of a user.
type ledgerService struct {
	BaseService
	ledgers        portsrepo.LedgerRepositoryFacade
	identities     portsrepo.IdentityProvider
	openingBalance decimal.Decimal
}

// NewLedgerService creates a LedgerSvc. openingBalance is credited to every new sync
// ledger; zero opens empty ledgers.
func NewLedgerService(
	ledgers portsrepo.LedgerRepositoryFacade,
	identities portsrepo.IdentityProvider,
	openingBalance decimal.Decimal,
	options ...ServiceOption,
) portssvc.LedgerSvc {
	return &ledgerService{
		BaseService:    newBaseService(options...),
		ledgers:        ledgers,
		identities:     identities,
		openingBalance: openingBalance,
	}
}

var _ portssvc.LedgerSvc = (*ledgerService)(nil)

// OpenLedgers opens the sync and async ledgers of a registered user. Each user holds
// exactly one pair.
func (s *ledgerService) OpenLedgers(ctx context.Context, userID string) (*domain.LedgerPair, error) {
	if _, err := s.identities.FindIdentity(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s must be registered before opening ledgers", apperrors.ErrValidation, userID)
		}
		return nil, err
	}

	syncAcc, asyncAcc := domain.NewLedgerPair(s.NewID(), s.NewID(), userID, s.Now())
	if s.openingBalance.IsPositive() {
		syncAcc.Balance = s.openingBalance
	}

	if err := s.ledgers.OpenLedgers(ctx, syncAcc, asyncAcc); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogDebug(ctx, "Ledgers already open", slog.String("user_id", userID))
		} else {
			s.LogError(ctx, err, "Failed to open ledgers", slog.String("user_id", userID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Ledgers opened",
		slog.String("user_id", userID),
		slog.String("sync_account_id", syncAcc.AccountID),
		slog.String("async_account_id", asyncAcc.AccountID))
	return &domain.LedgerPair{Sync: syncAcc, Async: asyncAcc}, nil
}

func (s *ledgerService) GetLedgers(ctx context.Context, userID string) (*domain.LedgerPair, error) {
	syncAcc, err := s.ledgers.FindSyncAccountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	asyncAcc, err := s.ledgers.FindAsyncAccountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.LedgerPair{Sync: *syncAcc, Async: *asyncAcc}, nil
}
