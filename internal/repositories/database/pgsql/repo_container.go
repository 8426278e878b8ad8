package pgsql

import (
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerStore:    newPgxLedgerRepository(dbPool),
		UserRepo:       newPgxUserRepository(dbPool),
		AuditRepo:      newPgxAuditRepository(dbPool),
		RegulatorySink: newPgxRegulatoryRepository(dbPool),
	}
}
