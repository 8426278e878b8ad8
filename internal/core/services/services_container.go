package services

import (
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ContainerConfig carries the settings the services need.
type ContainerConfig struct {
	Policy         domain.LimitPolicy
	OpeningBalance decimal.Decimal
}

// NewServiceContainer creates a new service container with properly initialized dependencies.
// The transaction and reconciliation engines share cache; publisher may be nil.
func NewServiceContainer(
	cfg ContainerConfig,
	repos portsrepo.RepositoryProvider,
	cache *StatusCache,
	publisher portsrepo.EventPublisher,
	options ...ServiceOption,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	sinks := Sinks{
		Audit:      repos.AuditRepo,
		Regulatory: repos.RegulatorySink,
		Publisher:  publisher,
	}

	container.User = NewUserService(repos.UserRepo, options...)
	container.Ledger = NewLedgerService(repos.LedgerStore, repos.UserRepo, cfg.OpeningBalance, options...)
	container.Transaction = NewTransactionService(repos.LedgerStore, repos.UserRepo, cache, sinks, cfg.Policy, options...)
	// The rollback sweep reverses through the transaction engine.
	container.Reconciliation = NewReconciliationService(repos.LedgerStore, repos.UserRepo, container.Transaction, cache, sinks, cfg.Policy, options...)
	container.Audit = NewAuditService(repos.AuditRepo, options...)

	return container
}
