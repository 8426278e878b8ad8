package repositories

import "context"

// TransactionManager runs fn inside one store transaction. The transaction commits when
// fn returns nil and rolls back otherwise; nothing fn wrote is visible on rollback.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(tx LedgerTx) error) error
}
