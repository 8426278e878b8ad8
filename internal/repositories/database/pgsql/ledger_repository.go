package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	"github.com/SscSPs/async_payments_app/internal/models"
	"github.com/SscSPs/async_payments_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	syncAccountColumns  = `account_id, owner_id, balance, created_at, created_by, last_updated_at, last_updated_by`
	asyncAccountColumns = `account_id, owner_id, balance, blocked, last_reconciled_at, created_at, created_by, last_updated_at, last_updated_by`
)

// PgxLedgerRepository stores ledgers and transaction records and runs the store
// transactions the engines compose their writes in.
type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger and transaction data.
func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerStore = (*PgxLedgerRepository)(nil)

func scanSyncAccount(row rowScanner) (domain.SyncAccount, error) {
	var m models.SyncAccount
	err := row.Scan(&m.AccountID, &m.OwnerID, &m.Balance, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return mapping.ToDomainSyncAccount(m), err
}

func scanAsyncAccount(row rowScanner) (domain.AsyncAccount, error) {
	var m models.AsyncAccount
	err := row.Scan(&m.AccountID, &m.OwnerID, &m.Balance, &m.Blocked, &m.LastReconciledAt, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return mapping.ToDomainAsyncAccount(m), err
}

// FindSyncAccountByOwner retrieves the sync ledger of a user.
func (r *PgxLedgerRepository) FindSyncAccountByOwner(ctx context.Context, ownerID string) (*domain.SyncAccount, error) {
	query := `SELECT ` + syncAccountColumns + ` FROM sync_accounts WHERE owner_id = $1;`
	acc, err := scanSyncAccount(r.Pool.QueryRow(ctx, query, ownerID))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("sync ledger of %s", ownerID))
	}
	return &acc, nil
}

// FindAsyncAccountByOwner retrieves the async ledger of a user.
func (r *PgxLedgerRepository) FindAsyncAccountByOwner(ctx context.Context, ownerID string) (*domain.AsyncAccount, error) {
	query := `SELECT ` + asyncAccountColumns + ` FROM async_accounts WHERE owner_id = $1;`
	acc, err := scanAsyncAccount(r.Pool.QueryRow(ctx, query, ownerID))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("async ledger of %s", ownerID))
	}
	return &acc, nil
}

// FindAsyncAccountByID retrieves an async ledger by its own id.
func (r *PgxLedgerRepository) FindAsyncAccountByID(ctx context.Context, accountID string) (*domain.AsyncAccount, error) {
	query := `SELECT ` + asyncAccountColumns + ` FROM async_accounts WHERE account_id = $1;`
	acc, err := scanAsyncAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("async ledger %s", accountID))
	}
	return &acc, nil
}

// ListUnblockedAsyncAccounts returns every async ledger that is not blocked, by owner.
func (r *PgxLedgerRepository) ListUnblockedAsyncAccounts(ctx context.Context) ([]domain.AsyncAccount, error) {
	query := `SELECT ` + asyncAccountColumns + ` FROM async_accounts WHERE NOT blocked ORDER BY owner_id;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list async ledgers: %w", err)
	}
	defer rows.Close()

	accounts := []domain.AsyncAccount{}
	for rows.Next() {
		acc, err := scanAsyncAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan async ledger: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating async ledgers: %w", err)
	}
	return accounts, nil
}

// OpenLedgers inserts the sync and async ledger of one user together.
func (r *PgxLedgerRepository) OpenLedgers(ctx context.Context, syncAcc domain.SyncAccount, asyncAcc domain.AsyncAccount) error {
	s := mapping.ToModelSyncAccount(syncAcc)
	a := mapping.ToModelAsyncAccount(asyncAcc)

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sync_accounts (`+syncAccountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			s.AccountID, s.OwnerID, s.Balance, s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO async_accounts (`+asyncAccountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
			a.AccountID, a.OwnerID, a.Balance, a.Blocked, a.LastReconciledAt, a.CreatedAt, a.CreatedBy, a.LastUpdatedAt, a.LastUpdatedBy,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ledgers of user %s already exist", apperrors.ErrDuplicate, syncAcc.OwnerID)
		}
		return fmt.Errorf("failed to open ledgers of %s: %w", syncAcc.OwnerID, err)
	}
	return nil
}

// WithTx runs fn in one database transaction. Row locks taken through the LedgerTx are
// held until it commits or rolls back.
func (r *PgxLedgerRepository) WithTx(ctx context.Context, fn func(tx portsrepo.LedgerTx) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(&pgxLedgerTx{tx: tx})
	})
}
