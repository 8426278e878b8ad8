package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/async_payments_app/internal/apperrors"
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	"github.com/SscSPs/async_payments_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// pgxLedgerTx implements LedgerTx on an open pgx transaction.
type pgxLedgerTx struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

func (t *pgxLedgerTx) LockSyncAccounts(ctx context.Context, ownerIDs []string) (map[string]domain.SyncAccount, error) {
	query := `SELECT ` + syncAccountColumns + ` FROM sync_accounts WHERE owner_id = ANY($1) ORDER BY owner_id FOR UPDATE;`
	rows, err := t.tx.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock sync ledgers: %w", err)
	}
	defer rows.Close()

	locked := make(map[string]domain.SyncAccount, len(ownerIDs))
	for rows.Next() {
		acc, err := scanSyncAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync ledger: %w", err)
		}
		locked[acc.OwnerID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync ledgers: %w", err)
	}
	return locked, nil
}

func (t *pgxLedgerTx) LockAsyncAccounts(ctx context.Context, ownerIDs []string) (map[string]domain.AsyncAccount, error) {
	query := `SELECT ` + asyncAccountColumns + ` FROM async_accounts WHERE owner_id = ANY($1) ORDER BY owner_id FOR UPDATE;`
	rows, err := t.tx.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock async ledgers: %w", err)
	}
	defer rows.Close()

	locked := make(map[string]domain.AsyncAccount, len(ownerIDs))
	for rows.Next() {
		acc, err := scanAsyncAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan async ledger: %w", err)
		}
		locked[acc.OwnerID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating async ledgers: %w", err)
	}
	return locked, nil
}

func (t *pgxLedgerTx) LockTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	txn, err := scanTransaction(t.tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("transaction %s", transactionID))
	}
	return &txn, nil
}

func (t *pgxLedgerTx) UpdateSyncAccount(ctx context.Context, acc domain.SyncAccount) error {
	m := mapping.ToModelSyncAccount(acc)
	cmdTag, err := t.tx.Exec(ctx,
		`UPDATE sync_accounts SET balance = $1, last_updated_at = $2, last_updated_by = $3 WHERE account_id = $4;`,
		m.Balance, m.LastUpdatedAt, m.LastUpdatedBy, m.AccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sync ledger %s: %w", acc.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("sync ledger %s: %w", acc.AccountID, apperrors.ErrNotFound)
	}
	return nil
}

func (t *pgxLedgerTx) UpdateAsyncAccount(ctx context.Context, acc domain.AsyncAccount) error {
	m := mapping.ToModelAsyncAccount(acc)
	cmdTag, err := t.tx.Exec(ctx, `
		UPDATE async_accounts
		SET balance = $1, blocked = $2, last_reconciled_at = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $6;`,
		m.Balance, m.Blocked, m.LastReconciledAt, m.LastUpdatedAt, m.LastUpdatedBy, m.AccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update async ledger %s: %w", acc.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("async ledger %s: %w", acc.AccountID, apperrors.ErrNotFound)
	}
	return nil
}

func (t *pgxLedgerTx) InsertTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	_, err := t.tx.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);`,
		m.TransactionID, m.OriginUserID, m.DestUserID, m.Amount, m.OperationKind, m.Channel, m.Gateway,
		m.Status, m.Description, m.CreatedAt, m.UpdatedAt,
		m.OriginName, m.OriginEmail, m.OriginDocument, m.DestName, m.DestEmail, m.DestDocument,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// UpdateTransaction persists the lifecycle fields. Amount, parties and snapshots are immutable.
func (t *pgxLedgerTx) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	cmdTag, err := t.tx.Exec(ctx,
		`UPDATE transactions SET status = $1, description = $2, updated_at = $3 WHERE transaction_id = $4;`,
		string(txn.Status), txn.Description, txn.UpdatedAt, txn.TransactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", txn.TransactionID, apperrors.ErrNotFound)
	}
	return nil
}

func (t *pgxLedgerTx) SumOutgoingSince(ctx context.Context, originUserID string, kinds []domain.OperationKind, since time.Time) (decimal.Decimal, error) {
	kindNames := make([]string, len(kinds))
	for i, k := range kinds {
		kindNames[i] = string(k)
	}
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE origin_user_id = $1
		  AND operation_kind = ANY($2)
		  AND created_at >= $3
		  AND status NOT IN ('ROLLBACK', 'ERROR');`

	var total decimal.Decimal
	if err := t.tx.QueryRow(ctx, query, originUserID, kindNames, since).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum outgoing transfers of %s: %w", originUserID, err)
	}
	return total, nil
}
