package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/models"
	"github.com/SscSPs/async_payments_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `transaction_id, origin_user_id, dest_user_id, amount, operation_kind, channel, gateway,
	status, description, created_at, updated_at,
	origin_name, origin_email, origin_document, dest_name, dest_email, dest_document`

const defaultSearchLimit = 20

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID, &m.OriginUserID, &m.DestUserID, &m.Amount, &m.OperationKind, &m.Channel, &m.Gateway,
		&m.Status, &m.Description, &m.CreatedAt, &m.UpdatedAt,
		&m.OriginName, &m.OriginEmail, &m.OriginDocument, &m.DestName, &m.DestEmail, &m.DestDocument,
	)
	return mapping.ToDomainTransaction(m), err
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("transaction %s", transactionID))
	}
	return &txn, nil
}

// FindTransactionsByStatus returns every transaction in status, oldest first.
func (r *PgxLedgerRepository) FindTransactionsByStatus(ctx context.Context, status domain.TransactionStatus) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE status = $1 ORDER BY created_at, transaction_id;`
	rows, err := r.Pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by status %s: %w", status, err)
	}
	return collectTransactions(rows)
}

// FindTransactionsByOwnerAndDateRange returns the transactions of a user created within [from, to).
func (r *PgxLedgerRepository) FindTransactionsByOwnerAndDateRange(ctx context.Context, ownerID string, from, to time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (origin_user_id = $1 OR dest_user_id = $1)
		  AND created_at >= $2 AND created_at < $3
		ORDER BY created_at, transaction_id;`
	rows, err := r.Pool.Query(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions of %s: %w", ownerID, err)
	}
	return collectTransactions(rows)
}

// SearchTransactions builds the WHERE clause from the non-zero filter fields and pages with
// a (created_at, transaction_id) keyset, newest first.
func (r *PgxLedgerRepository) SearchTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, vals ...any) {
		placeholders := make([]any, len(vals))
		for i, v := range vals {
			args = append(args, v)
			placeholders[i] = len(args)
		}
		conds = append(conds, fmt.Sprintf(cond, placeholders...))
	}

	if filter.UserID != "" {
		add("(origin_user_id = $%d OR dest_user_id = $%d)", filter.UserID, filter.UserID)
	}
	if filter.OriginUserID != "" {
		add("origin_user_id = $%d", filter.OriginUserID)
	}
	if filter.DestUserID != "" {
		add("dest_user_id = $%d", filter.DestUserID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.OperationKind != "" {
		add("operation_kind = $%d", string(filter.OperationKind))
	}
	if filter.Channel != "" {
		add("channel = $%d", string(filter.Channel))
	}
	if filter.Gateway != "" {
		add("gateway = $%d", string(filter.Gateway))
	}
	if filter.MinAmount != nil {
		add("amount >= $%d", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		add("amount <= $%d", *filter.MaxAmount)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}
	if filter.AfterCreatedAt != nil {
		add("(created_at, transaction_id) < ($%d, $%d)", *filter.AfterCreatedAt, filter.AfterID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, transaction_id DESC LIMIT $%d;", len(args))

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search transactions: %w", err)
	}
	return collectTransactions(rows)
}
