package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	"github.com/SscSPs/async_payments_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxRegulatoryRepository records high-value flags. A transaction is flagged at most once.
type PgxRegulatoryRepository struct {
	db *pgxpool.Pool
}

func newPgxRegulatoryRepository(db *pgxpool.Pool) portsrepo.RegulatorySink {
	return &PgxRegulatoryRepository{db: db}
}

var _ portsrepo.RegulatorySink = (*PgxRegulatoryRepository)(nil)

func (r *PgxRegulatoryRepository) Flag(ctx context.Context, flag domain.HighValueFlag) error {
	m := mapping.ToModelHighValueFlag(flag)
	_, err := r.db.Exec(ctx, `
		INSERT INTO high_value_flags (transaction_id, origin_user_id, dest_user_id, amount, flagged_at, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (transaction_id) DO NOTHING;`,
		m.TransactionID, m.OriginUserID, m.DestUserID, m.Amount, m.FlaggedAt, m.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to flag transaction %s: %w", flag.TransactionID, err)
	}
	return nil
}
