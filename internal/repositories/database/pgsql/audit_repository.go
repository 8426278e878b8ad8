package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	"github.com/SscSPs/async_payments_app/internal/models"
	"github.com/SscSPs/async_payments_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// auditChainLockKey serializes appends so every entry links to the one before it.
const auditChainLockKey int64 = 0x61756469

// PgxAuditRepository is the append-only hash-chained audit log.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// Append links record to the current head of the chain and inserts it.
func (r *PgxAuditRepository) Append(ctx context.Context, record domain.AuditRecord) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, auditChainLockKey); err != nil {
			return fmt.Errorf("failed to lock audit chain: %w", err)
		}

		prev := domain.GenesisHash
		err := tx.QueryRow(ctx, `SELECT chain_hash FROM audit_log ORDER BY sequence DESC LIMIT 1;`).Scan(&prev)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to read audit chain head: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO audit_log (transaction_id, origin_user_id, dest_user_id, amount, recorded_at, content_hash, prev_hash, chain_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
			record.TransactionID, record.OriginUserID, record.DestUserID, record.Amount, record.Timestamp,
			record.ContentHash, prev, domain.ChainHash(prev, record.ContentHash),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to append audit record for %s: %w", record.TransactionID, err)
	}
	return nil
}

// ListAuditEntries returns the whole chain in sequence order.
func (r *PgxAuditRepository) ListAuditEntries(ctx context.Context) ([]domain.AuditEntry, error) {
	query := `
		SELECT sequence, transaction_id, origin_user_id, dest_user_id, amount, recorded_at, content_hash, prev_hash, chain_hash
		FROM audit_log
		ORDER BY sequence;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var m models.AuditLogEntry
		if err := rows.Scan(&m.Sequence, &m.TransactionID, &m.OriginUserID, &m.DestUserID, &m.Amount,
			&m.RecordedAt, &m.ContentHash, &m.PrevHash, &m.ChainHash); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, mapping.ToDomainAuditEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}
	return entries, nil
}
