package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	"github.com/SscSPs/async_payments_app/internal/platform/metrics"
)

// postCommit runs the side effects that follow a committed status change. None of them
// can fail the change itself: sink errors are logged and counted.
type postCommit struct {
	BaseService
	cache      *StatusCache
	audit      portsrepo.AuditSink
	regulatory portsrepo.RegulatorySink
	publisher  portsrepo.EventPublisher
}

// Sinks groups the best-effort collaborators notified after a commit. Nil members are skipped.
type Sinks struct {
	Audit      portsrepo.AuditSink
	Regulatory portsrepo.RegulatorySink
	Publisher  portsrepo.EventPublisher
}

func newPostCommit(base BaseService, cache *StatusCache, sinks Sinks) *postCommit {
	if cache == nil {
		cache = NewStatusCache()
	}
	return &postCommit{
		BaseService: base,
		cache:       cache,
		audit:       sinks.Audit,
		regulatory:  sinks.Regulatory,
		publisher:   sinks.Publisher,
	}
}

// statusChanged refreshes the cache and announces the new status.
func (p *postCommit) statusChanged(ctx context.Context, txn domain.Transaction) {
	p.cache.Put(txn.TransactionID, txn.Status)
	metrics.TransactionsTotal.WithLabelValues(string(txn.OperationKind), string(txn.Status)).Inc()

	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishStatusChanged(ctx, domain.NewStatusChangedEvent(txn, p.Now())); err != nil {
		metrics.SinkFailuresTotal.WithLabelValues(metrics.SinkEvents).Inc()
		p.LogError(ctx, err, "Failed to publish status change",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("status", string(txn.Status)))
	}
}

// transferCommitted emits the audit record and the high-value flag for a new transfer.
// Offline transfers and high-value transfers get one audit record each, never two.
func (p *postCommit) transferCommitted(ctx context.Context, txn domain.Transaction, policy domain.LimitPolicy) {
	at := p.Now()
	highValue := policy.IsHighValue(txn.Amount)

	if highValue {
		p.flag(ctx, domain.NewHighValueFlag(txn, at))
	}
	if highValue || txn.Channel.IsOffline() {
		p.appendAudit(ctx, domain.NewAuditRecord(txn, at))
	}
}

func (p *postCommit) flag(ctx context.Context, flag domain.HighValueFlag) {
	if p.regulatory == nil {
		return
	}
	if err := p.regulatory.Flag(ctx, flag); err != nil {
		metrics.SinkFailuresTotal.WithLabelValues(metrics.SinkRegulatory).Inc()
		p.LogError(ctx, err, "Failed to write high-value flag",
			slog.String("transaction_id", flag.TransactionID),
			slog.String("amount", flag.Amount.String()))
	}
}

func (p *postCommit) appendAudit(ctx context.Context, record domain.AuditRecord) {
	if p.audit == nil {
		return
	}
	if err := p.audit.Append(ctx, record); err != nil {
		metrics.SinkFailuresTotal.WithLabelValues(metrics.SinkAudit).Inc()
		p.LogError(ctx, err, "Failed to append audit record",
			slog.String("transaction_id", record.TransactionID),
			slog.Time("timestamp", record.Timestamp.Truncate(time.Millisecond)))
	}
}
