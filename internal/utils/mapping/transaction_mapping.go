package mapping

import (
	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/models"
)

// ToModelTransaction flattens the party snapshots into their columns.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:  d.TransactionID,
		OriginUserID:   d.OriginUserID,
		DestUserID:     d.DestUserID,
		Amount:         d.Amount,
		OperationKind:  string(d.OperationKind),
		Channel:        string(d.Channel),
		Gateway:        string(d.Gateway),
		Status:         string(d.Status),
		Description:    d.Description,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		OriginName:     d.Origin.Name,
		OriginEmail:    d.Origin.Email,
		OriginDocument: d.Origin.Document,
		DestName:       d.Destination.Name,
		DestEmail:      d.Destination.Email,
		DestDocument:   d.Destination.Document,
	}
}

func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		OriginUserID:  m.OriginUserID,
		DestUserID:    m.DestUserID,
		Amount:        m.Amount,
		OperationKind: domain.OperationKind(m.OperationKind),
		Channel:       domain.Channel(m.Channel),
		Gateway:       domain.Gateway(m.Gateway),
		Status:        domain.TransactionStatus(m.Status),
		Description:   m.Description,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
		Origin: domain.PartySnapshot{
			Name:     m.OriginName,
			Email:    m.OriginEmail,
			Document: m.OriginDocument,
		},
		Destination: domain.PartySnapshot{
			Name:     m.DestName,
			Email:    m.DestEmail,
			Document: m.DestDocument,
		},
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
