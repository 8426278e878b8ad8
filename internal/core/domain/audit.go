package domain

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"
)

// AuditRecord is what the core hands to the audit sink. Append-only.
type AuditRecord struct {
	TransactionID string          `json:"transactionID"`
	OriginUserID  string          `json:"originUserID"`
	DestUserID    string          `json:"destUserID"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
	ContentHash   string          `json:"contentHash"`
}

// AuditEntry is an AuditRecord as stored in the hash-chained log.
type AuditEntry struct {
	Sequence  int64       `json:"sequence"`
	Record    AuditRecord `json:"record"`
	PrevHash  string      `json:"prevHash"`
	ChainHash string      `json:"chainHash"`
}

// HighValueFlag is the regulatory record written for transfers above the high-value threshold.
type HighValueFlag struct {
	TransactionID string          `json:"transactionID"`
	OriginUserID  string          `json:"originUserID"`
	DestUserID    string          `json:"destUserID"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
	Description   string          `json:"description"`
}

// GenesisHash is the prev hash of the first entry in the audit chain.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ComputeAuditHash hashes "origin-dest-amount-unixMillis". The timestamp acts as a nonce
// so two identical transfers never share a hash.
func ComputeAuditHash(origin, dest string, amount decimal.Decimal, at time.Time) string {
	raw := fmt.Sprintf("%s-%s-%s-%d", origin, dest, amount.String(), at.UnixMilli())
	sum := sha3.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewAuditRecord builds the record for a committed transaction.
func NewAuditRecord(t Transaction, at time.Time) AuditRecord {
	return AuditRecord{
		TransactionID: t.TransactionID,
		OriginUserID:  t.OriginUserID,
		DestUserID:    t.DestUserID,
		Amount:        t.Amount,
		Timestamp:     at,
		ContentHash:   ComputeAuditHash(t.OriginUserID, t.DestUserID, t.Amount, at),
	}
}

// NewHighValueFlag builds the regulatory flag for a committed transaction.
func NewHighValueFlag(t Transaction, at time.Time) HighValueFlag {
	return HighValueFlag{
		TransactionID: t.TransactionID,
		OriginUserID:  t.OriginUserID,
		DestUserID:    t.DestUserID,
		Amount:        t.Amount,
		Timestamp:     at,
		Description:   t.Description,
	}
}

// ChainHash links an entry to its predecessor.
func ChainHash(prevHash, contentHash string) string {
	sum := sha3.Sum256([]byte(prevHash + contentHash))
	return hex.EncodeToString(sum[:])
}

// Intact reports whether the content hash still matches the record's fields.
func (r AuditRecord) Intact() bool {
	return r.ContentHash == ComputeAuditHash(r.OriginUserID, r.DestUserID, r.Amount, r.Timestamp)
}

// VerifyAuditChain walks entries in sequence order and returns the sequence of the first
// entry whose fields or links do not match. ok is true when the whole chain is intact.
func VerifyAuditChain(entries []AuditEntry) (brokenAt int64, ok bool) {
	prev := GenesisHash
	for _, e := range entries {
		if !e.Record.Intact() || e.PrevHash != prev || e.ChainHash != ChainHash(e.PrevHash, e.Record.ContentHash) {
			return e.Sequence, false
		}
		prev = e.ChainHash
	}
	return 0, true
}
