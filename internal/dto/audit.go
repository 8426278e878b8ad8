package dto

// AuditVerificationResponse reports the integrity of the audit hash chain.
type AuditVerificationResponse struct {
	Entries          int    `json:"entries"`
	Intact           bool   `json:"intact"`
	BrokenAtSequence *int64 `json:"brokenAtSequence,omitempty"`
	HeadHash         string `json:"headHash,omitempty"`
}
