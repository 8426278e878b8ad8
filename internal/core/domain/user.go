package domain

// User is a registered identity. Profile management lives outside the payment core;
// the core reads the identity snapshot and the KYC flag only.
type User struct {
	UserID       string `json:"userID"` // Primary Key (e.g., UUID)
	Name         string `json:"name"`
	Email        string `json:"email"`
	Document     string `json:"document"` // national id, e.g. CPF
	KYCValidated bool   `json:"kycValidated"`
	AuditFields
}

// Snapshot returns the denormalized identity stored on transactions.
func (u User) Snapshot() PartySnapshot {
	return PartySnapshot{Name: u.Name, Email: u.Email, Document: u.Document}
}
