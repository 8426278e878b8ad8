package models

// User is a row of users: the identity snapshot and the KYC flag.
type User struct {
	UserID       string `db:"user_id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Document     string `db:"document"`
	KYCValidated bool   `db:"kyc_validated"`
	AuditFields
}
