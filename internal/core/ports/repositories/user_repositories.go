package repositories

import (
	"context"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
)

// IdentityProvider supplies the identity snapshot and the KYC flag of a user.
type IdentityProvider interface {
	FindIdentity(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriter defines write operations for user identities.
type UserWriter interface {
	SaveUser(ctx context.Context, user domain.User) error
	SetKYCValidated(ctx context.Context, userID string, validated bool, actor string) error
}

// UserRepositoryFacade combines identity reads and writes.
type UserRepositoryFacade interface {
	IdentityProvider
	UserWriter
}
