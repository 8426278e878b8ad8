package services

import (
	"context"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	"github.com/SscSPs/async_payments_app/internal/dto"
)

// UserReaderSvc defines read operations for user identities.
type UserReaderSvc interface {
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user identities.
type UserWriterSvc interface {
	// CreateUser registers the identity of userID.
	CreateUser(ctx context.Context, userID string, req dto.CreateUserRequest) (*domain.User, error)

	// ValidateKYC marks the identity of userID as validated.
	ValidateKYC(ctx context.Context, userID string, actorID string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
}
