package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/async_payments_app/internal/core/ports/services"
	"github.com/SscSPs/async_payments_app/internal/dto"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates the service managing user identities.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, options ...ServiceOption) portssvc.UserSvcFacade {
	return &userService{
		BaseService: newBaseService(options...),
		userRepo:    userRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser registers the identity of userID, the subject of the caller's token.
func (s *userService) CreateUser(ctx context.Context, userID string, req dto.CreateUserRequest) (*domain.User, error) {
	now := s.Now()
	user := domain.User{
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Document: strings.TrimSpace(req.Document),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to create user in service: %w", err)
	}
	s.LogInfo(ctx, "User registered", slog.String("user_id", userID))
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindIdentity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

// ValidateKYC marks the identity of userID as validated. Offline transfers above the KYC
// threshold need it.
func (s *userService) ValidateKYC(ctx context.Context, userID string, actorID string) (*domain.User, error) {
	if err := s.userRepo.SetKYCValidated(ctx, userID, true, actorID); err != nil {
		s.LogError(ctx, err, "Failed to validate identity", slog.String("user_id", userID), slog.String("actor_id", actorID))
		return nil, fmt.Errorf("failed to validate identity: %w", err)
	}
	s.LogInfo(ctx, "Identity validated", slog.String("user_id", userID), slog.String("actor_id", actorID))
	return s.GetUserByID(ctx, userID)
}
