package dto

import (
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
)

// CreateUserRequest registers the identity of the authenticated caller.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Document string `json:"document" binding:"required,max=32"`
}

// UserResponse is the API view of a user identity.
type UserResponse struct {
	UserID       string    `json:"userID"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Document     string    `json:"document"`
	KYCValidated bool      `json:"kycValidated"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain.User.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:       u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		Document:     u.Document,
		KYCValidated: u.KYCValidated,
		CreatedAt:    u.CreatedAt,
	}
}
