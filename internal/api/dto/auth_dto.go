package dto

import (
	"time"

	"github.com/bem-portal/submission-service/internal/domain"
)

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed access token.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Account     AccountResponse `json:"account"`
}

// CreateAccountRequest registers a staff account.
type CreateAccountRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required"`
	Role     string  `json:"role" validate:"required,oneof=MASTER VERIFIER"`
	RoleKey  *string `json:"role_key"`
	Password string  `json:"password" validate:"required,min=8"`
}

// AccountResponse is the safe account projection.
type AccountResponse struct {
	ID      string             `json:"id"`
	Email   string             `json:"email"`
	Name    string             `json:"name"`
	Role    domain.AccountRole `json:"role"`
	RoleKey *string            `json:"role_key,omitempty"`
}

// NewAccountResponse maps a domain account.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:      account.ID,
		Email:   account.Email,
		Name:    account.Name,
		Role:    account.Role,
		RoleKey: account.RoleKey,
	}
}
