package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bem-portal/submission-service/internal/auth"
	"github.com/bem-portal/submission-service/internal/config"
	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/policy"
	"github.com/bem-portal/submission-service/internal/repository"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

// Postgres class 23 integrity-constraint violation for duplicate keys.
const pgerrUniqueViolation = "23505"

// AuthService manages staff accounts and access tokens.
type AuthService struct {
	accounts   repository.AccountRepository
	tokens     *auth.TokenManager
	rules      *policy.Policy
	bcryptCost int
}

// NewAuthService creates the service.
func NewAuthService(cfg config.AuthConfig, accounts repository.AccountRepository, rules *policy.Policy) *AuthService {
	return &AuthService{
		accounts:   accounts,
		tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		rules:      rules,
		bcryptCost: cfg.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Login verifies credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", time.Time{}, nil, apperrors.NewBackendUnavailable(err)
	}
	if !account.IsActive {
		return "", time.Time{}, nil, apperrors.NewForbidden("account disabled")
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(account)
	if err != nil {
		return "", time.Time{}, nil, apperrors.NewInternalError(err)
	}
	return token, expiresAt, account, nil
}

// AccountCreateInput describes a new staff account.
type AccountCreateInput struct {
	Email    string
	Name     string
	Role     domain.AccountRole
	RoleKey  *string
	Password string
}

// CreateAccount registers a staff account. Only master accounts may call this.
func (s *AuthService) CreateAccount(ctx context.Context, actor *domain.Account, input AccountCreateInput) (*domain.Account, error) {
	if actor == nil || actor.Role != domain.AccountRoleMaster {
		return nil, apperrors.NewForbidden("master account required")
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Name == "" || len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("email, name and a password of at least 8 characters are required", nil)
	}
	switch input.Role {
	case domain.AccountRoleMaster:
		input.RoleKey = nil
	case domain.AccountRoleVerifier:
		if input.RoleKey == nil || !s.rules.KnownRole(*input.RoleKey) {
			return nil, apperrors.NewValidationError("verifier accounts require a configured role key", nil)
		}
	default:
		return nil, apperrors.NewValidationError("unknown account role", map[string]any{"role": input.Role})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		Email:        input.Email,
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		RoleKey:      input.RoleKey,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrUniqueViolation {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": account.Email})
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return account, nil
}
