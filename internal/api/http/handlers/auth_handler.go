package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/bem-portal/submission-service/internal/api/dto"
	"github.com/bem-portal/submission-service/internal/auth"
	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/service"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

// AuthHandler serves staff authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details, err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	token, expiresAt, account, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Account:     dto.NewAccountResponse(account),
	}})
}

// CreateAccount POST /auth/accounts.
func (h *AuthHandler) CreateAccount(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("staff account required")
	}
	var req dto.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details, err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	account, err := h.authService.CreateAccount(c.UserContext(), principal.Account, service.AccountCreateInput{
		Email:    req.Email,
		Name:     req.Name,
		Role:     domain.AccountRole(req.Role),
		RoleKey:  req.RoleKey,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}
