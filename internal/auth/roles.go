package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bem-portal/submission-service/internal/domain"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

// RequireAccount ensures a staff account is authenticated.
func RequireAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Account == nil {
			return apperrors.NewUnauthorized("staff account required")
		}
		return c.Next()
	}
}

// RequireRole ensures the principal holds one of the allowed account roles.
func RequireRole(allowed ...domain.AccountRole) fiber.Handler {
	allowedSet := make(map[domain.AccountRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Account == nil {
			return apperrors.NewForbidden("staff account required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Account.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
