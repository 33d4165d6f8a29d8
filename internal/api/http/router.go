package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bem-portal/submission-service/internal/api/http/handlers"
	"github.com/bem-portal/submission-service/internal/auth"
	"github.com/bem-portal/submission-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Submissions    *handlers.SubmissionsHandler
	Admin          *handlers.AdminHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Public applicant surface: intake and ticket-keyed status lookup.
	app.Post("/submissions", cfg.Submissions.CreateSubmission)
	app.Get("/status/:ticketId", cfg.Submissions.GetStatus)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/accounts",
		cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.AccountRoleMaster),
		cfg.Auth.CreateAccount,
	)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAccount())
	admin.Get("/submissions", cfg.Admin.ListSubmissions)
	admin.Post("/submissions/:ticketId/verifications/:roleKey", cfg.Admin.RecordVerification)
	admin.Post("/submissions/:ticketId/approve", cfg.Admin.ApproveSubmission)
	admin.Post("/submissions/:ticketId/close", cfg.Admin.CloseSubmission)
	admin.Get("/submissions/:ticketId/audit", cfg.Admin.AuditTrail)
}
