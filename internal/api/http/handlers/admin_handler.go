package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bem-portal/submission-service/internal/api/dto"
	"github.com/bem-portal/submission-service/internal/auth"
	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/repository"
	"github.com/bem-portal/submission-service/internal/service"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

// AdminHandler serves the staff verification endpoints.
type AdminHandler struct {
	verification *service.VerificationService
	lookup       *service.LookupService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(verification *service.VerificationService, lookup *service.LookupService) *AdminHandler {
	return &AdminHandler{verification: verification, lookup: lookup}
}

// ListSubmissions GET /admin/submissions.
func (h *AdminHandler) ListSubmissions(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("staff account required")
	}
	filter := parseSubmissionQuery(c)
	submissions, err := h.lookup.ListSubmissions(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.SubmissionSummary, 0, len(submissions))
	for i := range submissions {
		items = append(items, submissionSummary(&submissions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RecordVerification POST /admin/submissions/:ticketId/verifications/:roleKey.
func (h *AdminHandler) RecordVerification(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("staff account required")
	}
	var req dto.VerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details, err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	submission, err := h.verification.RecordVerification(
		c.UserContext(),
		principal.Account,
		c.Params("ticketId"),
		c.Params("roleKey"),
		domain.VerifierAction(req.Action),
		req.Note,
	)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submissionDetail(submission)})
}

// ApproveSubmission POST /admin/submissions/:ticketId/approve.
func (h *AdminHandler) ApproveSubmission(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("staff account required")
	}
	submission, err := h.verification.ApproveSubmission(c.UserContext(), principal.Account, c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submissionDetail(submission)})
}

// CloseSubmission POST /admin/submissions/:ticketId/close.
func (h *AdminHandler) CloseSubmission(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("staff account required")
	}
	var req dto.CloseSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details, err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	submission, err := h.verification.CloseSubmission(c.UserContext(), principal.Account, c.Params("ticketId"), domain.FinalResponse{
		Note:     req.Note,
		FileURL:  req.FileURL,
		FileName: req.FileName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submissionDetail(submission)})
}

// AuditTrail GET /admin/submissions/:ticketId/audit.
func (h *AdminHandler) AuditTrail(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("staff account required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	entries, err := h.verification.ListAuditTrail(c.UserContext(), c.Params("ticketId"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			Actor:     entry.Actor,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseSubmissionQuery(c *fiber.Ctx) repository.SubmissionFilter {
	filter := repository.SubmissionFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.SubmissionStatus(strings.TrimSpace(part)))
		}
	}
	if role := c.Query("pending_role"); role != "" {
		filter.PendingRole = &role
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func verifierViews(submission *domain.Submission) map[string]service.VerifierEntryView {
	views := make(map[string]service.VerifierEntryView, len(submission.Verifiers))
	for role, entry := range submission.Verifiers {
		views[role] = service.VerifierEntryView{
			Status:    entry.Status,
			Note:      entry.Note,
			UpdatedAt: entry.UpdatedAt,
		}
	}
	return views
}

func submissionSummary(submission *domain.Submission) dto.SubmissionSummary {
	return dto.SubmissionSummary{
		TicketID:      submission.TicketID,
		OverallStatus: submission.OverallStatus,
		Verifiers:     verifierViews(submission),
		Public:        submission.Public,
		CreatedAt:     submission.CreatedAt,
		UpdatedAt:     submission.UpdatedAt,
	}
}

func submissionDetail(submission *domain.Submission) dto.SubmissionDetailResponse {
	return dto.SubmissionDetailResponse{
		TicketID:      submission.TicketID,
		Fields:        submission.Fields,
		Verifiers:     verifierViews(submission),
		OverallStatus: submission.OverallStatus,
		FinalResponse: submission.FinalResponse,
		Public:        submission.Public,
		CreatedAt:     submission.CreatedAt,
		UpdatedAt:     submission.UpdatedAt,
	}
}
