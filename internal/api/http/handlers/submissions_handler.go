package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/bem-portal/submission-service/internal/api/dto"
	"github.com/bem-portal/submission-service/internal/service"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

// SubmissionsHandler serves the public intake and status-lookup endpoints.
type SubmissionsHandler struct {
	intake *service.IntakeService
	lookup *service.LookupService
}

// NewSubmissionsHandler constructs handler.
func NewSubmissionsHandler(intake *service.IntakeService, lookup *service.LookupService) *SubmissionsHandler {
	return &SubmissionsHandler{intake: intake, lookup: lookup}
}

// CreateSubmission POST /submissions.
func (h *SubmissionsHandler) CreateSubmission(c *fiber.Ctx) error {
	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details, err := dto.Validate(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", details)
	}

	public := true
	if req.Public != nil {
		public = *req.Public
	}

	submission, err := h.intake.CreateSubmission(c.UserContext(), req.ToFieldMap(), public)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SubmissionCreatedResponse{
		TicketID:      submission.TicketID,
		OverallStatus: submission.OverallStatus,
		CreatedAt:     submission.CreatedAt,
	}})
}

// GetStatus GET /status/:ticketId.
func (h *SubmissionsHandler) GetStatus(c *fiber.Ctx) error {
	view, err := h.lookup.GetStatusByTicket(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}
