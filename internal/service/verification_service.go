package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/events"
	"github.com/bem-portal/submission-service/internal/policy"
	"github.com/bem-portal/submission-service/internal/repository"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

// VerificationService owns all ledger and aggregate-status transitions. Every
// multi-field transition (ledger entry plus overall status) lands as one
// conditional write keyed by the submission's revision.
type VerificationService struct {
	submissions repository.SubmissionRepository
	audit       repository.AuditRepository
	rules       *policy.Policy
	dispatcher  events.Dispatcher
	cache       StatusCache
}

// VerificationDependencies bundles collaborators.
type VerificationDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	AuditRepo      repository.AuditRepository
	Policy         *policy.Policy
	Dispatcher     events.Dispatcher
	Cache          StatusCache
}

// NewVerificationService constructs the service.
func NewVerificationService(deps VerificationDependencies) *VerificationService {
	return &VerificationService{
		submissions: deps.SubmissionRepo,
		audit:       deps.AuditRepo,
		rules:       deps.Policy,
		dispatcher:  deps.Dispatcher,
		cache:       deps.Cache,
	}
}

// RecordVerification applies a single verifier action to the ledger.
//
// Verify and Reset move the aggregate to UNDER_REVIEW; RequestRevision moves
// it to NEEDS_REVISION regardless of the other entries. The aggregate never
// reaches APPROVED here; approval is a separate privileged step.
func (s *VerificationService) RecordVerification(ctx context.Context, account *domain.Account, ticketID, roleKey string, action domain.VerifierAction, note string) (*domain.Submission, error) {
	if !s.rules.KnownRole(roleKey) {
		return nil, apperrors.NewValidationError("unknown verifier role", map[string]any{"role": roleKey})
	}
	if !s.rules.CanVerifyAs(account, roleKey) {
		return nil, apperrors.NewForbidden("not authorized to verify as " + roleKey)
	}

	submission, err := s.getSubmission(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if submission.Terminal() {
		return nil, apperrors.NewPreconditionFailed("submission is no longer open for verification", map[string]any{
			"overall_status": submission.OverallStatus,
		})
	}
	entry, ok := submission.Verifiers[roleKey]
	if !ok {
		return nil, apperrors.NewValidationError("role has no ledger entry on this submission", map[string]any{"role": roleKey})
	}

	now := time.Now()
	switch action {
	case domain.VerifierActionVerify:
		entry = domain.VerifierEntry{Status: domain.VerifierStatusVerified, Note: "", UpdatedAt: now}
		submission.OverallStatus = domain.SubmissionStatusUnderReview
	case domain.VerifierActionRequestRevision:
		note = strings.TrimSpace(note)
		if note == "" {
			return nil, apperrors.NewValidationError("revision request requires a note", nil)
		}
		entry = domain.VerifierEntry{Status: domain.VerifierStatusRevisionRequested, Note: note, UpdatedAt: now}
		submission.OverallStatus = domain.SubmissionStatusNeedsRevision
	case domain.VerifierActionReset:
		entry = domain.VerifierEntry{Status: domain.VerifierStatusPending, Note: "", UpdatedAt: now}
		submission.OverallStatus = domain.SubmissionStatusUnderReview
	default:
		return nil, apperrors.NewValidationError("unknown verifier action", map[string]any{"action": action})
	}
	submission.Verifiers[roleKey] = entry

	if err := s.write(ctx, submission); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, submission.TicketID, domain.AuditActionVerificationRecorded, account.Email, map[string]any{
		"role":           roleKey,
		"action":         action,
		"entry_status":   entry.Status,
		"overall_status": submission.OverallStatus,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventVerificationRecorded,
		TicketID: submission.TicketID,
		Actor:    account.Email,
		Payload: events.VerificationRecordedPayload{
			RoleKey:       roleKey,
			Action:        action,
			EntryStatus:   entry.Status,
			OverallStatus: submission.OverallStatus,
			Note:          entry.Note,
		},
	})
	return submission, nil
}

// ApproveSubmission marks a fully verified submission as approved. Approval is
// always an explicit privileged step, never derived from the last Verify.
func (s *VerificationService) ApproveSubmission(ctx context.Context, account *domain.Account, ticketID string) (*domain.Submission, error) {
	if !s.rules.CanApprove(account) {
		return nil, apperrors.NewForbidden("final-approval privilege required")
	}

	submission, err := s.getSubmission(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if submission.Terminal() {
		return nil, apperrors.NewPreconditionFailed("submission already approved", map[string]any{
			"overall_status": submission.OverallStatus,
		})
	}
	if !submission.AllVerified() {
		return nil, apperrors.NewPreconditionFailed("every verifier must verify before approval", pendingRoles(submission))
	}

	previous := submission.OverallStatus
	submission.OverallStatus = domain.SubmissionStatusApproved

	if err := s.write(ctx, submission); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, submission.TicketID, domain.AuditActionSubmissionApproved, account.Email, map[string]any{
		"previous_status": previous,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventSubmissionApproved,
		TicketID: submission.TicketID,
		Actor:    account.Email,
		Payload:  events.SubmissionApprovedPayload{PreviousStatus: previous},
	})
	return submission, nil
}

// CloseSubmission attaches the final response and marks the submission done.
func (s *VerificationService) CloseSubmission(ctx context.Context, account *domain.Account, ticketID string, response domain.FinalResponse) (*domain.Submission, error) {
	if !s.rules.CanClose(account) {
		return nil, apperrors.NewForbidden("final-response privilege required")
	}
	response.Note = strings.TrimSpace(response.Note)
	if response.Note == "" && response.FileURL == "" {
		return nil, apperrors.NewValidationError("final response requires a note or a file", nil)
	}

	submission, err := s.getSubmission(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if submission.OverallStatus != domain.SubmissionStatusApproved {
		return nil, apperrors.NewPreconditionFailed("submission must be approved before closing", map[string]any{
			"overall_status": submission.OverallStatus,
		})
	}

	submission.FinalResponse = &response
	submission.OverallStatus = domain.SubmissionStatusDone

	if err := s.write(ctx, submission); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, submission.TicketID, domain.AuditActionSubmissionClosed, account.Email, map[string]any{
		"has_note": response.Note != "",
		"has_file": response.FileURL != "",
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventSubmissionClosed,
		TicketID: submission.TicketID,
		Actor:    account.Email,
		Payload: events.SubmissionClosedPayload{
			Note:     response.Note,
			FileURL:  response.FileURL,
			FileName: response.FileName,
		},
	})
	return submission, nil
}

// ListAuditTrail returns the activity log for a ticket, for staff review.
func (s *VerificationService) ListAuditTrail(ctx context.Context, ticketID string, limit, offset int) ([]domain.AuditEntry, error) {
	if s.audit == nil {
		return []domain.AuditEntry{}, nil
	}
	if _, err := s.getSubmission(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.audit.ListByTicket(ctx, ticketID, limit, offset)
}

func (s *VerificationService) getSubmission(ctx context.Context, ticketID string) (*domain.Submission, error) {
	submission, err := s.submissions.GetByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("submission", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return submission, nil
}

func (s *VerificationService) write(ctx context.Context, submission *domain.Submission) error {
	err := s.submissions.UpdateWithRevision(ctx, submission, submission.Revision)
	if err == nil {
		if s.cache != nil {
			s.cache.Invalidate(ctx, submission.TicketID)
		}
		return nil
	}
	if errors.Is(err, repository.ErrRevisionConflict) {
		return apperrors.NewConflict("submission was modified concurrently, retry", map[string]any{
			"ticket_id": submission.TicketID,
		})
	}
	return apperrors.NewBackendUnavailable(err)
}

func (s *VerificationService) recordAudit(ctx context.Context, ticketID string, action domain.AuditAction, actor string, detail map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Create(ctx, &domain.AuditEntry{
		TicketID: ticketID,
		Action:   action,
		Actor:    actor,
		Detail:   detail,
	})
}

func (s *VerificationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func pendingRoles(submission *domain.Submission) map[string]any {
	pending := []string{}
	for role, entry := range submission.Verifiers {
		if entry.Status != domain.VerifierStatusVerified {
			pending = append(pending, role)
		}
	}
	return map[string]any{"unverified_roles": pending}
}
