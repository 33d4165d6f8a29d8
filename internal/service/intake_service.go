package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/events"
	"github.com/bem-portal/submission-service/internal/repository"
	"github.com/bem-portal/submission-service/internal/schema"
	"github.com/bem-portal/submission-service/internal/ticket"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

// publicActor names unauthenticated applicants in audit entries and events.
const publicActor = "public"

// IntakeService accepts applicant submissions and opens their ledgers.
type IntakeService struct {
	submissions repository.SubmissionRepository
	audit       repository.AuditRepository
	generator   *ticket.Generator
	fieldSchema *schema.Schema
	roles       []string
	dispatcher  events.Dispatcher
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	AuditRepo      repository.AuditRepository
	Generator      *ticket.Generator
	FieldSchema    *schema.Schema
	VerifierRoles  []string
	Dispatcher     events.Dispatcher
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	return &IntakeService{
		submissions: deps.SubmissionRepo,
		audit:       deps.AuditRepo,
		generator:   deps.Generator,
		fieldSchema: deps.FieldSchema,
		roles:       deps.VerifierRoles,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateSubmission validates the field map, reserves a ticket identifier and
// persists a new submission with every configured verifier role at pending.
func (s *IntakeService) CreateSubmission(ctx context.Context, fields domain.FieldMap, public bool) (*domain.Submission, error) {
	if err := s.fieldSchema.Validate(fields); err != nil {
		return nil, err
	}

	ticketID, err := s.generator.Generate(ctx)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}

	now := time.Now()
	verifiers := make(map[string]domain.VerifierEntry, len(s.roles))
	for _, role := range s.roles {
		verifiers[role] = domain.VerifierEntry{
			Status:    domain.VerifierStatusPending,
			Note:      "",
			UpdatedAt: now,
		}
	}

	submission := &domain.Submission{
		TicketID:      ticketID,
		Fields:        fields,
		Verifiers:     verifiers,
		OverallStatus: domain.SubmissionStatusSubmitted,
		Public:        public,
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}

	s.recordAudit(ctx, submission.TicketID, domain.AuditActionSubmissionCreated, publicActor, map[string]any{
		"verifier_roles": s.roles,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventSubmissionCreated,
		TicketID: submission.TicketID,
		Actor:    publicActor,
		Payload: events.SubmissionCreatedPayload{
			VerifierRoles: s.roles,
			Public:        submission.Public,
		},
	})
	return submission, nil
}

func (s *IntakeService) recordAudit(ctx context.Context, ticketID string, action domain.AuditAction, actor string, detail map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &domain.AuditEntry{
		TicketID: ticketID,
		Action:   action,
		Actor:    actor,
		Detail:   detail,
	}
	// The audit sink is append-only and best effort; a failed write never
	// rolls back the submission itself.
	_ = s.audit.Create(ctx, entry)
}

func (s *IntakeService) publishEvent(ctx context.Context, event events.Event) {
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
