package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/repository"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

// VerifierEntryView is the public projection of one ledger entry.
type VerifierEntryView struct {
	Status    domain.VerifierStatus `json:"status"`
	Note      string                `json:"note,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// StatusView is the public, ticket-keyed projection of a submission. It never
// exposes internal identifiers beyond the ticket itself.
type StatusView struct {
	TicketID      string                       `json:"ticket_id"`
	OverallStatus domain.SubmissionStatus      `json:"overall_status"`
	Restricted    bool                         `json:"restricted,omitempty"`
	Verifiers     map[string]VerifierEntryView `json:"verifiers,omitempty"`
	FinalResponse *domain.FinalResponse        `json:"final_response,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// LookupService serves the public status projection and staff worklists.
type LookupService struct {
	submissions repository.SubmissionRepository
	cache       StatusCache
}

// NewLookupService constructs the service.
func NewLookupService(submissions repository.SubmissionRepository, cache StatusCache) *LookupService {
	return &LookupService{submissions: submissions, cache: cache}
}

// GetStatusByTicket returns the public view for a ticket. Unknown tickets map
// to a NOT_FOUND domain error; non-public submissions degrade to a restricted
// view carrying only the overall status.
func (s *LookupService) GetStatusByTicket(ctx context.Context, ticketID string) (*StatusView, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, ticketID); ok {
			return cached, nil
		}
	}

	submission, err := s.submissions.GetByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("submission", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewBackendUnavailable(err)
	}

	view := buildStatusView(submission)
	if s.cache != nil {
		s.cache.Set(ctx, ticketID, view)
	}
	return view, nil
}

// ListSubmissions returns submissions matching a staff worklist filter.
func (s *LookupService) ListSubmissions(ctx context.Context, filter repository.SubmissionFilter) ([]domain.Submission, error) {
	items, err := s.submissions.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewBackendUnavailable(err)
	}
	return items, nil
}

func buildStatusView(submission *domain.Submission) *StatusView {
	view := &StatusView{
		TicketID:      submission.TicketID,
		OverallStatus: submission.OverallStatus,
		CreatedAt:     submission.CreatedAt,
		UpdatedAt:     submission.UpdatedAt,
	}
	if !submission.Public {
		view.Restricted = true
		return view
	}
	view.Verifiers = make(map[string]VerifierEntryView, len(submission.Verifiers))
	for role, entry := range submission.Verifiers {
		view.Verifiers[role] = VerifierEntryView{
			Status:    entry.Status,
			Note:      entry.Note,
			UpdatedAt: entry.UpdatedAt,
		}
	}
	view.FinalResponse = submission.FinalResponse
	return view
}
