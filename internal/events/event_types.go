package events

import (
	"time"

	"github.com/bem-portal/submission-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubmissionCreated    EventType = "submission_created"
	EventVerificationRecorded EventType = "verification_recorded"
	EventSubmissionApproved   EventType = "submission_approved"
	EventSubmissionClosed     EventType = "submission_closed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SubmissionCreatedPayload payload.
type SubmissionCreatedPayload struct {
	VerifierRoles []string `json:"verifier_roles"`
	Public        bool     `json:"public"`
}

// VerificationRecordedPayload payload.
type VerificationRecordedPayload struct {
	RoleKey       string                  `json:"role_key"`
	Action        domain.VerifierAction   `json:"action"`
	EntryStatus   domain.VerifierStatus   `json:"entry_status"`
	OverallStatus domain.SubmissionStatus `json:"overall_status"`
	Note          string                  `json:"note,omitempty"`
}

// SubmissionApprovedPayload payload.
type SubmissionApprovedPayload struct {
	PreviousStatus domain.SubmissionStatus `json:"previous_status"`
}

// SubmissionClosedPayload payload.
type SubmissionClosedPayload struct {
	Note     string `json:"note,omitempty"`
	FileURL  string `json:"file_url,omitempty"`
	FileName string `json:"file_name,omitempty"`
}
