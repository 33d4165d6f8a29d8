package domain

import "time"

// AuditAction enumerates recorded mutating operations.
type AuditAction string

const (
	AuditActionSubmissionCreated    AuditAction = "submission_created"
	AuditActionVerificationRecorded AuditAction = "verification_recorded"
	AuditActionSubmissionApproved   AuditAction = "submission_approved"
	AuditActionSubmissionClosed     AuditAction = "submission_closed"
)

// AuditEntry is one append-only activity-log record. Entries are written as a
// side effect of every mutating operation and never read back by the workflow.
type AuditEntry struct {
	ID        string
	TicketID  string
	Action    AuditAction
	Actor     string
	Detail    map[string]any
	CreatedAt time.Time
}
