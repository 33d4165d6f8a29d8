package domain

import "time"

// SubmissionStatus enumerates aggregate lifecycle states for submissions.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted     SubmissionStatus = "SUBMITTED"
	SubmissionStatusUnderReview   SubmissionStatus = "UNDER_REVIEW"
	SubmissionStatusNeedsRevision SubmissionStatus = "NEEDS_REVISION"
	SubmissionStatusApproved      SubmissionStatus = "APPROVED"
	SubmissionStatusDone          SubmissionStatus = "DONE"
)

// VerifierStatus enumerates per-role verification states.
type VerifierStatus string

const (
	VerifierStatusPending           VerifierStatus = "PENDING"
	VerifierStatusVerified          VerifierStatus = "VERIFIED"
	VerifierStatusRevisionRequested VerifierStatus = "REVISION_REQUESTED"
)

// VerifierAction enumerates ledger operations a verifier may perform.
type VerifierAction string

const (
	VerifierActionVerify          VerifierAction = "VERIFY"
	VerifierActionRequestRevision VerifierAction = "REQUEST_REVISION"
	VerifierActionReset           VerifierAction = "RESET"
)

// VerifierEntry is one role's record in the verification ledger.
type VerifierEntry struct {
	Status    VerifierStatus `json:"status"`
	Note      string         `json:"note"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FinalResponse is the closing response attached when a submission is done.
type FinalResponse struct {
	Note     string `json:"note,omitempty"`
	FileURL  string `json:"file_url,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

// Submission is the aggregate for administrative requests.
type Submission struct {
	ID            string
	TicketID      string
	Fields        FieldMap
	Verifiers     map[string]VerifierEntry
	OverallStatus SubmissionStatus
	FinalResponse *FinalResponse
	Public        bool
	Revision      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AllVerified reports whether every ledger entry is verified.
func (s *Submission) AllVerified() bool {
	if len(s.Verifiers) == 0 {
		return false
	}
	for _, entry := range s.Verifiers {
		if entry.Status != VerifierStatusVerified {
			return false
		}
	}
	return true
}

// Terminal reports whether verifier edits are no longer permitted.
func (s *Submission) Terminal() bool {
	return s.OverallStatus == SubmissionStatusApproved || s.OverallStatus == SubmissionStatusDone
}
