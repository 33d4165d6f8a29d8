package dto

import (
	"time"

	"github.com/bem-portal/submission-service/internal/domain"
	"github.com/bem-portal/submission-service/internal/service"
)

// FileRefRequest carries an attachment reference.
type FileRefRequest struct {
	URL      string `json:"url" validate:"required,url"`
	FileName string `json:"file_name"`
}

// FieldValueRequest carries one form-field value, discriminated by Type.
type FieldValueRequest struct {
	Type     string          `json:"type" validate:"required,oneof=TEXT SELECT FILE"`
	Text     string          `json:"text"`
	Selected []string        `json:"selected"`
	File     *FileRefRequest `json:"file"`
}

// CreateSubmissionRequest is the public intake payload.
type CreateSubmissionRequest struct {
	Fields map[string]FieldValueRequest `json:"fields" validate:"required,min=1,dive"`
	Public *bool                        `json:"public"`
}

// ToFieldMap converts the request payload into domain field values.
func (r *CreateSubmissionRequest) ToFieldMap() domain.FieldMap {
	fields := make(domain.FieldMap, len(r.Fields))
	for key, value := range r.Fields {
		fv := domain.FieldValue{
			Type:     domain.FieldType(value.Type),
			Text:     value.Text,
			Selected: value.Selected,
		}
		if value.File != nil {
			fv.File = &domain.FileRef{URL: value.File.URL, FileName: value.File.FileName}
		}
		fields[key] = fv
	}
	return fields
}

// SubmissionCreatedResponse acknowledges intake with the assigned ticket.
type SubmissionCreatedResponse struct {
	TicketID      string                  `json:"ticket_id"`
	OverallStatus domain.SubmissionStatus `json:"overall_status"`
	CreatedAt     time.Time               `json:"created_at"`
}

// VerificationRequest is a single ledger action by a verifier role.
type VerificationRequest struct {
	Action string `json:"action" validate:"required,oneof=VERIFY REQUEST_REVISION RESET"`
	Note   string `json:"note"`
}

// CloseSubmissionRequest attaches the final response.
type CloseSubmissionRequest struct {
	Note     string `json:"note"`
	FileURL  string `json:"file_url" validate:"omitempty,url"`
	FileName string `json:"file_name"`
}

// SubmissionSummary is the staff worklist row.
type SubmissionSummary struct {
	TicketID      string                              `json:"ticket_id"`
	OverallStatus domain.SubmissionStatus             `json:"overall_status"`
	Verifiers     map[string]service.VerifierEntryView `json:"verifiers"`
	Public        bool                                `json:"public"`
	CreatedAt     time.Time                           `json:"created_at"`
	UpdatedAt     time.Time                           `json:"updated_at"`
}

// SubmissionDetailResponse is the staff view of one submission.
type SubmissionDetailResponse struct {
	TicketID      string                               `json:"ticket_id"`
	Fields        domain.FieldMap                      `json:"fields"`
	Verifiers     map[string]service.VerifierEntryView `json:"verifiers"`
	OverallStatus domain.SubmissionStatus              `json:"overall_status"`
	FinalResponse *domain.FinalResponse                `json:"final_response,omitempty"`
	Public        bool                                 `json:"public"`
	CreatedAt     time.Time                            `json:"created_at"`
	UpdatedAt     time.Time                            `json:"updated_at"`
}

// AuditEntryResponse is one audit-trail row.
type AuditEntryResponse struct {
	ID        string             `json:"id"`
	Action    domain.AuditAction `json:"action"`
	Actor     string             `json:"actor"`
	Detail    map[string]any     `json:"detail,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
