package domain

// FieldType discriminates form-field value kinds.
type FieldType string

const (
	FieldTypeText   FieldType = "TEXT"
	FieldTypeSelect FieldType = "SELECT"
	FieldTypeFile   FieldType = "FILE"
)

// FileRef points at an attachment stored outside this service.
type FileRef struct {
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
}

// FieldValue is one applicant-provided form value, discriminated by Type.
type FieldValue struct {
	Type     FieldType `json:"type"`
	Text     string    `json:"text,omitempty"`
	Selected []string  `json:"selected,omitempty"`
	File     *FileRef  `json:"file,omitempty"`
}

// FieldMap holds form values keyed by field name.
type FieldMap map[string]FieldValue

// Empty reports whether the value carries no usable content for its type.
func (v FieldValue) Empty() bool {
	switch v.Type {
	case FieldTypeText:
		return v.Text == ""
	case FieldTypeSelect:
		return len(v.Selected) == 0
	case FieldTypeFile:
		return v.File == nil || v.File.URL == ""
	default:
		return true
	}
}
