package schema

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/bem-portal/submission-service/internal/domain"
	apperrors "github.com/bem-portal/submission-service/pkg/util/errorutil"
)

// FieldSpec describes one configurable form field.
type FieldSpec struct {
	Key      string           `json:"key"`
	Label    string           `json:"label"`
	Type     domain.FieldType `json:"type"`
	Required bool             `json:"required"`
	Options  []string         `json:"options,omitempty"`
}

// Schema is the externally supplied field configuration for submission intake.
type Schema struct {
	Fields []FieldSpec `json:"fields"`
}

// Default returns the built-in schema used when no schema file is configured.
func Default() *Schema {
	return &Schema{Fields: []FieldSpec{
		{Key: "nama_pengaju", Label: "Nama Pengaju", Type: domain.FieldTypeText, Required: true},
		{Key: "organisasi", Label: "Organisasi", Type: domain.FieldTypeText, Required: true},
		{Key: "jenis_pengajuan", Label: "Jenis Pengajuan", Type: domain.FieldTypeSelect, Required: true,
			Options: []string{"proposal", "laporan", "surat", "anggaran"}},
		{Key: "keterangan", Label: "Keterangan", Type: domain.FieldTypeText, Required: false},
		{Key: "berkas", Label: "Berkas", Type: domain.FieldTypeFile, Required: true},
	}}
}

// Load reads a schema from a JSON file, falling back to Default when path is empty.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field schema: %w", err)
	}
	var s Schema
	if err := json.Unmarshal(content, &s); err != nil {
		return nil, fmt.Errorf("parse field schema: %w", err)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("field schema %s declares no fields", path)
	}
	for _, field := range s.Fields {
		switch field.Type {
		case domain.FieldTypeText, domain.FieldTypeSelect, domain.FieldTypeFile:
		default:
			return nil, fmt.Errorf("field %s has unknown type %q", field.Key, field.Type)
		}
	}
	return &s, nil
}

// Validate checks a submitted field map against the schema. Keys not declared
// by the schema are passed through untouched; declared keys must match their
// declared type and constraints.
func (s *Schema) Validate(fields domain.FieldMap) error {
	problems := map[string]any{}

	for _, spec := range s.Fields {
		value, present := fields[spec.Key]
		if !present || value.Empty() {
			if spec.Required {
				problems[spec.Key] = "required"
			}
			continue
		}
		if value.Type != spec.Type {
			problems[spec.Key] = fmt.Sprintf("expected type %s", spec.Type)
			continue
		}
		switch spec.Type {
		case domain.FieldTypeSelect:
			for _, choice := range value.Selected {
				if !optionAllowed(spec.Options, choice) {
					problems[spec.Key] = fmt.Sprintf("value %q not in options", choice)
					break
				}
			}
		case domain.FieldTypeFile:
			if err := validateFileRef(value.File); err != nil {
				problems[spec.Key] = err.Error()
			}
		}
	}

	if len(problems) > 0 {
		return apperrors.NewValidationError("field validation failed", problems)
	}
	return nil
}

func optionAllowed(options []string, choice string) bool {
	if len(options) == 0 {
		return true
	}
	for _, opt := range options {
		if opt == choice {
			return true
		}
	}
	return false
}

func validateFileRef(ref *domain.FileRef) error {
	if ref == nil || ref.URL == "" {
		return fmt.Errorf("file reference missing url")
	}
	parsed, err := url.Parse(ref.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("file url %q is not absolute", ref.URL)
	}
	return nil
}
