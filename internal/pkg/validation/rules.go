package validation

import (
	"bytes"
	"encoding/json"
	"regexp"

	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Student identifier pattern: letters, digits, dash and underscore
	StudentIDPattern = `^[A-Za-z0-9_-]+$`

	// Student identifier max length
	StudentIDMaxLength = 64
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	StudentID *regexp.Regexp
}{
	StudentID: regexp.MustCompile(StudentIDPattern),
}

// StringValidation checks a single string value against length and pattern rules
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}
	if !v.Required && v.Value == "" {
		return true
	}
	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// StudentID returns a ValidationError unless id is a usable student identifier
func StudentID(id string) error {
	if id == "" {
		return apperrors.NewValidationError("studentId", "student id is required")
	}
	ok := NewStringValidation(id).
		WithMaxLength(StudentIDMaxLength).
		WithPattern(CompiledPatterns.StudentID).
		Validate()
	if !ok {
		return apperrors.NewValidationError("studentId", "student id may only contain letters, digits, '-' and '_' (max 64)")
	}
	return nil
}

// SectionID parses and checks a section identifier against the known enumeration
func SectionID(id string) (models.SectionID, error) {
	sid := models.SectionID(id)
	if !sid.IsValid() {
		return "", apperrors.NewValidationError("sectionId", "unknown section: "+id)
	}
	return sid, nil
}

// SectionData normalizes a section payload. An empty payload becomes an empty
// document and an explicit null is kept as sent; anything else must be
// well-formed JSON. The content itself is opaque and is not inspected further.
func SectionData(data json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return append(json.RawMessage(nil), models.EmptyDocument...), nil
	}
	if !json.Valid(trimmed) {
		return nil, apperrors.NewValidationError("data", "data must be valid JSON")
	}
	return append(json.RawMessage(nil), trimmed...), nil
}
