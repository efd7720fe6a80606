package middleware

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/portfoliohub/internal/pkg/apperrors"
)

// Validatable is implemented by request DTOs
type Validatable interface {
	Validate() error
}

// ValidateDTO runs req.Validate and converts validator failures into a ValidationError
func ValidateDTO(req Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, formatValidationError(fe))
		}
		return apperrors.NewValidationError(lowerFirst(verrs[0].Field()), strings.Join(msgs, "; "))
	}
	return apperrors.NewValidationError("", err.Error())
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := lowerFirst(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
