package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validator wraps the shared validator instance for service-level checks,
// mirroring the binding-tag validation gin applies at the edge.
type Validator struct {
	validator *validator.Validate
}

// NewValidator returns a validator backed by the shared instance.
func NewValidator() *Validator {
	return &Validator{
		validator: validate,
	}
}

// Validate checks a struct against its validate tags and returns a
// *ValidationError with per-field messages on failure.
func (v *Validator) Validate(obj interface{}) error {
	if err := v.validator.Struct(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return FormatValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError carries a field → message map for the response body.
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", ve.Errors)
}

// FormatValidationErrors is the shared post-processing step applied to every
// failed validation: it flattens field errors into a uniform message map so
// all forms flag invalid fields the same way.
func FormatValidationErrors(fieldErrors validator.ValidationErrors) error {
	errorMap := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		errorMap[fe.Field()] = fieldErrorMessage(fe.Field(), fe.Tag(), fe.Param())
	}
	return &ValidationError{Errors: errorMap}
}

// fieldErrorMessage builds a human-readable message for one field error.
func fieldErrorMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, tag)
	}
}
