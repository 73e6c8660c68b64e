// Package validation checks catalog records and API request bodies against
// their struct tags and converts failures into AppErrors.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dpshade/prompt-catalog/internal/errors"
)

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validator provides centralized validation functionality
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports JSON field names
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s and returns the collected field errors
func (v *Validator) Struct(s interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	err := v.validate.Struct(s)
	if err == nil {
		return result
	}

	result.Valid = false

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		result.Errors = append(result.Errors, ValidationError{Field: "", Code: "invalid", Message: err.Error()})
		return result
	}

	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldPath(fe),
			Code:    fe.Tag(),
			Message: formatFieldError(fe),
		})
	}
	return result
}

// fieldPath drops the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := fieldPath(e)

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Summary joins every error message into one line
func (result *ValidationResult) Summary() string {
	msgs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToAppError converts validation result to an INVALID_INPUT AppError
func (result *ValidationResult) ToAppError() *errors.AppError {
	if result.Valid {
		return nil
	}

	if len(result.Errors) == 0 {
		return errors.InvalidInputError("Validation failed")
	}

	appErr := errors.InvalidInputError(result.Errors[0].Message)
	appErr.WithDetails(result.Summary())
	appErr.WithContext("validation_errors", result.Errors)
	return appErr
}
