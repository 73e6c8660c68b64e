package validation

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dpshade/prompt-catalog/internal/errors"
)

// maxBodyBytes bounds request bodies on state endpoints
const maxBodyBytes = 64 << 10

// RequestValidator decodes and validates HTTP request bodies
type RequestValidator struct {
	validator *Validator
}

// NewRequestValidator creates a new request validator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: NewValidator()}
}

// DecodeJSON reads r's JSON body into dst and validates it. An empty body
// leaves dst untouched before validation.
func (rv *RequestValidator) DecodeJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.InvalidInputError("Failed to read request body")
	}

	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, dst); err != nil {
			return errors.InvalidInputError("Invalid JSON in request body").WithDetails(err.Error())
		}
	}

	if result := rv.validator.Struct(dst); !result.Valid {
		return result.ToAppError()
	}
	return nil
}

// GetValidator returns the underlying struct validator
func (rv *RequestValidator) GetValidator() *Validator {
	return rv.validator
}

// SanitizeString removes control characters and surrounding whitespace
func SanitizeString(input string) string {
	return strings.TrimSpace(StripControl(input))
}

// StripControl removes control characters other than newline, tab and
// carriage return. Whitespace is kept as given.
func StripControl(input string) string {
	var result strings.Builder
	result.Grow(len(input))
	for _, r := range input {
		if r == '\n' || r == '\t' || r == '\r' || (r >= 32 && r != 0x7f) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
