package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler handles errors for CLI interface
type CLIErrorHandler struct {
	Verbose bool
	logger  *zap.Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool, logger *zap.Logger) *CLIErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIErrorHandler{Verbose: verbose, logger: logger}
}

// HandleError logs err and returns a display-ready error
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	h.logger.Debug("command failed",
		zap.String("code", string(appErr.Code)),
		zap.String("severity", string(appErr.Severity)),
		zap.Error(appErr.Cause))

	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if appErr.Details != "" {
		message = fmt.Sprintf("%s (%s)", message, appErr.Details)
	}
	if h.Verbose && appErr.Cause != nil {
		message = fmt.Sprintf("%s: %v", message, appErr.Cause)
	}

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("❌ CRITICAL: %s", message)
	case SeverityError:
		return fmt.Sprintf("❌ ERROR: %s", message)
	case SeverityWarning:
		return fmt.Sprintf("⚠️  WARNING: %s", message)
	case SeverityInfo:
		return fmt.Sprintf("ℹ️  INFO: %s", message)
	default:
		return fmt.Sprintf("❌ %s", message)
	}
}

// HTTPErrorHandler handles errors for HTTP interface
type HTTPErrorHandler struct {
	IncludeDetails bool
	logger         *zap.Logger
}

// NewHTTPErrorHandler creates a new HTTP error handler
func NewHTTPErrorHandler(includeDetails bool, logger *zap.Logger) *HTTPErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPErrorHandler{IncludeDetails: includeDetails, logger: logger}
}

// HandleError logs the error and returns it as an AppError
func (h *HTTPErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	fields := []zap.Field{
		zap.String("code", string(appErr.Code)),
		zap.String("severity", string(appErr.Severity)),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}
	if appErr.Severity == SeverityCritical || appErr.Severity == SeverityError {
		h.logger.Error(appErr.Message, fields...)
	} else {
		h.logger.Info(appErr.Message, fields...)
	}

	return appErr
}

// errorBody mirrors the API response envelope
type errorBody struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Details   string    `json:"details,omitempty"`
	Context   any       `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FormatError formats an error for HTTP response
func (h *HTTPErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	body := errorBody{
		Success:   false,
		Error:     appErr.Message,
		Code:      appErr.Code,
		Timestamp: appErr.Timestamp,
	}
	if h.IncludeDetails || appErr.Code == ErrCodeNotFound {
		body.Details = appErr.Details
		if appErr.Context != nil {
			body.Context = appErr.Context
		}
	}

	jsonBytes, _ := json.Marshal(body)
	return string(jsonBytes)
}

// WriteHTTPError writes an error response to HTTP
func (h *HTTPErrorHandler) WriteHTTPError(w http.ResponseWriter, err error) {
	appErr := GetAppError(err)
	h.HandleError(appErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(appErr))
	w.Write([]byte(h.FormatError(appErr)))
}

// StatusCode maps error codes to HTTP status codes
func StatusCode(err error) int {
	switch GetAppError(err).Code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeCatalogUnavailable, ErrCodeCatalogInvalid:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// TUIErrorHandler handles errors for TUI interface
type TUIErrorHandler struct {
	ShowDetails bool
	logger      *zap.Logger
}

// NewTUIErrorHandler creates a new TUI error handler
func NewTUIErrorHandler(showDetails bool, logger *zap.Logger) *TUIErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TUIErrorHandler{ShowDetails: showDetails, logger: logger}
}

// HandleError logs the error to the file sink
func (h *TUIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	h.logger.Warn(appErr.Message,
		zap.String("code", string(appErr.Code)),
		zap.Error(appErr.Cause))
	return appErr
}

// FormatError formats an error for TUI display
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.ShowDetails && appErr.Details != "" {
		message = fmt.Sprintf("%s\nDetails: %s", message, appErr.Details)
	}
	return message
}

// GetErrorStyle returns an icon and color for the error severity
func (h *TUIErrorHandler) GetErrorStyle(err error) (string, string) {
	switch GetAppError(err).Severity {
	case SeverityCritical:
		return "🔥", "#ff0000"
	case SeverityError:
		return "❌", "#ff6b6b"
	case SeverityWarning:
		return "⚠️", "#feca57"
	case SeverityInfo:
		return "ℹ️", "#48cae4"
	default:
		return "❌", "#ff6b6b"
	}
}
