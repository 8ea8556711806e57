package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nkjh2020/investment-manager/internal/api/middleware"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Details   string       `json:"details,omitempty"`
	RequestID string       `json:"request_id"`
	Timestamp time.Time    `json:"timestamp"`
	Fields    []FieldError `json:"fields,omitempty"`
}

// FieldError represents a field-level validation error
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
	ErrCodeExternalAPIError = "EXTERNAL_API_ERROR"
)

// ErrorWithDetails sends an error envelope and logs it
func ErrorWithDetails(c *gin.Context, statusCode int, code, message, details string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
		},
	}

	event := log.Warn()
	if statusCode >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Str("request_id", resp.Error.RequestID).
		Str("error_code", code).
		Str("message", message).
		Str("details", details).
		Int("status", statusCode).
		Msg("API error response")

	c.JSON(statusCode, resp)
}

// Error sends an error envelope without details
func Error(c *gin.Context, statusCode int, code, message string) {
	ErrorWithDetails(c, statusCode, code, message, "")
}

// ValidationError sends a 400 with field errors
func ValidationError(c *gin.Context, message string, fields []FieldError) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrCodeValidation,
			Message:   message,
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
			Fields:    fields,
		},
	}

	log.Warn().
		Str("request_id", resp.Error.RequestID).
		Str("error_code", ErrCodeValidation).
		Int("field_count", len(fields)).
		Msg("Validation error")

	c.JSON(http.StatusBadRequest, resp)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ErrCodeInvalidParameter, message)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// InternalError sends a 500 with the error text as details
func InternalError(c *gin.Context, message string, err error) {
	ErrorWithDetails(c, http.StatusInternalServerError, ErrCodeInternalServer, message, errText(err))
}

// DatabaseError sends a 500 for storage failures
func DatabaseError(c *gin.Context, err error) {
	ErrorWithDetails(c, http.StatusInternalServerError, ErrCodeDatabaseError, "Database operation failed", errText(err))
}

// ExternalAPIError sends a 502 for upstream (broker, market data) failures
func ExternalAPIError(c *gin.Context, message string, err error) {
	ErrorWithDetails(c, http.StatusBadGateway, ErrCodeExternalAPIError, message, errText(err))
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
