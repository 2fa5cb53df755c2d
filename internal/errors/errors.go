package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Attendance errors
	ErrCodeAlreadyCheckedIn  = "ALREADY_CHECKED_IN"
	ErrCodeAlreadyCheckedOut = "ALREADY_CHECKED_OUT"
	ErrCodeNotCheckedIn      = "NOT_CHECKED_IN"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Error kinds. Every business error returned by the services wraps exactly
// one of these, so callers can classify with errors.Is.
var (
	ErrUnauthenticated   = stderrors.New("unauthenticated")
	ErrForbidden         = stderrors.New("forbidden")
	ErrNotFound          = stderrors.New("not found")
	ErrInvalidInput      = stderrors.New("invalid input")
	ErrAlreadyCheckedIn  = stderrors.New("already checked in")
	ErrAlreadyCheckedOut = stderrors.New("already checked out")
	ErrNotCheckedIn      = stderrors.New("not checked in")
	ErrConflict          = stderrors.New("conflict")

	// ErrInvalidCredentials is a failed login. It is also ErrUnauthenticated.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
)

type kindError struct {
	kind    error
	message string
}

func (e *kindError) Error() string { return e.message }
func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with the given message that matches kind under errors.Is.
func New(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

type kindMapping struct {
	kind   error
	status int
	code   string
}

// Ordered: more specific kinds come before the kinds they wrap.
var kindMappings = []kindMapping{
	{ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials},
	{ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
	{ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{ErrInvalidInput, http.StatusBadRequest, ErrCodeInvalidInput},
	{ErrAlreadyCheckedIn, http.StatusConflict, ErrCodeAlreadyCheckedIn},
	{ErrAlreadyCheckedOut, http.StatusConflict, ErrCodeAlreadyCheckedOut},
	{ErrNotCheckedIn, http.StatusConflict, ErrCodeNotCheckedIn},
	{ErrConflict, http.StatusConflict, ErrCodeConflict},
}

// Respond writes err as a JSON error response. Errors that carry a known
// kind are surfaced verbatim; anything else becomes a 500 and is attached to
// the context so the request logger records it.
func Respond(c *gin.Context, err error) {
	for _, m := range kindMappings {
		if stderrors.Is(err, m.kind) {
			RespondWithError(c, m.status, NewAPIError(m.code, err.Error()))
			return
		}
	}

	_ = c.Error(err)
	InternalError(c, "")
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}
