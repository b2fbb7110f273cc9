package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields,omitempty"`
	StatusCode int      `json:"-"`
	Internal   error    `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	// ErrDuplicateHostRequest signals that the user already has a host
	// registration request on file, whatever its status.
	ErrDuplicateHostRequest = &AppError{
		Code:       "HOST_REQUEST_EXISTS",
		Message:    "A host registration request already exists for this account",
		StatusCode: http.StatusConflict,
	}

	// ErrRequestNotPending signals a transition attempted on a request
	// that has already been approved or denied.
	ErrRequestNotPending = &AppError{
		Code:       "REQUEST_NOT_PENDING",
		Message:    "Host registration request has already been decided",
		StatusCode: http.StatusConflict,
	}

	ErrBookingConflict = &AppError{
		Code:       "BOOKING_CONFLICT",
		Message:    "The charger is already booked for the requested window",
		StatusCode: http.StatusConflict,
	}

	ErrDuplicateReview = &AppError{
		Code:       "REVIEW_EXISTS",
		Message:    "You have already reviewed this charger",
		StatusCode: http.StatusConflict,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	// ErrStorage wraps persistence-layer failures so callers can tell a
	// retryable infrastructure fault apart from a domain rejection.
	ErrStorage = &AppError{
		Code:       "STORAGE_ERROR",
		Message:    "Storage operation failed",
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrRateLimit = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// NewValidation reports field-level validation failures. The offending
// field names travel with the error so API consumers can highlight them.
func NewValidation(fields []string, messages ...string) *AppError {
	message := "Validation failed"
	if len(messages) > 0 {
		message = strings.Join(messages, "; ")
	}

	return &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    message,
		Fields:     fields,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewStorage attaches the underlying driver error to ErrStorage.
func NewStorage(err error) *AppError {
	return ErrStorage.WithInternal(err)
}
