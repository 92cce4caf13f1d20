package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ysam020/task-management-assessment/internal/domain"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the shape of every JSON response body.
type Envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ErrorResponse is the envelope returned for failed requests.
type ErrorResponse = Envelope

// NewSuccessResponse wraps data in a success envelope.
func NewSuccessResponse(message string, data any) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Data: data}
}

// NewErrorResponse creates an error envelope. fields may be nil.
func NewErrorResponse(message string, fields map[string]string) ErrorResponse {
	return Envelope{Status: StatusError, Message: message, Errors: fields}
}

// MapDomainError maps domain errors to HTTP status codes and client messages.
func MapDomainError(err error) (status int, message string, fields map[string]string) {
	message = err.Error()

	switch {
	// Validation errors
	case errors.Is(err, domain.ErrValidation):
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return http.StatusUnprocessableEntity, "Validation failed", verr.Fields
		}
		return http.StatusUnprocessableEntity, message, nil
	case errors.Is(err, domain.ErrInvalidStage),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrUnsupportedFile),
		errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrEmptySearchQuery),
		errors.Is(err, domain.ErrNothingToUpdate):
		return http.StatusUnprocessableEntity, message, nil

	// Auth errors
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password", nil
	case errors.Is(err, domain.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, "Refresh token expired", nil
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token", nil
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Authentication required", nil

	// Permission errors
	case errors.Is(err, domain.ErrNotTaskOwner):
		return http.StatusForbidden, "Access denied to this task", nil
	case errors.Is(err, domain.ErrNotAuthor),
		errors.Is(err, domain.ErrHRRoleRequired),
		errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, message, nil

	// Not found
	case errors.Is(err, domain.ErrCandidateNotFound):
		return http.StatusNotFound, "Candidate not found", nil
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found", nil
	case errors.Is(err, domain.ErrFeedbackNotFound):
		return http.StatusNotFound, "Feedback not found", nil
	case errors.Is(err, domain.ErrNoteNotFound):
		return http.StatusNotFound, "Note not found", nil
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", nil

	// Conflicts
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "A record with this email already exists", nil
	case errors.Is(err, domain.ErrStageChanged):
		return http.StatusConflict, message, nil

	// Pipeline rules
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest, message, nil

	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, message, nil

	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "Internal server error", nil
	}
}
