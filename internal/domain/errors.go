package domain

import (
	"errors"
	"sort"
	"strings"
)

// Domain-specific errors for business logic validation.
var (
	// Candidate errors
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrInvalidStage      = errors.New("invalid candidate stage")
	ErrInvalidTransition = errors.New("cannot move to a previous stage")
	ErrStageChanged      = errors.New("candidate stage changed concurrently")

	// Task errors
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")

	// Collaboration errors
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrNoteNotFound     = errors.New("note not found")

	// Permission errors
	ErrForbidden      = errors.New("access denied")
	ErrNotTaskOwner   = errors.New("access denied to this task")
	ErrNotAuthor      = errors.New("only the author or HR can modify this entry")
	ErrHRRoleRequired = errors.New("this action requires the HR role")

	// Auth errors
	ErrUnauthorized        = errors.New("authentication required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrUserNotFound        = errors.New("user not found")
	ErrRateLimited         = errors.New("too many requests, please try again later")

	// Conflict errors
	ErrEmailTaken = errors.New("a record with this email already exists")

	// Validation errors
	ErrValidation       = errors.New("validation failed")
	ErrUnsupportedFile  = errors.New("invalid file type, only PDF, DOC, DOCX, and TXT files are allowed")
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
	ErrEmptySearchQuery = errors.New("search query is required")
	ErrNothingToUpdate  = errors.New("no fields to update")
)

// ValidationError carries per-field messages and unwraps to ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
