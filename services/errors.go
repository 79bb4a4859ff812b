package services

import (
	"errors"
	"fmt"
	"strings"

	"TaskWheelService/repository"
	"TaskWheelService/validation"
)

var (
	// ErrNotFound is returned when a task does not exist or belongs to another owner.
	ErrNotFound = errors.New("task not found")
	// ErrNoEligibleTask is returned when the task wheel has no pending task to pick from.
	ErrNoEligibleTask = errors.New("no pending tasks found for the selected category")
	// ErrMissingOwner is returned when an operation is called without a caller identity.
	ErrMissingOwner = errors.New("owner is required")

	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrUserNotFound       = errors.New("user not found")
)

// StorageError is the opaque persistence failure surfaced by the repositories.
type StorageError = repository.StorageError

// ValidationError lists every violated input constraint.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields ...validation.FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func validationErr(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Fields: validation.Errors(err)}
}
