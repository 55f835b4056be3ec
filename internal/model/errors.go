package model

import (
	"errors"
	"strings"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrEmailTaken             = errors.New("email is already taken")
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenRevoked           = errors.New("token revoked")
	ErrUserNotFound           = errors.New("token subject not found")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrUnconfirmed            = errors.New("email is not confirmed")
	ErrAlreadyConfirmed       = errors.New("email is already confirmed")
	ErrInvalidCurrentPassword = errors.New("current password is invalid")
)

// FieldError is a single validation failure bound to a request field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries every field-level failure of a request.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError creates a ValidationError with a single field failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
