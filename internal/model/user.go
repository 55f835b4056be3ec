package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByConfirmationDigest(ctx context.Context, digest string) (User, error)
	GetByResetPasswordDigest(ctx context.Context, digest string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	UpdateRevocationMarker(ctx context.Context, id uuid.UUID, marker string) error
}

// User represents a stored user with authentication material.
type User struct {
	ID                       uuid.UUID
	Email                    string
	EncryptedPassword        string
	ConfirmedAt              *time.Time
	ConfirmationTokenDigest  *string
	ConfirmationSentAt       *time.Time
	ResetPasswordTokenDigest *string
	ResetPasswordSentAt      *time.Time
	RevocationMarker         *string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Confirmed reports whether the user has confirmed the email address.
func (u User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

// Marker returns the revocation marker, or an empty string if it was never rotated.
func (u User) Marker() string {
	if u.RevocationMarker == nil {
		return ""
	}
	return *u.RevocationMarker
}

// Session is a user paired with a freshly issued bearer token.
type Session struct {
	User  User
	Token string
}

// RegisterParams contains parameters to register a user.
type RegisterParams struct {
	Email                string  `json:"email" validate:"required,email"`
	Password             string  `json:"password" validate:"required,min=6,maxbytes=72"`
	PasswordConfirmation *string `json:"password_confirmation" validate:"omitnil,eqfield=Password"`
}

// ResetPasswordParams contains parameters to reset a password by token.
type ResetPasswordParams struct {
	Token                string  `json:"reset_password_token"`
	Password             string  `json:"password" validate:"required,min=6,maxbytes=72"`
	PasswordConfirmation *string `json:"password_confirmation" validate:"omitnil,eqfield=Password"`
}

// ChangePasswordParams contains parameters to change the password of a signed-in user.
type ChangePasswordParams struct {
	CurrentPassword      string  `json:"current_password"`
	Password             string  `json:"password" validate:"required,min=6,maxbytes=72"`
	PasswordConfirmation *string `json:"password_confirmation" validate:"omitnil,eqfield=Password"`
}
