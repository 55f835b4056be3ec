package model

import "context"

// Mailer delivers account instructions to users.
type Mailer interface {
	SendConfirmationInstructions(ctx context.Context, user User, token string) error
	SendResetPasswordInstructions(ctx context.Context, user User, token string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
