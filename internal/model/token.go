package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenTTL is the lifetime of an issued bearer token.
const TokenTTL = 24 * time.Hour

// TokenManager generates and validates signed bearer tokens.
type TokenManager interface {
	Generate(userID uuid.UUID, marker string) (string, error)
	Parse(token string) (TokenClaims, error)
}

// TokenClaims is the verified payload of a bearer token.
type TokenClaims struct {
	UserID    uuid.UUID
	Marker    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
