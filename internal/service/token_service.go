package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

// TokenService issues and verifies bearer tokens and rotates the per-user
// revocation marker. It composes the TokenManager and the UserStore.
//
// When enforceRevocation is set the marker is embedded in every token and
// compared on verification, so rotating it invalidates all earlier tokens.
// Otherwise tokens are honoured until they expire.
type TokenService struct {
	manager           model.TokenManager
	users             model.UserStore
	enforceRevocation bool
	logger            *logger.Logger
}

func NewTokenService(manager model.TokenManager, users model.UserStore, enforceRevocation bool, logger *logger.Logger) *TokenService {
	return &TokenService{
		manager:           manager,
		users:             users,
		enforceRevocation: enforceRevocation,
		logger:            logger,
	}
}

// Issue signs a token whose subject is user.ID.
func (s *TokenService) Issue(_ context.Context, user model.User) (string, error) {
	var marker string
	if s.enforceRevocation {
		marker = user.Marker()
	}

	token, err := s.manager.Generate(user.ID, marker)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Verify returns the token's subject. It fails with model.ErrInvalidToken on
// a bad signature, malformed structure or expiry, with model.ErrUserNotFound
// when the subject no longer exists and with model.ErrTokenRevoked when the
// marker was rotated after issuance.
func (s *TokenService) Verify(ctx context.Context, token string) (model.User, error) {
	claims, err := s.manager.Parse(token)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to load token subject: %w", err)
	}

	if s.enforceRevocation && !equalMarkers(claims.Marker, user.Marker()) {
		s.logger.Debug("Token service: rejected token with stale revocation marker",
			"user_id", user.ID)
		return model.User{}, model.ErrTokenRevoked
	}

	return user, nil
}

// RotateMarker replaces the user's revocation marker and returns the new value.
func (s *TokenService) RotateMarker(ctx context.Context, userID uuid.UUID) (string, error) {
	marker := uuid.NewString()
	if err := s.users.UpdateRevocationMarker(ctx, userID, marker); err != nil {
		return "", fmt.Errorf("rotate revocation marker: %w", err)
	}

	s.logger.Info("Token service: revocation marker rotated",
		"user_id", userID,
		"enforced", s.enforceRevocation)

	return marker, nil
}

func equalMarkers(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
