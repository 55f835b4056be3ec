package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dtroode/authkeeper/internal/api/http/response"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

const (
	msgAuthRequired = "Authentication required"
	msgAuthFailed   = "Authentication failed"
	msgInternal     = "Internal server error"
)

// TokenVerifier resolves the user a bearer token was issued to.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (model.User, error)
}

// Authenticate validates bearer tokens and injects the user into the request context.
type Authenticate struct {
	verifier       TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(verifier TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid token and passes the rest to next.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			response.Error(w, http.StatusUnauthorized, msgAuthRequired)
			return
		}

		user, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			if isAuthFailure(err) {
				m.logger.Debug("Authenticate middleware: token rejected",
					"path", r.URL.Path,
					"error", err.Error())
				response.Error(w, http.StatusUnauthorized, msgAuthFailed)
				return
			}

			m.logger.Error("Authenticate middleware: failed to verify token",
				"path", r.URL.Path,
				"error", err.Error())
			response.Error(w, http.StatusInternalServerError, msgInternal)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetUserToContext(r.Context(), user)))
	})
}

// bearerToken returns the last space separated part of the header value,
// so both "Bearer <token>" and a bare token are accepted.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func isAuthFailure(err error) bool {
	return errors.Is(err, model.ErrInvalidToken) ||
		errors.Is(err, model.ErrTokenRevoked) ||
		errors.Is(err, model.ErrUserNotFound)
}
