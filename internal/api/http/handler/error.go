package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/authkeeper/internal/api/http/response"
	"github.com/dtroode/authkeeper/internal/model"
)

const (
	msgBadRequest          = "Bad request"
	msgInternal            = "Internal server error"
	msgUserNotFound        = "User not found"
	msgLoginFailed         = "Login failed"
	msgConfirmationNeeded  = "Email confirmation required"
	msgAlreadyConfirmed    = "Email address is already confirmed"
	msgEmailNotFound       = "Email address not found"
	msgEmailUnconfirmed    = "Email address has not been confirmed"
	msgEmailConfirmedField = "Email address has already been confirmed"
	msgBadCredentials      = "Invalid email or password"
	msgBadCurrentPassword  = "Current password is incorrect"
	msgUnexpected          = "An unexpected error occurred"
)

// handleError writes the envelope for err. failure is the message used for
// validation and other operation-specific failures.
func (h *Auth) handleError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	var vErr *model.ValidationError
	var dErr *decodeError

	switch {
	case errors.As(err, &dErr):
		response.Error(w, http.StatusBadRequest, msgBadRequest,
			response.FieldError{Field: dErr.field, Message: dErr.message})
	case errors.As(err, &vErr):
		response.Error(w, http.StatusUnprocessableEntity, failure, response.Fields(vErr.Fields)...)
	case errors.Is(err, model.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, msgLoginFailed,
			response.FieldError{Field: "credentials", Message: msgBadCredentials})
	case errors.Is(err, model.ErrUnconfirmed):
		response.Error(w, http.StatusUnauthorized, msgConfirmationNeeded,
			response.FieldError{Field: "email", Message: msgEmailUnconfirmed})
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrInvalidToken),
		errors.Is(err, model.ErrTokenRevoked):
		response.Error(w, http.StatusUnauthorized, msgAuthFailed)
	case errors.Is(err, model.ErrNotFound):
		response.Error(w, http.StatusNotFound, msgUserNotFound,
			response.FieldError{Field: "email", Message: msgEmailNotFound})
	case errors.Is(err, model.ErrAlreadyConfirmed):
		response.Error(w, http.StatusUnprocessableEntity, msgAlreadyConfirmed,
			response.FieldError{Field: "email", Message: msgEmailConfirmedField})
	case errors.Is(err, model.ErrInvalidCurrentPassword):
		response.Error(w, http.StatusUnauthorized, failure,
			response.FieldError{Field: "current_password", Message: msgBadCurrentPassword})
	default:
		h.logger.Error("Auth handler: unexpected error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error())
		response.Error(w, http.StatusInternalServerError, msgInternal,
			response.FieldError{Field: "base", Message: msgUnexpected})
	}
}
