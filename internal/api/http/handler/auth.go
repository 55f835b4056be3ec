package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/authkeeper/internal/api/http/response"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/metrics"
	"github.com/dtroode/authkeeper/internal/model"
)

const (
	msgRegistered         = "Registration completed"
	msgRegisterFailed     = "Registration failed"
	msgLoggedIn           = "Logged in"
	msgLoggedOut          = "Logged out"
	msgMe                 = "User information retrieved"
	msgConfirmationSent   = "Confirmation email sent"
	msgConfirmed          = "Email address confirmed"
	msgConfirmFailed      = "Email confirmation failed"
	msgResetSent          = "Password reset email sent"
	msgPasswordUpdated    = "Password updated"
	msgPasswordUpdateFail = "Password update failed"
	msgPasswordChanged    = "Password changed"
	msgPasswordChangeFail = "Password change failed"
	msgAuthRequired       = "Authentication required"
	msgAuthFailed         = "Authentication failed"
	msgMissingParam       = "param is missing or the value is empty"
	msgSendFailed         = "Request failed"
)

// AuthService defines the account operations exposed over HTTP.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.Session, error)
	Login(ctx context.Context, email, password string) (model.Session, error)
	Logout(ctx context.Context, user model.User) error
	SendConfirmation(ctx context.Context, email string) error
	Confirm(ctx context.Context, token string) (model.User, error)
	SendResetPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, params model.ResetPasswordParams) (model.Session, error)
	ChangePassword(ctx context.Context, user model.User, params model.ChangePasswordParams) (model.Session, error)
}

// EventRecorder counts account events.
type EventRecorder interface {
	AuthEvent(event, outcome string)
}

// Auth handles the /api/auth endpoints.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	events         EventRecorder
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, events EventRecorder, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		events:         events,
		logger:         logger,
	}
}

type registerRequest struct {
	User *struct {
		Email                string  `json:"email"`
		Password             string  `json:"password"`
		PasswordConfirmation *string `json:"password_confirmation"`
	} `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token                string  `json:"reset_password_token"`
	Password             string  `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

type changePasswordRequest struct {
	CurrentPassword      string  `json:"current_password"`
	Password             string  `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

// Register handles POST /register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err, msgRegisterFailed)
		return
	}
	if req.User == nil {
		h.handleError(w, r, &decodeError{field: "user", message: msgMissingParam}, msgRegisterFailed)
		return
	}

	session, err := h.authService.Register(r.Context(), model.RegisterParams{
		Email:                req.User.Email,
		Password:             req.User.Password,
		PasswordConfirmation: req.User.PasswordConfirmation,
	})
	h.record("register", err)
	if err != nil {
		h.handleError(w, r, err, msgRegisterFailed)
		return
	}

	response.Success(w, http.StatusCreated, toSessionData(session), msgRegistered)
}

// Login handles POST /login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err, msgLoginFailed)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	h.record("login", err)
	if err != nil {
		h.handleError(w, r, err, msgLoginFailed)
		return
	}

	response.Success(w, http.StatusOK, toSessionData(session), msgLoggedIn)
}

// Logout handles DELETE /logout.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	err := h.authService.Logout(r.Context(), user)
	h.record("logout", err)
	if err != nil {
		h.handleError(w, r, err, msgSendFailed)
		return
	}

	response.Success(w, http.StatusOK, nil, msgLoggedOut)
}

// Me handles GET /me.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, userData{User: toUserResponse(user)}, msgMe)
}

// SendConfirmation handles POST /confirmation.
func (h *Auth) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err, msgSendFailed)
		return
	}

	err := h.authService.SendConfirmation(r.Context(), req.Email)
	h.record("send_confirmation", err)
	if err != nil {
		h.handleError(w, r, err, msgSendFailed)
		return
	}

	response.Success(w, http.StatusOK, nil, msgConfirmationSent)
}

// Confirm handles GET /confirmation?confirmation_token=.
func (h *Auth) Confirm(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Confirm(r.Context(), r.URL.Query().Get("confirmation_token"))
	h.record("confirm", err)
	if err != nil {
		h.handleError(w, r, err, msgConfirmFailed)
		return
	}

	response.Success(w, http.StatusOK, userData{User: toUserResponse(user)}, msgConfirmed)
}

// SendResetPassword handles POST /password.
func (h *Auth) SendResetPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err, msgSendFailed)
		return
	}

	err := h.authService.SendResetPassword(r.Context(), req.Email)
	h.record("send_reset_password", err)
	if err != nil {
		h.handleError(w, r, err, msgSendFailed)
		return
	}

	response.Success(w, http.StatusOK, nil, msgResetSent)
}

// ResetPassword handles PUT /password.
func (h *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err, msgPasswordUpdateFail)
		return
	}

	session, err := h.authService.ResetPassword(r.Context(), model.ResetPasswordParams{
		Token:                req.Token,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	h.record("reset_password", err)
	if err != nil {
		h.handleError(w, r, err, msgPasswordUpdateFail)
		return
	}

	response.Success(w, http.StatusOK, toSessionData(session), msgPasswordUpdated)
}

// ChangePassword handles PUT /password/change.
func (h *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err, msgPasswordChangeFail)
		return
	}

	session, err := h.authService.ChangePassword(r.Context(), user, model.ChangePasswordParams{
		CurrentPassword:      req.CurrentPassword,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	h.record("change_password", err)
	if err != nil {
		h.handleError(w, r, err, msgPasswordChangeFail)
		return
	}

	response.Success(w, http.StatusOK, toSessionData(session), msgPasswordChanged)
}

func (h *Auth) currentUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	user, ok := h.contextManager.GetUserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, msgAuthRequired)
		return model.User{}, false
	}
	return user, true
}

func (h *Auth) record(event string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	h.events.AuthEvent(event, outcome)
}
