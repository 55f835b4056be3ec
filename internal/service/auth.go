package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/validate"
)

// dummyPassword is hashed once and compared against when a login names an
// unknown email, so both branches cost one bcrypt comparison.
const dummyPassword = "authkeeper-dummy-password"

const (
	msgAlreadyConfirmed = "was already confirmed, please try signing in"
	msgConfirmExpiredFm = "needs to be confirmed within %s, please request a new one"
	msgResetExpired     = "has expired, please request a new one"
)

// SessionIssuer issues bearer tokens and revokes them on logout.
type SessionIssuer interface {
	Issue(ctx context.Context, user model.User) (string, error)
	RotateMarker(ctx context.Context, userID uuid.UUID) (string, error)
}

// SecureTokens generates confirmation and reset tokens and digests them.
type SecureTokens interface {
	Generate() (raw string, digest string, err error)
	Digest(raw string) string
}

// AuthOptions holds the token windows of the account flows.
// A zero ConfirmWithin means confirmation tokens never expire.
type AuthOptions struct {
	ConfirmWithin       time.Duration
	ResetPasswordWithin time.Duration
}

type Auth struct {
	users    model.UserStore
	sessions SessionIssuer
	hasher   model.PasswordHasher
	mailer   model.Mailer
	tokens   SecureTokens
	opts     AuthOptions
	logger   *logger.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(
	users model.UserStore,
	sessions SessionIssuer,
	hasher model.PasswordHasher,
	mailer model.Mailer,
	tokens SecureTokens,
	opts AuthOptions,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		mailer:   mailer,
		tokens:   tokens,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an already confirmed user and signs them in.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.Session, error) {
	email := validate.NormalizeEmail(params.Email)
	params.Email = email

	a.logger.Debug("Auth service: starting user registration",
		"email", email)

	var errs validate.Errors
	if err := validate.Struct(&errs, params); err != nil {
		return model.Session{}, err
	}

	if !errs.Has("email") {
		_, err := a.users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			errs.Add("email", validate.MsgTaken)
		case !errors.Is(err, model.ErrNotFound):
			a.logger.Error("Auth service: failed to get user by email",
				"email", email,
				"error", err.Error())
			return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
		}
	}

	if err := errs.Err(); err != nil {
		a.logger.Info("Auth service: registration rejected",
			"email", email,
			"error", err.Error())
		return model.Session{}, err
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now()
	user, err := a.users.Create(ctx, model.User{
		ID:                uuid.New(),
		Email:             email,
		EncryptedPassword: hash,
		ConfirmedAt:       &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if errors.Is(err, model.ErrEmailTaken) {
		return model.Session{}, model.NewValidationError("email", validate.MsgTaken)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := a.sessions.Issue(ctx, user)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"email", email,
		"user_id", user.ID)

	return model.Session{User: user, Token: token}, nil
}

// Login checks credentials and signs a confirmed user in. Unknown emails and
// wrong passwords fail identically with model.ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, email, password string) (model.Session, error) {
	email = validate.NormalizeEmail(email)

	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.compareDummy(password)
		return model.Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Compare(user.EncryptedPassword, password) {
		a.logger.Info("Auth service: login with invalid credentials",
			"user_id", user.ID)
		return model.Session{}, model.ErrInvalidCredentials
	}

	if !user.Confirmed() {
		return model.Session{}, model.ErrUnconfirmed
	}

	token, err := a.sessions.Issue(ctx, user)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return model.Session{User: user, Token: token}, nil
}

// Logout rotates the user's revocation marker. A user deleted after the
// token was verified yields model.ErrUserNotFound.
func (a *Auth) Logout(ctx context.Context, user model.User) error {
	if _, err := a.sessions.RotateMarker(ctx, user.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrUserNotFound
		}
		a.logger.Error("Auth service: logout failed",
			"user_id", user.ID,
			"error", err.Error())
		return err
	}
	return nil
}

// SendConfirmation mails a fresh confirmation token to an unconfirmed user.
func (a *Auth) SendConfirmation(ctx context.Context, email string) error {
	user, err := a.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Confirmed() {
		return model.ErrAlreadyConfirmed
	}

	raw, digest, err := a.tokens.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate confirmation token: %w", err)
	}

	now := a.now()
	user.ConfirmationTokenDigest = &digest
	user.ConfirmationSentAt = &now

	user, err = a.users.Update(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to store confirmation token: %w", err)
	}

	if err := a.mailer.SendConfirmationInstructions(ctx, user, raw); err != nil {
		return fmt.Errorf("failed to send confirmation instructions: %w", err)
	}

	a.logger.Info("Auth service: confirmation instructions sent",
		"user_id", user.ID)

	return nil
}

// Confirm marks the owner of a confirmation token as confirmed.
func (a *Auth) Confirm(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, model.NewValidationError("confirmation_token", validate.MsgBlank)
	}

	user, err := a.users.GetByConfirmationDigest(ctx, a.tokens.Digest(token))
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.NewValidationError("confirmation_token", validate.MsgInvalid)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by confirmation token: %w", err)
	}

	if user.Confirmed() {
		return model.User{}, model.NewValidationError("email", msgAlreadyConfirmed)
	}

	now := a.now()
	if a.opts.ConfirmWithin > 0 && user.ConfirmationSentAt != nil &&
		now.After(user.ConfirmationSentAt.Add(a.opts.ConfirmWithin)) {
		return model.User{}, model.NewValidationError("email",
			fmt.Sprintf(msgConfirmExpiredFm, formatPeriod(a.opts.ConfirmWithin)))
	}

	user.ConfirmedAt = &now
	user, err = a.users.Update(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to confirm user: %w", err)
	}

	a.logger.Info("Auth service: email confirmed",
		"user_id", user.ID)

	return user, nil
}

// SendResetPassword mails a fresh password reset token.
func (a *Auth) SendResetPassword(ctx context.Context, email string) error {
	user, err := a.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, digest, err := a.tokens.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	now := a.now()
	user.ResetPasswordTokenDigest = &digest
	user.ResetPasswordSentAt = &now

	user, err = a.users.Update(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := a.mailer.SendResetPasswordInstructions(ctx, user, raw); err != nil {
		return fmt.Errorf("failed to send reset instructions: %w", err)
	}

	a.logger.Info("Auth service: reset password instructions sent",
		"user_id", user.ID)

	return nil
}

// ResetPassword sets a new password for the owner of a reset token and signs them in.
func (a *Auth) ResetPassword(ctx context.Context, params model.ResetPasswordParams) (model.Session, error) {
	if params.Token == "" {
		return model.Session{}, model.NewValidationError("reset_password_token", validate.MsgBlank)
	}

	user, err := a.users.GetByResetPasswordDigest(ctx, a.tokens.Digest(params.Token))
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, model.NewValidationError("reset_password_token", validate.MsgInvalid)
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	if user.ResetPasswordSentAt == nil ||
		a.now().After(user.ResetPasswordSentAt.Add(a.opts.ResetPasswordWithin)) {
		return model.Session{}, model.NewValidationError("reset_password_token", msgResetExpired)
	}

	var errs validate.Errors
	if err := validate.Struct(&errs, params); err != nil {
		return model.Session{}, err
	}
	if err := errs.Err(); err != nil {
		return model.Session{}, err
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user.EncryptedPassword = hash
	user.ResetPasswordTokenDigest = nil
	user.ResetPasswordSentAt = nil

	user, err = a.users.Update(ctx, user)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to update password: %w", err)
	}

	token, err := a.sessions.Issue(ctx, user)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: password reset",
		"user_id", user.ID)

	return model.Session{User: user, Token: token}, nil
}

// ChangePassword replaces the password of a signed-in user after checking the current one.
func (a *Auth) ChangePassword(ctx context.Context, user model.User, params model.ChangePasswordParams) (model.Session, error) {
	if !a.hasher.Compare(user.EncryptedPassword, params.CurrentPassword) {
		a.logger.Info("Auth service: password change with wrong current password",
			"user_id", user.ID)
		return model.Session{}, model.ErrInvalidCurrentPassword
	}

	var errs validate.Errors
	if err := validate.Struct(&errs, params); err != nil {
		return model.Session{}, err
	}
	if err := errs.Err(); err != nil {
		return model.Session{}, err
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user.EncryptedPassword = hash
	user, err = a.users.Update(ctx, user)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to update password: %w", err)
	}

	token, err := a.sessions.Issue(ctx, user)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: password changed",
		"user_id", user.ID)

	return model.Session{User: user, Token: token}, nil
}

func (a *Auth) findByEmail(ctx context.Context, email string) (model.User, error) {
	user, err := a.users.GetByEmail(ctx, validate.NormalizeEmail(email))
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (a *Auth) compareDummy(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			a.logger.Error("Auth service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	a.hasher.Compare(a.dummyHash, password)
}

func formatPeriod(d time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case d%day == 0:
		return plural(int(d/day), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
