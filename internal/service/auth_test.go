package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authkeeper/internal/mocks"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/securetoken"
	"github.com/dtroode/authkeeper/internal/testutil"
	"github.com/dtroode/authkeeper/internal/validate"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type authDeps struct {
	users    *mocks.UserStore
	sessions *mocks.SessionIssuer
	hasher   *mocks.PasswordHasher
	mailer   *mocks.Mailer
	tokens   *securetoken.Generator
}

func newTestAuth(t *testing.T) (*Auth, authDeps) {
	d := authDeps{
		users:    mocks.NewUserStore(t),
		sessions: mocks.NewSessionIssuer(t),
		hasher:   mocks.NewPasswordHasher(t),
		mailer:   mocks.NewMailer(t),
		tokens:   securetoken.NewGenerator("secret"),
	}
	a := NewAuth(d.users, d.sessions, d.hasher, d.mailer, d.tokens, AuthOptions{
		ConfirmWithin:       72 * time.Hour,
		ResetPasswordWithin: 6 * time.Hour,
	}, testutil.MakeNoopLogger())
	a.now = func() time.Time { return fixedNow }
	return a, d
}

func echoUser(_ context.Context, u model.User) (model.User, error) { return u, nil }

func confirmedUser() model.User {
	at := fixedNow.Add(-time.Hour)
	return model.User{ID: uuid.New(), Email: "a@x.com", EncryptedPassword: "hash", ConfirmedAt: &at}
}

func requireFields(t *testing.T, err error, fields ...string) {
	t.Helper()
	var vErr *model.ValidationError
	require.True(t, errors.As(err, &vErr), "expected validation error, got %v", err)
	got := make([]string, 0, len(vErr.Fields))
	for _, f := range vErr.Fields {
		got = append(got, f.Field)
	}
	assert.Equal(t, fields, got)
}

func TestAuth_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "a@x.com").Return(model.User{}, model.ErrNotFound).Once()
		d.hasher.On("Hash", "pw123456").Return("hash", nil).Once()
		d.users.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
			return u.Email == "a@x.com" && u.EncryptedPassword == "hash" && u.Confirmed() && u.ID != uuid.Nil
		})).Return(echoUser).Once()
		d.sessions.On("Issue", ctx, mock.Anything).Return("T1", nil).Once()

		confirmation := "pw123456"
		session, err := a.Register(ctx, model.RegisterParams{
			Email:                " A@x.com ",
			Password:             "pw123456",
			PasswordConfirmation: &confirmation,
		})
		require.NoError(t, err)
		assert.Equal(t, "T1", session.Token)
		assert.True(t, session.User.Confirmed())
		assert.Equal(t, "a@x.com", session.User.Email)
	})

	t.Run("email already used", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "a@x.com").Return(confirmedUser(), nil).Once()

		_, err := a.Register(ctx, model.RegisterParams{Email: "a@x.com", Password: "pw123456"})
		requireFields(t, err, "email")
	})

	t.Run("invalid input", func(t *testing.T) {
		a, _ := newTestAuth(t)

		other := "nope"
		_, err := a.Register(ctx, model.RegisterParams{Email: "bad", Password: "123", PasswordConfirmation: &other})
		requireFields(t, err, "email", "password", "password_confirmation")

		var vErr *model.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []model.FieldError{
			{Field: "email", Message: validate.MsgInvalid},
			{Field: "password", Message: "is too short (minimum is 6 characters)"},
			{Field: "password_confirmation", Message: validate.MsgMismatch},
		}, vErr.Fields)
	})

	t.Run("unique violation race", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "a@x.com").Return(model.User{}, model.ErrNotFound).Once()
		d.hasher.On("Hash", "pw123456").Return("hash", nil).Once()
		d.users.On("Create", ctx, mock.Anything).Return(model.User{}, model.ErrEmailTaken).Once()

		_, err := a.Register(ctx, model.RegisterParams{Email: "a@x.com", Password: "pw123456"})
		requireFields(t, err, "email")
	})

	t.Run("store failure", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "a@x.com").Return(model.User{}, assert.AnError).Once()

		_, err := a.Register(ctx, model.RegisterParams{Email: "a@x.com", Password: "pw123456"})
		require.ErrorIs(t, err, assert.AnError)
		var vErr *model.ValidationError
		assert.False(t, errors.As(err, &vErr))
	})
}

func TestAuth_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		a, d := newTestAuth(t)
		user := confirmedUser()
		d.users.On("GetByEmail", ctx, "a@x.com").Return(user, nil).Once()
		d.hasher.On("Compare", "hash", "pw123456").Return(true).Once()
		d.sessions.On("Issue", ctx, user).Return("T1", nil).Once()

		session, err := a.Login(ctx, "A@X.com", "pw123456")
		require.NoError(t, err)
		assert.Equal(t, "T1", session.Token)
		assert.Equal(t, user.ID, session.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "a@x.com").Return(confirmedUser(), nil).Once()
		d.hasher.On("Compare", "hash", "wrong").Return(false).Once()

		_, err := a.Login(ctx, "a@x.com", "wrong")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "b@x.com").Return(model.User{}, model.ErrNotFound).Once()
		d.hasher.On("Hash", dummyPassword).Return("dummy-hash", nil).Once()
		d.hasher.On("Compare", "dummy-hash", "pw123456").Return(false).Once()

		_, err := a.Login(ctx, "b@x.com", "pw123456")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("unconfirmed", func(t *testing.T) {
		a, d := newTestAuth(t)
		user := confirmedUser()
		user.ConfirmedAt = nil
		d.users.On("GetByEmail", ctx, "a@x.com").Return(user, nil).Once()
		d.hasher.On("Compare", "hash", "pw123456").Return(true).Once()

		_, err := a.Login(ctx, "a@x.com", "pw123456")
		require.ErrorIs(t, err, model.ErrUnconfirmed)
	})
}

func TestAuth_Logout(t *testing.T) {
	ctx := context.Background()
	a, d := newTestAuth(t)
	user := confirmedUser()

	d.sessions.On("RotateMarker", ctx, user.ID).Return("m2", nil).Once()
	require.NoError(t, a.Logout(ctx, user))

	d.sessions.On("RotateMarker", ctx, user.ID).Return("", assert.AnError).Once()
	require.ErrorIs(t, a.Logout(ctx, user), assert.AnError)

	d.sessions.On("RotateMarker", ctx, user.ID).
		Return("", fmt.Errorf("rotate revocation marker: %w", model.ErrNotFound)).Once()
	err := a.Logout(ctx, user)
	require.ErrorIs(t, err, model.ErrUserNotFound)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}

func TestAuth_SendConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "a@x.com").Return(model.User{}, model.ErrNotFound).Once()

		require.ErrorIs(t, a.SendConfirmation(ctx, "a@x.com"), model.ErrNotFound)
	})

	t.Run("already confirmed", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "a@x.com").Return(confirmedUser(), nil).Once()

		require.ErrorIs(t, a.SendConfirmation(ctx, "a@x.com"), model.ErrAlreadyConfirmed)
	})

	t.Run("sent", func(t *testing.T) {
		a, d := newTestAuth(t)
		user := confirmedUser()
		user.ConfirmedAt = nil

		var stored string
		d.users.On("GetByEmail", ctx, "a@x.com").Return(user, nil).Once()
		d.users.On("Update", ctx, mock.MatchedBy(func(u model.User) bool {
			if u.ConfirmationTokenDigest == nil || u.ConfirmationSentAt == nil {
				return false
			}
			stored = *u.ConfirmationTokenDigest
			return u.ConfirmationSentAt.Equal(fixedNow)
		})).Return(echoUser).Once()
		d.mailer.On("SendConfirmationInstructions", ctx, mock.Anything, mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) {
				assert.Equal(t, stored, d.tokens.Digest(args.String(2)))
			}).
			Return(nil).Once()

		require.NoError(t, a.SendConfirmation(ctx, "a@x.com"))
	})

	t.Run("mailer failure", func(t *testing.T) {
		a, d := newTestAuth(t)
		user := confirmedUser()
		user.ConfirmedAt = nil
		d.users.On("GetByEmail", ctx, "a@x.com").Return(user, nil).Once()
		d.users.On("Update", ctx, mock.Anything).Return(echoUser).Once()
		d.mailer.On("SendConfirmationInstructions", ctx, mock.Anything, mock.Anything).Return(assert.AnError).Once()

		require.ErrorIs(t, a.SendConfirmation(ctx, "a@x.com"), assert.AnError)
	})
}

func TestAuth_Confirm(t *testing.T) {
	ctx := context.Background()
	tokens := securetoken.NewGenerator("secret")
	digest := tokens.Digest("raw")

	unconfirmed := func(sentAgo time.Duration) model.User {
		u := confirmedUser()
		u.ConfirmedAt = nil
		sent := fixedNow.Add(-sentAgo)
		u.ConfirmationTokenDigest = &digest
		u.ConfirmationSentAt = &sent
		return u
	}

	t.Run("blank token", func(t *testing.T) {
		a, _ := newTestAuth(t)
		_, err := a.Confirm(ctx, "")
		requireFields(t, err, "confirmation_token")
	})

	t.Run("unknown token", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByConfirmationDigest", ctx, digest).Return(model.User{}, model.ErrNotFound).Once()

		_, err := a.Confirm(ctx, "raw")
		requireFields(t, err, "confirmation_token")
	})

	t.Run("already confirmed", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByConfirmationDigest", ctx, digest).Return(confirmedUser(), nil).Once()

		_, err := a.Confirm(ctx, "raw")
		requireFields(t, err, "email")
		assert.Contains(t, err.Error(), msgAlreadyConfirmed)
	})

	t.Run("expired", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByConfirmationDigest", ctx, digest).Return(unconfirmed(73*time.Hour), nil).Once()

		_, err := a.Confirm(ctx, "raw")
		requireFields(t, err, "email")
		assert.Contains(t, err.Error(), "needs to be confirmed within 3 days")
	})

	t.Run("never expires when window is zero", func(t *testing.T) {
		a, d := newTestAuth(t)
		a.opts.ConfirmWithin = 0
		d.users.On("GetByConfirmationDigest", ctx, digest).Return(unconfirmed(1000*time.Hour), nil).Once()
		d.users.On("Update", ctx, mock.Anything).Return(echoUser).Once()

		user, err := a.Confirm(ctx, "raw")
		require.NoError(t, err)
		assert.True(t, user.Confirmed())
	})

	t.Run("confirmed", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByConfirmationDigest", ctx, digest).Return(unconfirmed(time.Hour), nil).Once()
		d.users.On("Update", ctx, mock.MatchedBy(func(u model.User) bool {
			return u.ConfirmedAt != nil && u.ConfirmedAt.Equal(fixedNow)
		})).Return(echoUser).Once()

		user, err := a.Confirm(ctx, "raw")
		require.NoError(t, err)
		assert.True(t, user.Confirmed())
	})
}

func TestAuth_SendResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "a@x.com").Return(model.User{}, model.ErrNotFound).Once()

		require.ErrorIs(t, a.SendResetPassword(ctx, "a@x.com"), model.ErrNotFound)
	})

	t.Run("sent", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByEmail", ctx, "a@x.com").Return(confirmedUser(), nil).Once()
		d.users.On("Update", ctx, mock.MatchedBy(func(u model.User) bool {
			return u.ResetPasswordTokenDigest != nil && u.ResetPasswordSentAt != nil
		})).Return(echoUser).Once()
		d.mailer.On("SendResetPasswordInstructions", ctx, mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

		require.NoError(t, a.SendResetPassword(ctx, "a@x.com"))
	})
}

func TestAuth_ResetPassword(t *testing.T) {
	ctx := context.Background()
	tokens := securetoken.NewGenerator("secret")
	digest := tokens.Digest("raw")

	withReset := func(sentAgo time.Duration) model.User {
		u := confirmedUser()
		sent := fixedNow.Add(-sentAgo)
		u.ResetPasswordTokenDigest = &digest
		u.ResetPasswordSentAt = &sent
		return u
	}

	t.Run("blank token", func(t *testing.T) {
		a, _ := newTestAuth(t)
		_, err := a.ResetPassword(ctx, model.ResetPasswordParams{Password: "pw123456"})
		requireFields(t, err, "reset_password_token")
	})

	t.Run("unknown token", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByResetPasswordDigest", ctx, digest).Return(model.User{}, model.ErrNotFound).Once()

		_, err := a.ResetPassword(ctx, model.ResetPasswordParams{Token: "raw", Password: "pw123456"})
		requireFields(t, err, "reset_password_token")
	})

	t.Run("expired token", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByResetPasswordDigest", ctx, digest).Return(withReset(7*time.Hour), nil).Once()

		_, err := a.ResetPassword(ctx, model.ResetPasswordParams{Token: "raw", Password: "pw123456"})
		requireFields(t, err, "reset_password_token")
		assert.Contains(t, err.Error(), msgResetExpired)
	})

	t.Run("invalid password", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByResetPasswordDigest", ctx, digest).Return(withReset(time.Hour), nil).Once()

		other := "different"
		_, err := a.ResetPassword(ctx, model.ResetPasswordParams{Token: "raw", Password: "pw123456", PasswordConfirmation: &other})
		requireFields(t, err, "password_confirmation")
	})

	t.Run("reset", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.users.On("GetByResetPasswordDigest", ctx, digest).Return(withReset(time.Hour), nil).Once()
		d.hasher.On("Hash", "newpass1").Return("newhash", nil).Once()
		d.users.On("Update", ctx, mock.MatchedBy(func(u model.User) bool {
			return u.EncryptedPassword == "newhash" && u.ResetPasswordTokenDigest == nil && u.ResetPasswordSentAt == nil
		})).Return(echoUser).Once()
		d.sessions.On("Issue", ctx, mock.Anything).Return("T2", nil).Once()

		session, err := a.ResetPassword(ctx, model.ResetPasswordParams{Token: "raw", Password: "newpass1"})
		require.NoError(t, err)
		assert.Equal(t, "T2", session.Token)
	})
}

func TestAuth_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong current password does not mutate", func(t *testing.T) {
		a, d := newTestAuth(t)
		user := confirmedUser()
		d.hasher.On("Compare", "hash", "wrong").Return(false).Once()

		_, err := a.ChangePassword(ctx, user, model.ChangePasswordParams{CurrentPassword: "wrong", Password: "newpass1"})
		require.ErrorIs(t, err, model.ErrInvalidCurrentPassword)
		d.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("invalid new password", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.hasher.On("Compare", "hash", "pw123456").Return(true).Once()

		_, err := a.ChangePassword(ctx, confirmedUser(), model.ChangePasswordParams{CurrentPassword: "pw123456", Password: "1"})
		requireFields(t, err, "password")
		assert.Contains(t, err.Error(), "minimum is 6")
	})

	t.Run("user deleted meanwhile", func(t *testing.T) {
		a, d := newTestAuth(t)
		d.hasher.On("Compare", "hash", "pw123456").Return(true).Once()
		d.hasher.On("Hash", "newpass1").Return("newhash", nil).Once()
		d.users.On("Update", ctx, mock.Anything).Return(model.User{}, model.ErrNotFound).Once()

		_, err := a.ChangePassword(ctx, confirmedUser(), model.ChangePasswordParams{CurrentPassword: "pw123456", Password: "newpass1"})
		require.ErrorIs(t, err, model.ErrUserNotFound)
		assert.NotErrorIs(t, err, model.ErrNotFound)
		d.sessions.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("changed", func(t *testing.T) {
		a, d := newTestAuth(t)
		user := confirmedUser()
		d.hasher.On("Compare", "hash", "pw123456").Return(true).Once()
		d.hasher.On("Hash", "newpass1").Return("newhash", nil).Once()
		d.users.On("Update", ctx, mock.MatchedBy(func(u model.User) bool {
			return u.ID == user.ID && u.EncryptedPassword == "newhash"
		})).Return(echoUser).Once()
		d.sessions.On("Issue", ctx, mock.Anything).Return("T3", nil).Once()

		confirmation := "newpass1"
		session, err := a.ChangePassword(ctx, user, model.ChangePasswordParams{
			CurrentPassword:      "pw123456",
			Password:             "newpass1",
			PasswordConfirmation: &confirmation,
		})
		require.NoError(t, err)
		assert.Equal(t, "T3", session.Token)
		assert.Equal(t, "newhash", session.User.EncryptedPassword)
	})
}

func TestFormatPeriod(t *testing.T) {
	assert.Equal(t, "3 days", formatPeriod(72*time.Hour))
	assert.Equal(t, "1 day", formatPeriod(24*time.Hour))
	assert.Equal(t, "6 hours", formatPeriod(6*time.Hour))
	assert.Equal(t, "90 minutes", formatPeriod(90*time.Minute))
}
