// Package mailer composes account instruction messages and hands them to a
// delivery backend.
package mailer

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/authkeeper/internal/model"
)

// Message kinds.
const (
	KindConfirmation  = "confirmation_instructions"
	KindResetPassword = "reset_password_instructions"
)

// Message is a rendered instruction mail.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

// Deliverer hands a rendered message to a transport.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}

// Options configures message rendering.
type Options struct {
	From             string
	ConfirmationURL  string
	ResetPasswordURL string
}

var _ model.Mailer = (*Mailer)(nil)

// Mailer renders confirmation and reset messages.
type Mailer struct {
	deliverer Deliverer
	opts      Options
	now       func() time.Time
}

func New(deliverer Deliverer, opts Options) *Mailer {
	return &Mailer{
		deliverer: deliverer,
		opts:      opts,
		now:       time.Now,
	}
}

func (m *Mailer) SendConfirmationInstructions(ctx context.Context, user model.User, token string) error {
	link, err := withQuery(m.opts.ConfirmationURL, "confirmation_token", token)
	if err != nil {
		return err
	}

	return m.deliverer.Deliver(ctx, m.message(KindConfirmation, user,
		"Confirmation instructions",
		fmt.Sprintf("Welcome %s!\n\nYou can confirm your account email through the link below:\n\n%s\n", user.Email, link),
		link))
}

func (m *Mailer) SendResetPasswordInstructions(ctx context.Context, user model.User, token string) error {
	link, err := withQuery(m.opts.ResetPasswordURL, "reset_password_token", token)
	if err != nil {
		return err
	}

	return m.deliverer.Deliver(ctx, m.message(KindResetPassword, user,
		"Reset password instructions",
		fmt.Sprintf("Hello %s!\n\nSomeone has requested a link to change your password. You can do this through the link below.\n\n%s\n\n"+
			"If you didn't request this, please ignore this email.\nYour password won't change until you access the link above and create a new one.\n",
			user.Email, link),
		link))
}

func (m *Mailer) message(kind string, user model.User, subject, body, link string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      kind,
		From:      m.opts.From,
		To:        user.Email,
		Subject:   subject,
		Body:      body,
		Link:      link,
		CreatedAt: m.now().UTC(),
	}
}

func withQuery(base, key, value string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse mail link %q: %w", base, err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
