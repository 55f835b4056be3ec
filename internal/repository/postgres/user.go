package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/authkeeper/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, email, encrypted_password, confirmed_at,
	confirmation_token_digest, confirmation_sent_at,
	reset_password_token_digest, reset_password_sent_at,
	revocation_marker, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.EncryptedPassword, &user.ConfirmedAt,
		&user.ConfirmationTokenDigest, &user.ConfirmationSentAt,
		&user.ResetPasswordTokenDigest, &user.ResetPasswordSentAt,
		&user.RevocationMarker, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) getBy(ctx context.Context, column string, value any) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByConfirmationDigest(ctx context.Context, digest string) (model.User, error) {
	return r.getBy(ctx, "confirmation_token_digest", digest)
}

func (r *UserRepository) GetByResetPasswordDigest(ctx context.Context, digest string) (model.User, error) {
	return r.getBy(ctx, "reset_password_token_digest", digest)
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, email, encrypted_password, confirmed_at, revocation_marker, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.EncryptedPassword, user.ConfirmedAt, user.RevocationMarker,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

// Update writes every mutable column of user in one statement.
func (r *UserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	query := `UPDATE users SET
				encrypted_password = $2,
				confirmed_at = $3,
				confirmation_token_digest = $4,
				confirmation_sent_at = $5,
				reset_password_token_digest = $6,
				reset_password_sent_at = $7,
				updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.EncryptedPassword, user.ConfirmedAt,
		user.ConfirmationTokenDigest, user.ConfirmationSentAt,
		user.ResetPasswordTokenDigest, user.ResetPasswordSentAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return saved, nil
}

// UpdateRevocationMarker only touches the marker so concurrent updates of other columns survive.
func (r *UserRepository) UpdateRevocationMarker(ctx context.Context, id uuid.UUID, marker string) error {
	const query = `UPDATE users SET revocation_marker = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, marker)
	if err != nil {
		return fmt.Errorf("failed to update revocation marker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
