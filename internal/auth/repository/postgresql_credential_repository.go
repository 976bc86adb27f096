// Package repository implements persistence for credentials, OIDC providers and federated
// identities in PostgreSQL, and for verification challenges and sign-in attempts in the
// key-value store.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	"github.com/bouncr/iam/internal/database"
	apperrors "github.com/bouncr/iam/internal/errors"
)

// PostgreSQLCredentialRepository implements password and OTP key persistence for PostgreSQL.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// UpsertPassword stores credential, replacing the user's previous password.
func (p *PostgreSQLCredentialRepository) UpsertPassword(
	ctx context.Context,
	credential *authDomain.PasswordCredential,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO password_credentials (user_id, hash, initial, created_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_id) DO UPDATE
			  SET hash = EXCLUDED.hash,
			      initial = EXCLUDED.initial,
			      created_at = EXCLUDED.created_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		credential.UserID,
		credential.Hash,
		credential.Initial,
		credential.CreatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Wrap(apperrors.ErrNotFound, "user not found")
		}
		return apperrors.Wrap(err, "failed to store password credential")
	}
	return nil
}

// GetPassword retrieves the password of userID.
func (p *PostgreSQLCredentialRepository) GetPassword(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.PasswordCredential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT user_id, hash, initial, created_at FROM password_credentials WHERE user_id = $1`

	var credential authDomain.PasswordCredential
	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&credential.UserID,
		&credential.Hash,
		&credential.Initial,
		&credential.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrPasswordCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get password credential")
	}
	return &credential, nil
}

// DeletePassword removes the password of userID.
func (p *PostgreSQLCredentialRepository) DeletePassword(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM password_credentials WHERE user_id = $1`, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete password credential")
	}
	return affected(result, authDomain.ErrPasswordCredentialNotFound, "failed to delete password credential")
}

// UpsertOTPKey stores key. A user has at most one key; enrolling again replaces it.
func (p *PostgreSQLCredentialRepository) UpsertOTPKey(ctx context.Context, key *authDomain.OTPKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO otp_keys (user_id, secret, created_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (user_id) DO UPDATE
			  SET secret = EXCLUDED.secret,
			      created_at = EXCLUDED.created_at`

	_, err := querier.ExecContext(ctx, query, key.UserID, key.Secret, key.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Wrap(apperrors.ErrNotFound, "user not found")
		}
		return apperrors.Wrap(err, "failed to store otp key")
	}
	return nil
}

// GetOTPKey retrieves the sealed OTP key of userID.
func (p *PostgreSQLCredentialRepository) GetOTPKey(ctx context.Context, userID uuid.UUID) (*authDomain.OTPKey, error) {
	querier := database.GetTx(ctx, p.db)

	var key authDomain.OTPKey
	err := querier.QueryRowContext(
		ctx,
		`SELECT user_id, secret, created_at FROM otp_keys WHERE user_id = $1`,
		userID,
	).Scan(&key.UserID, &key.Secret, &key.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrOTPKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get otp key")
	}
	return &key, nil
}

// DeleteOTPKey removes the OTP key of userID.
func (p *PostgreSQLCredentialRepository) DeleteOTPKey(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM otp_keys WHERE user_id = $1`, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete otp key")
	}
	return affected(result, authDomain.ErrOTPKeyNotFound, "failed to delete otp key")
}

func affected(result sql.Result, notFound error, message string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, message)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
