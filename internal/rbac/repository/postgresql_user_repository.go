package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/database"
	apperrors "github.com/bouncr/iam/internal/errors"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

const userColumns = `id, account, email, name, profile_verified, write_protected, created_at`

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

func scanUser(row interface{ Scan(dest ...any) error }) (*rbacDomain.User, error) {
	var user rbacDomain.User
	err := row.Scan(
		&user.ID,
		&user.Account,
		&user.Email,
		&user.Name,
		&user.ProfileVerified,
		&user.WriteProtected,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. A duplicate account fails with ErrAccountAlreadyExists.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *rbacDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Account,
		user.Email,
		user.Name,
		user.ProfileVerified,
		user.WriteProtected,
		user.CreatedAt,
	)
	if err != nil {
		return writeError(err, rbacDomain.ErrAccountAlreadyExists, "failed to create user")
	}
	return nil
}

// Update modifies the profile of an existing user.
func (p *PostgreSQLUserRepository) Update(ctx context.Context, user *rbacDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users
			  SET email = $1,
			      name = $2,
			      profile_verified = $3
			  WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, user.Email, user.Name, user.ProfileVerified, user.ID)
	if err != nil {
		return writeError(err, rbacDomain.ErrAccountAlreadyExists, "failed to update user")
	}
	return affected(result, rbacDomain.ErrUserNotFound, "failed to update user")
}

func (p *PostgreSQLUserRepository) getOne(ctx context.Context, query string, arg any) (*rbacDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	user, err := scanUser(querier.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}
	return user, nil
}

// Get retrieves a user by ID.
func (p *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*rbacDomain.User, error) {
	return p.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

// GetByAccount retrieves a user by account name.
func (p *PostgreSQLUserRepository) GetByAccount(ctx context.Context, account string) (*rbacDomain.User, error) {
	return p.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE account = $1`, account)
}

// GetByEmail retrieves a user by email address, case-insensitively.
func (p *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*rbacDomain.User, error) {
	return p.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) LIMIT 1`, email)
}

// List retrieves users ordered by account.
func (p *PostgreSQLUserRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + userColumns + ` FROM users ORDER BY account LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer func() { _ = rows.Close() }()

	users := make([]*rbacDomain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}
	return users, nil
}

// Delete removes a user together with the assignments granted to it.
func (p *PostgreSQLUserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `WITH revoked AS (
				DELETE FROM assignments WHERE subject_type = 'user' AND subject_id = $1
			  )
			  DELETE FROM users WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}
	return affected(result, rbacDomain.ErrUserNotFound, "failed to delete user")
}

// SetProfileVerified flips the profile-verified flag.
func (p *PostgreSQLUserRepository) SetProfileVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `UPDATE users SET profile_verified = $1 WHERE id = $2`, verified, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update profile verification")
	}
	return affected(result, rbacDomain.ErrUserNotFound, "failed to update profile verification")
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}
