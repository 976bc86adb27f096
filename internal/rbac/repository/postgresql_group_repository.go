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

// PostgreSQLGroupRepository implements Group persistence for PostgreSQL.
type PostgreSQLGroupRepository struct {
	db *sql.DB
}

func scanGroup(row interface{ Scan(dest ...any) error }) (*rbacDomain.Group, error) {
	var group rbacDomain.Group
	if err := row.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt); err != nil {
		return nil, err
	}
	return &group, nil
}

// Create inserts a new group. A duplicate name fails with ErrGroupAlreadyExists.
func (p *PostgreSQLGroupRepository) Create(ctx context.Context, group *rbacDomain.Group) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO groups (id, name, description, created_at) VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(ctx, query, group.ID, group.Name, group.Description, group.CreatedAt)
	if err != nil {
		return writeError(err, rbacDomain.ErrGroupAlreadyExists, "failed to create group")
	}
	return nil
}

func (p *PostgreSQLGroupRepository) Update(ctx context.Context, group *rbacDomain.Group) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE groups SET name = $1, description = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, group.Name, group.Description, group.ID)
	if err != nil {
		return writeError(err, rbacDomain.ErrGroupAlreadyExists, "failed to update group")
	}
	return affected(result, rbacDomain.ErrGroupNotFound, "failed to update group")
}

func (p *PostgreSQLGroupRepository) getOne(ctx context.Context, query string, arg any) (*rbacDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	group, err := scanGroup(querier.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group")
	}
	return group, nil
}

func (p *PostgreSQLGroupRepository) Get(ctx context.Context, groupID uuid.UUID) (*rbacDomain.Group, error) {
	return p.getOne(ctx, `SELECT id, name, description, created_at FROM groups WHERE id = $1`, groupID)
}

func (p *PostgreSQLGroupRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Group, error) {
	return p.getOne(ctx, `SELECT id, name, description, created_at FROM groups WHERE name = $1`, name)
}

func (p *PostgreSQLGroupRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, created_at FROM groups ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list groups")
	}
	defer func() { _ = rows.Close() }()

	groups := make([]*rbacDomain.Group, 0)
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group")
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate groups")
	}
	return groups, nil
}

// Delete removes a group, its memberships and the assignments granted to it.
func (p *PostgreSQLGroupRepository) Delete(ctx context.Context, groupID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `WITH revoked AS (
				DELETE FROM assignments WHERE subject_type = 'group' AND subject_id = $1
			  )
			  DELETE FROM groups WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, groupID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete group")
	}
	return affected(result, rbacDomain.ErrGroupNotFound, "failed to delete group")
}

// AddMember inserts a membership. Adding an existing member is a no-op.
func (p *PostgreSQLGroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO group_users (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	if _, err := querier.ExecContext(ctx, query, groupID, userID); err != nil {
		return writeError(err, rbacDomain.ErrGroupAlreadyExists, "failed to add group member")
	}
	return nil
}

func (p *PostgreSQLGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM group_users WHERE group_id = $1 AND user_id = $2`

	if _, err := querier.ExecContext(ctx, query, groupID, userID); err != nil {
		return apperrors.Wrap(err, "failed to remove group member")
	}
	return nil
}

func (p *PostgreSQLGroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*rbacDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT u.id, u.account, u.email, u.name, u.profile_verified, u.write_protected, u.created_at
			  FROM users u
			  JOIN group_users gu ON gu.user_id = u.id
			  WHERE gu.group_id = $1
			  ORDER BY u.account`

	rows, err := querier.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list group members")
	}
	defer func() { _ = rows.Close() }()

	users := make([]*rbacDomain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group member")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate group members")
	}
	return users, nil
}

func (p *PostgreSQLGroupRepository) ListGroupIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, `SELECT group_id FROM group_users WHERE user_id = $1`, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user groups")
	}
	return scanIDs(rows, "failed to list user groups")
}

func scanIDs(rows *sql.Rows, message string) ([]uuid.UUID, error) {
	defer func() { _ = rows.Close() }()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Wrap(err, message)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, message)
	}
	return ids, nil
}

// NewPostgreSQLGroupRepository creates a new PostgreSQL Group repository.
func NewPostgreSQLGroupRepository(db *sql.DB) *PostgreSQLGroupRepository {
	return &PostgreSQLGroupRepository{db: db}
}
