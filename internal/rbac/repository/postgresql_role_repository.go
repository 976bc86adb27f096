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

// PostgreSQLRoleRepository implements Role persistence for PostgreSQL.
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

func scanRole(row interface{ Scan(dest ...any) error }) (*rbacDomain.Role, error) {
	var role rbacDomain.Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
		return nil, err
	}
	return &role, nil
}

func (p *PostgreSQLRoleRepository) Create(ctx context.Context, role *rbacDomain.Role) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO roles (id, name, description, created_at) VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(ctx, query, role.ID, role.Name, role.Description, role.CreatedAt)
	if err != nil {
		return writeError(err, rbacDomain.ErrRoleAlreadyExists, "failed to create role")
	}
	return nil
}

func (p *PostgreSQLRoleRepository) Update(ctx context.Context, role *rbacDomain.Role) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `UPDATE roles SET name = $1, description = $2 WHERE id = $3`,
		role.Name, role.Description, role.ID)
	if err != nil {
		return writeError(err, rbacDomain.ErrRoleAlreadyExists, "failed to update role")
	}
	return affected(result, rbacDomain.ErrRoleNotFound, "failed to update role")
}

func (p *PostgreSQLRoleRepository) getOne(ctx context.Context, query string, arg any) (*rbacDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	role, err := scanRole(querier.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}
	return role, nil
}

func (p *PostgreSQLRoleRepository) Get(ctx context.Context, roleID uuid.UUID) (*rbacDomain.Role, error) {
	return p.getOne(ctx, `SELECT id, name, description, created_at FROM roles WHERE id = $1`, roleID)
}

func (p *PostgreSQLRoleRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Role, error) {
	return p.getOne(ctx, `SELECT id, name, description, created_at FROM roles WHERE name = $1`, name)
}

func (p *PostgreSQLRoleRepository) List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, created_at FROM roles ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	defer func() { _ = rows.Close() }()

	roles := make([]*rbacDomain.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate roles")
	}
	return roles, nil
}

// Delete removes a role. Its permission links and assignments cascade.
func (p *PostgreSQLRoleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, roleID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}
	return affected(result, rbacDomain.ErrRoleNotFound, "failed to delete role")
}

func (p *PostgreSQLRoleRepository) AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	if _, err := querier.ExecContext(ctx, query, roleID, permissionID); err != nil {
		return writeError(err, rbacDomain.ErrRoleAlreadyExists, "failed to add role permission")
	}
	return nil
}

func (p *PostgreSQLRoleRepository) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`

	if _, err := querier.ExecContext(ctx, query, roleID, permissionID); err != nil {
		return apperrors.Wrap(err, "failed to remove role permission")
	}
	return nil
}

func (p *PostgreSQLRoleRepository) ListPermissions(
	ctx context.Context,
	roleID uuid.UUID,
) ([]*rbacDomain.Permission, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT p.id, p.name, p.description, p.created_at
			  FROM permissions p
			  JOIN role_permissions rp ON rp.permission_id = p.id
			  WHERE rp.role_id = $1
			  ORDER BY p.name`

	rows, err := querier.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role permissions")
	}
	return scanPermissions(rows)
}

func (p *PostgreSQLRoleRepository) ListPermissionNames(ctx context.Context, roleIDs []uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT p.name
			  FROM permissions p
			  JOIN role_permissions rp ON rp.permission_id = p.id
			  WHERE rp.role_id = ANY($1::uuid[])`

	rows, err := querier.QueryContext(ctx, query, uuidArray(roleIDs))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permission names")
	}
	defer func() { _ = rows.Close() }()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permission names")
	}
	return names, nil
}

// NewPostgreSQLRoleRepository creates a new PostgreSQL Role repository.
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{db: db}
}
