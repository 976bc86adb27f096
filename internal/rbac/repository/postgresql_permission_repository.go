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

// PostgreSQLPermissionRepository implements Permission persistence for PostgreSQL.
type PostgreSQLPermissionRepository struct {
	db *sql.DB
}

func scanPermission(row interface{ Scan(dest ...any) error }) (*rbacDomain.Permission, error) {
	var permission rbacDomain.Permission
	if err := row.Scan(&permission.ID, &permission.Name, &permission.Description, &permission.CreatedAt); err != nil {
		return nil, err
	}
	return &permission, nil
}

func scanPermissions(rows *sql.Rows) ([]*rbacDomain.Permission, error) {
	defer func() { _ = rows.Close() }()

	permissions := make([]*rbacDomain.Permission, 0)
	for rows.Next() {
		permission, err := scanPermission(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		permissions = append(permissions, permission)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permissions")
	}
	return permissions, nil
}

func (p *PostgreSQLPermissionRepository) Create(ctx context.Context, permission *rbacDomain.Permission) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO permissions (id, name, description, created_at) VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		permission.ID,
		permission.Name,
		permission.Description,
		permission.CreatedAt,
	)
	if err != nil {
		return writeError(err, rbacDomain.ErrPermissionAlreadyExists, "failed to create permission")
	}
	return nil
}

func (p *PostgreSQLPermissionRepository) Update(ctx context.Context, permission *rbacDomain.Permission) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `UPDATE permissions SET name = $1, description = $2 WHERE id = $3`,
		permission.Name, permission.Description, permission.ID)
	if err != nil {
		return writeError(err, rbacDomain.ErrPermissionAlreadyExists, "failed to update permission")
	}
	return affected(result, rbacDomain.ErrPermissionNotFound, "failed to update permission")
}

func (p *PostgreSQLPermissionRepository) getOne(
	ctx context.Context,
	query string,
	arg any,
) (*rbacDomain.Permission, error) {
	querier := database.GetTx(ctx, p.db)

	permission, err := scanPermission(querier.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrPermissionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission")
	}
	return permission, nil
}

func (p *PostgreSQLPermissionRepository) Get(
	ctx context.Context,
	permissionID uuid.UUID,
) (*rbacDomain.Permission, error) {
	return p.getOne(ctx, `SELECT id, name, description, created_at FROM permissions WHERE id = $1`, permissionID)
}

func (p *PostgreSQLPermissionRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Permission, error) {
	return p.getOne(ctx, `SELECT id, name, description, created_at FROM permissions WHERE name = $1`, name)
}

func (p *PostgreSQLPermissionRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*rbacDomain.Permission, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, created_at FROM permissions ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	return scanPermissions(rows)
}

func (p *PostgreSQLPermissionRepository) Delete(ctx context.Context, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM permissions WHERE id = $1`, permissionID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete permission")
	}
	return affected(result, rbacDomain.ErrPermissionNotFound, "failed to delete permission")
}

// NewPostgreSQLPermissionRepository creates a new PostgreSQL Permission repository.
func NewPostgreSQLPermissionRepository(db *sql.DB) *PostgreSQLPermissionRepository {
	return &PostgreSQLPermissionRepository{db: db}
}
