package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/database"
	apperrors "github.com/bouncr/iam/internal/errors"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

const assignmentColumns = `id, subject_type, subject_id, role_id, realm_id, created_at`

// subjectFilter matches assignments of the user at placeholder u or of any group in the array at g.
func subjectFilter(u, g int) string {
	return fmt.Sprintf(
		`((s.subject_type = 'user' AND s.subject_id = $%d) OR (s.subject_type = 'group' AND s.subject_id = ANY($%d::uuid[])))`,
		u, g,
	)
}

// PostgreSQLAssignmentRepository implements Assignment persistence for PostgreSQL.
type PostgreSQLAssignmentRepository struct {
	db *sql.DB
}

func scanAssignment(row interface{ Scan(dest ...any) error }) (*rbacDomain.Assignment, error) {
	var a rbacDomain.Assignment
	if err := row.Scan(&a.ID, &a.SubjectType, &a.SubjectID, &a.RoleID, &a.RealmID, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an assignment. A duplicate (subject, role, realm) fails with ErrAssignmentAlreadyExists.
func (p *PostgreSQLAssignmentRepository) Create(ctx context.Context, a *rbacDomain.Assignment) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO assignments (` + assignmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(ctx, query, a.ID, a.SubjectType, a.SubjectID, a.RoleID, a.RealmID, a.CreatedAt)
	if err != nil {
		return writeError(err, rbacDomain.ErrAssignmentAlreadyExists, "failed to create assignment")
	}
	return nil
}

func (p *PostgreSQLAssignmentRepository) Get(
	ctx context.Context,
	assignmentID uuid.UUID,
) (*rbacDomain.Assignment, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`

	a, err := scanAssignment(querier.QueryRowContext(ctx, query, assignmentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrAssignmentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get assignment")
	}
	return a, nil
}

func (p *PostgreSQLAssignmentRepository) Delete(ctx context.Context, assignmentID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, assignmentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete assignment")
	}
	return affected(result, rbacDomain.ErrAssignmentNotFound, "failed to delete assignment")
}

func (p *PostgreSQLAssignmentRepository) ListByRealm(
	ctx context.Context,
	realmID uuid.UUID,
) ([]*rbacDomain.Assignment, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE realm_id = $1 ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query, realmID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list assignments")
	}
	defer func() { _ = rows.Close() }()

	assignments := make([]*rbacDomain.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan assignment")
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate assignments")
	}
	return assignments, nil
}

func (p *PostgreSQLAssignmentRepository) ListRoleIDs(
	ctx context.Context,
	realmID, userID uuid.UUID,
	groupIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT s.role_id FROM assignments s WHERE s.realm_id = $1 AND ` + subjectFilter(2, 3)

	rows, err := querier.QueryContext(ctx, query, realmID, userID, uuidArray(groupIDs))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list assigned roles")
	}
	return scanIDs(rows, "failed to list assigned roles")
}

func (p *PostgreSQLAssignmentRepository) ListGrants(
	ctx context.Context,
	userID uuid.UUID,
	groupIDs []uuid.UUID,
) ([]rbacDomain.Grant, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT a.name, r.name, s.role_id
			  FROM assignments s
			  JOIN realms r ON r.id = s.realm_id
			  JOIN applications a ON a.id = r.application_id
			  WHERE ` + subjectFilter(1, 2)

	rows, err := querier.QueryContext(ctx, query, userID, uuidArray(groupIDs))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list grants")
	}
	defer func() { _ = rows.Close() }()

	grants := make([]rbacDomain.Grant, 0)
	for rows.Next() {
		var g rbacDomain.Grant
		if err := rows.Scan(&g.Application, &g.Realm, &g.RoleID); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan grant")
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate grants")
	}
	return grants, nil
}

// NewPostgreSQLAssignmentRepository creates a new PostgreSQL Assignment repository.
func NewPostgreSQLAssignmentRepository(db *sql.DB) *PostgreSQLAssignmentRepository {
	return &PostgreSQLAssignmentRepository{db: db}
}
