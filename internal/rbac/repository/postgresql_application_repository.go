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

const (
	applicationColumns = `id, name, description, pass_to, created_at`
	realmColumns       = `id, application_id, name, description, url, created_at`
)

// PostgreSQLApplicationRepository implements Application and Realm persistence for PostgreSQL.
type PostgreSQLApplicationRepository struct {
	db *sql.DB
}

func scanApplication(row interface{ Scan(dest ...any) error }) (*rbacDomain.Application, error) {
	var app rbacDomain.Application
	if err := row.Scan(&app.ID, &app.Name, &app.Description, &app.PassTo, &app.CreatedAt); err != nil {
		return nil, err
	}
	return &app, nil
}

func scanRealm(row interface{ Scan(dest ...any) error }) (*rbacDomain.Realm, error) {
	var realm rbacDomain.Realm
	err := row.Scan(&realm.ID, &realm.ApplicationID, &realm.Name, &realm.Description, &realm.URL, &realm.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &realm, nil
}

func (p *PostgreSQLApplicationRepository) Create(ctx context.Context, app *rbacDomain.Application) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO applications (` + applicationColumns + `) VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(ctx, query, app.ID, app.Name, app.Description, app.PassTo, app.CreatedAt)
	if err != nil {
		return writeError(err, rbacDomain.ErrApplicationAlreadyExists, "failed to create application")
	}
	return nil
}

func (p *PostgreSQLApplicationRepository) Update(ctx context.Context, app *rbacDomain.Application) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE applications SET name = $1, description = $2, pass_to = $3 WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, app.Name, app.Description, app.PassTo, app.ID)
	if err != nil {
		return writeError(err, rbacDomain.ErrApplicationAlreadyExists, "failed to update application")
	}
	return affected(result, rbacDomain.ErrApplicationNotFound, "failed to update application")
}

func (p *PostgreSQLApplicationRepository) getOne(
	ctx context.Context,
	query string,
	arg any,
) (*rbacDomain.Application, error) {
	querier := database.GetTx(ctx, p.db)

	app, err := scanApplication(querier.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrApplicationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get application")
	}
	return app, nil
}

func (p *PostgreSQLApplicationRepository) Get(
	ctx context.Context,
	applicationID uuid.UUID,
) (*rbacDomain.Application, error) {
	return p.getOne(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, applicationID)
}

func (p *PostgreSQLApplicationRepository) GetByName(ctx context.Context, name string) (*rbacDomain.Application, error) {
	return p.getOne(ctx, `SELECT `+applicationColumns+` FROM applications WHERE name = $1`, name)
}

func (p *PostgreSQLApplicationRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*rbacDomain.Application, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list applications")
	}
	defer func() { _ = rows.Close() }()

	apps := make([]*rbacDomain.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan application")
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate applications")
	}
	return apps, nil
}

// Delete removes an application. Realms and their assignments cascade.
func (p *PostgreSQLApplicationRepository) Delete(ctx context.Context, applicationID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, applicationID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete application")
	}
	return affected(result, rbacDomain.ErrApplicationNotFound, "failed to delete application")
}

// CreateRealm inserts a realm. The name is unique within the application.
func (p *PostgreSQLApplicationRepository) CreateRealm(ctx context.Context, realm *rbacDomain.Realm) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO realms (` + realmColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		realm.ID,
		realm.ApplicationID,
		realm.Name,
		realm.Description,
		realm.URL,
		realm.CreatedAt,
	)
	if err != nil {
		return writeError(err, rbacDomain.ErrRealmAlreadyExists, "failed to create realm")
	}
	return nil
}

func (p *PostgreSQLApplicationRepository) GetRealm(ctx context.Context, realmID uuid.UUID) (*rbacDomain.Realm, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + realmColumns + ` FROM realms WHERE id = $1`

	realm, err := scanRealm(querier.QueryRowContext(ctx, query, realmID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrRealmNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get realm")
	}
	return realm, nil
}

func (p *PostgreSQLApplicationRepository) GetRealmByName(
	ctx context.Context,
	application, realm string,
) (*rbacDomain.Realm, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT r.id, r.application_id, r.name, r.description, r.url, r.created_at
			  FROM realms r
			  JOIN applications a ON a.id = r.application_id
			  WHERE a.name = $1 AND r.name = $2`

	found, err := scanRealm(querier.QueryRowContext(ctx, query, application, realm))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rbacDomain.ErrRealmNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get realm")
	}
	return found, nil
}

func (p *PostgreSQLApplicationRepository) ListRealms(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]*rbacDomain.Realm, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + realmColumns + ` FROM realms WHERE application_id = $1 ORDER BY name`

	rows, err := querier.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list realms")
	}
	defer func() { _ = rows.Close() }()

	realms := make([]*rbacDomain.Realm, 0)
	for rows.Next() {
		realm, err := scanRealm(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan realm")
		}
		realms = append(realms, realm)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate realms")
	}
	return realms, nil
}

func (p *PostgreSQLApplicationRepository) DeleteRealm(ctx context.Context, realmID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM realms WHERE id = $1`, realmID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete realm")
	}
	return affected(result, rbacDomain.ErrRealmNotFound, "failed to delete realm")
}

// NewPostgreSQLApplicationRepository creates a new PostgreSQL Application repository.
func NewPostgreSQLApplicationRepository(db *sql.DB) *PostgreSQLApplicationRepository {
	return &PostgreSQLApplicationRepository{db: db}
}
