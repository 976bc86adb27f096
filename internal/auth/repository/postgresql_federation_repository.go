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

const providerColumns = `id, name, client_id, client_secret, scope, authorization_endpoint,
	token_endpoint, jwks_uri, issuer, redirect_uri, created_at`

// PostgreSQLFederationRepository implements OIDC provider and federated identity persistence
// for PostgreSQL.
type PostgreSQLFederationRepository struct {
	db *sql.DB
}

func scanProvider(row interface{ Scan(dest ...any) error }) (*authDomain.OIDCProvider, error) {
	var provider authDomain.OIDCProvider
	err := row.Scan(
		&provider.ID,
		&provider.Name,
		&provider.ClientID,
		&provider.ClientSecret,
		&provider.Scope,
		&provider.AuthorizationEndpoint,
		&provider.TokenEndpoint,
		&provider.JWKSURI,
		&provider.Issuer,
		&provider.RedirectURI,
		&provider.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// CreateProvider inserts provider. A duplicate name fails with ErrOIDCProviderAlreadyExists.
func (p *PostgreSQLFederationRepository) CreateProvider(ctx context.Context, provider *authDomain.OIDCProvider) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO oidc_providers (` + providerColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		provider.ID,
		provider.Name,
		provider.ClientID,
		provider.ClientSecret,
		provider.Scope,
		provider.AuthorizationEndpoint,
		provider.TokenEndpoint,
		provider.JWKSURI,
		provider.Issuer,
		provider.RedirectURI,
		provider.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrOIDCProviderAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create oidc provider")
	}
	return nil
}

// UpdateProvider modifies an existing provider.
func (p *PostgreSQLFederationRepository) UpdateProvider(ctx context.Context, provider *authDomain.OIDCProvider) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE oidc_providers
			  SET name = $1,
			      client_id = $2,
			      client_secret = $3,
			      scope = $4,
			      authorization_endpoint = $5,
			      token_endpoint = $6,
			      jwks_uri = $7,
			      issuer = $8,
			      redirect_uri = $9
			  WHERE id = $10`

	result, err := querier.ExecContext(
		ctx,
		query,
		provider.Name,
		provider.ClientID,
		provider.ClientSecret,
		provider.Scope,
		provider.AuthorizationEndpoint,
		provider.TokenEndpoint,
		provider.JWKSURI,
		provider.Issuer,
		provider.RedirectURI,
		provider.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return authDomain.ErrOIDCProviderAlreadyExists
		}
		return apperrors.Wrap(err, "failed to update oidc provider")
	}
	return affected(result, authDomain.ErrOIDCProviderNotFound, "failed to update oidc provider")
}

func (p *PostgreSQLFederationRepository) getProvider(
	ctx context.Context,
	query string,
	arg any,
) (*authDomain.OIDCProvider, error) {
	querier := database.GetTx(ctx, p.db)

	provider, err := scanProvider(querier.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrOIDCProviderNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get oidc provider")
	}
	return provider, nil
}

// GetProvider retrieves a provider by ID.
func (p *PostgreSQLFederationRepository) GetProvider(
	ctx context.Context,
	providerID uuid.UUID,
) (*authDomain.OIDCProvider, error) {
	return p.getProvider(ctx, `SELECT `+providerColumns+` FROM oidc_providers WHERE id = $1`, providerID)
}

// GetProviderByName retrieves a provider by its unique name.
func (p *PostgreSQLFederationRepository) GetProviderByName(
	ctx context.Context,
	name string,
) (*authDomain.OIDCProvider, error) {
	return p.getProvider(ctx, `SELECT `+providerColumns+` FROM oidc_providers WHERE name = $1`, name)
}

// ListProviders retrieves providers ordered by name.
func (p *PostgreSQLFederationRepository) ListProviders(
	ctx context.Context,
	offset, limit int,
) ([]*authDomain.OIDCProvider, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(
		ctx,
		`SELECT `+providerColumns+` FROM oidc_providers ORDER BY name LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list oidc providers")
	}
	defer func() { _ = rows.Close() }()

	providers := make([]*authDomain.OIDCProvider, 0)
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan oidc provider")
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate oidc providers")
	}
	return providers, nil
}

// DeleteProvider removes a provider together with its identity links.
func (p *PostgreSQLFederationRepository) DeleteProvider(ctx context.Context, providerID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `WITH unlinked AS (
				DELETE FROM federated_identities WHERE provider_id = $1
			  )
			  DELETE FROM oidc_providers WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, providerID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete oidc provider")
	}
	return affected(result, authDomain.ErrOIDCProviderNotFound, "failed to delete oidc provider")
}

// LinkIdentity records that subject at the provider is identity.UserID. Linking the same
// subject twice fails with a conflict.
func (p *PostgreSQLFederationRepository) LinkIdentity(ctx context.Context, identity *authDomain.FederatedIdentity) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO federated_identities (provider_id, subject, user_id, created_at)
			  VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		identity.ProviderID,
		identity.Subject,
		identity.UserID,
		identity.CreatedAt,
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return apperrors.Wrap(apperrors.ErrConflict, "federated identity already linked")
		case database.IsForeignKeyViolation(err):
			return apperrors.Wrap(apperrors.ErrNotFound, "user or provider not found")
		}
		return apperrors.Wrap(err, "failed to link federated identity")
	}
	return nil
}

// GetIdentity resolves the local user linked to subject at providerID.
func (p *PostgreSQLFederationRepository) GetIdentity(
	ctx context.Context,
	providerID uuid.UUID,
	subject string,
) (*authDomain.FederatedIdentity, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT provider_id, subject, user_id, created_at
			  FROM federated_identities
			  WHERE provider_id = $1 AND subject = $2`

	var identity authDomain.FederatedIdentity
	err := querier.QueryRowContext(ctx, query, providerID, subject).Scan(
		&identity.ProviderID,
		&identity.Subject,
		&identity.UserID,
		&identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrFederatedIdentityNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get federated identity")
	}
	return &identity, nil
}

// NewPostgreSQLFederationRepository creates a new PostgreSQL federation repository.
func NewPostgreSQLFederationRepository(db *sql.DB) *PostgreSQLFederationRepository {
	return &PostgreSQLFederationRepository{db: db}
}
