// Package usecase implements the token and session lifecycle.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	sessionDomain "github.com/bouncr/iam/internal/session/domain"
)

// SessionRepository stores sessions, authorization codes and OIDC bindings with per-key TTL.
type SessionRepository interface {
	SaveSession(ctx context.Context, tokenHash string, session *sessionDomain.Session, ttl time.Duration) error
	GetSession(ctx context.Context, tokenHash string) (*sessionDomain.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error

	SaveCode(ctx context.Context, codeHash string, code *sessionDomain.AuthorizationCode, ttl time.Duration) error
	ConsumeCode(ctx context.Context, codeHash string, tombstoneTTL time.Duration) (*sessionDomain.AuthorizationCode, error)

	SaveOIDCSession(ctx context.Context, idHash string, session *sessionDomain.OIDCSession, ttl time.Duration) error
	GetOIDCSession(ctx context.Context, idHash string) (*sessionDomain.OIDCSession, error)
	DeleteOIDCSession(ctx context.Context, idHash string) error
}

// PermissionResolver returns the permissions of a user keyed by application/realm.
type PermissionResolver interface {
	PermissionsByRealm(ctx context.Context, userID uuid.UUID) (map[string][]string, error)
}

// TokenManager issues, validates and revokes session tokens, authorization codes and OIDC
// session bindings.
type TokenManager interface {
	// Issue mints a session token with the configured fixed TTL.
	Issue(ctx context.Context, principal *authDomain.Principal) (*sessionDomain.IssuedToken, error)

	// Validate returns the session or ErrTokenExpired / ErrTokenInvalid. It never extends expiry.
	Validate(ctx context.Context, token string) (*sessionDomain.Session, error)

	// Revoke ends the session. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string) error

	// IssueCode mints a single-use authorization code for client.
	IssueCode(
		ctx context.Context,
		principal *authDomain.Principal,
		client sessionDomain.ClientContext,
	) (*sessionDomain.IssuedToken, error)

	// Redeem consumes code. Under concurrent redemption exactly one caller succeeds; the others
	// get ErrAlreadyRedeemed. Unknown or expired codes give ErrCodeExpired.
	Redeem(ctx context.Context, code string) (*sessionDomain.AuthorizationCode, error)

	// BindOIDCSession records that the provider session externalID belongs to principal. The
	// returned binding carries a freshly minted ID; the provider identifier never addresses it.
	BindOIDCSession(
		ctx context.Context,
		principal *authDomain.Principal,
		externalID string,
	) (*sessionDomain.OIDCSession, error)

	ValidateOIDCSession(ctx context.Context, id string) (*sessionDomain.OIDCSession, error)
	RevokeOIDCSession(ctx context.Context, id string) error
}

// BackendCredentialUseCase mints the signed credential forwarded to protected backends.
type BackendCredentialUseCase interface {
	Issue(ctx context.Context, token string) (*sessionDomain.BackendCredential, error)
}
