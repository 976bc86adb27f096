package usecase

import (
	"context"

	"github.com/benbjohnson/clock"

	sessionDomain "github.com/bouncr/iam/internal/session/domain"
	sessionService "github.com/bouncr/iam/internal/session/service"
)

type backendCredentialUseCase struct {
	tokens      TokenManager
	permissions PermissionResolver
	signer      sessionService.CredentialSigner
	clock       clock.Clock
}

// NewBackendCredentialUseCase creates a BackendCredentialUseCase.
func NewBackendCredentialUseCase(
	tokens TokenManager,
	permissions PermissionResolver,
	signer sessionService.CredentialSigner,
	clk clock.Clock,
) BackendCredentialUseCase {
	return &backendCredentialUseCase{
		tokens:      tokens,
		permissions: permissions,
		signer:      signer,
		clock:       clk,
	}
}

// Issue validates token and signs the session's principal with its permissions in every realm.
// The credential never outlives the session.
func (u *backendCredentialUseCase) Issue(
	ctx context.Context,
	token string,
) (*sessionDomain.BackendCredential, error) {
	session, err := u.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	permissions, err := u.permissions.PermissionsByRealm(ctx, session.Principal.UserID)
	if err != nil {
		return nil, err
	}

	signed, expiresAt, err := u.signer.Sign(session.Principal, permissions, u.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	if expiresAt.After(session.ExpiresAt) {
		expiresAt = session.ExpiresAt
	}
	return &sessionDomain.BackendCredential{Token: signed, ExpiresAt: expiresAt}, nil
}
