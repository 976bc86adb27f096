package usecase

import (
	"context"
	"time"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	"github.com/bouncr/iam/internal/metrics"
	sessionDomain "github.com/bouncr/iam/internal/session/domain"
)

// tokenManagerWithMetrics decorates TokenManager with metrics instrumentation.
type tokenManagerWithMetrics struct {
	next    TokenManager
	metrics metrics.BusinessMetrics
}

// NewTokenManagerWithMetrics wraps a TokenManager with metrics recording.
func NewTokenManagerWithMetrics(manager TokenManager, m metrics.BusinessMetrics) TokenManager {
	return &tokenManagerWithMetrics{next: manager, metrics: m}
}

func (t *tokenManagerWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, t.metrics, metrics.DomainSession, operation, start, metrics.Outcome(err))
}

func (t *tokenManagerWithMetrics) Issue(
	ctx context.Context,
	principal *authDomain.Principal,
) (*sessionDomain.IssuedToken, error) {
	start := time.Now()
	token, err := t.next.Issue(ctx, principal)
	t.record(ctx, "token_issue", start, err)
	return token, err
}

func (t *tokenManagerWithMetrics) Validate(ctx context.Context, token string) (*sessionDomain.Session, error) {
	start := time.Now()
	session, err := t.next.Validate(ctx, token)
	t.record(ctx, "token_validate", start, err)
	return session, err
}

func (t *tokenManagerWithMetrics) Revoke(ctx context.Context, token string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, token)
	t.record(ctx, "token_revoke", start, err)
	return err
}

func (t *tokenManagerWithMetrics) IssueCode(
	ctx context.Context,
	principal *authDomain.Principal,
	client sessionDomain.ClientContext,
) (*sessionDomain.IssuedToken, error) {
	start := time.Now()
	code, err := t.next.IssueCode(ctx, principal, client)
	t.record(ctx, "code_issue", start, err)
	return code, err
}

func (t *tokenManagerWithMetrics) Redeem(ctx context.Context, code string) (*sessionDomain.AuthorizationCode, error) {
	start := time.Now()
	redeemed, err := t.next.Redeem(ctx, code)
	t.record(ctx, "code_redeem", start, err)
	return redeemed, err
}

func (t *tokenManagerWithMetrics) BindOIDCSession(
	ctx context.Context,
	principal *authDomain.Principal,
	externalID string,
) (*sessionDomain.OIDCSession, error) {
	start := time.Now()
	binding, err := t.next.BindOIDCSession(ctx, principal, externalID)
	t.record(ctx, "oidc_session_bind", start, err)
	return binding, err
}

func (t *tokenManagerWithMetrics) ValidateOIDCSession(
	ctx context.Context,
	id string,
) (*sessionDomain.OIDCSession, error) {
	start := time.Now()
	binding, err := t.next.ValidateOIDCSession(ctx, id)
	t.record(ctx, "oidc_session_validate", start, err)
	return binding, err
}

func (t *tokenManagerWithMetrics) RevokeOIDCSession(ctx context.Context, id string) error {
	start := time.Now()
	err := t.next.RevokeOIDCSession(ctx, id)
	t.record(ctx, "oidc_session_revoke", start, err)
	return err
}
