package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	apperrors "github.com/bouncr/iam/internal/errors"
	sessionDomain "github.com/bouncr/iam/internal/session/domain"
	sessionService "github.com/bouncr/iam/internal/session/service"
)

// Config holds the lifetimes of the artifacts the manager mints.
type Config struct {
	TokenTTL       time.Duration
	CodeTTL        time.Duration
	OIDCSessionTTL time.Duration
}

type tokenManager struct {
	config       Config
	repo         SessionRepository
	tokenService sessionService.TokenService
	clock        clock.Clock
	logger       *slog.Logger
}

// NewTokenManager creates a TokenManager. The clock decides issue and expiry times; the store
// enforces expiry through its per-key TTL.
func NewTokenManager(
	config Config,
	repo SessionRepository,
	tokenService sessionService.TokenService,
	clk clock.Clock,
	logger *slog.Logger,
) TokenManager {
	return &tokenManager{
		config:       config,
		repo:         repo,
		tokenService: tokenService,
		clock:        clk,
		logger:       logger,
	}
}

func (m *tokenManager) Issue(
	ctx context.Context,
	principal *authDomain.Principal,
) (*sessionDomain.IssuedToken, error) {
	plainToken, tokenHash, err := m.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := m.clock.Now().UTC()
	session := &sessionDomain.Session{
		Principal: *principal,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.config.TokenTTL),
	}
	if err := m.repo.SaveSession(ctx, tokenHash, session, m.config.TokenTTL); err != nil {
		return nil, err
	}

	m.logger.Debug("session issued",
		slog.String("account", principal.Account),
		slog.String("method", string(principal.Method)),
		slog.Time("expires_at", session.ExpiresAt),
	)

	return &sessionDomain.IssuedToken{Token: plainToken, ExpiresAt: session.ExpiresAt}, nil
}

func (m *tokenManager) Validate(ctx context.Context, token string) (*sessionDomain.Session, error) {
	if !m.tokenService.WellFormed(token) {
		return nil, sessionDomain.ErrTokenInvalid
	}

	session, err := m.repo.GetSession(ctx, m.tokenService.HashToken(token))
	if err != nil {
		return nil, err
	}

	// The store may keep a key for a moment past its TTL.
	if !m.clock.Now().Before(session.ExpiresAt) {
		return nil, sessionDomain.ErrTokenExpired
	}
	return session, nil
}

func (m *tokenManager) Revoke(ctx context.Context, token string) error {
	if !m.tokenService.WellFormed(token) {
		return sessionDomain.ErrTokenInvalid
	}
	return m.repo.DeleteSession(ctx, m.tokenService.HashToken(token))
}

func (m *tokenManager) IssueCode(
	ctx context.Context,
	principal *authDomain.Principal,
	client sessionDomain.ClientContext,
) (*sessionDomain.IssuedToken, error) {
	if client.ClientID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "client_id is required")
	}

	plainCode, codeHash, err := m.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := m.clock.Now().UTC()
	code := &sessionDomain.AuthorizationCode{
		Client:    client,
		Principal: *principal,
		IssuedAt:  now,
	}
	if err := m.repo.SaveCode(ctx, codeHash, code, m.config.CodeTTL); err != nil {
		return nil, err
	}

	return &sessionDomain.IssuedToken{Token: plainCode, ExpiresAt: now.Add(m.config.CodeTTL)}, nil
}

func (m *tokenManager) Redeem(ctx context.Context, code string) (*sessionDomain.AuthorizationCode, error) {
	if !m.tokenService.WellFormed(code) {
		return nil, sessionDomain.ErrCodeExpired
	}

	redeemed, err := m.repo.ConsumeCode(ctx, m.tokenService.HashToken(code), m.config.CodeTTL)
	if err != nil {
		return nil, err
	}
	if !m.clock.Now().Before(redeemed.IssuedAt.Add(m.config.CodeTTL)) {
		return nil, sessionDomain.ErrCodeExpired
	}
	return redeemed, nil
}

func (m *tokenManager) BindOIDCSession(
	ctx context.Context,
	principal *authDomain.Principal,
	externalID string,
) (*sessionDomain.OIDCSession, error) {
	if externalID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "oidc session id is required")
	}

	plainID, idHash, err := m.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	binding := &sessionDomain.OIDCSession{
		ID:         plainID,
		ExternalID: externalID,
		UserID:     principal.UserID,
		Provider:   principal.Provider,
		ExpiresAt:  m.clock.Now().UTC().Add(m.config.OIDCSessionTTL),
	}
	if err := m.repo.SaveOIDCSession(ctx, idHash, binding, m.config.OIDCSessionTTL); err != nil {
		return nil, err
	}
	return binding, nil
}

func (m *tokenManager) ValidateOIDCSession(ctx context.Context, id string) (*sessionDomain.OIDCSession, error) {
	if !m.tokenService.WellFormed(id) {
		return nil, sessionDomain.ErrOIDCSessionExpired
	}

	binding, err := m.repo.GetOIDCSession(ctx, m.tokenService.HashToken(id))
	if err != nil {
		return nil, err
	}
	if !m.clock.Now().Before(binding.ExpiresAt) {
		return nil, sessionDomain.ErrOIDCSessionExpired
	}
	binding.ID = id
	return binding, nil
}

func (m *tokenManager) RevokeOIDCSession(ctx context.Context, id string) error {
	if !m.tokenService.WellFormed(id) {
		return nil
	}
	return m.repo.DeleteOIDCSession(ctx, m.tokenService.HashToken(id))
}
