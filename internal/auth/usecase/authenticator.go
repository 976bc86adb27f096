package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	authService "github.com/bouncr/iam/internal/auth/service"
	apperrors "github.com/bouncr/iam/internal/errors"
	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	hookUseCase "github.com/bouncr/iam/internal/hook/usecase"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

// AuthenticatorConfig holds the password switch and lockout policy.
type AuthenticatorConfig struct {
	PasswordEnabled    bool
	LockoutMaxAttempts int
	LockoutDuration    time.Duration
}

type authenticateFunc func(ctx context.Context, claim *authDomain.CredentialClaim) (*authDomain.Principal, error)

type authenticator struct {
	config      AuthenticatorConfig
	methods     map[authDomain.Method]authenticateFunc
	users       UserDirectory
	credentials CredentialUseCase
	attempts    AttemptRepository
	federation  FederationRepository
	directory   authService.DirectoryClient
	federator   authService.FederationClient
	hooks       hookUseCase.Dispatcher
	clock       clock.Clock
	logger      *slog.Logger
}

// NewAuthenticator creates an Authenticator. A nil directory or federator disables the method.
func NewAuthenticator(
	config AuthenticatorConfig,
	users UserDirectory,
	credentials CredentialUseCase,
	attempts AttemptRepository,
	federation FederationRepository,
	directory authService.DirectoryClient,
	federator authService.FederationClient,
	hooks hookUseCase.Dispatcher,
	clk clock.Clock,
	logger *slog.Logger,
) Authenticator {
	a := &authenticator{
		config:      config,
		users:       users,
		credentials: credentials,
		attempts:    attempts,
		federation:  federation,
		directory:   directory,
		federator:   federator,
		hooks:       hooks,
		clock:       clk,
		logger:      logger,
	}

	a.methods = map[authDomain.Method]authenticateFunc{}
	if config.PasswordEnabled {
		a.methods[authDomain.MethodPassword] = a.password
	}
	if directory != nil {
		a.methods[authDomain.MethodDirectory] = a.bindDirectory
	}
	if federator != nil {
		a.methods[authDomain.MethodFederation] = a.exchangeFederation
	}
	return a
}

func (a *authenticator) Authenticate(
	ctx context.Context,
	method authDomain.Method,
	claim *authDomain.CredentialClaim,
) (*authDomain.Principal, error) {
	authenticate, ok := a.methods[method]
	if !ok {
		if method == authDomain.MethodPassword {
			return nil, authDomain.ErrPasswordDisabled
		}
		return nil, authDomain.ErrUnsupportedMethod
	}

	principal, err := authenticate(ctx, claim)
	if err != nil {
		return nil, a.failure(ctx, method, err)
	}

	principal.Method = method
	principal.AuthenticatedAt = a.clock.Now().UTC()

	a.hooks.Dispatch(ctx, hookDomain.NewEvent(hookDomain.EventSignIn, principal.Account, map[string]any{
		"user_id": principal.UserID.String(),
		"method":  string(method),
	}))
	return principal, nil
}

// failure collapses credential errors into ErrAuthenticationFailed. Unavailability, a
// required second factor and storage faults pass through.
func (a *authenticator) failure(ctx context.Context, method authDomain.Method, err error) error {
	switch {
	case apperrors.Is(err, apperrors.ErrUnavailable):
		a.logger.WarnContext(ctx, "identity source unavailable",
			slog.String("method", string(method)),
			slog.Any("error", err),
		)
		return err
	case apperrors.Is(err, authDomain.ErrOneTimePasswordRequired):
		return err
	case apperrors.Is(err, apperrors.ErrUnauthorized),
		apperrors.Is(err, apperrors.ErrNotFound),
		apperrors.Is(err, apperrors.ErrForbidden):
		return authDomain.ErrAuthenticationFailed
	default:
		return err
	}
}

func (a *authenticator) password(
	ctx context.Context,
	claim *authDomain.CredentialClaim,
) (*authDomain.Principal, error) {
	if claim.Account == "" || claim.Password == "" {
		return nil, authDomain.ErrAuthenticationFailed
	}

	failures, err := a.attempts.Failures(ctx, claim.Account)
	if err != nil {
		return nil, err
	}
	if a.config.LockoutMaxAttempts > 0 && failures >= int64(a.config.LockoutMaxAttempts) {
		a.logger.InfoContext(ctx, "sign-in rejected for locked account", slog.String("account", claim.Account))
		if err := a.burnVerification(ctx, claim.Password); err != nil {
			return nil, err
		}
		return nil, authDomain.ErrAuthenticationFailed
	}

	user, err := a.users.GetByAccount(ctx, claim.Account)
	if err != nil {
		if apperrors.Is(err, rbacDomain.ErrUserNotFound) {
			if err := a.burnVerification(ctx, claim.Password); err != nil {
				return nil, err
			}
			return nil, a.recordFailure(ctx, claim.Account)
		}
		return nil, err
	}

	ok, err := a.credentials.VerifyPassword(ctx, user.ID, claim.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, a.recordFailure(ctx, claim.Account)
	}

	hasOTP, err := a.credentials.HasOTP(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if hasOTP {
		if claim.OneTimePassword == "" {
			return nil, authDomain.ErrOneTimePasswordRequired
		}
		if err := a.credentials.VerifyOTP(ctx, user.ID, claim.OneTimePassword); err != nil {
			if apperrors.Is(err, authDomain.ErrAuthenticationFailed) {
				return nil, a.recordFailure(ctx, claim.Account)
			}
			return nil, err
		}
	}

	if err := a.attempts.ResetFailures(ctx, claim.Account); err != nil {
		return nil, err
	}
	return &authDomain.Principal{UserID: user.ID, Account: user.Account}, nil
}

// burnVerification runs a password verification that cannot succeed, so rejections without a
// stored credential take as long as a wrong password. uuid.Nil never owns a credential.
func (a *authenticator) burnVerification(ctx context.Context, password string) error {
	_, err := a.credentials.VerifyPassword(ctx, uuid.Nil, password)
	return err
}

func (a *authenticator) recordFailure(ctx context.Context, account string) error {
	if _, err := a.attempts.RecordFailure(ctx, account, a.config.LockoutDuration); err != nil {
		return err
	}
	return authDomain.ErrAuthenticationFailed
}

// bindDirectory authenticates against the directory and provisions unknown accounts.
func (a *authenticator) bindDirectory(
	ctx context.Context,
	claim *authDomain.CredentialClaim,
) (*authDomain.Principal, error) {
	entry, err := a.directory.Authenticate(ctx, claim.Account, claim.Password)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByAccount(ctx, entry.Account)
	if err != nil {
		if !apperrors.Is(err, rbacDomain.ErrUserNotFound) {
			return nil, err
		}
		if user, err = a.provision(ctx, entry.Account, entry.Email, entry.Name, "directory"); err != nil {
			return nil, err
		}
	}

	return &authDomain.Principal{UserID: user.ID, Account: user.Account}, nil
}

// exchangeFederation redeems the provider code and resolves the linked local user. An unlinked
// identity is linked to the local user owning the same verified email.
func (a *authenticator) exchangeFederation(
	ctx context.Context,
	claim *authDomain.CredentialClaim,
) (*authDomain.Principal, error) {
	provider, err := a.federation.GetProviderByName(ctx, claim.Provider)
	if err != nil {
		return nil, err
	}

	redirectURI := claim.RedirectURI
	if redirectURI == "" {
		redirectURI = provider.RedirectURI
	}
	identity, err := a.federator.Exchange(ctx, provider, claim.Code, redirectURI)
	if err != nil {
		return nil, err
	}

	user, err := a.linkedUser(ctx, provider, identity)
	if err != nil {
		return nil, err
	}

	return &authDomain.Principal{
		UserID:            user.ID,
		Account:           user.Account,
		Provider:          provider.Name,
		ExternalSessionID: identity.SessionID,
	}, nil
}

func (a *authenticator) linkedUser(
	ctx context.Context,
	provider *authDomain.OIDCProvider,
	identity *authDomain.IdentityClaims,
) (*rbacDomain.User, error) {
	link, err := a.federation.GetIdentity(ctx, provider.ID, identity.Subject)
	if err == nil {
		return a.users.Get(ctx, link.UserID)
	}
	if !apperrors.Is(err, authDomain.ErrFederatedIdentityNotFound) {
		return nil, err
	}

	if identity.Email == "" || !identity.EmailVerified {
		return nil, authDomain.ErrAuthenticationFailed
	}
	user, err := a.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, err
	}

	err = a.federation.LinkIdentity(ctx, &authDomain.FederatedIdentity{
		ProviderID: provider.ID,
		Subject:    identity.Subject,
		UserID:     user.ID,
		CreatedAt:  a.clock.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "linked federated identity",
		slog.String("provider", provider.Name),
		slog.String("account", user.Account),
	)
	return user, nil
}

func (a *authenticator) provision(
	ctx context.Context,
	account, email, name, source string,
) (*rbacDomain.User, error) {
	user := rbacDomain.NewUser(&rbacDomain.CreateUserInput{Account: account, Email: email, Name: name})
	user.CreatedAt = a.clock.Now().UTC()
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}

	a.hooks.Dispatch(ctx, hookDomain.NewEvent(hookDomain.EventUserCreated, user.Account, map[string]any{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"source":  source,
	}))
	return user, nil
}
