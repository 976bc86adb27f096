package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	authService "github.com/bouncr/iam/internal/auth/service"
	apperrors "github.com/bouncr/iam/internal/errors"
	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	"github.com/bouncr/iam/internal/resilience"
)

type mockFederationRepository struct {
	mock.Mock
}

func (m *mockFederationRepository) CreateProvider(ctx context.Context, provider *authDomain.OIDCProvider) error {
	return m.Called(ctx, provider).Error(0)
}

func (m *mockFederationRepository) UpdateProvider(ctx context.Context, provider *authDomain.OIDCProvider) error {
	return m.Called(ctx, provider).Error(0)
}

func (m *mockFederationRepository) GetProvider(ctx context.Context, id uuid.UUID) (*authDomain.OIDCProvider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.OIDCProvider), args.Error(1)
}

func (m *mockFederationRepository) GetProviderByName(ctx context.Context, name string) (*authDomain.OIDCProvider, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.OIDCProvider), args.Error(1)
}

func (m *mockFederationRepository) ListProviders(ctx context.Context, offset, limit int) ([]*authDomain.OIDCProvider, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.OIDCProvider), args.Error(1)
}

func (m *mockFederationRepository) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockFederationRepository) LinkIdentity(ctx context.Context, identity *authDomain.FederatedIdentity) error {
	return m.Called(ctx, identity).Error(0)
}

func (m *mockFederationRepository) GetIdentity(
	ctx context.Context,
	providerID uuid.UUID,
	subject string,
) (*authDomain.FederatedIdentity, error) {
	args := m.Called(ctx, providerID, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.FederatedIdentity), args.Error(1)
}

type stubDirectory struct {
	entry *authDomain.DirectoryEntry
	err   error
	calls int
}

func (s *stubDirectory) Authenticate(context.Context, string, string) (*authDomain.DirectoryEntry, error) {
	s.calls++
	return s.entry, s.err
}

type stubFederator struct {
	claims *authDomain.IdentityClaims
	err    error
}

func (s *stubFederator) AuthCodeURL(provider *authDomain.OIDCProvider, state string) string {
	return provider.AuthorizationEndpoint + "?state=" + state
}

func (s *stubFederator) Exchange(
	context.Context,
	*authDomain.OIDCProvider,
	string,
	string,
) (*authDomain.IdentityClaims, error) {
	return s.claims, s.err
}

func (e *env) authenticator(
	federation FederationRepository,
	directory *stubDirectory,
	federator *stubFederator,
) Authenticator {
	config := AuthenticatorConfig{
		PasswordEnabled:    e.config.PasswordEnabled,
		LockoutMaxAttempts: 3,
		LockoutDuration:    30 * time.Minute,
	}
	var (
		dir authService.DirectoryClient
		fed authService.FederationClient
	)
	if directory != nil {
		dir = directory
	}
	if federator != nil {
		fed = federator
	}
	return NewAuthenticator(
		config,
		e.users,
		e.credentialUseCase(),
		e.attempts,
		federation,
		dir,
		fed,
		e.hooks,
		e.clock,
		e.logger,
	)
}

func TestAuthenticator_Password(t *testing.T) {
	ctx := context.Background()
	alice := newUser("alice", "alice@example.com")

	t.Run("Success", func(t *testing.T) {
		e := newEnv(t, alice)
		mustSetPassword(t, e, alice, "Correct1horse")

		principal, err := e.authenticator(nil, nil, nil).Authenticate(ctx, authDomain.MethodPassword,
			&authDomain.CredentialClaim{Account: "alice", Password: "Correct1horse"})

		require.NoError(t, err)
		assert.Equal(t, alice.ID, principal.UserID)
		assert.Equal(t, authDomain.MethodPassword, principal.Method)
		assert.Equal(t, e.clock.Now(), principal.AuthenticatedAt)
		assert.Equal(t, 1, e.dispatched(hookDomain.EventSignIn))
	})

	t.Run("Error_SameFailureForUnknownAccountAndWrongPassword", func(t *testing.T) {
		e := newEnv(t, alice)
		mustSetPassword(t, e, alice, "Correct1horse")
		authn := e.authenticator(nil, nil, nil)

		_, wrongPassword := authn.Authenticate(ctx, authDomain.MethodPassword,
			&authDomain.CredentialClaim{Account: "alice", Password: "nope"})
		_, unknownAccount := authn.Authenticate(ctx, authDomain.MethodPassword,
			&authDomain.CredentialClaim{Account: "mallory", Password: "nope"})

		assert.Equal(t, authDomain.ErrAuthenticationFailed, wrongPassword)
		assert.Equal(t, authDomain.ErrAuthenticationFailed, unknownAccount)
		assert.Zero(t, e.dispatched(hookDomain.EventSignIn))
	})

	t.Run("Error_SameHashingCostForEveryRejection", func(t *testing.T) {
		withoutCredential := newUser("bob", "bob@example.com")
		e := newEnv(t, alice, withoutCredential)
		hasher := &countingHasher{}
		e.hasher = hasher
		mustSetPassword(t, e, alice, "Correct1horse")
		authn := e.authenticator(nil, nil, nil)

		verifications := func(account string) int64 {
			before := hasher.verifies.Load()
			_, err := authn.Authenticate(ctx, authDomain.MethodPassword,
				&authDomain.CredentialClaim{Account: account, Password: "Wrong1horse"})
			require.ErrorIs(t, err, authDomain.ErrAuthenticationFailed)
			return hasher.verifies.Load() - before
		}

		wrongPassword := verifications("alice")
		assert.Equal(t, int64(1), wrongPassword)
		assert.Equal(t, wrongPassword, verifications("mallory"))
		assert.Equal(t, wrongPassword, verifications("bob"))

		// Two more failures lock alice out; the locked rejection still hashes once.
		verifications("alice")
		verifications("alice")
		assert.Equal(t, wrongPassword, verifications("alice"))
	})

	t.Run("Error_Lockout", func(t *testing.T) {
		e := newEnv(t, alice)
		mustSetPassword(t, e, alice, "Correct1horse")
		authn := e.authenticator(nil, nil, nil)
		claim := &authDomain.CredentialClaim{Account: "alice", Password: "Correct1horse"}

		for i := 0; i < 3; i++ {
			_, err := authn.Authenticate(ctx, authDomain.MethodPassword,
				&authDomain.CredentialClaim{Account: "alice", Password: "wrong"})
			require.ErrorIs(t, err, authDomain.ErrAuthenticationFailed)
		}

		_, err := authn.Authenticate(ctx, authDomain.MethodPassword, claim)
		assert.ErrorIs(t, err, authDomain.ErrAuthenticationFailed)

		e.advance(30 * time.Minute)
		_, err = authn.Authenticate(ctx, authDomain.MethodPassword, claim)
		assert.NoError(t, err)
	})

	t.Run("Success_SuccessClearsFailures", func(t *testing.T) {
		e := newEnv(t, alice)
		mustSetPassword(t, e, alice, "Correct1horse")
		authn := e.authenticator(nil, nil, nil)

		_, err := authn.Authenticate(ctx, authDomain.MethodPassword,
			&authDomain.CredentialClaim{Account: "alice", Password: "wrong"})
		require.Error(t, err)
		_, err = authn.Authenticate(ctx, authDomain.MethodPassword,
			&authDomain.CredentialClaim{Account: "alice", Password: "Correct1horse"})
		require.NoError(t, err)

		failures, err := e.attempts.Failures(ctx, "alice")
		require.NoError(t, err)
		assert.Zero(t, failures)
	})

	t.Run("Error_OneTimePasswordRequired", func(t *testing.T) {
		e := newEnv(t, alice)
		mustSetPassword(t, e, alice, "Correct1horse")
		enrollment, err := e.credentialUseCase().EnrollOTP(ctx, alice.ID)
		require.NoError(t, err)
		authn := e.authenticator(nil, nil, nil)

		_, err = authn.Authenticate(ctx, authDomain.MethodPassword,
			&authDomain.CredentialClaim{Account: "alice", Password: "Correct1horse"})
		assert.ErrorIs(t, err, authDomain.ErrOneTimePasswordRequired)

		_, err = authn.Authenticate(ctx, authDomain.MethodPassword,
			&authDomain.CredentialClaim{Account: "alice", Password: "Correct1horse", OneTimePassword: "000000"})
		assert.ErrorIs(t, err, authDomain.ErrAuthenticationFailed)

		code := totpCode(t, enrollment.Secret, e.clock.Now())
		principal, err := authn.Authenticate(ctx, authDomain.MethodPassword,
			&authDomain.CredentialClaim{Account: "alice", Password: "Correct1horse", OneTimePassword: code})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, principal.UserID)
	})

	t.Run("Error_PasswordDisabled", func(t *testing.T) {
		e := newEnv(t, alice)
		e.config.PasswordEnabled = false

		_, err := e.authenticator(nil, nil, nil).Authenticate(ctx, authDomain.MethodPassword,
			&authDomain.CredentialClaim{Account: "alice", Password: "Correct1horse"})

		assert.ErrorIs(t, err, authDomain.ErrPasswordDisabled)
	})

	t.Run("Error_UnsupportedMethod", func(t *testing.T) {
		e := newEnv(t, alice)

		_, err := e.authenticator(nil, nil, nil).Authenticate(ctx, authDomain.MethodDirectory,
			&authDomain.CredentialClaim{Account: "alice", Password: "x"})

		assert.ErrorIs(t, err, authDomain.ErrUnsupportedMethod)
	})
}

func TestAuthenticator_Directory(t *testing.T) {
	ctx := context.Background()
	claim := &authDomain.CredentialClaim{Account: "bob", Password: "secret"}

	t.Run("Success_ProvisionsUnknownAccount", func(t *testing.T) {
		e := newEnv(t)
		directory := &stubDirectory{entry: &authDomain.DirectoryEntry{
			DN:      "uid=bob,ou=people,dc=example,dc=com",
			Account: "bob",
			Email:   "bob@example.com",
			Name:    "Bob",
		}}

		principal, err := e.authenticator(nil, directory, nil).Authenticate(ctx, authDomain.MethodDirectory, claim)

		require.NoError(t, err)
		assert.Equal(t, "bob", principal.Account)
		assert.Equal(t, authDomain.MethodDirectory, principal.Method)
		user, err := e.users.GetByAccount(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, user.ID, principal.UserID)
		assert.Equal(t, 1, e.dispatched(hookDomain.EventUserCreated))
	})

	t.Run("Success_ExistingAccount", func(t *testing.T) {
		bob := newUser("bob", "bob@example.com")
		e := newEnv(t, bob)
		directory := &stubDirectory{entry: &authDomain.DirectoryEntry{Account: "bob"}}

		principal, err := e.authenticator(nil, directory, nil).Authenticate(ctx, authDomain.MethodDirectory, claim)

		require.NoError(t, err)
		assert.Equal(t, bob.ID, principal.UserID)
		assert.Zero(t, e.dispatched(hookDomain.EventUserCreated))
	})

	t.Run("Error_Rejected", func(t *testing.T) {
		e := newEnv(t)
		directory := &stubDirectory{err: resilience.Rejection(authDomain.ErrAuthenticationFailed)}

		_, err := e.authenticator(nil, directory, nil).Authenticate(ctx, authDomain.MethodDirectory, claim)

		assert.Equal(t, authDomain.ErrAuthenticationFailed, err)
	})

	t.Run("Error_UnavailableIsDistinct", func(t *testing.T) {
		e := newEnv(t)
		directory := &stubDirectory{err: resilience.ErrCircuitOpen}

		_, err := e.authenticator(nil, directory, nil).Authenticate(ctx, authDomain.MethodDirectory, claim)

		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
		assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestAuthenticator_Federation(t *testing.T) {
	ctx := context.Background()
	provider := authDomain.NewOIDCProvider(&authDomain.OIDCProviderInput{
		Name:        "corp",
		RedirectURI: "https://bouncr.example.com/callback",
	})
	claim := &authDomain.CredentialClaim{Provider: "corp", Code: "abc"}

	t.Run("Success_LinkedIdentity", func(t *testing.T) {
		carol := newUser("carol", "carol@example.com")
		e := newEnv(t, carol)
		federation := &mockFederationRepository{}
		federation.On("GetProviderByName", ctx, "corp").Return(provider, nil)
		federation.On("GetIdentity", ctx, provider.ID, "sub-carol").
			Return(&authDomain.FederatedIdentity{ProviderID: provider.ID, Subject: "sub-carol", UserID: carol.ID}, nil)
		federator := &stubFederator{claims: &authDomain.IdentityClaims{Subject: "sub-carol", SessionID: "sid-9"}}

		principal, err := e.authenticator(federation, nil, federator).Authenticate(ctx, authDomain.MethodFederation, claim)

		require.NoError(t, err)
		assert.Equal(t, carol.ID, principal.UserID)
		assert.Equal(t, "corp", principal.Provider)
		assert.Equal(t, "sid-9", principal.ExternalSessionID)
		federation.AssertNotCalled(t, "LinkIdentity", mock.Anything, mock.Anything)
	})

	t.Run("Success_LinksByVerifiedEmail", func(t *testing.T) {
		carol := newUser("carol", "carol@example.com")
		e := newEnv(t, carol)
		federation := &mockFederationRepository{}
		federation.On("GetProviderByName", ctx, "corp").Return(provider, nil)
		federation.On("GetIdentity", ctx, provider.ID, "sub-new").Return(nil, authDomain.ErrFederatedIdentityNotFound)
		federation.On("LinkIdentity", ctx, mock.MatchedBy(func(identity *authDomain.FederatedIdentity) bool {
			return identity.UserID == carol.ID && identity.Subject == "sub-new"
		})).Return(nil).Once()
		federator := &stubFederator{claims: &authDomain.IdentityClaims{
			Subject:       "sub-new",
			Email:         "Carol@Example.com",
			EmailVerified: true,
		}}

		principal, err := e.authenticator(federation, nil, federator).Authenticate(ctx, authDomain.MethodFederation, claim)

		require.NoError(t, err)
		assert.Equal(t, carol.ID, principal.UserID)
		federation.AssertExpectations(t)
	})

	t.Run("Error_UnverifiedEmailNotLinked", func(t *testing.T) {
		carol := newUser("carol", "carol@example.com")
		e := newEnv(t, carol)
		federation := &mockFederationRepository{}
		federation.On("GetProviderByName", ctx, "corp").Return(provider, nil)
		federation.On("GetIdentity", ctx, provider.ID, "sub-new").Return(nil, authDomain.ErrFederatedIdentityNotFound)
		federator := &stubFederator{claims: &authDomain.IdentityClaims{Subject: "sub-new", Email: "carol@example.com"}}

		_, err := e.authenticator(federation, nil, federator).Authenticate(ctx, authDomain.MethodFederation, claim)

		assert.Equal(t, authDomain.ErrAuthenticationFailed, err)
	})

	t.Run("Error_UnknownProvider", func(t *testing.T) {
		e := newEnv(t)
		federation := &mockFederationRepository{}
		federation.On("GetProviderByName", ctx, "corp").Return(nil, authDomain.ErrOIDCProviderNotFound)

		_, err := e.authenticator(federation, nil, &stubFederator{}).Authenticate(ctx, authDomain.MethodFederation, claim)

		assert.Equal(t, authDomain.ErrAuthenticationFailed, err)
	})

	t.Run("Error_ProviderUnavailable", func(t *testing.T) {
		e := newEnv(t)
		federation := &mockFederationRepository{}
		federation.On("GetProviderByName", ctx, "corp").Return(provider, nil)
		federator := &stubFederator{err: resilience.ErrRetryExhausted}

		_, err := e.authenticator(federation, nil, federator).Authenticate(ctx, authDomain.MethodFederation, claim)

		assert.ErrorIs(t, err, resilience.ErrRetryExhausted)
	})
}
