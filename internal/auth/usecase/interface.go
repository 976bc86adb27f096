// Package usecase implements authentication, credential management and the verification
// workflows: password reset, invitations and profile verification.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

// UserDirectory is the part of the user store authentication depends on.
type UserDirectory interface {
	Create(ctx context.Context, user *rbacDomain.User) error
	Get(ctx context.Context, userID uuid.UUID) (*rbacDomain.User, error)
	GetByAccount(ctx context.Context, account string) (*rbacDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*rbacDomain.User, error)
	SetProfileVerified(ctx context.Context, userID uuid.UUID, verified bool) error
}

// GroupMembership adds users to groups.
type GroupMembership interface {
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
}

// TokenGenerator creates the random codes handed out by challenges.
type TokenGenerator interface {
	GenerateToken() (plainToken string, tokenHash string, err error)
	HashToken(plainToken string) string
}

// CredentialRepository persists passwords and OTP keys.
type CredentialRepository interface {
	UpsertPassword(ctx context.Context, credential *authDomain.PasswordCredential) error
	GetPassword(ctx context.Context, userID uuid.UUID) (*authDomain.PasswordCredential, error)
	DeletePassword(ctx context.Context, userID uuid.UUID) error

	UpsertOTPKey(ctx context.Context, key *authDomain.OTPKey) error
	GetOTPKey(ctx context.Context, userID uuid.UUID) (*authDomain.OTPKey, error)
	DeleteOTPKey(ctx context.Context, userID uuid.UUID) error
}

// FederationRepository persists OIDC providers and the identities linked through them.
type FederationRepository interface {
	CreateProvider(ctx context.Context, provider *authDomain.OIDCProvider) error
	UpdateProvider(ctx context.Context, provider *authDomain.OIDCProvider) error
	GetProvider(ctx context.Context, providerID uuid.UUID) (*authDomain.OIDCProvider, error)
	GetProviderByName(ctx context.Context, name string) (*authDomain.OIDCProvider, error)
	ListProviders(ctx context.Context, offset, limit int) ([]*authDomain.OIDCProvider, error)
	DeleteProvider(ctx context.Context, providerID uuid.UUID) error

	LinkIdentity(ctx context.Context, identity *authDomain.FederatedIdentity) error
	GetIdentity(ctx context.Context, providerID uuid.UUID, subject string) (*authDomain.FederatedIdentity, error)
}

// ChallengeRepository stores single-use challenges under the hash of their code.
type ChallengeRepository interface {
	// Issue stores challenge and invalidates the previous one of the same kind and subject.
	Issue(ctx context.Context, codeHash string, challenge *authDomain.Challenge, ttl time.Duration) error

	// Peek returns the challenge without consuming it.
	Peek(ctx context.Context, codeHash string) (*authDomain.Challenge, error)

	// Consume removes the challenge atomically; exactly one caller wins.
	Consume(ctx context.Context, codeHash string, tombstoneTTL time.Duration) (*authDomain.Challenge, error)
}

// AttemptRepository tracks failed sign-ins and accepted one-time passwords.
type AttemptRepository interface {
	RecordFailure(ctx context.Context, account string, window time.Duration) (int64, error)
	Failures(ctx context.Context, account string) (int64, error)
	ResetFailures(ctx context.Context, account string) error
	MarkOTPUsed(ctx context.Context, userID uuid.UUID, code string, window time.Duration) (bool, error)
}

// Authenticator resolves a Principal from a credential claim.
type Authenticator interface {
	// Authenticate dispatches on method. Credential mismatches of any kind yield
	// ErrAuthenticationFailed; an unreachable directory or provider yields an ErrUnavailable.
	Authenticate(
		ctx context.Context,
		method authDomain.Method,
		claim *authDomain.CredentialClaim,
	) (*authDomain.Principal, error)
}

// CredentialUseCase manages passwords, OTP keys and password reset.
type CredentialUseCase interface {
	// SetPassword stores password for userID after checking the password policy.
	SetPassword(ctx context.Context, userID uuid.UUID, password string, initial bool) error

	// VerifyPassword reports whether plaintext matches the stored password. A user without a
	// password never matches.
	VerifyPassword(ctx context.Context, userID uuid.UUID, plaintext string) (bool, error)

	// ChangePassword replaces the password after verifying the current one.
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error

	// IssueResetChallenge invalidates any earlier reset challenge of the account.
	IssueResetChallenge(ctx context.Context, account string) (*authDomain.IssuedChallenge, error)

	// ConsumeResetChallenge replaces the password and consumes the challenge in one step.
	ConsumeResetChallenge(ctx context.Context, code, password string) error

	// EnrollOTP creates a new key for userID, replacing the current one.
	EnrollOTP(ctx context.Context, userID uuid.UUID) (*authDomain.OTPEnrollment, error)

	// VerifyOTP checks code against the user's key and rejects its replay within the window.
	VerifyOTP(ctx context.Context, userID uuid.UUID, code string) error

	DisableOTP(ctx context.Context, userID uuid.UUID) error
	HasOTP(ctx context.Context, userID uuid.UUID) (bool, error)
}

// ChallengeUseCase runs the invitation, sign-up and profile verification workflows.
type ChallengeUseCase interface {
	// Invite issues an invitation for email that joins the new user to groupIDs.
	Invite(ctx context.Context, email string, groupIDs []uuid.UUID) (*authDomain.IssuedChallenge, error)

	SignUp(ctx context.Context, input *authDomain.SignUpInput) (*authDomain.SignUpOutput, error)
	IssueProfileVerification(ctx context.Context, userID uuid.UUID) (*authDomain.IssuedChallenge, error)
	VerifyProfile(ctx context.Context, code string) error
}

// OIDCProviderUseCase manages OIDC providers.
type OIDCProviderUseCase interface {
	Create(ctx context.Context, input *authDomain.OIDCProviderInput) (*authDomain.OIDCProvider, error)
	Update(
		ctx context.Context,
		providerID uuid.UUID,
		input *authDomain.OIDCProviderInput,
	) (*authDomain.OIDCProvider, error)
	Get(ctx context.Context, providerID uuid.UUID) (*authDomain.OIDCProvider, error)
	List(ctx context.Context, offset, limit int) ([]*authDomain.OIDCProvider, error)
	Delete(ctx context.Context, providerID uuid.UUID) error

	// AuthorizationURL returns where to send the browser to sign in with the named provider.
	AuthorizationURL(ctx context.Context, name, state string) (string, error)
}
