// Package service provides the technical services behind authentication: password hashing,
// sealing of secrets at rest, TOTP, and the clients for LDAP directories and OIDC providers.
//
// Clients for external identity sources run every network call through a resilience.Policy.
// Remote rejections are marked with resilience.Rejection so they are neither retried nor
// counted against the circuit breaker.
package service

import (
	"context"
	"time"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a PHC formatted hash of plain.
	Hash(plain string) (string, error)

	// Verify compares plain against hash in constant time.
	Verify(plain, hash string) bool
}

// SecretSealer encrypts small secrets before they are persisted.
type SecretSealer interface {
	Seal(ctx context.Context, plaintext []byte) ([]byte, error)
	Open(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// OTPService generates and validates time-based one-time passwords.
type OTPService interface {
	// Generate creates a new secret for account.
	Generate(account string) (*authDomain.OTPEnrollment, error)

	// Validate checks code against secret at t, tolerating the configured skew.
	Validate(code, secret string, t time.Time) bool

	// Window is how long an accepted code stays valid, used to reject its replay.
	Window() time.Duration
}

// DirectoryClient authenticates accounts against an LDAP directory.
type DirectoryClient interface {
	Authenticate(ctx context.Context, account, password string) (*authDomain.DirectoryEntry, error)
}

// FederationClient exchanges OIDC authorization codes for verified identity claims.
type FederationClient interface {
	// AuthCodeURL returns the provider's authorization URL for state.
	AuthCodeURL(provider *authDomain.OIDCProvider, state string) string

	// Exchange redeems code and verifies the returned ID token.
	Exchange(
		ctx context.Context,
		provider *authDomain.OIDCProvider,
		code, redirectURI string,
	) (*authDomain.IdentityClaims, error)
}
