// Package service provides token generation and the signed backend credential.
package service

import (
	"time"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
)

// TokenService generates opaque tokens and the hashes under which they are stored.
// Implementations must use a cryptographically secure random source.
type TokenService interface {
	// GenerateToken returns a new random token and its hash. Only the hash is persisted.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken returns the storage key for plainToken.
	HashToken(plainToken string) string

	// WellFormed reports whether plainToken has the shape of a generated token.
	WellFormed(plainToken string) bool
}

// CredentialSigner signs the backend credential passed to protected applications.
type CredentialSigner interface {
	// Sign returns a compact JWS asserting principal and its permissions by realm.
	Sign(principal authDomain.Principal, permissions map[string][]string, now time.Time) (string, time.Time, error)

	// Verify parses a credential produced by Sign.
	Verify(token string, now time.Time) (*BackendClaims, error)
}
