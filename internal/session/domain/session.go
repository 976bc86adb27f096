// Package domain defines the short-lived artifacts minted after authentication: session tokens,
// authorization codes and OIDC session bindings. All of them live only in the key-value store.
package domain

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
)

// Session is the state stored under a session token. Its expiry is fixed at issue time.
type Session struct {
	Principal authDomain.Principal `json:"principal"`
	IssuedAt  time.Time            `json:"issued_at"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// IssuedToken is returned once to the caller; the store only keeps the token's hash.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// ClientContext describes the client an authorization code is issued to.
type ClientContext struct {
	ClientID    string `json:"client_id"`
	Scope       string `json:"scope,omitempty"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// AuthorizationCode is the state stored under a single-use code.
type AuthorizationCode struct {
	Client    ClientContext        `json:"client"`
	Principal authDomain.Principal `json:"principal"`
	IssuedAt  time.Time            `json:"issued_at"`
}

// OIDCSession binds a provider session to a local user. ID is minted locally and only its hash
// is stored; ExternalID is the provider's session identifier, which other relying parties see.
type OIDCSession struct {
	ID         string    `json:"-"`
	ExternalID string    `json:"external_id"`
	UserID     uuid.UUID `json:"user_id"`
	Provider   string    `json:"provider"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// BackendCredential is the signed assertion handed to protected backends.
type BackendCredential struct {
	Token     string
	ExpiresAt time.Time
}
