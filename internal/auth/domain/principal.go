package domain

import (
	"time"

	"github.com/google/uuid"
)

// CredentialClaim carries what a caller presents to authenticate. Only the fields of the
// declared method are read.
type CredentialClaim struct {
	Account         string
	Password        string //nolint:gosec // plaintext claim, never persisted
	OneTimePassword string

	Provider    string
	Code        string
	RedirectURI string
}

// Principal is the identity resolved by a successful authentication.
type Principal struct {
	UserID          uuid.UUID `json:"user_id"`
	Account         string    `json:"account"`
	Method          Method    `json:"method"`
	Provider        string    `json:"provider,omitempty"`
	AuthenticatedAt time.Time `json:"authenticated_at"`

	// ExternalSessionID is the provider's session id (the sid claim) of a federated sign-in.
	ExternalSessionID string `json:"external_session_id,omitempty"`
}
