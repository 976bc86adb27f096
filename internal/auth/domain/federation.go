package domain

import (
	"time"

	"github.com/google/uuid"
)

// OIDCProvider is an external OpenID Connect identity provider.
type OIDCProvider struct {
	ID                    uuid.UUID
	Name                  string
	ClientID              string
	ClientSecret          string //nolint:gosec // provider credential
	Scope                 string
	AuthorizationEndpoint string
	TokenEndpoint         string
	JWKSURI               string
	Issuer                string
	RedirectURI           string
	CreatedAt             time.Time
}

// OIDCProviderInput contains the writable attributes of a provider.
type OIDCProviderInput struct {
	Name                  string
	ClientID              string
	ClientSecret          string
	Scope                 string
	AuthorizationEndpoint string
	TokenEndpoint         string
	JWKSURI               string
	Issuer                string
	RedirectURI           string
}

// NewOIDCProvider creates a provider from input.
func NewOIDCProvider(input *OIDCProviderInput) *OIDCProvider {
	p := &OIDCProvider{
		ID:        uuid.Must(uuid.NewV7()),
		CreatedAt: time.Now().UTC(),
	}
	p.Apply(input)
	return p
}

// Apply copies input onto p.
func (p *OIDCProvider) Apply(input *OIDCProviderInput) {
	p.Name = input.Name
	p.ClientID = input.ClientID
	p.ClientSecret = input.ClientSecret
	p.Scope = input.Scope
	if p.Scope == "" {
		p.Scope = "openid email profile"
	}
	p.AuthorizationEndpoint = input.AuthorizationEndpoint
	p.TokenEndpoint = input.TokenEndpoint
	p.JWKSURI = input.JWKSURI
	p.Issuer = input.Issuer
	p.RedirectURI = input.RedirectURI
}

// FederatedIdentity links a provider subject to a local user.
type FederatedIdentity struct {
	ProviderID uuid.UUID
	Subject    string
	UserID     uuid.UUID
	CreatedAt  time.Time
}

// IdentityClaims are the verified ID token claims of a federated sign-in.
type IdentityClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	SessionID     string
}

// DirectoryEntry is the user entry returned by a successful directory bind.
type DirectoryEntry struct {
	DN      string
	Account string
	Email   string
	Name    string
	Groups  []string
}
