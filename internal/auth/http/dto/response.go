package dto

import (
	"time"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
)

// SignInResponse contains the session token. The token is only returned once.
type SignInResponse struct {
	Token         string    `json:"token"` //nolint:gosec // returned once on sign-in
	ExpiresAt     time.Time `json:"expires_at"`
	Account       string    `json:"account"`
	OIDCSessionID string    `json:"oidc_session_id,omitempty"`
}

// SignUpResponse describes the created account.
type SignUpResponse struct {
	ID                    string     `json:"id"`
	Account               string     `json:"account"`
	VerificationExpiresAt *time.Time `json:"verification_expires_at,omitempty"`
}

// ChallengeResponse tells when an issued challenge stops being usable. The code itself is
// delivered out of band.
type ChallengeResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// InvitationResponse is returned to the administrator who issued the invitation.
type InvitationResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OTPEnrollmentResponse carries the new secret and its provisioning URI.
type OTPEnrollmentResponse struct {
	Secret string `json:"secret"` //nolint:gosec // shown once for enrollment
	URI    string `json:"uri"`
}

// OIDCProviderResponse represents a provider in API responses (excludes the client secret).
type OIDCProviderResponse struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	ClientID              string    `json:"client_id"`
	Scope                 string    `json:"scope"`
	AuthorizationEndpoint string    `json:"authorization_endpoint"`
	TokenEndpoint         string    `json:"token_endpoint"`
	JWKSURI               string    `json:"jwks_uri"`
	Issuer                string    `json:"issuer"`
	RedirectURI           string    `json:"redirect_uri"`
	CreatedAt             time.Time `json:"created_at"`
}

// MapOIDCProviderToResponse converts a domain provider to an API response.
func MapOIDCProviderToResponse(provider *authDomain.OIDCProvider) OIDCProviderResponse {
	return OIDCProviderResponse{
		ID:                    provider.ID.String(),
		Name:                  provider.Name,
		ClientID:              provider.ClientID,
		Scope:                 provider.Scope,
		AuthorizationEndpoint: provider.AuthorizationEndpoint,
		TokenEndpoint:         provider.TokenEndpoint,
		JWKSURI:               provider.JWKSURI,
		Issuer:                provider.Issuer,
		RedirectURI:           provider.RedirectURI,
		CreatedAt:             provider.CreatedAt,
	}
}

// ListOIDCProvidersResponse represents a page of providers.
type ListOIDCProvidersResponse struct {
	Data []OIDCProviderResponse `json:"data"`
}

// MapOIDCProvidersToListResponse converts domain providers to a list response.
func MapOIDCProvidersToListResponse(providers []*authDomain.OIDCProvider) ListOIDCProvidersResponse {
	data := make([]OIDCProviderResponse, 0, len(providers))
	for _, provider := range providers {
		data = append(data, MapOIDCProviderToResponse(provider))
	}
	return ListOIDCProvidersResponse{Data: data}
}
