package dto

import (
	"time"

	sessionDomain "github.com/bouncr/iam/internal/session/domain"
)

// SessionResponse describes a live session. The token itself is never echoed.
type SessionResponse struct {
	UserID    string    `json:"user_id"`
	Account   string    `json:"account"`
	Method    string    `json:"method"`
	Provider  string    `json:"provider,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapSessionToResponse converts a session to an API response.
func MapSessionToResponse(session *sessionDomain.Session) SessionResponse {
	return SessionResponse{
		UserID:    session.Principal.UserID.String(),
		Account:   session.Principal.Account,
		Method:    string(session.Principal.Method),
		Provider:  session.Principal.Provider,
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
	}
}

// AuthorizationCodeResponse carries a freshly minted code. It is only returned once.
type AuthorizationCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedeemResponse describes who the redeemed code was issued for and to which client.
type RedeemResponse struct {
	UserID      string    `json:"user_id"`
	Account     string    `json:"account"`
	ClientID    string    `json:"client_id"`
	Scope       string    `json:"scope,omitempty"`
	RedirectURI string    `json:"redirect_uri,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

// MapAuthorizationCodeToResponse converts a redeemed code to an API response.
func MapAuthorizationCodeToResponse(code *sessionDomain.AuthorizationCode) RedeemResponse {
	return RedeemResponse{
		UserID:      code.Principal.UserID.String(),
		Account:     code.Principal.Account,
		ClientID:    code.Client.ClientID,
		Scope:       code.Client.Scope,
		RedirectURI: code.Client.RedirectURI,
		IssuedAt:    code.IssuedAt,
	}
}

// OIDCSessionResponse describes an OIDC session binding.
type OIDCSessionResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	UserID     string    `json:"user_id"`
	Provider   string    `json:"provider"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// MapOIDCSessionToResponse converts a binding to an API response.
func MapOIDCSessionToResponse(session *sessionDomain.OIDCSession) OIDCSessionResponse {
	return OIDCSessionResponse{
		ID:         session.ID,
		ExternalID: session.ExternalID,
		UserID:     session.UserID.String(),
		Provider:   session.Provider,
		ExpiresAt:  session.ExpiresAt,
	}
}

// BackendCredentialResponse tells when the credential in the response header expires.
type BackendCredentialResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}
