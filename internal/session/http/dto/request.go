// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	sessionDomain "github.com/bouncr/iam/internal/session/domain"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// AuthorizationCodeRequest describes the client the code is issued to.
type AuthorizationCodeRequest struct {
	ClientID    string `json:"client_id"`
	Scope       string `json:"scope"`
	RedirectURI string `json:"redirect_uri"`
}

// Validate checks if the authorization code request is valid.
func (r *AuthorizationCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Scope, validation.Length(0, 1024)),
		validation.Field(&r.RedirectURI, customValidation.HTTPURL),
	)
}

// Client converts the request into the client context stored with the code.
func (r *AuthorizationCodeRequest) Client() sessionDomain.ClientContext {
	return sessionDomain.ClientContext{
		ClientID:    r.ClientID,
		Scope:       r.Scope,
		RedirectURI: r.RedirectURI,
	}
}

// RedeemRequest carries the authorization code to redeem.
type RedeemRequest struct {
	Code string `json:"code"`
}

// Validate checks if the redeem request is valid.
func (r *RedeemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code, validation.Required, customValidation.NotBlank),
	)
}
