// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// SignInRequest carries a password or directory credential claim.
type SignInRequest struct {
	Method          string `json:"method"`
	Account         string `json:"account"`
	Password        string `json:"password"` //nolint:gosec // plaintext claim, never persisted
	OneTimePassword string `json:"one_time_password"`
}

// Validate checks if the sign-in request is valid.
func (r *SignInRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Method, validation.In("", "password", "directory")),
		validation.Field(&r.Account, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.OneTimePassword, customValidation.Digits, validation.Length(6, 8)),
	)
}

// Claim converts the request into a credential claim and its method.
func (r *SignInRequest) Claim() (authDomain.Method, *authDomain.CredentialClaim, error) {
	method := authDomain.MethodPassword
	if r.Method != "" {
		var err error
		if method, err = authDomain.ParseMethod(r.Method); err != nil {
			return "", nil, err
		}
	}
	return method, &authDomain.CredentialClaim{
		Account:         r.Account,
		Password:        r.Password,
		OneTimePassword: r.OneTimePassword,
	}, nil
}

// OIDCCallbackRequest carries the authorization code returned by a provider.
type OIDCCallbackRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

// Validate checks if the callback request is valid.
func (r *OIDCCallbackRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code, validation.Required, customValidation.NotBlank),
		validation.Field(&r.RedirectURI, customValidation.HTTPURL),
	)
}

// SignUpRequest contains the parameters for creating an account.
type SignUpRequest struct {
	Account        string `json:"account"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Password       string `json:"password"` //nolint:gosec // plaintext, hashed before storage
	InvitationCode string `json:"invitation_code"`
}

// Validate checks the account fields. The password policy is applied by the use case.
func (r *SignUpRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Account, validation.Required, customValidation.Account, validation.Length(2, 100)),
		validation.Field(&r.Email, validation.Required, customValidation.Email, validation.Length(3, 255)),
		validation.Field(&r.Name, validation.Length(0, 255)),
	)
}

// ChangePasswordRequest contains the current and the new password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"` //nolint:gosec // plaintext claim
	NewPassword string `json:"new_password"` //nolint:gosec // plaintext, hashed before storage
}

// Validate checks if the change password request is valid.
func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// ResetCodeRequest asks for a password reset challenge.
type ResetCodeRequest struct {
	Account string `json:"account"`
}

// Validate checks if the reset code request is valid.
func (r *ResetCodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Account, validation.Required, customValidation.NotBlank),
	)
}

// ResetPasswordRequest redeems a reset challenge.
type ResetPasswordRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"new_password"` //nolint:gosec // plaintext, hashed before storage
}

// Validate checks if the reset request is valid.
func (r *ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code, validation.Required, customValidation.NotBlank),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// VerifyProfileRequest redeems a profile verification challenge.
type VerifyProfileRequest struct {
	Code string `json:"code"`
}

// Validate checks if the verification request is valid.
func (r *VerifyProfileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Code, validation.Required, customValidation.NotBlank),
	)
}

// InvitationRequest contains the invitee email and the groups to join.
type InvitationRequest struct {
	Email    string   `json:"email"`
	GroupIDs []string `json:"group_ids"`
}

// Validate checks if the invitation request is valid.
func (r *InvitationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.GroupIDs, validation.Each(customValidation.UUID)),
	)
}

// OIDCProviderRequest contains the writable attributes of an OIDC provider.
type OIDCProviderRequest struct {
	Name                  string `json:"name"`
	ClientID              string `json:"client_id"`
	ClientSecret          string `json:"client_secret"` //nolint:gosec // provider credential
	Scope                 string `json:"scope"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
	Issuer                string `json:"issuer"`
	RedirectURI           string `json:"redirect_uri"`
}

// Validate checks if the provider request is valid. requireSecret is false on update, where an
// empty secret keeps the stored one.
func (r *OIDCProviderRequest) Validate(requireSecret bool) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.Account, validation.Length(1, 100)),
		validation.Field(&r.ClientID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.ClientSecret, validation.When(requireSecret, validation.Required)),
		validation.Field(&r.AuthorizationEndpoint, validation.Required, customValidation.HTTPURL),
		validation.Field(&r.TokenEndpoint, validation.Required, customValidation.HTTPURL),
		validation.Field(&r.JWKSURI, validation.Required, customValidation.HTTPURL),
		validation.Field(&r.Issuer, validation.Required, customValidation.NotBlank),
		validation.Field(&r.RedirectURI, validation.Required, customValidation.HTTPURL),
	)
}

// Input converts the request into the domain input.
func (r *OIDCProviderRequest) Input() *authDomain.OIDCProviderInput {
	return &authDomain.OIDCProviderInput{
		Name:                  r.Name,
		ClientID:              r.ClientID,
		ClientSecret:          r.ClientSecret,
		Scope:                 r.Scope,
		AuthorizationEndpoint: r.AuthorizationEndpoint,
		TokenEndpoint:         r.TokenEndpoint,
		JWKSURI:               r.JWKSURI,
		Issuer:                r.Issuer,
		RedirectURI:           r.RedirectURI,
	}
}
