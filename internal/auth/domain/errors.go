package domain

import (
	"github.com/bouncr/iam/internal/errors"
)

// Authentication errors.
var (
	// ErrAuthenticationFailed is returned for every credential mismatch. It never tells which
	// factor was rejected or whether the account exists.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrUnauthorized, "authentication failed")

	// ErrOneTimePasswordRequired indicates the password matched and a one-time password must follow.
	ErrOneTimePasswordRequired = errors.Wrap(errors.ErrUnauthorized, "one-time password required")

	// ErrPasswordDisabled indicates password credentials are turned off.
	ErrPasswordDisabled = errors.Wrap(errors.ErrForbidden, "password credentials are disabled")

	// ErrSignUpDisabled indicates self sign-up is turned off and no invitation was presented.
	ErrSignUpDisabled = errors.Wrap(errors.ErrForbidden, "sign-up requires an invitation")

	// ErrInvitationMismatch indicates the invitation was issued for another email.
	ErrInvitationMismatch = errors.Wrap(errors.ErrForbidden, "invitation was issued for another email")

	// ErrPasswordCredentialNotFound indicates the user has no password.
	ErrPasswordCredentialNotFound = errors.Wrap(errors.ErrNotFound, "password credential not found")

	// ErrOTPKeyNotFound indicates the user has no one-time password key.
	ErrOTPKeyNotFound = errors.Wrap(errors.ErrNotFound, "otp key not found")

	// ErrOIDCProviderNotFound indicates the provider does not exist.
	ErrOIDCProviderNotFound = errors.Wrap(errors.ErrNotFound, "oidc provider not found")

	// ErrOIDCProviderAlreadyExists indicates a provider with the same name exists.
	ErrOIDCProviderAlreadyExists = errors.Wrap(errors.ErrConflict, "oidc provider already exists")

	// ErrFederatedIdentityNotFound indicates the provider subject is not linked to a user.
	ErrFederatedIdentityNotFound = errors.Wrap(errors.ErrNotFound, "federated identity not found")

	// ErrChallengeExpired indicates the code is unknown or its TTL elapsed.
	ErrChallengeExpired = errors.Wrap(errors.ErrGone, "challenge expired")

	// ErrChallengeConsumed indicates the code was already used.
	ErrChallengeConsumed = errors.Wrap(errors.ErrConflict, "challenge already consumed")

	// ErrWeakPassword wraps password policy violations.
	ErrWeakPassword = errors.Wrap(errors.ErrInvalidInput, "password does not meet policy")
)
