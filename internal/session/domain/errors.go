package domain

import (
	"github.com/bouncr/iam/internal/errors"
)

// Session errors.
var (
	// ErrTokenExpired indicates the token is past its expiry or unknown to the store. The store
	// cannot tell the two apart, so neither can callers.
	ErrTokenExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrTokenInvalid indicates the value cannot be a token this service issued.
	ErrTokenInvalid = errors.Wrap(errors.ErrUnauthorized, "token invalid")

	// ErrCodeExpired indicates the authorization code is unknown or past its TTL.
	ErrCodeExpired = errors.Wrap(errors.ErrGone, "authorization code expired")

	// ErrAlreadyRedeemed indicates another caller redeemed the code first.
	ErrAlreadyRedeemed = errors.Wrap(errors.ErrConflict, "authorization code already redeemed")

	// ErrOIDCSessionExpired indicates the binding is unknown or past its TTL.
	ErrOIDCSessionExpired = errors.Wrap(errors.ErrGone, "oidc session expired")

	// ErrOIDCSessionNotOwned indicates the binding belongs to another user.
	ErrOIDCSessionNotOwned = errors.Wrap(errors.ErrForbidden, "oidc session belongs to another user")
)
