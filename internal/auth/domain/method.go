// Package domain defines the authentication models: credential claims, resolved principals,
// password and one-time password credentials, federation providers and single-use challenges.
package domain

import (
	"strings"

	"github.com/bouncr/iam/internal/errors"
)

// Method selects the authentication path of a credential claim.
type Method string

const (
	// MethodPassword verifies a local password and, when enrolled, a one-time password.
	MethodPassword Method = "password"

	// MethodDirectory binds against the LDAP directory.
	MethodDirectory Method = "directory"

	// MethodFederation exchanges an authorization code with an OIDC provider.
	MethodFederation Method = "federation"
)

// ErrUnsupportedMethod indicates a claim declared an unknown or disabled method.
var ErrUnsupportedMethod = errors.Wrap(errors.ErrInvalidInput, "unsupported authentication method")

// ParseMethod converts s to a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodPassword, MethodDirectory, MethodFederation:
		return m, nil
	case "":
		return MethodPassword, nil
	default:
		return "", ErrUnsupportedMethod
	}
}
