package service

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
)

const (
	backendIssuer = "bouncr"
	hkdfInfo      = "bouncr backend credential v1"
)

// BackendClaims is the payload of a backend credential.
type BackendClaims struct {
	Account     string              `json:"account"`
	Permissions map[string][]string `json:"permissions"`
	jwt.RegisteredClaims
}

type credentialSigner struct {
	key []byte
	ttl time.Duration
}

// NewCredentialSigner derives an HS256 signing key from secret with HKDF-SHA256.
func NewCredentialSigner(secret string, ttl time.Duration) (CredentialSigner, error) {
	if secret == "" {
		return nil, errors.New("backend credential secret is required")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive backend credential key: %w", err)
	}

	return &credentialSigner{key: key, ttl: ttl}, nil
}

func (s *credentialSigner) Sign(
	principal authDomain.Principal,
	permissions map[string][]string,
	now time.Time,
) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl)
	claims := BackendClaims{
		Account:     principal.Account,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    backendIssuer,
			Subject:   principal.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign backend credential: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *credentialSigner) Verify(token string, now time.Time) (*BackendClaims, error) {
	var claims BackendClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(backendIssuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify backend credential: %w", err)
	}
	return &claims, nil
}
