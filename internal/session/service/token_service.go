package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/bouncr/iam/internal/errors"
)

const tokenBytes = 32

// tokenService implements TokenService with 256-bit random tokens hashed with SHA-256.
type tokenService struct{}

// GenerateToken creates a base64 URL-encoded random token and its SHA-256 hash.
func (t *tokenService) GenerateToken() (plainToken string, tokenHash string, err error) {
	randomBytes := make([]byte, tokenBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken = base64.RawURLEncoding.EncodeToString(randomBytes)
	return plainToken, t.HashToken(plainToken), nil
}

// HashToken hashes a plain text token using SHA-256 and returns it hex encoded.
func (t *tokenService) HashToken(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(hash[:])
}

func (t *tokenService) WellFormed(plainToken string) bool {
	if len(plainToken) != base64.RawURLEncoding.EncodedLen(tokenBytes) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(plainToken)
	return err == nil
}

// NewTokenService creates a new TokenService.
func NewTokenService() TokenService {
	return &tokenService{}
}
