package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/bouncr/iam/internal/errors"
)

// passwordHasher implements PasswordHasher using Argon2id.
type passwordHasher struct {
	hasher *pwdhash.PasswordHasher
}

// Hash hashes a plain text password using Argon2id.
func (s *passwordHasher) Hash(plain string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plain))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

// Verify performs a constant-time comparison between a plain password and its hash.
func (s *passwordHasher) Verify(plain, hash string) bool {
	ok, err := s.hasher.Verify([]byte(plain), hash)
	if err != nil {
		return false
	}
	return ok
}

// NewPasswordHasher creates a PasswordHasher using the Moderate Argon2id policy.
func NewPasswordHasher() PasswordHasher {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passwordHasher{
		hasher: hasher,
	}
}
