package domain

import (
	"time"

	"github.com/google/uuid"
)

// PasswordCredential is the hashed password owned by a user.
type PasswordCredential struct {
	UserID    uuid.UUID
	Hash      string
	Initial   bool // set by an administrator, the user is expected to change it
	CreatedAt time.Time
}

// OTPKey is the TOTP shared secret owned by a user. Secret is sealed at rest.
type OTPKey struct {
	UserID    uuid.UUID
	Secret    []byte
	CreatedAt time.Time
}

// OTPEnrollment is returned once when a key is created.
type OTPEnrollment struct {
	Secret string
	URI    string
}
