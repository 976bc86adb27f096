package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChallengeKind names a single-use, TTL-bound verification workflow.
type ChallengeKind string

const (
	ChallengePasswordReset       ChallengeKind = "password_reset"
	ChallengeInvitation          ChallengeKind = "invitation"
	ChallengeProfileVerification ChallengeKind = "profile_verification"
)

// Challenge is the payload stored under a challenge code. Consuming it is what makes the
// workflow's outcome true: a new password, a created account, a verified profile.
type Challenge struct {
	Kind     ChallengeKind `json:"kind"`
	UserID   uuid.UUID     `json:"user_id,omitempty"`
	Email    string        `json:"email,omitempty"`
	GroupIDs []uuid.UUID   `json:"group_ids,omitempty"`
	IssuedAt time.Time     `json:"issued_at"`
}

// IssuedChallenge is what the issuer hands out: the code and when it stops being usable.
type IssuedChallenge struct {
	Code      string
	ExpiresAt time.Time
}

// SignUpInput describes a new account. InvitationCode is optional when self sign-up is enabled.
type SignUpInput struct {
	Account        string
	Email          string
	Name           string
	Password       string
	InvitationCode string
}

// SignUpOutput is the created user and its profile verification challenge.
type SignUpOutput struct {
	UserID       uuid.UUID
	Account      string
	Verification *IssuedChallenge
}
