// Package domain defines lifecycle events delivered to registered hooks.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/errors"
)

// EventKind names a lifecycle event.
type EventKind string

const (
	// EventSignIn fires after a successful authentication.
	EventSignIn EventKind = "sign_in"
	// EventSignOut fires after a session token is revoked.
	EventSignOut EventKind = "sign_out"
	// EventUserCreated fires after a user is created by sign-up, provisioning or administration.
	EventUserCreated EventKind = "user_created"
	// EventRoleAssigned fires after an assignment is created.
	EventRoleAssigned EventKind = "role_assigned"
	// EventPasswordChanged fires after a password is set, changed or reset.
	EventPasswordChanged EventKind = "password_changed"
	// EventChallengeIssued carries a reset, invitation or verification code to the hook that
	// delivers it out of band.
	EventChallengeIssued EventKind = "challenge_issued"
)

// ErrUnknownEventKind indicates an event kind outside the known set.
var ErrUnknownEventKind = errors.Wrap(errors.ErrInvalidInput, "unknown event kind")

// EventKinds returns every known event kind.
func EventKinds() []EventKind {
	return []EventKind{
		EventSignIn, EventSignOut, EventUserCreated, EventRoleAssigned, EventPasswordChanged,
		EventChallengeIssued,
	}
}

// ParseEventKind validates s against the known event kinds.
func ParseEventKind(s string) (EventKind, error) {
	switch kind := EventKind(s); kind {
	case EventSignIn, EventSignOut, EventUserCreated, EventRoleAssigned, EventPasswordChanged,
		EventChallengeIssued:
		return kind, nil
	default:
		return "", errors.Wrapf(ErrUnknownEventKind, "%q", s)
	}
}

// Event is a single lifecycle notification.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Kind       EventKind      `json:"kind"`
	Subject    string         `json:"subject"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEvent creates an event with a fresh ID. Subject is usually the account name.
func NewEvent(kind EventKind, subject string, payload map[string]any) *Event {
	return &Event{
		ID:         uuid.Must(uuid.NewV7()),
		Kind:       kind,
		Subject:    subject,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}
