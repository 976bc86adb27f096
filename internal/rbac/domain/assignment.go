package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/errors"
)

// SubjectType tells whether an assignment grants a role to a user or to a group.
type SubjectType string

const (
	SubjectUser  SubjectType = "user"
	SubjectGroup SubjectType = "group"
)

// ParseSubjectType validates s.
func ParseSubjectType(s string) (SubjectType, error) {
	switch t := SubjectType(s); t {
	case SubjectUser, SubjectGroup:
		return t, nil
	default:
		return "", errors.Wrapf(ErrInvalidSubjectType, "%q", s)
	}
}

// Assignment grants Role to a subject within Realm. (subject, role, realm) is unique.
type Assignment struct {
	ID          uuid.UUID
	SubjectType SubjectType
	SubjectID   uuid.UUID
	RoleID      uuid.UUID
	RealmID     uuid.UUID
	CreatedAt   time.Time
}

// NewAssignment builds an assignment with a fresh ID.
func NewAssignment(subjectType SubjectType, subjectID, roleID, realmID uuid.UUID) *Assignment {
	return &Assignment{
		ID:          uuid.Must(uuid.NewV7()),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		RoleID:      roleID,
		RealmID:     realmID,
		CreatedAt:   time.Now().UTC(),
	}
}

// Grant is an assignment resolved to its application and realm names.
type Grant struct {
	Application string
	Realm       string
	RoleID      uuid.UUID
}

// RealmKey qualifies a realm name with its application, e.g. "billing-app/prod".
func RealmKey(application, realm string) string {
	return application + "/" + realm
}
