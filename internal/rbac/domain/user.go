// Package domain defines the users, groups and authorization entities of the directory.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a local account. A user without a password credential authenticates through
// federation or a directory only.
type User struct {
	ID              uuid.UUID
	Account         string
	Email           string
	Name            string
	ProfileVerified bool
	WriteProtected  bool
	CreatedAt       time.Time
}

// Group is a named set of users.
type Group struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

// CreateUserInput holds the fields accepted when creating a user.
type CreateUserInput struct {
	Account string
	Email   string
	Name    string
}

// UpdateUserInput holds the mutable profile fields of a user.
type UpdateUserInput struct {
	Email string
	Name  string
}

// NewUser builds a user with a fresh ID.
func NewUser(input *CreateUserInput) *User {
	return &User{
		ID:        uuid.Must(uuid.NewV7()),
		Account:   input.Account,
		Email:     input.Email,
		Name:      input.Name,
		CreatedAt: time.Now().UTC(),
	}
}
