package domain

import (
	"time"

	"github.com/google/uuid"
)

// Application is a protected system. It owns its realms.
type Application struct {
	ID          uuid.UUID
	Name        string
	Description string
	PassTo      string
	CreatedAt   time.Time
}

// Realm is an authorization scope inside an application. Its name is unique within the
// application and URL is the path pattern it guards.
type Realm struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Name          string
	Description   string
	URL           string
	CreatedAt     time.Time
}

// Role groups permissions.
type Role struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

// Permission is an atomic action name such as "invoice:read".
type Permission struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}
