// Package usecase implements directory management and permission resolution.
package usecase

import (
	"context"

	"github.com/google/uuid"

	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *rbacDomain.User) error
	Update(ctx context.Context, user *rbacDomain.User) error

	// Get returns ErrUserNotFound if the user does not exist.
	Get(ctx context.Context, userID uuid.UUID) (*rbacDomain.User, error)
	GetByAccount(ctx context.Context, account string) (*rbacDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*rbacDomain.User, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// GroupRepository defines persistence operations for groups and their membership.
type GroupRepository interface {
	Create(ctx context.Context, group *rbacDomain.Group) error
	Update(ctx context.Context, group *rbacDomain.Group) error
	Get(ctx context.Context, groupID uuid.UUID) (*rbacDomain.Group, error)
	GetByName(ctx context.Context, name string) (*rbacDomain.Group, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.Group, error)
	Delete(ctx context.Context, groupID uuid.UUID) error

	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*rbacDomain.User, error)

	// ListGroupIDsByUser returns the groups userID belongs to.
	ListGroupIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ApplicationRepository defines persistence operations for applications and their realms.
type ApplicationRepository interface {
	Create(ctx context.Context, application *rbacDomain.Application) error
	Update(ctx context.Context, application *rbacDomain.Application) error
	Get(ctx context.Context, applicationID uuid.UUID) (*rbacDomain.Application, error)
	GetByName(ctx context.Context, name string) (*rbacDomain.Application, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.Application, error)
	Delete(ctx context.Context, applicationID uuid.UUID) error

	CreateRealm(ctx context.Context, realm *rbacDomain.Realm) error
	GetRealm(ctx context.Context, realmID uuid.UUID) (*rbacDomain.Realm, error)

	// GetRealmByName resolves a realm by application and realm name.
	GetRealmByName(ctx context.Context, application, realm string) (*rbacDomain.Realm, error)
	ListRealms(ctx context.Context, applicationID uuid.UUID) ([]*rbacDomain.Realm, error)
	DeleteRealm(ctx context.Context, realmID uuid.UUID) error
}

// RoleRepository defines persistence operations for roles and their permissions.
type RoleRepository interface {
	Create(ctx context.Context, role *rbacDomain.Role) error
	Update(ctx context.Context, role *rbacDomain.Role) error
	Get(ctx context.Context, roleID uuid.UUID) (*rbacDomain.Role, error)
	GetByName(ctx context.Context, name string) (*rbacDomain.Role, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error)
	Delete(ctx context.Context, roleID uuid.UUID) error

	AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error
	RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error
	ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*rbacDomain.Permission, error)

	// ListPermissionNames returns the distinct permission names held by any of roleIDs.
	ListPermissionNames(ctx context.Context, roleIDs []uuid.UUID) ([]string, error)
}

// PermissionRepository defines persistence operations for permissions.
type PermissionRepository interface {
	Create(ctx context.Context, permission *rbacDomain.Permission) error
	Update(ctx context.Context, permission *rbacDomain.Permission) error
	Get(ctx context.Context, permissionID uuid.UUID) (*rbacDomain.Permission, error)
	GetByName(ctx context.Context, name string) (*rbacDomain.Permission, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.Permission, error)
	Delete(ctx context.Context, permissionID uuid.UUID) error
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *rbacDomain.Assignment) error
	Get(ctx context.Context, assignmentID uuid.UUID) (*rbacDomain.Assignment, error)
	Delete(ctx context.Context, assignmentID uuid.UUID) error
	ListByRealm(ctx context.Context, realmID uuid.UUID) ([]*rbacDomain.Assignment, error)

	// ListRoleIDs returns the roles assigned in realmID to userID directly or to any of groupIDs.
	ListRoleIDs(ctx context.Context, realmID, userID uuid.UUID, groupIDs []uuid.UUID) ([]uuid.UUID, error)

	// ListGrants returns every assignment of userID or groupIDs across all realms.
	ListGrants(ctx context.Context, userID uuid.UUID, groupIDs []uuid.UUID) ([]rbacDomain.Grant, error)
}

// UserUseCase manages users.
type UserUseCase interface {
	Create(ctx context.Context, input *rbacDomain.CreateUserInput) (*rbacDomain.User, error)
	Update(ctx context.Context, userID uuid.UUID, input *rbacDomain.UpdateUserInput) (*rbacDomain.User, error)
	Get(ctx context.Context, userID uuid.UUID) (*rbacDomain.User, error)
	GetByAccount(ctx context.Context, account string) (*rbacDomain.User, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// GroupUseCase manages groups and membership.
type GroupUseCase interface {
	Create(ctx context.Context, name, description string) (*rbacDomain.Group, error)
	Update(ctx context.Context, groupID uuid.UUID, name, description string) (*rbacDomain.Group, error)
	Get(ctx context.Context, groupID uuid.UUID) (*rbacDomain.Group, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.Group, error)
	Delete(ctx context.Context, groupID uuid.UUID) error
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*rbacDomain.User, error)
}

// ApplicationUseCase manages applications and their realms.
type ApplicationUseCase interface {
	Create(ctx context.Context, name, description, passTo string) (*rbacDomain.Application, error)
	Update(
		ctx context.Context,
		applicationID uuid.UUID,
		name, description, passTo string,
	) (*rbacDomain.Application, error)
	Get(ctx context.Context, applicationID uuid.UUID) (*rbacDomain.Application, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.Application, error)
	Delete(ctx context.Context, applicationID uuid.UUID) error

	CreateRealm(
		ctx context.Context,
		applicationID uuid.UUID,
		name, description, url string,
	) (*rbacDomain.Realm, error)
	ListRealms(ctx context.Context, applicationID uuid.UUID) ([]*rbacDomain.Realm, error)
	DeleteRealm(ctx context.Context, applicationID, realmID uuid.UUID) error
}

// RoleUseCase manages roles and their permissions.
type RoleUseCase interface {
	Create(ctx context.Context, name, description string) (*rbacDomain.Role, error)
	Update(ctx context.Context, roleID uuid.UUID, name, description string) (*rbacDomain.Role, error)
	Get(ctx context.Context, roleID uuid.UUID) (*rbacDomain.Role, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.Role, error)
	Delete(ctx context.Context, roleID uuid.UUID) error
	AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error
	RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error
	ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*rbacDomain.Permission, error)
}

// PermissionUseCase manages permissions.
type PermissionUseCase interface {
	Create(ctx context.Context, name, description string) (*rbacDomain.Permission, error)
	Update(ctx context.Context, permissionID uuid.UUID, name, description string) (*rbacDomain.Permission, error)
	Get(ctx context.Context, permissionID uuid.UUID) (*rbacDomain.Permission, error)
	List(ctx context.Context, offset, limit int) ([]*rbacDomain.Permission, error)
	Delete(ctx context.Context, permissionID uuid.UUID) error
}

// AssignmentUseCase grants and revokes roles.
type AssignmentUseCase interface {
	// Create validates that subject, role and realm exist before inserting the assignment.
	Create(
		ctx context.Context,
		subjectType rbacDomain.SubjectType,
		subjectID, roleID, realmID uuid.UUID,
	) (*rbacDomain.Assignment, error)
	Delete(ctx context.Context, assignmentID uuid.UUID) error
	ListByRealm(ctx context.Context, realmID uuid.UUID) ([]*rbacDomain.Assignment, error)
}

// AuthorizationUseCase answers permission questions. All operations are read-only.
type AuthorizationUseCase interface {
	// CheckPermission reports whether userID holds permission in the realm of application.
	// An unknown application or realm yields false.
	CheckPermission(ctx context.Context, userID uuid.UUID, application, realm, permission string) (bool, error)

	// EffectivePermissions returns the sorted permission names userID holds in the realm.
	EffectivePermissions(ctx context.Context, userID uuid.UUID, application, realm string) ([]string, error)

	// PermissionsByRealm returns userID's permissions keyed by rbacDomain.RealmKey.
	PermissionsByRealm(ctx context.Context, userID uuid.UUID) (map[string][]string, error)
}
