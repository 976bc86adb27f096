package dto

import (
	"time"

	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID              string    `json:"id"`
	Account         string    `json:"account"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	ProfileVerified bool      `json:"profile_verified"`
	WriteProtected  bool      `json:"write_protected"`
	CreatedAt       time.Time `json:"created_at"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *rbacDomain.User) UserResponse {
	return UserResponse{
		ID:              user.ID.String(),
		Account:         user.Account,
		Email:           user.Email,
		Name:            user.Name,
		ProfileVerified: user.ProfileVerified,
		WriteProtected:  user.WriteProtected,
		CreatedAt:       user.CreatedAt,
	}
}

// ListUsersResponse represents a list of users.
type ListUsersResponse struct {
	Data []UserResponse `json:"data"`
}

// MapUsersToListResponse converts domain users to a list response.
func MapUsersToListResponse(users []*rbacDomain.User) ListUsersResponse {
	data := make([]UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, MapUserToResponse(user))
	}
	return ListUsersResponse{Data: data}
}

// NamedResponse represents a group, role or permission in API responses.
type NamedResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListNamedResponse represents a list of groups, roles or permissions.
type ListNamedResponse struct {
	Data []NamedResponse `json:"data"`
}

// MapGroupToResponse converts a domain group to an API response.
func MapGroupToResponse(group *rbacDomain.Group) NamedResponse {
	return NamedResponse{
		ID:          group.ID.String(),
		Name:        group.Name,
		Description: group.Description,
		CreatedAt:   group.CreatedAt,
	}
}

// MapGroupsToListResponse converts domain groups to a list response.
func MapGroupsToListResponse(groups []*rbacDomain.Group) ListNamedResponse {
	data := make([]NamedResponse, 0, len(groups))
	for _, group := range groups {
		data = append(data, MapGroupToResponse(group))
	}
	return ListNamedResponse{Data: data}
}

// MapRoleToResponse converts a domain role to an API response.
func MapRoleToResponse(role *rbacDomain.Role) NamedResponse {
	return NamedResponse{
		ID:          role.ID.String(),
		Name:        role.Name,
		Description: role.Description,
		CreatedAt:   role.CreatedAt,
	}
}

// MapRolesToListResponse converts domain roles to a list response.
func MapRolesToListResponse(roles []*rbacDomain.Role) ListNamedResponse {
	data := make([]NamedResponse, 0, len(roles))
	for _, role := range roles {
		data = append(data, MapRoleToResponse(role))
	}
	return ListNamedResponse{Data: data}
}

// MapPermissionToResponse converts a domain permission to an API response.
func MapPermissionToResponse(permission *rbacDomain.Permission) NamedResponse {
	return NamedResponse{
		ID:          permission.ID.String(),
		Name:        permission.Name,
		Description: permission.Description,
		CreatedAt:   permission.CreatedAt,
	}
}

// MapPermissionsToListResponse converts domain permissions to a list response.
func MapPermissionsToListResponse(permissions []*rbacDomain.Permission) ListNamedResponse {
	data := make([]NamedResponse, 0, len(permissions))
	for _, permission := range permissions {
		data = append(data, MapPermissionToResponse(permission))
	}
	return ListNamedResponse{Data: data}
}

// ApplicationResponse represents an application in API responses.
type ApplicationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PassTo      string    `json:"pass_to,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MapApplicationToResponse converts a domain application to an API response.
func MapApplicationToResponse(application *rbacDomain.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          application.ID.String(),
		Name:        application.Name,
		Description: application.Description,
		PassTo:      application.PassTo,
		CreatedAt:   application.CreatedAt,
	}
}

// ListApplicationsResponse represents a list of applications.
type ListApplicationsResponse struct {
	Data []ApplicationResponse `json:"data"`
}

// MapApplicationsToListResponse converts domain applications to a list response.
func MapApplicationsToListResponse(applications []*rbacDomain.Application) ListApplicationsResponse {
	data := make([]ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		data = append(data, MapApplicationToResponse(application))
	}
	return ListApplicationsResponse{Data: data}
}

// RealmResponse represents a realm in API responses.
type RealmResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	CreatedAt     time.Time `json:"created_at"`
}

// MapRealmToResponse converts a domain realm to an API response.
func MapRealmToResponse(realm *rbacDomain.Realm) RealmResponse {
	return RealmResponse{
		ID:            realm.ID.String(),
		ApplicationID: realm.ApplicationID.String(),
		Name:          realm.Name,
		Description:   realm.Description,
		URL:           realm.URL,
		CreatedAt:     realm.CreatedAt,
	}
}

// ListRealmsResponse represents the realms of an application.
type ListRealmsResponse struct {
	Data []RealmResponse `json:"data"`
}

// MapRealmsToListResponse converts domain realms to a list response.
func MapRealmsToListResponse(realms []*rbacDomain.Realm) ListRealmsResponse {
	data := make([]RealmResponse, 0, len(realms))
	for _, realm := range realms {
		data = append(data, MapRealmToResponse(realm))
	}
	return ListRealmsResponse{Data: data}
}

// AssignmentResponse represents an assignment in API responses.
type AssignmentResponse struct {
	ID          string    `json:"id"`
	SubjectType string    `json:"subject_type"`
	SubjectID   string    `json:"subject_id"`
	RoleID      string    `json:"role_id"`
	RealmID     string    `json:"realm_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// MapAssignmentToResponse converts a domain assignment to an API response.
func MapAssignmentToResponse(assignment *rbacDomain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          assignment.ID.String(),
		SubjectType: string(assignment.SubjectType),
		SubjectID:   assignment.SubjectID.String(),
		RoleID:      assignment.RoleID.String(),
		RealmID:     assignment.RealmID.String(),
		CreatedAt:   assignment.CreatedAt,
	}
}

// ListAssignmentsResponse represents the assignments of a realm.
type ListAssignmentsResponse struct {
	Data []AssignmentResponse `json:"data"`
}

// MapAssignmentsToListResponse converts domain assignments to a list response.
func MapAssignmentsToListResponse(assignments []*rbacDomain.Assignment) ListAssignmentsResponse {
	data := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		data = append(data, MapAssignmentToResponse(assignment))
	}
	return ListAssignmentsResponse{Data: data}
}

// PermissionCheckResponse answers a permission check. Allowed is set when a permission was
// asked for; Permissions lists the effective permissions otherwise.
type PermissionCheckResponse struct {
	Application string   `json:"application"`
	Realm       string   `json:"realm"`
	Permission  string   `json:"permission,omitempty"`
	Allowed     *bool    `json:"allowed,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}
