package domain

// Permissions guarding the administration API. They are checked in the administration realm.
const (
	PermUserCreate = "user:create"
	PermUserRead   = "user:read"
	PermUserUpdate = "user:update"
	PermUserDelete = "user:delete"

	PermGroupCreate = "group:create"
	PermGroupRead   = "group:read"
	PermGroupUpdate = "group:update"
	PermGroupDelete = "group:delete"

	PermApplicationCreate = "application:create"
	PermApplicationRead   = "application:read"
	PermApplicationUpdate = "application:update"
	PermApplicationDelete = "application:delete"

	PermRealmCreate = "realm:create"
	PermRealmRead   = "realm:read"
	PermRealmDelete = "realm:delete"

	PermRoleCreate = "role:create"
	PermRoleRead   = "role:read"
	PermRoleUpdate = "role:update"
	PermRoleDelete = "role:delete"

	PermPermissionCreate = "permission:create"
	PermPermissionRead   = "permission:read"
	PermPermissionUpdate = "permission:update"
	PermPermissionDelete = "permission:delete"

	PermAssignmentCreate = "assignment:create"
	PermAssignmentRead   = "assignment:read"
	PermAssignmentDelete = "assignment:delete"

	PermInvitationCreate = "invitation:create"

	PermOIDCProviderCreate = "oidc_provider:create"
	PermOIDCProviderRead   = "oidc_provider:read"
	PermOIDCProviderUpdate = "oidc_provider:update"
	PermOIDCProviderDelete = "oidc_provider:delete"
)

// AdminRoleName is the role bootstrapped with every administration permission.
const AdminRoleName = "BOUNCR_ADMIN"

// AdminPermissions lists every permission of the administration API.
func AdminPermissions() []string {
	return []string{
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermGroupCreate, PermGroupRead, PermGroupUpdate, PermGroupDelete,
		PermApplicationCreate, PermApplicationRead, PermApplicationUpdate, PermApplicationDelete,
		PermRealmCreate, PermRealmRead, PermRealmDelete,
		PermRoleCreate, PermRoleRead, PermRoleUpdate, PermRoleDelete,
		PermPermissionCreate, PermPermissionRead, PermPermissionUpdate, PermPermissionDelete,
		PermAssignmentCreate, PermAssignmentRead, PermAssignmentDelete,
		PermInvitationCreate,
		PermOIDCProviderCreate, PermOIDCProviderRead, PermOIDCProviderUpdate, PermOIDCProviderDelete,
	}
}

// AdminBootstrapInput names the administration scope and the first administrator.
type AdminBootstrapInput struct {
	Application string
	Realm       string
	Account     string
	Email       string
	Name        string
}

// AdminBootstrap reports the entities backing the administration scope.
type AdminBootstrap struct {
	Application *Application
	Realm       *Realm
	Role        *Role
	User        *User

	// UserCreated is false when the account already existed.
	UserCreated bool
}
