// Package dto provides data transfer objects for the directory administration API.
package dto

import (
	validation "github.com/jellydator/validation"

	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// CreateUserRequest contains the parameters for creating a user. Password is optional; a user
// without one signs in through a directory or federation only.
type CreateUserRequest struct {
	Account  string `json:"account"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"` //nolint:gosec // plaintext, hashed before storage
}

// Validate checks if the create user request is valid.
func (r *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Account, validation.Required, customValidation.Account, validation.Length(2, 100)),
		validation.Field(&r.Email, validation.Required, customValidation.Email, validation.Length(3, 255)),
		validation.Field(&r.Name, validation.Length(0, 255)),
	)
}

// Input converts the request into the domain input.
func (r *CreateUserRequest) Input() *rbacDomain.CreateUserInput {
	return &rbacDomain.CreateUserInput{Account: r.Account, Email: r.Email, Name: r.Name}
}

// UpdateUserRequest contains the mutable profile fields of a user.
type UpdateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate checks if the update user request is valid.
func (r *UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.Email, validation.Length(3, 255)),
		validation.Field(&r.Name, validation.Length(0, 255)),
	)
}

// Input converts the request into the domain input.
func (r *UpdateUserRequest) Input() *rbacDomain.UpdateUserInput {
	return &rbacDomain.UpdateUserInput{Email: r.Email, Name: r.Name}
}

// NamedRequest is the body shared by groups, roles and permissions.
type NamedRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks name and description lengths.
func (r *NamedRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 255)),
	)
}

// PermissionRequest contains a permission name such as "user:read" and its description.
type PermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks the permission name format.
func (r *PermissionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.PermissionName, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 255)),
	)
}

// ApplicationRequest contains the writable attributes of an application.
type ApplicationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PassTo      string `json:"pass_to"`
}

// Validate checks if the application request is valid.
func (r *ApplicationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 255)),
		validation.Field(&r.PassTo, customValidation.HTTPURL),
	)
}

// RealmRequest contains the attributes of a realm.
type RealmRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Validate checks if the realm request is valid.
func (r *RealmRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 255)),
		validation.Field(&r.URL, validation.Required, validation.Length(1, 255)),
	)
}

// MemberRequest references a user to add to a group.
type MemberRequest struct {
	UserID string `json:"user_id"`
}

// Validate checks if the member request is valid.
func (r *MemberRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.UUID),
	)
}

// RolePermissionRequest references a permission to grant to a role.
type RolePermissionRequest struct {
	PermissionID string `json:"permission_id"`
}

// Validate checks if the role permission request is valid.
func (r *RolePermissionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PermissionID, validation.Required, customValidation.UUID),
	)
}

// AssignmentRequest grants a role to a user or group within a realm.
type AssignmentRequest struct {
	SubjectType string `json:"subject_type"`
	SubjectID   string `json:"subject_id"`
	RoleID      string `json:"role_id"`
	RealmID     string `json:"realm_id"`
}

// Validate checks if the assignment request is valid.
func (r *AssignmentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SubjectType, validation.Required,
			validation.In(string(rbacDomain.SubjectUser), string(rbacDomain.SubjectGroup))),
		validation.Field(&r.SubjectID, validation.Required, customValidation.UUID),
		validation.Field(&r.RoleID, validation.Required, customValidation.UUID),
		validation.Field(&r.RealmID, validation.Required, customValidation.UUID),
	)
}

// PermissionCheckQuery asks whether the caller holds a permission in a realm. Without a
// permission, the caller's effective permissions in the realm are listed.
type PermissionCheckQuery struct {
	Application string `form:"application"`
	Realm       string `form:"realm"`
	Permission  string `form:"permission"`
}

// Validate checks if the permission check query is valid.
func (r *PermissionCheckQuery) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Application, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Realm, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Permission, customValidation.PermissionName),
	)
}
