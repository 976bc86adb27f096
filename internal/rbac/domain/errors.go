package domain

import (
	"github.com/bouncr/iam/internal/errors"
)

// Directory errors.
var (
	ErrUserNotFound        = errors.Wrap(errors.ErrNotFound, "user not found")
	ErrGroupNotFound       = errors.Wrap(errors.ErrNotFound, "group not found")
	ErrApplicationNotFound = errors.Wrap(errors.ErrNotFound, "application not found")
	ErrRealmNotFound       = errors.Wrap(errors.ErrNotFound, "realm not found")
	ErrRoleNotFound        = errors.Wrap(errors.ErrNotFound, "role not found")
	ErrPermissionNotFound  = errors.Wrap(errors.ErrNotFound, "permission not found")
	ErrAssignmentNotFound  = errors.Wrap(errors.ErrNotFound, "assignment not found")

	ErrAccountAlreadyExists     = errors.Wrap(errors.ErrConflict, "account already exists")
	ErrGroupAlreadyExists       = errors.Wrap(errors.ErrConflict, "group already exists")
	ErrApplicationAlreadyExists = errors.Wrap(errors.ErrConflict, "application already exists")
	ErrRealmAlreadyExists       = errors.Wrap(errors.ErrConflict, "realm already exists in application")
	ErrRoleAlreadyExists        = errors.Wrap(errors.ErrConflict, "role already exists")
	ErrPermissionAlreadyExists  = errors.Wrap(errors.ErrConflict, "permission already exists")
	ErrAssignmentAlreadyExists  = errors.Wrap(errors.ErrConflict, "assignment already exists")

	// ErrWriteProtected guards bootstrap entities against modification.
	ErrWriteProtected = errors.Wrap(errors.ErrForbidden, "entity is write protected")

	ErrInvalidSubjectType = errors.Wrap(errors.ErrInvalidInput, "invalid subject type")

	// ErrReferenceNotFound indicates a referenced user, group, role or realm does not exist.
	ErrReferenceNotFound = errors.Wrap(errors.ErrInvalidInput, "referenced entity does not exist")
)
