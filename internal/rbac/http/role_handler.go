package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/httputil"
	"github.com/bouncr/iam/internal/rbac/http/dto"
	rbacUseCase "github.com/bouncr/iam/internal/rbac/usecase"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// RoleHandler handles role administration and the permissions a role grants.
type RoleHandler struct {
	roles  rbacUseCase.RoleUseCase
	logger *slog.Logger
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(roles rbacUseCase.RoleUseCase, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{roles: roles, logger: logger}
}

// CreateHandler creates a role.
// POST /bouncr/api/roles - Requires role:create.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roles.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRoleToResponse(role))
}

// UpdateHandler renames a role.
// PUT /bouncr/api/roles/:id - Requires role:update.
func (h *RoleHandler) UpdateHandler(c *gin.Context) {
	roleID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roles.Update(c.Request.Context(), roleID, req.Name, req.Description)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// GetHandler returns a role.
// GET /bouncr/api/roles/:id - Requires role:read.
func (h *RoleHandler) GetHandler(c *gin.Context) {
	roleID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	role, err := h.roles.Get(c.Request.Context(), roleID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// ListHandler returns a page of roles.
// GET /bouncr/api/roles?offset=0&limit=50 - Requires role:read.
func (h *RoleHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	roles, err := h.roles.List(c.Request.Context(), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRolesToListResponse(roles))
}

// DeleteHandler deletes a role and the assignments that grant it.
// DELETE /bouncr/api/roles/:id - Requires role:delete.
func (h *RoleHandler) DeleteHandler(c *gin.Context) {
	roleID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.roles.Delete(c.Request.Context(), roleID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddPermissionHandler grants a permission through a role.
// POST /bouncr/api/roles/:id/permissions - Requires role:update.
func (h *RoleHandler) AddPermissionHandler(c *gin.Context) {
	roleID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.RolePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.roles.AddPermission(c.Request.Context(), roleID, uuid.MustParse(req.PermissionID)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemovePermissionHandler revokes a permission from a role.
// DELETE /bouncr/api/roles/:id/permissions/:permission_id - Requires role:update.
func (h *RoleHandler) RemovePermissionHandler(c *gin.Context) {
	roleID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}
	permissionID, ok := parseUUIDParam(c, "permission_id", h.logger)
	if !ok {
		return
	}

	if err := h.roles.RemovePermission(c.Request.Context(), roleID, permissionID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPermissionsHandler returns the permissions of a role.
// GET /bouncr/api/roles/:id/permissions - Requires role:read.
func (h *RoleHandler) ListPermissionsHandler(c *gin.Context) {
	roleID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	permissions, err := h.roles.ListPermissions(c.Request.Context(), roleID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionsToListResponse(permissions))
}
