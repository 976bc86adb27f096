package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bouncr/iam/internal/httputil"
	"github.com/bouncr/iam/internal/rbac/http/dto"
	rbacUseCase "github.com/bouncr/iam/internal/rbac/usecase"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// PermissionHandler handles permission administration.
type PermissionHandler struct {
	permissions rbacUseCase.PermissionUseCase
	logger      *slog.Logger
}

// NewPermissionHandler creates a new permission handler.
func NewPermissionHandler(permissions rbacUseCase.PermissionUseCase, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{permissions: permissions, logger: logger}
}

// CreateHandler creates a permission.
// POST /bouncr/api/permissions - Requires permission:create.
func (h *PermissionHandler) CreateHandler(c *gin.Context) {
	var req dto.PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	permission, err := h.permissions.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPermissionToResponse(permission))
}

// UpdateHandler renames a permission.
// PUT /bouncr/api/permissions/:id - Requires permission:update.
func (h *PermissionHandler) UpdateHandler(c *gin.Context) {
	permissionID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	permission, err := h.permissions.Update(c.Request.Context(), permissionID, req.Name, req.Description)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionToResponse(permission))
}

// GetHandler returns a permission.
// GET /bouncr/api/permissions/:id - Requires permission:read.
func (h *PermissionHandler) GetHandler(c *gin.Context) {
	permissionID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	permission, err := h.permissions.Get(c.Request.Context(), permissionID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionToResponse(permission))
}

// ListHandler returns a page of permissions.
// GET /bouncr/api/permissions?offset=0&limit=50 - Requires permission:read.
func (h *PermissionHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	permissions, err := h.permissions.List(c.Request.Context(), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionsToListResponse(permissions))
}

// DeleteHandler deletes a permission and removes it from every role.
// DELETE /bouncr/api/permissions/:id - Requires permission:delete.
func (h *PermissionHandler) DeleteHandler(c *gin.Context) {
	permissionID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.permissions.Delete(c.Request.Context(), permissionID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
