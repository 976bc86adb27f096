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

// ApplicationHandler handles application and realm administration.
type ApplicationHandler struct {
	applications rbacUseCase.ApplicationUseCase
	logger       *slog.Logger
}

// NewApplicationHandler creates a new application handler.
func NewApplicationHandler(applications rbacUseCase.ApplicationUseCase, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, logger: logger}
}

// CreateHandler creates an application.
// POST /bouncr/api/applications - Requires application:create.
func (h *ApplicationHandler) CreateHandler(c *gin.Context) {
	var req dto.ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	application, err := h.applications.Create(c.Request.Context(), req.Name, req.Description, req.PassTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapApplicationToResponse(application))
}

// UpdateHandler updates an application.
// PUT /bouncr/api/applications/:id - Requires application:update.
func (h *ApplicationHandler) UpdateHandler(c *gin.Context) {
	applicationID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	application, err := h.applications.Update(c.Request.Context(), applicationID, req.Name, req.Description, req.PassTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapApplicationToResponse(application))
}

// GetHandler returns an application.
// GET /bouncr/api/applications/:id - Requires application:read.
func (h *ApplicationHandler) GetHandler(c *gin.Context) {
	applicationID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	application, err := h.applications.Get(c.Request.Context(), applicationID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapApplicationToResponse(application))
}

// ListHandler returns a page of applications.
// GET /bouncr/api/applications?offset=0&limit=50 - Requires application:read.
func (h *ApplicationHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	applications, err := h.applications.List(c.Request.Context(), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapApplicationsToListResponse(applications))
}

// DeleteHandler deletes an application with its realms and their assignments.
// DELETE /bouncr/api/applications/:id - Requires application:delete.
func (h *ApplicationHandler) DeleteHandler(c *gin.Context) {
	applicationID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.applications.Delete(c.Request.Context(), applicationID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateRealmHandler adds a realm to an application.
// POST /bouncr/api/applications/:id/realms - Requires realm:create.
// Returns 201 Created, 409 Conflict when the name is taken within the application.
func (h *ApplicationHandler) CreateRealmHandler(c *gin.Context) {
	applicationID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.RealmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	realm, err := h.applications.CreateRealm(c.Request.Context(), applicationID, req.Name, req.Description, req.URL)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRealmToResponse(realm))
}

// ListRealmsHandler returns the realms of an application.
// GET /bouncr/api/applications/:id/realms - Requires realm:read.
func (h *ApplicationHandler) ListRealmsHandler(c *gin.Context) {
	applicationID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	realms, err := h.applications.ListRealms(c.Request.Context(), applicationID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRealmsToListResponse(realms))
}

// DeleteRealmHandler deletes a realm and its assignments.
// DELETE /bouncr/api/applications/:id/realms/:realm_id - Requires realm:delete.
func (h *ApplicationHandler) DeleteRealmHandler(c *gin.Context) {
	applicationID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}
	realmID, ok := parseUUIDParam(c, "realm_id", h.logger)
	if !ok {
		return
	}

	if err := h.applications.DeleteRealm(c.Request.Context(), applicationID, realmID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
