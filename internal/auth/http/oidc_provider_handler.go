package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/auth/http/dto"
	authUseCase "github.com/bouncr/iam/internal/auth/usecase"
	"github.com/bouncr/iam/internal/httputil"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// OIDCProviderHandler handles OIDC provider administration.
type OIDCProviderHandler struct {
	providers authUseCase.OIDCProviderUseCase
	logger    *slog.Logger
}

// NewOIDCProviderHandler creates a new OIDC provider handler.
func NewOIDCProviderHandler(providers authUseCase.OIDCProviderUseCase, logger *slog.Logger) *OIDCProviderHandler {
	return &OIDCProviderHandler{providers: providers, logger: logger}
}

// CreateHandler registers a provider.
// POST /bouncr/api/oidc_providers - Requires oidc_provider:create.
// Returns 201 Created, 409 Conflict when the name is taken.
func (h *OIDCProviderHandler) CreateHandler(c *gin.Context) {
	var req dto.OIDCProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(true); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	provider, err := h.providers.Create(c.Request.Context(), req.Input())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapOIDCProviderToResponse(provider))
}

// UpdateHandler replaces a provider's settings. An empty client secret keeps the stored one.
// PUT /bouncr/api/oidc_providers/:id - Requires oidc_provider:update.
func (h *OIDCProviderHandler) UpdateHandler(c *gin.Context) {
	providerID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.OIDCProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(false); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	provider, err := h.providers.Update(c.Request.Context(), providerID, req.Input())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOIDCProviderToResponse(provider))
}

// GetHandler returns a provider without its client secret.
// GET /bouncr/api/oidc_providers/:id - Requires oidc_provider:read.
func (h *OIDCProviderHandler) GetHandler(c *gin.Context) {
	providerID, ok := h.parseID(c)
	if !ok {
		return
	}

	provider, err := h.providers.Get(c.Request.Context(), providerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOIDCProviderToResponse(provider))
}

// ListHandler returns a page of providers.
// GET /bouncr/api/oidc_providers?offset=0&limit=50 - Requires oidc_provider:read.
func (h *OIDCProviderHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	providers, err := h.providers.List(c.Request.Context(), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOIDCProvidersToListResponse(providers))
}

// DeleteHandler removes a provider and the identities linked through it.
// DELETE /bouncr/api/oidc_providers/:id - Requires oidc_provider:delete.
func (h *OIDCProviderHandler) DeleteHandler(c *gin.Context) {
	providerID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.providers.Delete(c.Request.Context(), providerID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *OIDCProviderHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return uuid.Nil, false
	}
	return providerID, true
}
