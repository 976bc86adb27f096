package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/bouncr/iam/internal/auth/http"
	apperrors "github.com/bouncr/iam/internal/errors"
	"github.com/bouncr/iam/internal/httputil"
	"github.com/bouncr/iam/internal/rbac/http/dto"
	rbacUseCase "github.com/bouncr/iam/internal/rbac/usecase"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// PermissionCheckHandler answers permission questions for the signed-in user.
type PermissionCheckHandler struct {
	authorization rbacUseCase.AuthorizationUseCase
	logger        *slog.Logger
}

// NewPermissionCheckHandler creates a new permission check handler.
func NewPermissionCheckHandler(
	authorization rbacUseCase.AuthorizationUseCase,
	logger *slog.Logger,
) *PermissionCheckHandler {
	return &PermissionCheckHandler{authorization: authorization, logger: logger}
}

// CheckHandler reports whether the caller holds a permission in a realm, or lists the caller's
// permissions there when none is given. An unknown application or realm grants nothing.
// GET /bouncr/api/permission_check?application=&realm=&permission= - Requires authentication.
func (h *PermissionCheckHandler) CheckHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var query dto.PermissionCheckQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := query.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := rbacUseCase.WithMemo(c.Request.Context())
	response := dto.PermissionCheckResponse{
		Application: query.Application,
		Realm:       query.Realm,
		Permission:  query.Permission,
	}

	if query.Permission != "" {
		allowed, err := h.authorization.CheckPermission(
			ctx, principal.UserID, query.Application, query.Realm, query.Permission)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		response.Allowed = &allowed
	} else {
		permissions, err := h.authorization.EffectivePermissions(ctx, principal.UserID, query.Application, query.Realm)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		response.Permissions = permissions
	}

	c.JSON(http.StatusOK, response)
}
