package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/bouncr/iam/internal/auth/usecase"
	"github.com/bouncr/iam/internal/httputil"
	"github.com/bouncr/iam/internal/rbac/http/dto"
	rbacUseCase "github.com/bouncr/iam/internal/rbac/usecase"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// UserHandler handles user administration.
type UserHandler struct {
	users       rbacUseCase.UserUseCase
	credentials authUseCase.CredentialUseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(
	users rbacUseCase.UserUseCase,
	credentials authUseCase.CredentialUseCase,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{users: users, credentials: credentials, logger: logger}
}

// CreateHandler creates a user and, when given, its initial password.
// POST /bouncr/api/users - Requires user:create.
// Returns 201 Created, 409 Conflict when the account is taken, 422 when the password fails policy.
func (h *UserHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.Create(ctx, req.Input())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if req.Password != "" {
		if err := h.credentials.SetPassword(ctx, user.ID, req.Password, true); err != nil {
			// The user must not survive without the password the administrator asked for.
			if delErr := h.users.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
				h.logger.Error("failed to remove user after password rejection",
					slog.String("account", user.Account), slog.Any("error", delErr))
			}
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// UpdateHandler updates a user's profile.
// PUT /bouncr/api/users/:id - Requires user:update.
// Returns 200 OK, 403 Forbidden for write-protected users.
func (h *UserHandler) UpdateHandler(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.users.Update(c.Request.Context(), userID, req.Input())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// GetHandler returns a user.
// GET /bouncr/api/users/:id - Requires user:read.
func (h *UserHandler) GetHandler(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// ListHandler returns a page of users.
// GET /bouncr/api/users?offset=0&limit=50 - Requires user:read.
func (h *UserHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	users, err := h.users.List(c.Request.Context(), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUsersToListResponse(users))
}

// DeleteHandler deletes a user with its memberships and assignments.
// DELETE /bouncr/api/users/:id - Requires user:delete.
func (h *UserHandler) DeleteHandler(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
