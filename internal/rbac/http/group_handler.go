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

// GroupHandler handles group administration and membership.
type GroupHandler struct {
	groups rbacUseCase.GroupUseCase
	logger *slog.Logger
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(groups rbacUseCase.GroupUseCase, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: logger}
}

// CreateHandler creates a group.
// POST /bouncr/api/groups - Requires group:create.
func (h *GroupHandler) CreateHandler(c *gin.Context) {
	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	group, err := h.groups.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapGroupToResponse(group))
}

// UpdateHandler renames a group.
// PUT /bouncr/api/groups/:id - Requires group:update.
func (h *GroupHandler) UpdateHandler(c *gin.Context) {
	groupID, ok := parseUUIDParam(c, "id", h.logger)
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

	group, err := h.groups.Update(c.Request.Context(), groupID, req.Name, req.Description)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGroupToResponse(group))
}

// GetHandler returns a group.
// GET /bouncr/api/groups/:id - Requires group:read.
func (h *GroupHandler) GetHandler(c *gin.Context) {
	groupID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	group, err := h.groups.Get(c.Request.Context(), groupID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGroupToResponse(group))
}

// ListHandler returns a page of groups.
// GET /bouncr/api/groups?offset=0&limit=50 - Requires group:read.
func (h *GroupHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	groups, err := h.groups.List(c.Request.Context(), page.Offset, page.Limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGroupsToListResponse(groups))
}

// DeleteHandler deletes a group with its memberships and assignments.
// DELETE /bouncr/api/groups/:id - Requires group:delete.
func (h *GroupHandler) DeleteHandler(c *gin.Context) {
	groupID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.groups.Delete(c.Request.Context(), groupID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMemberHandler adds a user to a group. Adding an existing member succeeds.
// POST /bouncr/api/groups/:id/users - Requires group:update.
func (h *GroupHandler) AddMemberHandler(c *gin.Context) {
	groupID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	var req dto.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.groups.AddMember(c.Request.Context(), groupID, uuid.MustParse(req.UserID)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveMemberHandler removes a user from a group.
// DELETE /bouncr/api/groups/:id/users/:user_id - Requires group:update.
func (h *GroupHandler) RemoveMemberHandler(c *gin.Context) {
	groupID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}
	userID, ok := parseUUIDParam(c, "user_id", h.logger)
	if !ok {
		return
	}

	if err := h.groups.RemoveMember(c.Request.Context(), groupID, userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembersHandler returns the members of a group.
// GET /bouncr/api/groups/:id/users - Requires group:read.
func (h *GroupHandler) ListMembersHandler(c *gin.Context) {
	groupID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	users, err := h.groups.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUsersToListResponse(users))
}
