package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bouncr/iam/internal/httputil"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
	"github.com/bouncr/iam/internal/rbac/http/dto"
	rbacUseCase "github.com/bouncr/iam/internal/rbac/usecase"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// AssignmentHandler grants and revokes roles.
type AssignmentHandler struct {
	assignments rbacUseCase.AssignmentUseCase
	logger      *slog.Logger
}

// NewAssignmentHandler creates a new assignment handler.
func NewAssignmentHandler(assignments rbacUseCase.AssignmentUseCase, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, logger: logger}
}

// CreateHandler grants a role to a user or group within a realm.
// POST /bouncr/api/assignments - Requires assignment:create.
// Returns 201 Created, 409 Conflict for a duplicate, 422 when a referenced entity is missing.
func (h *AssignmentHandler) CreateHandler(c *gin.Context) {
	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	assignment, err := h.assignments.Create(
		c.Request.Context(),
		rbacDomain.SubjectType(req.SubjectType),
		uuid.MustParse(req.SubjectID),
		uuid.MustParse(req.RoleID),
		uuid.MustParse(req.RealmID),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAssignmentToResponse(assignment))
}

// ListHandler returns the assignments of a realm.
// GET /bouncr/api/assignments?realm_id= - Requires assignment:read.
func (h *AssignmentHandler) ListHandler(c *gin.Context) {
	realmID, err := uuid.Parse(c.Query("realm_id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	assignments, err := h.assignments.ListByRealm(c.Request.Context(), realmID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAssignmentsToListResponse(assignments))
}

// DeleteHandler revokes an assignment.
// DELETE /bouncr/api/assignments/:id - Requires assignment:delete.
func (h *AssignmentHandler) DeleteHandler(c *gin.Context) {
	assignmentID, ok := parseUUIDParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.assignments.Delete(c.Request.Context(), assignmentID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
