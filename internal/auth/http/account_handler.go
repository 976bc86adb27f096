package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	"github.com/bouncr/iam/internal/auth/http/dto"
	authUseCase "github.com/bouncr/iam/internal/auth/usecase"
	apperrors "github.com/bouncr/iam/internal/errors"
	"github.com/bouncr/iam/internal/httputil"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// AccountHandler serves sign-up, invitations and profile verification.
type AccountHandler struct {
	challenges authUseCase.ChallengeUseCase
	logger     *slog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(challenges authUseCase.ChallengeUseCase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{challenges: challenges, logger: logger}
}

// SignUpHandler creates an account, with or without an invitation code.
// POST /bouncr/api/sign_up - Public.
// Returns 201 Created, 403 when self sign-up is disabled and no invitation was presented.
func (h *AccountHandler) SignUpHandler(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.challenges.SignUp(c.Request.Context(), &authDomain.SignUpInput{
		Account:        req.Account,
		Email:          req.Email,
		Name:           req.Name,
		Password:       req.Password,
		InvitationCode: req.InvitationCode,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.SignUpResponse{ID: output.UserID.String(), Account: output.Account}
	if output.Verification != nil {
		response.VerificationExpiresAt = &output.Verification.ExpiresAt
	}
	c.JSON(http.StatusCreated, response)
}

// InviteHandler issues an invitation for an email address.
// POST /bouncr/api/invitations - Requires invitation:create.
// Returns 201 Created with the invitation code.
func (h *AccountHandler) InviteHandler(c *gin.Context) {
	var req dto.InvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	groupIDs := make([]uuid.UUID, 0, len(req.GroupIDs))
	for _, id := range req.GroupIDs {
		groupIDs = append(groupIDs, uuid.MustParse(id))
	}

	issued, err := h.challenges.Invite(c.Request.Context(), req.Email, groupIDs)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.InvitationResponse{Code: issued.Code, ExpiresAt: issued.ExpiresAt})
}

// IssueVerificationHandler sends a new profile verification code to the signed-in user.
// POST /bouncr/api/user_profile_verification - Requires authentication.
// Returns 202 Accepted; the code is delivered out of band.
func (h *AccountHandler) IssueVerificationHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	issued, err := h.challenges.IssueProfileVerification(c.Request.Context(), principal.UserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.ChallengeResponse{ExpiresAt: issued.ExpiresAt})
}

// VerifyProfileHandler redeems a profile verification code.
// PUT /bouncr/api/user_profile_verification - Public, the code is the credential.
// Returns 204 No Content, 410 Gone for an expired code, 409 Conflict for a used one.
func (h *AccountHandler) VerifyProfileHandler(c *gin.Context) {
	var req dto.VerifyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.challenges.VerifyProfile(c.Request.Context(), req.Code); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
