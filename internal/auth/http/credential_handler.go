package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bouncr/iam/internal/auth/http/dto"
	authUseCase "github.com/bouncr/iam/internal/auth/usecase"
	apperrors "github.com/bouncr/iam/internal/errors"
	"github.com/bouncr/iam/internal/httputil"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// CredentialHandler serves password change, password reset and OTP key management.
type CredentialHandler struct {
	credentials authUseCase.CredentialUseCase
	logger      *slog.Logger
}

// NewCredentialHandler creates a new credential handler.
func NewCredentialHandler(credentials authUseCase.CredentialUseCase, logger *slog.Logger) *CredentialHandler {
	return &CredentialHandler{credentials: credentials, logger: logger}
}

// ChangePasswordHandler replaces the signed-in user's password.
// PUT /bouncr/api/password_credential - Requires authentication.
// Returns 204 No Content, 401 when the current password does not match.
func (h *CredentialHandler) ChangePasswordHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.credentials.ChangePassword(c.Request.Context(), principal.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ResetCodeHandler issues a password reset challenge.
// POST /bouncr/api/password_credential/reset_code - Public.
// Returns 202 Accepted whether or not the account exists; the code is delivered out of band.
func (h *CredentialHandler) ResetCodeHandler(c *gin.Context) {
	var req dto.ResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	_, err := h.credentials.IssueResetChallenge(c.Request.Context(), req.Account)
	if err != nil && !apperrors.Is(err, rbacDomain.ErrUserNotFound) {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusAccepted)
}

// ResetPasswordHandler redeems a reset challenge and sets the new password.
// POST /bouncr/api/password_credential/reset - Public, the code is the credential.
// Returns 204 No Content, 410 Gone for an expired code, 409 Conflict for a used one.
func (h *CredentialHandler) ResetPasswordHandler(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.credentials.ConsumeResetChallenge(c.Request.Context(), req.Code, req.NewPassword); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// EnrollOTPHandler creates a new OTP key for the signed-in user, replacing the current one.
// POST /bouncr/api/otp_key - Requires authentication.
// Returns 201 Created with the secret and provisioning URI.
func (h *CredentialHandler) EnrollOTPHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	enrollment, err := h.credentials.EnrollOTP(c.Request.Context(), principal.UserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.OTPEnrollmentResponse{Secret: enrollment.Secret, URI: enrollment.URI})
}

// DisableOTPHandler removes the signed-in user's OTP key.
// DELETE /bouncr/api/otp_key - Requires authentication.
// Returns 204 No Content, 404 when no key is enrolled.
func (h *CredentialHandler) DisableOTPHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.credentials.DisableOTP(c.Request.Context(), principal.UserID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
