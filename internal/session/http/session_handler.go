// Package http exposes session validation and revocation, authorization codes, OIDC session
// bindings and backend credentials.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/bouncr/iam/internal/auth/http"
	apperrors "github.com/bouncr/iam/internal/errors"
	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	hookUseCase "github.com/bouncr/iam/internal/hook/usecase"
	"github.com/bouncr/iam/internal/httputil"
	sessionDomain "github.com/bouncr/iam/internal/session/domain"
	"github.com/bouncr/iam/internal/session/http/dto"
	sessionUseCase "github.com/bouncr/iam/internal/session/usecase"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// SessionHandler handles the token lifecycle endpoints.
type SessionHandler struct {
	tokens     sessionUseCase.TokenManager
	backend    sessionUseCase.BackendCredentialUseCase
	hooks      hookUseCase.Dispatcher
	headerName string
	logger     *slog.Logger
}

// NewSessionHandler creates a new session handler. headerName is the response header that
// carries backend credentials.
func NewSessionHandler(
	tokens sessionUseCase.TokenManager,
	backend sessionUseCase.BackendCredentialUseCase,
	hooks hookUseCase.Dispatcher,
	headerName string,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		tokens:     tokens,
		backend:    backend,
		hooks:      hooks,
		headerName: headerName,
		logger:     logger,
	}
}

// GetSessionHandler validates a token without extending it.
// GET /bouncr/api/session/:token - Public, the token is the credential.
// Returns 200 OK, 401 Unauthorized for an expired or malformed token.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	session, err := h.tokens.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionToResponse(session))
}

// RevokeSessionHandler signs out. Revoking an unknown or expired token succeeds.
// DELETE /bouncr/api/session/:token - Public, the token is the credential.
// Returns 204 No Content.
func (h *SessionHandler) RevokeSessionHandler(c *gin.Context) {
	ctx := c.Request.Context()
	token := c.Param("token")

	session, validateErr := h.tokens.Validate(ctx, token)
	if validateErr != nil && !apperrors.Is(validateErr, apperrors.ErrUnauthorized) {
		httputil.HandleErrorGin(c, validateErr, h.logger)
		return
	}

	if err := h.tokens.Revoke(ctx, token); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if validateErr == nil {
		h.hooks.Dispatch(ctx, hookDomain.NewEvent(hookDomain.EventSignOut, session.Principal.Account, map[string]any{
			"user_id": session.Principal.UserID.String(),
		}))
	}

	c.Status(http.StatusNoContent)
}

// IssueCodeHandler mints a single-use authorization code for the signed-in user.
// POST /bouncr/api/authorization_code - Requires authentication.
// Returns 201 Created with the code.
func (h *SessionHandler) IssueCodeHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.AuthorizationCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	issued, err := h.tokens.IssueCode(c.Request.Context(), principal, req.Client())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthorizationCodeResponse{Code: issued.Token, ExpiresAt: issued.ExpiresAt})
}

// RedeemCodeHandler consumes an authorization code.
// POST /bouncr/api/authorization_code/redeem - Public, the code is the credential.
// Returns 200 OK, 410 Gone for an unknown or expired code, 409 Conflict when already redeemed.
func (h *SessionHandler) RedeemCodeHandler(c *gin.Context) {
	var req dto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	code, err := h.tokens.Redeem(c.Request.Context(), req.Code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthorizationCodeToResponse(code))
}

// GetOIDCSessionHandler returns a provider session binding of the signed-in user.
// GET /bouncr/api/oidc_session/:id - Requires authentication.
// Returns 200 OK, 403 Forbidden for another user's binding, 410 Gone once the binding expired.
func (h *SessionHandler) GetOIDCSessionHandler(c *gin.Context) {
	binding, err := h.ownedOIDCSession(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOIDCSessionToResponse(binding))
}

// RevokeOIDCSessionHandler removes a provider session binding of the signed-in user. Revoking
// an unknown or expired binding succeeds.
// DELETE /bouncr/api/oidc_session/:id - Requires authentication.
// Returns 204 No Content, 403 Forbidden for another user's binding.
func (h *SessionHandler) RevokeOIDCSessionHandler(c *gin.Context) {
	binding, err := h.ownedOIDCSession(c)
	if err != nil {
		if apperrors.Is(err, sessionDomain.ErrOIDCSessionExpired) {
			c.Status(http.StatusNoContent)
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if err := h.tokens.RevokeOIDCSession(c.Request.Context(), binding.ID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) ownedOIDCSession(c *gin.Context) (*sessionDomain.OIDCSession, error) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	binding, err := h.tokens.ValidateOIDCSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if binding.UserID != principal.UserID {
		return nil, sessionDomain.ErrOIDCSessionNotOwned
	}
	return binding, nil
}

// BackendCredentialHandler mints the signed credential forwarded to protected backends.
// GET /bouncr/api/backend_credential - Requires authentication.
// Returns 200 OK with the credential in the configured response header.
func (h *SessionHandler) BackendCredentialHandler(c *gin.Context) {
	token, ok := authHTTP.GetToken(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	credential, err := h.backend.Issue(c.Request.Context(), token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header(h.headerName, credential.Token)
	c.JSON(http.StatusOK, dto.BackendCredentialResponse{ExpiresAt: credential.ExpiresAt})
}
