package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/bouncr/iam/internal/auth/domain"
	"github.com/bouncr/iam/internal/auth/http/dto"
	authUseCase "github.com/bouncr/iam/internal/auth/usecase"
	"github.com/bouncr/iam/internal/httputil"
	sessionUseCase "github.com/bouncr/iam/internal/session/usecase"
	customValidation "github.com/bouncr/iam/internal/validation"
)

// CookieConfig controls the session cookie set on sign-in.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SignInHandler authenticates credential claims and opens sessions.
type SignInHandler struct {
	authenticator authUseCase.Authenticator
	tokens        sessionUseCase.TokenManager
	providers     authUseCase.OIDCProviderUseCase
	cookie        CookieConfig
	logger        *slog.Logger
}

// NewSignInHandler creates a new sign-in handler.
func NewSignInHandler(
	authenticator authUseCase.Authenticator,
	tokens sessionUseCase.TokenManager,
	providers authUseCase.OIDCProviderUseCase,
	cookie CookieConfig,
	logger *slog.Logger,
) *SignInHandler {
	return &SignInHandler{
		authenticator: authenticator,
		tokens:        tokens,
		providers:     providers,
		cookie:        cookie,
		logger:        logger,
	}
}

// CredentialSignInHandler authenticates with a password or directory claim.
// POST /bouncr/api/sign_in - Public.
// Returns 201 Created with the session token, 401 for any credential mismatch.
func (h *SignInHandler) CredentialSignInHandler(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	method, claim, err := req.Claim()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	principal, err := h.authenticator.Authenticate(c.Request.Context(), method, claim)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.openSession(c, principal)
}

// OIDCRedirectHandler sends the browser to the named provider.
// GET /bouncr/api/sign_in/oidc/:name?state= - Public.
// Returns 302 Found. A missing state is generated.
func (h *SignInHandler) OIDCRedirectHandler(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		state = uuid.NewString()
	}

	location, err := h.providers.AuthorizationURL(c.Request.Context(), c.Param("name"), state)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Redirect(http.StatusFound, location)
}

// OIDCCallbackHandler exchanges the provider's authorization code.
// POST /bouncr/api/sign_in/oidc/:name - Public.
// Returns 201 Created with the session token and the OIDC session binding.
func (h *SignInHandler) OIDCCallbackHandler(c *gin.Context) {
	var req dto.OIDCCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	principal, err := h.authenticator.Authenticate(c.Request.Context(), authDomain.MethodFederation,
		&authDomain.CredentialClaim{
			Provider:    c.Param("name"),
			Code:        req.Code,
			RedirectURI: req.RedirectURI,
		})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.openSession(c, principal)
}

func (h *SignInHandler) openSession(c *gin.Context, principal *authDomain.Principal) {
	ctx := c.Request.Context()

	issued, err := h.tokens.Issue(ctx, principal)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.SignInResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		Account:   principal.Account,
	}

	if principal.ExternalSessionID != "" {
		binding, err := h.tokens.BindOIDCSession(ctx, principal, principal.ExternalSessionID)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		response.OIDCSessionID = binding.ID
	}

	if h.cookie.Name != "" {
		maxAge := int(time.Until(issued.ExpiresAt).Seconds())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cookie.Name, issued.Token, maxAge, "/", "", h.cookie.Secure, true)
	}

	c.JSON(http.StatusCreated, response)
}
