package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/bouncr/iam/internal/errors"
	"github.com/bouncr/iam/internal/httputil"
	rbacUseCase "github.com/bouncr/iam/internal/rbac/usecase"
	sessionUseCase "github.com/bouncr/iam/internal/session/usecase"
)

// AdminScope is the application and realm whose permissions guard the administration API.
type AdminScope struct {
	Application string
	Realm       string
}

// AuthenticationMiddleware validates the session token from the Authorization header
// ("Bearer <token>", case-insensitive scheme) or, failing that, from the tokenName cookie.
// Validation never extends the session.
func AuthenticationMiddleware(
	tokens sessionUseCase.TokenManager,
	tokenName string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c, tokenName)
		if !ok {
			logger.Debug("authentication failed: no session token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		session, err := tokens.Validate(c.Request.Context(), token)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			return
		}

		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), token, session))
		c.Next()
	}
}

func extractToken(c *gin.Context, tokenName string) (string, bool) {
	const bearerPrefix = "bearer "

	if header := c.GetHeader("Authorization"); header != "" {
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return "", false
		}
		token := strings.TrimSpace(header[len(bearerPrefix):])
		return token, token != ""
	}

	if tokenName == "" {
		return "", false
	}
	token, err := c.Cookie(tokenName)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// AuthorizationMiddleware requires the authenticated user to hold permission in the
// administration scope. It must run after AuthenticationMiddleware. Permission resolution is
// memoized for the rest of the request.
func AuthorizationMiddleware(
	permission string,
	authorization rbacUseCase.AuthorizationUseCase,
	scope AdminScope,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		ctx := rbacUseCase.WithMemo(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		allowed, err := authorization.CheckPermission(ctx, principal.UserID, scope.Application, scope.Realm, permission)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			return
		}
		if !allowed {
			logger.Debug("authorization denied",
				slog.String("account", principal.Account),
				slog.String("permission", permission))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			return
		}

		c.Next()
	}
}
