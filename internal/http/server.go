// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/bouncr/iam/internal/auth/http"
	"github.com/bouncr/iam/internal/metrics"
	rbacDomain "github.com/bouncr/iam/internal/rbac/domain"
	rbacHTTP "github.com/bouncr/iam/internal/rbac/http"
	rbacUseCase "github.com/bouncr/iam/internal/rbac/usecase"
	sessionHTTP "github.com/bouncr/iam/internal/session/http"
	sessionUseCase "github.com/bouncr/iam/internal/session/usecase"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the HTTP handlers mounted under /bouncr/api.
type Handlers struct {
	SignIn          *authHTTP.SignInHandler
	Account         *authHTTP.AccountHandler
	Credential      *authHTTP.CredentialHandler
	OIDCProvider    *authHTTP.OIDCProviderHandler
	Session         *sessionHTTP.SessionHandler
	User            *rbacHTTP.UserHandler
	Group           *rbacHTTP.GroupHandler
	Application     *rbacHTTP.ApplicationHandler
	Role            *rbacHTTP.RoleHandler
	Permission      *rbacHTTP.PermissionHandler
	Assignment      *rbacHTTP.AssignmentHandler
	PermissionCheck *rbacHTTP.PermissionCheckHandler
}

// RouterConfig holds the settings that shape the router.
type RouterConfig struct {
	TokenName         string
	BackendHeaderName string
	AdminScope        authHTTP.AdminScope

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitSignInEnabled        bool
	RateLimitSignInRequestsPerSec float64
	RateLimitSignInBurst          int

	MetricsEnabled   bool
	MetricsNamespace string
}

// Server represents the HTTP server
type Server struct {
	listener
	db     *sql.DB
	store  Pinger
	router *gin.Engine
}

// NewServer creates a new HTTP server
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		listener: newListener("http server", host, port, logger),
		db:       db,
	}
}

// SetStore sets the key-value store checked by the readiness endpoint.
func (s *Server) SetStore(store Pinger) {
	s.store = store
}

// SetupRouter builds the router. ctx bounds background work owned by middlewares.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg RouterConfig,
	handlers Handlers,
	tokens sessionUseCase.TokenManager,
	authorization rbacUseCase.AuthorizationUseCase,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger, cfg.BackendHeaderName,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authenticated := authHTTP.AuthenticationMiddleware(tokens, cfg.TokenName, s.logger)
	requires := func(permission string) gin.HandlerFunc {
		return authHTTP.AuthorizationMiddleware(permission, authorization, cfg.AdminScope, s.logger)
	}

	credentialLimit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimitSignInEnabled {
		credentialLimit = authHTTP.SignInRateLimitMiddleware(
			ctx, cfg.RateLimitSignInRequestsPerSec, cfg.RateLimitSignInBurst, s.logger,
		)
	}

	api := router.Group("/bouncr/api")

	// Sign-in and sessions
	api.POST("/sign_in", credentialLimit, handlers.SignIn.CredentialSignInHandler)
	api.GET("/sign_in/oidc/:name", handlers.SignIn.OIDCRedirectHandler)
	api.POST("/sign_in/oidc/:name", credentialLimit, handlers.SignIn.OIDCCallbackHandler)
	api.GET("/session/:token", handlers.Session.GetSessionHandler)
	api.DELETE("/session/:token", handlers.Session.RevokeSessionHandler)
	api.POST("/authorization_code", authenticated, handlers.Session.IssueCodeHandler)
	api.POST("/authorization_code/redeem", credentialLimit, handlers.Session.RedeemCodeHandler)
	api.GET("/oidc_session/:id", authenticated, handlers.Session.GetOIDCSessionHandler)
	api.DELETE("/oidc_session/:id", authenticated, handlers.Session.RevokeOIDCSessionHandler)
	api.GET("/backend_credential", authenticated, handlers.Session.BackendCredentialHandler)

	// Accounts and credentials
	api.POST("/sign_up", credentialLimit, handlers.Account.SignUpHandler)
	api.POST("/invitations", authenticated, requires(rbacDomain.PermInvitationCreate),
		handlers.Account.InviteHandler)
	api.POST("/user_profile_verification", authenticated, handlers.Account.IssueVerificationHandler)
	api.PUT("/user_profile_verification", credentialLimit, handlers.Account.VerifyProfileHandler)
	api.PUT("/password_credential", authenticated, handlers.Credential.ChangePasswordHandler)
	api.POST("/password_credential/reset_code", credentialLimit, handlers.Credential.ResetCodeHandler)
	api.POST("/password_credential/reset", credentialLimit, handlers.Credential.ResetPasswordHandler)
	api.POST("/otp_key", authenticated, handlers.Credential.EnrollOTPHandler)
	api.DELETE("/otp_key", authenticated, handlers.Credential.DisableOTPHandler)
	api.GET("/permission_check", authenticated, handlers.PermissionCheck.CheckHandler)

	// Administration
	admin := api.Group("", authenticated)
	{
		users := admin.Group("/users")
		users.POST("", requires(rbacDomain.PermUserCreate), handlers.User.CreateHandler)
		users.GET("", requires(rbacDomain.PermUserRead), handlers.User.ListHandler)
		users.GET("/:id", requires(rbacDomain.PermUserRead), handlers.User.GetHandler)
		users.PUT("/:id", requires(rbacDomain.PermUserUpdate), handlers.User.UpdateHandler)
		users.DELETE("/:id", requires(rbacDomain.PermUserDelete), handlers.User.DeleteHandler)

		groups := admin.Group("/groups")
		groups.POST("", requires(rbacDomain.PermGroupCreate), handlers.Group.CreateHandler)
		groups.GET("", requires(rbacDomain.PermGroupRead), handlers.Group.ListHandler)
		groups.GET("/:id", requires(rbacDomain.PermGroupRead), handlers.Group.GetHandler)
		groups.PUT("/:id", requires(rbacDomain.PermGroupUpdate), handlers.Group.UpdateHandler)
		groups.DELETE("/:id", requires(rbacDomain.PermGroupDelete), handlers.Group.DeleteHandler)
		groups.GET("/:id/users", requires(rbacDomain.PermGroupRead), handlers.Group.ListMembersHandler)
		groups.POST("/:id/users", requires(rbacDomain.PermGroupUpdate), handlers.Group.AddMemberHandler)
		groups.DELETE("/:id/users/:user_id", requires(rbacDomain.PermGroupUpdate),
			handlers.Group.RemoveMemberHandler)

		applications := admin.Group("/applications")
		applications.POST("", requires(rbacDomain.PermApplicationCreate), handlers.Application.CreateHandler)
		applications.GET("", requires(rbacDomain.PermApplicationRead), handlers.Application.ListHandler)
		applications.GET("/:id", requires(rbacDomain.PermApplicationRead), handlers.Application.GetHandler)
		applications.PUT("/:id", requires(rbacDomain.PermApplicationUpdate), handlers.Application.UpdateHandler)
		applications.DELETE("/:id", requires(rbacDomain.PermApplicationDelete), handlers.Application.DeleteHandler)
		applications.POST("/:id/realms", requires(rbacDomain.PermRealmCreate),
			handlers.Application.CreateRealmHandler)
		applications.GET("/:id/realms", requires(rbacDomain.PermRealmRead), handlers.Application.ListRealmsHandler)
		applications.DELETE("/:id/realms/:realm_id", requires(rbacDomain.PermRealmDelete),
			handlers.Application.DeleteRealmHandler)

		roles := admin.Group("/roles")
		roles.POST("", requires(rbacDomain.PermRoleCreate), handlers.Role.CreateHandler)
		roles.GET("", requires(rbacDomain.PermRoleRead), handlers.Role.ListHandler)
		roles.GET("/:id", requires(rbacDomain.PermRoleRead), handlers.Role.GetHandler)
		roles.PUT("/:id", requires(rbacDomain.PermRoleUpdate), handlers.Role.UpdateHandler)
		roles.DELETE("/:id", requires(rbacDomain.PermRoleDelete), handlers.Role.DeleteHandler)
		roles.GET("/:id/permissions", requires(rbacDomain.PermRoleRead), handlers.Role.ListPermissionsHandler)
		roles.POST("/:id/permissions", requires(rbacDomain.PermRoleUpdate), handlers.Role.AddPermissionHandler)
		roles.DELETE("/:id/permissions/:permission_id", requires(rbacDomain.PermRoleUpdate),
			handlers.Role.RemovePermissionHandler)

		permissions := admin.Group("/permissions")
		permissions.POST("", requires(rbacDomain.PermPermissionCreate), handlers.Permission.CreateHandler)
		permissions.GET("", requires(rbacDomain.PermPermissionRead), handlers.Permission.ListHandler)
		permissions.GET("/:id", requires(rbacDomain.PermPermissionRead), handlers.Permission.GetHandler)
		permissions.PUT("/:id", requires(rbacDomain.PermPermissionUpdate), handlers.Permission.UpdateHandler)
		permissions.DELETE("/:id", requires(rbacDomain.PermPermissionDelete), handlers.Permission.DeleteHandler)

		assignments := admin.Group("/assignments")
		assignments.POST("", requires(rbacDomain.PermAssignmentCreate), handlers.Assignment.CreateHandler)
		assignments.GET("", requires(rbacDomain.PermAssignmentRead), handlers.Assignment.ListHandler)
		assignments.DELETE("/:id", requires(rbacDomain.PermAssignmentDelete), handlers.Assignment.DeleteHandler)

		providers := admin.Group("/oidc_providers")
		providers.POST("", requires(rbacDomain.PermOIDCProviderCreate), handlers.OIDCProvider.CreateHandler)
		providers.GET("", requires(rbacDomain.PermOIDCProviderRead), handlers.OIDCProvider.ListHandler)
		providers.GET("/:id", requires(rbacDomain.PermOIDCProviderRead), handlers.OIDCProvider.GetHandler)
		providers.PUT("/:id", requires(rbacDomain.PermOIDCProviderUpdate), handlers.OIDCProvider.UpdateHandler)
		providers.DELETE("/:id", requires(rbacDomain.PermOIDCProviderDelete), handlers.OIDCProvider.DeleteHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	return s.serve(s.router)
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.shutdown(ctx)
}

// healthHandler reports liveness.
// GET /health - Public.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database and the key-value store answer.
// GET /ready - Public.
// Returns 200 OK when both are reachable, 503 Service Unavailable otherwise.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{
		"database":        componentStatus(s.db == nil, func() error { return s.db.PingContext(ctx) }),
		"key_value_store": componentStatus(s.store == nil, func() error { return s.store.Ping(ctx) }),
	}

	for _, status := range components {
		if status != "ok" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

func componentStatus(missing bool, ping func() error) string {
	if missing || ping() != nil {
		return "error"
	}
	return "ok"
}
