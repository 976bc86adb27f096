package app

import (
	"context"
	"fmt"
	"sync"

	authHTTP "github.com/bouncr/iam/internal/auth/http"
	iamHTTP "github.com/bouncr/iam/internal/http"
	sessionHTTP "github.com/bouncr/iam/internal/session/http"
	sessionRepository "github.com/bouncr/iam/internal/session/repository"
	sessionService "github.com/bouncr/iam/internal/session/service"
	sessionUseCase "github.com/bouncr/iam/internal/session/usecase"
)

// sessionComponents holds the token, code and backend credential components.
type sessionComponents struct {
	tokenService             sessionService.TokenService
	sessionRepository        *sessionRepository.KVSSessionRepository
	credentialSigner         sessionService.CredentialSigner
	tokenManager             sessionUseCase.TokenManager
	backendCredentialUseCase sessionUseCase.BackendCredentialUseCase

	tokenServiceInit      sync.Once
	sessionRepositoryInit sync.Once
	credentialSignerInit  sync.Once
	tokenManagerInit      sync.Once
	backendCredentialInit sync.Once
}

// TokenService returns the random token generator and hasher.
func (c *Container) TokenService() sessionService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = sessionService.NewTokenService()
	})
	return c.tokenService
}

// SessionRepository returns the key-value backed session repository.
func (c *Container) SessionRepository() (*sessionRepository.KVSSessionRepository, error) {
	c.sessionRepositoryInit.Do(func() {
		store, err := c.Store()
		if err != nil {
			c.initErrors["sessionRepository"] = fmt.Errorf(
				"failed to get key-value store for session repository: %w", err)
			return
		}
		c.sessionRepository = sessionRepository.NewKVSSessionRepository(store)
	})
	if storedErr, exists := c.initErrors["sessionRepository"]; exists {
		return nil, storedErr
	}
	return c.sessionRepository, nil
}

// CredentialSigner returns the backend credential signer.
func (c *Container) CredentialSigner() (sessionService.CredentialSigner, error) {
	c.credentialSignerInit.Do(func() {
		signer, err := sessionService.NewCredentialSigner(
			c.config.BackendCredentialSecret,
			c.config.BackendCredentialExpiration,
		)
		if err != nil {
			c.initErrors["credentialSigner"] = fmt.Errorf("failed to create credential signer: %w", err)
			return
		}
		c.credentialSigner = signer
	})
	if storedErr, exists := c.initErrors["credentialSigner"]; exists {
		return nil, storedErr
	}
	return c.credentialSigner, nil
}

// TokenManager returns the session token manager.
func (c *Container) TokenManager() (sessionUseCase.TokenManager, error) {
	var err error
	c.tokenManagerInit.Do(func() {
		c.tokenManager, err = c.initTokenManager()
		if err != nil {
			c.initErrors["tokenManager"] = err
		}
	})
	if storedErr, exists := c.initErrors["tokenManager"]; exists {
		return nil, storedErr
	}
	return c.tokenManager, nil
}

// BackendCredentialUseCase returns the backend credential minting use case.
func (c *Container) BackendCredentialUseCase() (sessionUseCase.BackendCredentialUseCase, error) {
	var err error
	c.backendCredentialInit.Do(func() {
		c.backendCredentialUseCase, err = c.initBackendCredentialUseCase()
		if err != nil {
			c.initErrors["backendCredentialUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["backendCredentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.backendCredentialUseCase, nil
}

func (c *Container) initTokenManager() (sessionUseCase.TokenManager, error) {
	repo, err := c.SessionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get session repository for token manager: %w", err)
	}

	manager := sessionUseCase.NewTokenManager(
		sessionUseCase.Config{
			TokenTTL:       c.config.TokenExpiration,
			CodeTTL:        c.config.AuthorizationCodeExpiration,
			OIDCSessionTTL: c.config.OIDCSessionExpiration,
		},
		repo,
		c.TokenService(),
		c.Clock(),
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token manager: %w", err)
		}
		manager = sessionUseCase.NewTokenManagerWithMetrics(manager, businessMetrics)
	}

	return manager, nil
}

func (c *Container) initBackendCredentialUseCase() (sessionUseCase.BackendCredentialUseCase, error) {
	tokens, err := c.TokenManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get token manager for backend credential use case: %w", err)
	}
	authorization, err := c.AuthorizationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization use case for backend credential use case: %w", err)
	}
	signer, err := c.CredentialSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential signer for backend credential use case: %w", err)
	}
	return sessionUseCase.NewBackendCredentialUseCase(tokens, authorization, signer, c.Clock()), nil
}

// sessionHandlers builds the session HTTP handler.
func (c *Container) sessionHandlers(handlers *iamHTTP.Handlers) error {
	tokens, err := c.TokenManager()
	if err != nil {
		return fmt.Errorf("failed to get token manager for session handler: %w", err)
	}
	backend, err := c.BackendCredentialUseCase()
	if err != nil {
		return fmt.Errorf("failed to get backend credential use case for session handler: %w", err)
	}
	hooks, err := c.HookDispatcher()
	if err != nil {
		return fmt.Errorf("failed to get hook dispatcher for session handler: %w", err)
	}

	handlers.Session = sessionHTTP.NewSessionHandler(tokens, backend, hooks, c.config.BackendHeaderName, c.Logger())
	return nil
}

// initHTTPServer assembles every handler and mounts them on the router.
func (c *Container) initHTTPServer() (*iamHTTP.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}
	store, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get key-value store for http server: %w", err)
	}

	var handlers iamHTTP.Handlers
	if err := c.authHandlers(&handlers); err != nil {
		return nil, err
	}
	if err := c.sessionHandlers(&handlers); err != nil {
		return nil, err
	}
	if err := c.rbacHandlers(&handlers); err != nil {
		return nil, err
	}

	tokens, err := c.TokenManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get token manager for http server: %w", err)
	}
	authorization, err := c.AuthorizationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization use case for http server: %w", err)
	}
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := iamHTTP.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetStore(store)

	ctx, cancel := context.WithCancel(context.Background())
	c.routerCancel = cancel

	server.SetupRouter(ctx, iamHTTP.RouterConfig{
		TokenName:         c.config.TokenName,
		BackendHeaderName: c.config.BackendHeaderName,
		AdminScope: authHTTP.AdminScope{
			Application: c.config.AdminApplication,
			Realm:       c.config.AdminRealm,
		},
		CORSEnabled:                   c.config.CORSEnabled,
		CORSAllowOrigins:              c.config.CORSAllowOrigins,
		RateLimitSignInEnabled:        c.config.RateLimitSignInEnabled,
		RateLimitSignInRequestsPerSec: c.config.RateLimitSignInRequestsPerSec,
		RateLimitSignInBurst:          c.config.RateLimitSignInBurst,
		MetricsEnabled:                c.config.MetricsEnabled,
		MetricsNamespace:              c.config.MetricsNamespace,
	}, handlers, tokens, authorization, metricsProvider)

	return server, nil
}
