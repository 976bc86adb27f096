package app

import (
	"context"
	"fmt"
	"sync"

	authHTTP "github.com/bouncr/iam/internal/auth/http"
	authRepository "github.com/bouncr/iam/internal/auth/repository"
	authService "github.com/bouncr/iam/internal/auth/service"
	authUseCase "github.com/bouncr/iam/internal/auth/usecase"
	iamHTTP "github.com/bouncr/iam/internal/http"
	"github.com/bouncr/iam/internal/resilience"
	"github.com/bouncr/iam/internal/validation"
)

// authComponents holds the credential, challenge and federation components.
type authComponents struct {
	credentialRepository *authRepository.PostgreSQLCredentialRepository
	federationRepository *authRepository.PostgreSQLFederationRepository
	challengeRepository  *authRepository.KVSChallengeRepository
	attemptRepository    *authRepository.KVSAttemptRepository

	passwordHasher   authService.PasswordHasher
	secretSealer     authService.SecretSealer
	otpService       authService.OTPService
	directoryClient  authService.DirectoryClient
	federationClient authService.FederationClient

	credentialUseCase   authUseCase.CredentialUseCase
	authenticator       authUseCase.Authenticator
	challengeUseCase    authUseCase.ChallengeUseCase
	oidcProviderUseCase authUseCase.OIDCProviderUseCase

	credentialRepositoryInit sync.Once
	federationRepositoryInit sync.Once
	challengeRepositoryInit  sync.Once
	attemptRepositoryInit    sync.Once
	passwordHasherInit       sync.Once
	secretSealerInit         sync.Once
	otpServiceInit           sync.Once
	directoryClientInit      sync.Once
	federationClientInit     sync.Once
	credentialUseCaseInit    sync.Once
	authenticatorInit        sync.Once
	challengeUseCaseInit     sync.Once
	oidcProviderUseCaseInit  sync.Once
}

// CredentialRepository returns the password and OTP key repository.
func (c *Container) CredentialRepository() (*authRepository.PostgreSQLCredentialRepository, error) {
	c.credentialRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["credentialRepository"] = fmt.Errorf(
				"failed to get database for credential repository: %w", err)
			return
		}
		c.credentialRepository = authRepository.NewPostgreSQLCredentialRepository(db)
	})
	if storedErr, exists := c.initErrors["credentialRepository"]; exists {
		return nil, storedErr
	}
	return c.credentialRepository, nil
}

// FederationRepository returns the OIDC provider and federated identity repository.
func (c *Container) FederationRepository() (*authRepository.PostgreSQLFederationRepository, error) {
	c.federationRepositoryInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["federationRepository"] = fmt.Errorf(
				"failed to get database for federation repository: %w", err)
			return
		}
		c.federationRepository = authRepository.NewPostgreSQLFederationRepository(db)
	})
	if storedErr, exists := c.initErrors["federationRepository"]; exists {
		return nil, storedErr
	}
	return c.federationRepository, nil
}

// ChallengeRepository returns the repository of invitation, reset and verification codes.
func (c *Container) ChallengeRepository() (*authRepository.KVSChallengeRepository, error) {
	c.challengeRepositoryInit.Do(func() {
		store, err := c.Store()
		if err != nil {
			c.initErrors["challengeRepository"] = fmt.Errorf(
				"failed to get key-value store for challenge repository: %w", err)
			return
		}
		c.challengeRepository = authRepository.NewKVSChallengeRepository(store)
	})
	if storedErr, exists := c.initErrors["challengeRepository"]; exists {
		return nil, storedErr
	}
	return c.challengeRepository, nil
}

// AttemptRepository returns the sign-in failure and OTP replay repository.
func (c *Container) AttemptRepository() (*authRepository.KVSAttemptRepository, error) {
	c.attemptRepositoryInit.Do(func() {
		store, err := c.Store()
		if err != nil {
			c.initErrors["attemptRepository"] = fmt.Errorf(
				"failed to get key-value store for attempt repository: %w", err)
			return
		}
		c.attemptRepository = authRepository.NewKVSAttemptRepository(store)
	})
	if storedErr, exists := c.initErrors["attemptRepository"]; exists {
		return nil, storedErr
	}
	return c.attemptRepository, nil
}

// PasswordHasher returns the password hasher.
func (c *Container) PasswordHasher() authService.PasswordHasher {
	c.passwordHasherInit.Do(func() {
		c.passwordHasher = authService.NewPasswordHasher()
	})
	return c.passwordHasher
}

// SecretSealer returns the keeper that encrypts OTP keys and OIDC client secrets at rest.
func (c *Container) SecretSealer() (authService.SecretSealer, error) {
	c.secretSealerInit.Do(func() {
		sealer, err := authService.OpenSecretSealer(context.Background(), c.config.OTPKeeperURI)
		if err != nil {
			c.initErrors["secretSealer"] = fmt.Errorf("failed to open secret sealer: %w", err)
			return
		}
		c.secretSealer = sealer
	})
	if storedErr, exists := c.initErrors["secretSealer"]; exists {
		return nil, storedErr
	}
	return c.secretSealer, nil
}

// OTPService returns the TOTP service.
func (c *Container) OTPService() authService.OTPService {
	c.otpServiceInit.Do(func() {
		c.otpService = authService.NewOTPService(authService.OTPConfig{
			Issuer: c.config.OTPIssuer,
			Period: c.config.OTPPeriod,
			Skew:   c.config.OTPSkew,
		})
	})
	return c.otpService
}

// DirectoryClient returns the LDAP client, or nil when LDAP sign-in is disabled.
func (c *Container) DirectoryClient() (authService.DirectoryClient, error) {
	c.directoryClientInit.Do(func() {
		if !c.config.LDAPEnabled {
			return
		}

		opts := []resilience.Option{
			resilience.WithRetry(resilience.RetryConfig{
				MaxAttempts:     c.config.RetryMaxAttempts,
				InitialInterval: c.config.RetryInitialInterval,
				MaxInterval:     c.config.RetryMaxInterval,
			}),
			resilience.WithBreaker(resilience.BreakerConfig{
				FailureThreshold: uint32(c.config.LDAPBreakerFailureThreshold), //nolint:gosec // >= 1, see Config.Validate
				SuccessThreshold: uint32(c.config.LDAPBreakerSuccessThreshold), //nolint:gosec // >= 1, see Config.Validate
				Timeout:          c.config.LDAPBreakerTimeout,
			}),
			resilience.WithLogger(c.Logger()),
		}

		breakerMetrics, err := c.BreakerMetrics()
		if err != nil {
			c.initErrors["directoryClient"] = fmt.Errorf(
				"failed to get breaker metrics for directory client: %w", err)
			return
		}
		if breakerMetrics != nil {
			opts = append(opts, resilience.WithStateObserver(breakerMetrics.ObserveTransition))
		}

		c.directoryClient = authService.NewLDAPClient(authService.LDAPConfig{
			URL:            c.config.LDAPURL,
			BindDN:         c.config.LDAPBindDN,
			BindPassword:   c.config.LDAPBindPassword,
			BaseDN:         c.config.LDAPBaseDN,
			UserFilter:     c.config.LDAPUserFilter,
			GroupAttribute: c.config.LDAPGroupAttribute,
			Timeout:        c.config.LDAPTimeout,
		}, resilience.NewPolicy("ldap", opts...), nil)
	})
	if storedErr, exists := c.initErrors["directoryClient"]; exists {
		return nil, storedErr
	}
	return c.directoryClient, nil
}

// FederationClient returns the OIDC client used for discovery and code exchange.
func (c *Container) FederationClient() authService.FederationClient {
	c.federationClientInit.Do(func() {
		c.federationClient = authService.NewOIDCClient(c.HTTPClient(), c.retryPolicy("oidc"))
	})
	return c.federationClient
}

// CredentialUseCase returns the password and OTP use case.
func (c *Container) CredentialUseCase() (authUseCase.CredentialUseCase, error) {
	var err error
	c.credentialUseCaseInit.Do(func() {
		c.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// Authenticator returns the sign-in authenticator.
func (c *Container) Authenticator() (authUseCase.Authenticator, error) {
	var err error
	c.authenticatorInit.Do(func() {
		c.authenticator, err = c.initAuthenticator()
		if err != nil {
			c.initErrors["authenticator"] = err
		}
	})
	if storedErr, exists := c.initErrors["authenticator"]; exists {
		return nil, storedErr
	}
	return c.authenticator, nil
}

// ChallengeUseCase returns the invitation, sign-up and verification use case.
func (c *Container) ChallengeUseCase() (authUseCase.ChallengeUseCase, error) {
	var err error
	c.challengeUseCaseInit.Do(func() {
		c.challengeUseCase, err = c.initChallengeUseCase()
		if err != nil {
			c.initErrors["challengeUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["challengeUseCase"]; exists {
		return nil, storedErr
	}
	return c.challengeUseCase, nil
}

// OIDCProviderUseCase returns the OIDC provider management use case.
func (c *Container) OIDCProviderUseCase() (authUseCase.OIDCProviderUseCase, error) {
	c.oidcProviderUseCaseInit.Do(func() {
		federationRepository, err := c.FederationRepository()
		if err != nil {
			c.initErrors["oidcProviderUseCase"] = fmt.Errorf(
				"failed to get federation repository for oidc provider use case: %w", err)
			return
		}
		c.oidcProviderUseCase = authUseCase.NewOIDCProviderUseCase(federationRepository, c.FederationClient())
	})
	if storedErr, exists := c.initErrors["oidcProviderUseCase"]; exists {
		return nil, storedErr
	}
	return c.oidcProviderUseCase, nil
}

func (c *Container) credentialConfig() authUseCase.CredentialConfig {
	return authUseCase.CredentialConfig{
		PasswordEnabled: c.config.PasswordEnabled,
		PasswordPolicy: validation.PasswordStrength{
			MinLength:      c.config.PasswordMinLength,
			MaxLength:      c.config.PasswordMaxLength,
			RequireUpper:   c.config.PasswordRequireUpper,
			RequireLower:   c.config.PasswordRequireLower,
			RequireNumber:  c.config.PasswordRequireNumber,
			RequireSpecial: c.config.PasswordRequireSpecial,
		},
		ResetTTL: c.config.PasswordResetExpiration,
	}
}

func (c *Container) initCredentialUseCase() (authUseCase.CredentialUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for credential use case: %w", err)
	}
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for credential use case: %w", err)
	}
	credentialRepository, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential use case: %w", err)
	}
	challengeRepository, err := c.ChallengeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge repository for credential use case: %w", err)
	}
	attemptRepository, err := c.AttemptRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt repository for credential use case: %w", err)
	}
	sealer, err := c.SecretSealer()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret sealer for credential use case: %w", err)
	}
	hooks, err := c.HookDispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hook dispatcher for credential use case: %w", err)
	}

	useCase := authUseCase.NewCredentialUseCase(
		c.credentialConfig(),
		txManager,
		userRepository,
		credentialRepository,
		challengeRepository,
		attemptRepository,
		c.PasswordHasher(),
		sealer,
		c.OTPService(),
		c.TokenService(),
		hooks,
		c.Clock(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
		}
		useCase = authUseCase.NewCredentialUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

func (c *Container) initAuthenticator() (authUseCase.Authenticator, error) {
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for authenticator: %w", err)
	}
	credentials, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for authenticator: %w", err)
	}
	attemptRepository, err := c.AttemptRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt repository for authenticator: %w", err)
	}
	federationRepository, err := c.FederationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get federation repository for authenticator: %w", err)
	}
	directory, err := c.DirectoryClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get directory client for authenticator: %w", err)
	}
	hooks, err := c.HookDispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hook dispatcher for authenticator: %w", err)
	}

	authenticator := authUseCase.NewAuthenticator(
		authUseCase.AuthenticatorConfig{
			PasswordEnabled:    c.config.PasswordEnabled,
			LockoutMaxAttempts: c.config.LockoutMaxAttempts,
			LockoutDuration:    c.config.LockoutDuration,
		},
		userRepository,
		credentials,
		attemptRepository,
		federationRepository,
		directory,
		c.FederationClient(),
		hooks,
		c.Clock(),
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for authenticator: %w", err)
		}
		authenticator = authUseCase.NewAuthenticatorWithMetrics(authenticator, businessMetrics)
	}

	return authenticator, nil
}

func (c *Container) initChallengeUseCase() (authUseCase.ChallengeUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for challenge use case: %w", err)
	}
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for challenge use case: %w", err)
	}
	groupRepository, err := c.GroupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get group repository for challenge use case: %w", err)
	}
	credentialRepository, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for challenge use case: %w", err)
	}
	challengeRepository, err := c.ChallengeRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge repository for challenge use case: %w", err)
	}
	hooks, err := c.HookDispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hook dispatcher for challenge use case: %w", err)
	}

	useCase := authUseCase.NewChallengeUseCase(
		authUseCase.ChallengeConfig{
			SignUpEnabled:   c.config.SignUpEnabled,
			Credential:      c.credentialConfig(),
			InvitationTTL:   c.config.InvitationExpiration,
			VerificationTTL: c.config.VerificationExpiration,
		},
		txManager,
		userRepository,
		groupRepository,
		credentialRepository,
		challengeRepository,
		c.PasswordHasher(),
		c.TokenService(),
		hooks,
		c.Clock(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for challenge use case: %w", err)
		}
		useCase = authUseCase.NewChallengeUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// authHandlers builds the sign-in, account and credential HTTP handlers.
func (c *Container) authHandlers(handlers *iamHTTP.Handlers) error {
	authenticator, err := c.Authenticator()
	if err != nil {
		return fmt.Errorf("failed to get authenticator for sign in handler: %w", err)
	}
	tokens, err := c.TokenManager()
	if err != nil {
		return fmt.Errorf("failed to get token manager for sign in handler: %w", err)
	}
	providers, err := c.OIDCProviderUseCase()
	if err != nil {
		return fmt.Errorf("failed to get oidc provider use case for sign in handler: %w", err)
	}
	challenges, err := c.ChallengeUseCase()
	if err != nil {
		return fmt.Errorf("failed to get challenge use case for account handler: %w", err)
	}
	credentials, err := c.CredentialUseCase()
	if err != nil {
		return fmt.Errorf("failed to get credential use case for credential handler: %w", err)
	}

	logger := c.Logger()
	handlers.SignIn = authHTTP.NewSignInHandler(authenticator, tokens, providers, authHTTP.CookieConfig{
		Name:   c.config.TokenName,
		Secure: c.config.GetGinMode() == "release",
	}, logger)
	handlers.Account = authHTTP.NewAccountHandler(challenges, logger)
	handlers.Credential = authHTTP.NewCredentialHandler(credentials, logger)
	handlers.OIDCProvider = authHTTP.NewOIDCProviderHandler(providers, logger)
	return nil
}
