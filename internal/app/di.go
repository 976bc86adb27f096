// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/v9"

	"github.com/bouncr/iam/internal/config"
	"github.com/bouncr/iam/internal/database"
	hookDomain "github.com/bouncr/iam/internal/hook/domain"
	hookService "github.com/bouncr/iam/internal/hook/service"
	hookUseCase "github.com/bouncr/iam/internal/hook/usecase"
	iamHTTP "github.com/bouncr/iam/internal/http"
	"github.com/bouncr/iam/internal/kvs"
	"github.com/bouncr/iam/internal/metrics"
	"github.com/bouncr/iam/internal/resilience"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	clock       clock.Clock
	db          *sql.DB
	redisClient *redis.Client
	store       *kvs.Store
	httpClient  *http.Client

	// Managers
	txManager database.TxManager

	// Observability
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	breakerMetrics  *metrics.BreakerMetrics

	// Hooks
	hookDispatcher hookUseCase.Dispatcher

	// Servers
	httpServer    *iamHTTP.Server
	metricsServer *iamHTTP.MetricsServer

	// Cancels background work owned by the HTTP router
	routerCancel context.CancelFunc

	rbacComponents
	authComponents
	sessionComponents

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	clockInit           sync.Once
	dbInit              sync.Once
	redisInit           sync.Once
	storeInit           sync.Once
	httpClientInit      sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	breakerMetricsInit  sync.Once
	hookDispatcherInit  sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Clock returns the wall clock shared by every time-dependent component.
func (c *Container) Clock() clock.Clock {
	c.clockInit.Do(func() {
		c.clock = clock.New()
	})
	return c.clock
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// RedisClient returns the key-value store client.
func (c *Container) RedisClient() (*redis.Client, error) {
	var err error
	c.redisInit.Do(func() {
		c.redisClient, err = kvs.Connect(context.Background(), kvs.Config{
			Addr:     c.config.RedisAddr,
			Password: c.config.RedisPassword,
			DB:       c.config.RedisDB,
		})
		if err != nil {
			c.initErrors["redis"] = fmt.Errorf("failed to connect to key-value store: %w", err)
		}
	})
	if storedErr, exists := c.initErrors["redis"]; exists {
		return nil, storedErr
	}
	return c.redisClient, nil
}

// Store returns the key-value store holding tokens, codes and challenges.
func (c *Container) Store() (*kvs.Store, error) {
	var err error
	c.storeInit.Do(func() {
		var client *redis.Client
		client, err = c.RedisClient()
		if err != nil {
			c.initErrors["store"] = err
			return
		}
		c.store = kvs.NewStore(client)
	})
	if storedErr, exists := c.initErrors["store"]; exists {
		return nil, storedErr
	}
	return c.store, nil
}

// HTTPClient returns the client used for OIDC providers and webhooks.
func (c *Container) HTTPClient() *http.Client {
	c.httpClientInit.Do(func() {
		c.httpClient = &http.Client{Timeout: c.config.HTTPClientTimeout}
	})
	return c.httpClient
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the Prometheus-backed meter provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
		}
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business operation recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// BreakerMetrics returns the circuit breaker transition recorder, or nil when metrics are disabled.
func (c *Container) BreakerMetrics() (*metrics.BreakerMetrics, error) {
	var err error
	c.breakerMetricsInit.Do(func() {
		var provider *metrics.Provider
		provider, err = c.MetricsProvider()
		if err != nil || provider == nil {
			if err != nil {
				c.initErrors["breakerMetrics"] = err
			}
			return
		}
		c.breakerMetrics, err = metrics.NewBreakerMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["breakerMetrics"] = err
		}
	})
	if storedErr, exists := c.initErrors["breakerMetrics"]; exists {
		return nil, storedErr
	}
	return c.breakerMetrics, nil
}

// HookDispatcher returns the event dispatcher. A webhook is registered when HOOK_URL is set,
// subscribed to HOOK_EVENTS or to every kind when that list is empty.
func (c *Container) HookDispatcher() (hookUseCase.Dispatcher, error) {
	var err error
	c.hookDispatcherInit.Do(func() {
		c.hookDispatcher, err = c.initHookDispatcher()
		if err != nil {
			c.initErrors["hookDispatcher"] = err
		}
	})
	if storedErr, exists := c.initErrors["hookDispatcher"]; exists {
		return nil, storedErr
	}
	return c.hookDispatcher, nil
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*iamHTTP.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*iamHTTP.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		var provider *metrics.Provider
		provider, err = c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = iamHTTP.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.routerCancel != nil {
		c.routerCancel()
	}

	if c.hookDispatcher != nil {
		if err := c.hookDispatcher.Close(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("hook dispatcher close: %w", err))
		}
	}

	if c.secretSealer != nil {
		if err := c.secretSealer.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("secret sealer close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("key-value store close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	if c.config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	db, err := database.Connect(context.Background(), database.Config{
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		Retry: resilience.RetryConfig{
			MaxAttempts:     c.config.RetryMaxAttempts,
			InitialInterval: c.config.RetryInitialInterval,
			MaxInterval:     c.config.RetryMaxInterval,
		},
		Logger: c.Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initBusinessMetrics creates the recorder, falling back to a no-op one when metrics are disabled.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// retryPolicy builds the retry-only policy used for HTTP dependencies.
func (c *Container) retryPolicy(name string) *resilience.Policy {
	return resilience.NewPolicy(name,
		resilience.WithRetry(resilience.RetryConfig{
			MaxAttempts:     c.config.RetryMaxAttempts,
			InitialInterval: c.config.RetryInitialInterval,
			MaxInterval:     c.config.RetryMaxInterval,
		}),
		resilience.WithLogger(c.Logger()),
	)
}

// initHookDispatcher starts the dispatcher workers and registers the configured webhook.
func (c *Container) initHookDispatcher() (hookUseCase.Dispatcher, error) {
	var kinds []hookDomain.EventKind
	for _, name := range c.config.HookEventKinds() {
		kind, err := hookDomain.ParseEventKind(name)
		if err != nil {
			return nil, fmt.Errorf("invalid HOOK_EVENTS entry %q: %w", name, err)
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		kinds = hookDomain.EventKinds()
	}

	dispatcher := hookUseCase.NewDispatcher(hookUseCase.Config{
		Workers:   c.config.HookWorkers,
		QueueSize: c.config.HookQueueSize,
		Timeout:   c.config.HookTimeout,
	}, c.Logger())

	if c.config.HookURL != "" {
		target := hookService.NewWebhookTarget(c.config.HookURL, c.HTTPClient(), c.retryPolicy("webhook"))
		dispatcher.Register(kinds, target)
		c.Logger().Info("webhook registered", slog.Int("event_kinds", len(kinds)))
	}

	return dispatcher, nil
}
