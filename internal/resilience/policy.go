// Package resilience wraps calls to external identity sources with retry and circuit breaking.
//
// A Policy is constructed once per external dependency and shared by every caller of that
// dependency; its breaker state is synchronized internally.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// RetryConfig bounds the retry loop. MaxAttempts counts the first call.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// BreakerConfig configures the circuit breaker state machine.
type BreakerConfig struct {
	FailureThreshold uint32
	SuccessThreshold uint32
	Timeout          time.Duration
}

// StateObserver is notified on every breaker transition.
type StateObserver func(name string, from, to gobreaker.State)

// Policy executes calls under an optional retry loop and an optional circuit breaker.
type Policy struct {
	name      string
	retry     RetryConfig
	breaker   *gobreaker.CircuitBreaker[any]
	logger    *slog.Logger
	observers []StateObserver

	breakerConfig *BreakerConfig
}

// Option configures a Policy.
type Option func(*Policy)

// WithRetry enables retries of transient failures.
func WithRetry(cfg RetryConfig) Option {
	return func(p *Policy) {
		p.retry = cfg
	}
}

// WithBreaker places a circuit breaker around every attempt.
func WithBreaker(cfg BreakerConfig) Option {
	return func(p *Policy) {
		p.breakerConfig = &cfg
	}
}

// WithLogger sets the logger used for retries and breaker transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) {
		p.logger = logger
	}
}

// WithStateObserver registers a callback for breaker transitions.
func WithStateObserver(observer StateObserver) Option {
	return func(p *Policy) {
		p.observers = append(p.observers, observer)
	}
}

// NewPolicy builds a Policy named after the dependency it protects.
func NewPolicy(name string, opts ...Option) *Policy {
	p := &Policy{
		name:   name,
		retry:  RetryConfig{MaxAttempts: 1},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if cfg := p.breakerConfig; cfg != nil {
		p.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.SuccessThreshold,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || IsRejection(err)
			},
			OnStateChange: p.onStateChange,
		})
	}

	return p
}

// Name returns the dependency name.
func (p *Policy) Name() string {
	return p.name
}

// State returns the breaker state. Policies without a breaker are always closed.
func (p *Policy) State() gobreaker.State {
	if p.breaker == nil {
		return gobreaker.StateClosed
	}
	return p.breaker.State()
}

func (p *Policy) onStateChange(name string, from, to gobreaker.State) {
	p.logger.Warn("circuit breaker state changed",
		slog.String("dependency", name),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)
	for _, observer := range p.observers {
		observer(name, from, to)
	}
}

// Execute runs fn under the policy.
//
// fn receives a context detached from ctx cancellation: when ctx ends first, Execute returns
// immediately while fn keeps running and its outcome still updates the breaker. fn must bound
// its own duration (dial and request timeouts).
//
// Transient failures are retried with exponential backoff. When attempts run out the result
// wraps ErrRetryExhausted; a breaker rejection wraps ErrCircuitOpen. Any other error is
// returned unchanged after the first attempt.
func Execute[T any](ctx context.Context, p *Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		zero     T
		result   T
		attempts int
	)

	operation := func() error {
		attempts++
		value, err := p.attempt(ctx, func(ctx context.Context) (any, error) {
			return fn(ctx)
		})
		if err != nil {
			if errors.Is(err, ErrCircuitOpen) || !IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result, _ = value.(T)
		return nil
	}

	notify := func(err error, delay time.Duration) {
		p.logger.Warn("retrying external call",
			slog.String("dependency", p.name),
			slog.Int("attempt", attempts),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)
	}

	err := backoff.RetryNotify(operation, p.backOff(ctx), notify)
	if err == nil {
		return result, nil
	}

	if !errors.Is(err, ErrCircuitOpen) && IsTransient(err) {
		return zero, fmt.Errorf("%w: %s after %d attempts: %w", ErrRetryExhausted, p.name, attempts, err)
	}
	return zero, err
}

// attempt performs one call through the breaker, returning early if ctx ends.
func (p *Policy) attempt(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	type outcome struct {
		value any
		err   error
	}

	done := make(chan outcome, 1)
	detached := context.WithoutCancel(ctx)

	go func() {
		value, err := p.call(detached, fn)
		done <- outcome{value: value, err: err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Policy) call(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	if p.breaker == nil {
		return fn(ctx)
	}

	value, err := p.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, p.name)
	}
	return value, err
}

func (p *Policy) backOff(ctx context.Context) backoff.BackOff {
	if p.retry.MaxAttempts <= 1 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.retry.InitialInterval
	b.MaxInterval = p.retry.MaxInterval
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.retry.MaxAttempts-1)), ctx)
}
