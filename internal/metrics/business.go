package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/bouncr/iam/internal/errors"
)

// Domains group operations by the part of the IAM engine that ran them.
const (
	DomainAuth    = "auth"
	DomainSession = "session"
	DomainRBAC    = "rbac"
)

// Outcomes label how an operation ended.
const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeDenied      = "denied"
	OutcomeExpired     = "expired"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Sign-in latency is dominated by argon2id, so buckets stretch past a second.
var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Outcome classifies err by its error kind. Bad credentials are "rejected", refused permissions
// "denied", and expired tokens, codes and challenges "expired".
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case apperrors.Is(err, apperrors.ErrUnavailable):
		return OutcomeUnavailable
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return OutcomeRejected
	case apperrors.Is(err, apperrors.ErrForbidden):
		return OutcomeDenied
	case apperrors.Is(err, apperrors.ErrGone):
		return OutcomeExpired
	default:
		return OutcomeError
	}
}

// BusinessMetrics counts and times IAM operations: sign-ins per method, credential and
// challenge flows, token and authorization code lifecycles, and permission checks.
// Operations are named like "sign_in_password", "token_issue", "code_redeem" and
// "permission_check".
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, outcome string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, outcome string)
}

// Observe records one finished operation that started at start.
func Observe(ctx context.Context, m BusinessMetrics, domain, operation string, start time.Time, outcome string) {
	m.RecordOperation(ctx, domain, operation, outcome)
	m.RecordDuration(ctx, domain, operation, time.Since(start), outcome)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
}

// NewBusinessMetrics registers <namespace>_operations_total and
// <namespace>_operation_duration_seconds on meterProvider.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("IAM operations by domain, operation and outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durations, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("IAM operation latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &businessMetrics{operations: operations, durations: durations}, nil
}

func labels(domain, operation, outcome string) metric.MeasurementOption {
	return metric.WithAttributeSet(attribute.NewSet(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", outcome),
	))
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, outcome string) {
	b.operations.Add(ctx, 1, labels(domain, operation, outcome))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	outcome string,
) {
	b.durations.Record(ctx, duration.Seconds(), labels(domain, operation, outcome))
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (n *NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}
