package metrics

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BreakerMetrics counts circuit breaker transitions of external dependencies.
type BreakerMetrics struct {
	transitions metric.Int64Counter
}

// NewBreakerMetrics creates the transition counter under namespace.
func NewBreakerMetrics(meterProvider metric.MeterProvider, namespace string) (*BreakerMetrics, error) {
	meter := meterProvider.Meter(namespace)

	transitions, err := meter.Int64Counter(
		fmt.Sprintf("%s_circuit_breaker_transitions_total", namespace),
		metric.WithDescription("Total number of circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create breaker transition counter: %w", err)
	}

	return &BreakerMetrics{transitions: transitions}, nil
}

// ObserveTransition records one transition. Its signature matches resilience.StateObserver.
func (b *BreakerMetrics) ObserveTransition(name string, from, to gobreaker.State) {
	b.transitions.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("dependency", name),
			attribute.String("from", from.String()),
			attribute.String("to", to.String()),
		),
	)
}
