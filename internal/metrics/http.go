package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests no route matched. Raw paths are never used as labels since
// /session/:token and similar routes carry credentials.
const unmatchedRoute = "unmatched"

type httpMetrics struct {
	requests     metric.Int64Counter
	durations    metric.Float64Histogram
	authFailures metric.Int64Counter
}

func newHTTPMetrics(meterProvider metric.MeterProvider, namespace string) (*httpMetrics, error) {
	meter := meterProvider.Meter(namespace)

	requests, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("HTTP requests by method, route and status code"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durations, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, err
	}

	authFailures, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_auth_failures_total", namespace),
		metric.WithDescription("Responses refusing a caller: 401, 403 and 429"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{requests: requests, durations: durations, authFailures: authFailures}, nil
}

// HTTPMetricsMiddleware records every request under its route pattern, e.g.
// /bouncr/api/session/:token. Refusals (401, 403, 429) are also counted on their own, which is
// where credential stuffing against sign_in shows up. If the instruments cannot be created the
// middleware only passes requests through.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	m, err := newHTTPMetrics(meterProvider, namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		route := routeLabel(c.FullPath())
		status := c.Writer.Status()
		attrs := metric.WithAttributeSet(attribute.NewSet(
			attribute.String("method", c.Request.Method),
			attribute.String("path", route),
			attribute.String("status_code", strconv.Itoa(status)),
		))

		m.requests.Add(ctx, 1, attrs)
		m.durations.Record(ctx, time.Since(start).Seconds(), attrs)
		if refused(status) {
			m.authFailures.Add(ctx, 1, attrs)
		}
	}
}

func routeLabel(fullPath string) string {
	if fullPath == "" {
		return unmatchedRoute
	}
	return fullPath
}

func refused(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}
