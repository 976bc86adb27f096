package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bouncr/iam/internal/metrics"
)

// MetricsServer exposes the Prometheus scrape endpoint on a port of its own, away from the
// public /bouncr/api listener.
type MetricsServer struct {
	listener
	router *gin.Engine
}

// NewMetricsServer mounts GET /metrics for provider. Scrapes are not access-logged.
func NewMetricsServer(host string, port int, logger *slog.Logger, provider *metrics.Provider) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())
	if provider != nil {
		router.GET("/metrics", gin.WrapH(provider.Handler()))
	}

	return &MetricsServer{
		listener: newListener("metrics server", host, port, logger),
		router:   router,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *MetricsServer) Start(ctx context.Context) error {
	return s.serve(s.router)
}

// Shutdown gracefully stops the listener.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.shutdown(ctx)
}
