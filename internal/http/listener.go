package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// listener owns one http.Server. The API and the metrics endpoint each run their own.
type listener struct {
	name   string
	server *http.Server
	logger *slog.Logger
}

func newListener(name, host string, port int, logger *slog.Logger) listener {
	return listener{
		name: name,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// serve blocks until the server stops. A graceful shutdown is not an error.
func (l *listener) serve(handler http.Handler) error {
	l.server.Handler = handler
	l.logger.Info("starting "+l.name, slog.String("addr", l.server.Addr))

	if err := l.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s: %w", l.name, err)
	}
	return nil
}

func (l *listener) shutdown(ctx context.Context) error {
	l.logger.Info("shutting down " + l.name)
	return l.server.Shutdown(ctx)
}
