// Package web serves the pages of sketchnotes as JSON endpoints over echo.
//
// The server stands in for a single browser profile: every request shares the
// session identity kept in the store.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aretw0/sketchnotes/pkg/view"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP surface over the view controllers.
type Server struct {
	echo   *echo.Echo
	deps   view.Deps
	logger *slog.Logger
}

// New builds the echo instance and registers the routes.
func New(deps view.Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			logger.Debug("request", attrs...)
			return nil
		},
	}))

	s := &Server{echo: e, deps: deps, logger: logger}
	s.routes()
	return s
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	lifecycle.Go(ctx, func(context.Context) error {
		s.logger.Info("listening", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		errCh <- fmt.Errorf("server panic: %w", err)
	}))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return s.echo.Shutdown(shutdownCtx)
}
