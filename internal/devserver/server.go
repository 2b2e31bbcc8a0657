// Package devserver exposes the state of a running watch session over
// HTTP so editors and build integrations can poll transformation status.
package devserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/renderwire/renderwire/internal/models"
)

// SummaryFunc returns the summary of the most recent transformation run.
type SummaryFunc func() models.Summary

// Server serves health and debug endpoints for a watch session.
type Server struct {
	echo    *echo.Echo
	logger  *zap.Logger
	summary SummaryFunc
}

// New builds a server around a summary provider.
func New(summary SummaryFunc, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		logger:  logger,
		summary: summary,
	}

	e.GET("/healthz", s.handleHealth)
	e.GET("/debug/summary", s.handleSummary)
	return s
}

// Start listens on addr until the context is cancelled, then shuts the
// server down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	s.logger.Info("debug server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, s.summary())
}
