// Package status serves health and counter endpoints over HTTP.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/duebot/server/internal/observability"
	"github.com/hrygo/duebot/server/stats"
	"github.com/hrygo/duebot/store"
)

const (
	defaultTaskLimit = 20
	maxTaskLimit     = 200
	shutdownTimeout  = 10 * time.Second
)

// TaskLister reads journal records.
type TaskLister interface {
	ListTaskRecords(ctx context.Context, find *store.FindTaskRecord) ([]*store.TaskRecord, error)
}

// Config holds server settings.
type Config struct {
	Addr    string
	Port    int
	Version string
}

// Server is the status HTTP server.
type Server struct {
	config    Config
	echo      *echo.Echo
	metrics   *observability.Metrics
	collector *stats.Collector
	tasks     TaskLister
	logger    *slog.Logger
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// StatsResponse is the body of GET /api/v1/stats.
type StatsResponse struct {
	observability.MetricsSnapshot
	SuccessRate float64      `json:"success_rate"`
	Journal     *stats.Stats `json:"journal,omitempty"`
}

// NewServer creates a status server. collector and tasks may be nil when the
// journal is disabled.
func NewServer(config Config, metrics *observability.Metrics, collector *stats.Collector, tasks TaskLister, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		config:    config,
		echo:      e,
		metrics:   metrics,
		collector: collector,
		tasks:     tasks,
		logger:    logger,
	}

	e.GET("/healthz", s.handleHealth)
	v1 := e.Group("/api/v1")
	v1.GET("/stats", s.handleStats)
	v1.GET("/tasks", s.handleTasks)
	return s
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Address returns the listen address.
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Addr, strconv.Itoa(s.config.Port))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.collector != nil {
		s.collector.Start(ctx)
		defer s.collector.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status server listening", slog.String("address", s.Address()))
		if err := s.echo.Start(s.Address()); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("status server shutdown: %w", err)
		}
		s.logger.Info("status server stopped")
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("status server: %w", err)
	}
}

// GET /healthz
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.config.Version})
}

// GET /api/v1/stats
func (s *Server) handleStats(c echo.Context) error {
	snapshot := s.metrics.Snapshot()
	resp := StatsResponse{
		MetricsSnapshot: *snapshot,
		SuccessRate:     snapshot.SuccessRate(),
	}
	if s.collector != nil {
		resp.Journal = s.collector.GetStats()
	}
	return c.JSON(http.StatusOK, resp)
}

// GET /api/v1/tasks?limit=N&chat_id=ID&status=created|failed
func (s *Server) handleTasks(c echo.Context) error {
	if s.tasks == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "journal disabled"})
	}

	find := &store.FindTaskRecord{Limit: defaultTaskLimit}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		find.Limit = min(limit, maxTaskLimit)
	}
	if raw := c.QueryParam("chat_id"); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid chat_id"})
		}
		find.ChatID = &chatID
	}
	if raw := c.QueryParam("status"); raw != "" {
		st := store.TaskStatus(raw)
		if st != store.TaskStatusCreated && st != store.TaskStatusFailed {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid status"})
		}
		find.Status = &st
	}

	records, err := s.tasks.ListTaskRecords(c.Request().Context(), find)
	if err != nil {
		s.logger.Warn("failed to list task records", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "journal unavailable"})
	}
	if records == nil {
		records = []*store.TaskRecord{}
	}
	return c.JSON(http.StatusOK, records)
}
