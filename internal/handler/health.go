package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/tg-miniapp/internal/config"
	"github.com/deppfellow/tg-miniapp/internal/middleware"
	"github.com/deppfellow/tg-miniapp/internal/server"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthHandler serves /status for load balancers and uptime monitors.
// It needs no Telegram identity.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(s)}
}

type dependencyCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
}

type healthResponse struct {
	Status      string                     `json:"status"`
	Timestamp   time.Time                  `json:"timestamp"`
	Environment string                     `json:"environment"`
	Checks      map[string]dependencyCheck `json:"checks"`
}

func (h *HealthHandler) healthConfig() config.HealthChecksConfig {
	if obs := h.server.Config.Observability; obs != nil {
		return obs.HealthChecks
	}
	return config.DefaultObservabilityConfig().HealthChecks
}

// CheckHealth returns 200 when Postgres answers and 503 otherwise. Redis
// is reported but never fails the check. Ping errors are logged, not
// returned.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()
	cfg := h.healthConfig()

	response := healthResponse{
		Status:      statusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]dependencyCheck),
	}

	if cfg.Has("database") {
		check := h.ping(c.Request().Context(), cfg.Timeout, "database", func(ctx context.Context) error {
			if h.server.DB == nil {
				return errDatabaseNotConfigured
			}
			return h.server.DB.Ping(ctx)
		})
		response.Checks["database"] = check
		if check.Status != statusHealthy {
			response.Status = statusUnhealthy
		}
	}

	if cfg.Has("redis") && h.server.Redis != nil {
		response.Checks["redis"] = h.ping(c.Request().Context(), cfg.Timeout, "redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		})
	}

	if response.Status != statusHealthy {
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		h.recordHealthEvent(map[string]any{
			"check_type":        "overall",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) ping(ctx context.Context, timeout time.Duration, name string, fn func(context.Context) error) dependencyCheck {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	err := fn(ctx)
	elapsed := time.Since(started)

	if err != nil {
		h.server.Logger.Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("health check failed")
		h.recordHealthEvent(map[string]any{
			"check_type":       name,
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
		return dependencyCheck{Status: statusUnhealthy, ResponseTime: elapsed.String()}
	}

	return dependencyCheck{Status: statusHealthy, ResponseTime: elapsed.String()}
}

func (h *HealthHandler) recordHealthEvent(attrs map[string]any) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		attrs["operation"] = "health_check"
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}

var errDatabaseNotConfigured = errors.New("database not configured")
