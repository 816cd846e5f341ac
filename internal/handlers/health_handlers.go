package handlers

import (
	"context"
	"net/http"
	"time"

	"storeops/internal/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Pinger is a dependency that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db      Pinger
	cache   Pinger
	version string
	started time.Time
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db, cache Pinger, version string, logger *zap.Logger) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		cache:   cache,
		version: version,
		started: time.Now(),
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

func (h *HealthHandlers) status(status string) *HealthStatus {
	return &HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
	}
}

// HealthCheck godoc
//
//	@Summary	Liveness check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthStatus
//	@Router		/health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, h.status("ok"))
}

// ReadinessCheck godoc
//
//	@Summary	Readiness check, pings Postgres and Redis
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthStatus
//	@Failure	503	{object}	HealthStatus
//	@Router		/health/ready [get]
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	health := h.status("ready")
	health.Services = map[string]string{
		"database": h.check(ctx, "database", h.db),
		"redis":    h.check(ctx, "redis", h.cache),
	}
	for _, s := range health.Services {
		if s != "healthy" {
			health.Status = "not_ready"
			return c.JSON(http.StatusServiceUnavailable, health)
		}
	}
	return c.JSON(http.StatusOK, health)
}

func (h *HealthHandlers) check(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "unconfigured"
	}
	if err := p.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.String("service", name), zap.Error(err))
		return "unhealthy"
	}
	return "healthy"
}

// VersionInfo godoc
//
//	@Summary	Build and supported API versions
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	VersionResponse
//	@Router		/version [get]
func VersionInfo(vm *middleware.VersionMiddleware) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, VersionResponse{
			Build:    vm.Build(),
			Versions: vm.GetSupportedVersions(),
		})
	}
}

type VersionResponse struct {
	Build    string                  `json:"build"`
	Versions []middleware.APIVersion `json:"versions"`
}
