package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"storeops/internal/common"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RateLimitConfig holds the limit for one group of endpoints.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	Logger   *zap.Logger
}

// RateLimit creates an IP-based limiter. A disabled or zero config returns a no-op.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if !cfg.Enabled || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limiter := httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					zap.String("ip", r.RemoteAddr),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
				)
			}
			resp := common.CreateErrorResponse(http.StatusTooManyRequests, "TOO_MANY_REQUESTS",
				"Muitas requisições, tente novamente em instantes", nil)
			resp.Error.Path = r.URL.Path
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(resp)
		}),
	)
	return echo.WrapMiddleware(limiter)
}
