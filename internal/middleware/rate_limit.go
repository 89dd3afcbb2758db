package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/tg-miniapp/internal/errs"
	"github.com/deppfellow/tg-miniapp/internal/server"
)

const rateLimitTimeout = 200 * time.Millisecond

// RateLimitMiddleware enforces a fixed-window request limit per Telegram
// user, counted in Redis.
type RateLimitMiddleware struct {
	server *server.Server
	now    func() time.Time
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{server: s, now: time.Now}
}

func (r *RateLimitMiddleware) enabled() bool {
	cfg := r.server.Config.RateLimit
	return r.server.Redis != nil && cfg.Enabled && cfg.Requests > 0 && cfg.Window > 0
}

// windowKey names the counter for telegramID in the window containing t.
func windowKey(telegramID int64, t time.Time, window time.Duration) string {
	return fmt.Sprintf("ratelimit:%d:%d", telegramID, t.Unix()/int64(window/time.Second))
}

// Limit must run after RequireIdentity. Redis failures let the request
// through.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !r.enabled() {
			return next
		}

		cfg := r.server.Config.RateLimit
		window := time.Duration(cfg.Window) * time.Second

		return func(c echo.Context) error {
			telegramID := GetTelegramID(c)
			if telegramID == 0 {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), rateLimitTimeout)
			defer cancel()

			key := windowKey(telegramID, r.now(), window)
			pipe := r.server.Redis.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				GetLogger(c).Warn().Err(err).Msg("rate limit check failed, allowing request")
				return next(c)
			}

			count := incr.Val()
			remaining := int64(cfg.Requests) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Requests) {
				r.RecordRateLimitHit(c.Path(), telegramID)
				return errs.NewTooManyRequestsError("Too many requests, slow down")
			}
			return next(c)
		}
	}
}

// RecordRateLimitHit reports a rejected request to New Relic as a
// RateLimitHit custom event.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string, telegramID int64) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint":    endpoint,
			"telegram_id": telegramID,
		})
	}
}
