package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/deppfellow/tg-miniapp/internal/logger"
	"github.com/deppfellow/tg-miniapp/internal/model"
	"github.com/deppfellow/tg-miniapp/internal/server"
)

const (
	TelegramIDKey = "telegram_id"
	IdentityKey   = "telegram_identity"
	LoggerKey     = "logger"
)

type loggerContextKey struct{}

// ContextEnhancer attaches a request-scoped logger carrying request_id,
// method, path, ip and New Relic trace ids.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			setLogger(c, &contextLogger)
			return next(c)
		}
	}
}

// setLogger stores l on the echo context and on the request context, so
// code that only sees a context.Context can log with request fields too.
func setLogger(c echo.Context, l *zerolog.Logger) {
	c.Set(LoggerKey, l)
	ctx := context.WithValue(c.Request().Context(), loggerContextKey{}, l)
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetLogger returns the request-scoped logger, or a no-op logger when
// EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	l := zerolog.Nop()
	return &l
}

// LoggerFromContext is GetLogger for code below the HTTP layer.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(*zerolog.Logger); ok {
		return l
	}
	l := zerolog.Nop()
	return &l
}

// GetIdentity returns the caller resolved by RequireIdentity, or nil.
func GetIdentity(c echo.Context) *model.TelegramIdentity {
	identity, _ := c.Get(IdentityKey).(*model.TelegramIdentity)
	return identity
}

// GetTelegramID returns the caller's Telegram id, or 0 before RequireIdentity.
func GetTelegramID(c echo.Context) int64 {
	id, _ := c.Get(TelegramIDKey).(int64)
	return id
}
