package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/tg-miniapp/internal/auth"
	"github.com/deppfellow/tg-miniapp/internal/server"
)

var (
	preflightMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", ")
	preflightHeaders = strings.Join([]string{
		echo.HeaderContentType, auth.HeaderTelegramUser, auth.HeaderTelegramInitData,
	}, ", ")
)

// CORSMiddleware answers preflight requests before routing and makes sure
// every response, errors included, carries Access-Control-Allow-Origin.
type CORSMiddleware struct {
	server *server.Server
}

func NewCORSMiddleware(s *server.Server) *CORSMiddleware {
	return &CORSMiddleware{server: s}
}

// Preflight is registered with echo.Pre. OPTIONS requests get a 200 with an
// empty body whatever the path or identity.
func (m *CORSMiddleware) Preflight() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			if origin := m.allowOrigin(c.Request().Header.Get(echo.HeaderOrigin)); origin != "" {
				header.Set(echo.HeaderAccessControlAllowOrigin, origin)
			}

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}

			header.Set(echo.HeaderAccessControlAllowMethods, preflightMethods)
			header.Set(echo.HeaderAccessControlAllowHeaders, preflightHeaders)
			return c.NoContent(http.StatusOK)
		}
	}
}

// allowOrigin returns "*" for a wildcard config, the request origin when it
// is listed, and "" otherwise.
func (m *CORSMiddleware) allowOrigin(origin string) string {
	allowed := m.server.Config.Server.CORSAllowedOrigins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(allowed, origin) {
		return origin
	}
	return ""
}
