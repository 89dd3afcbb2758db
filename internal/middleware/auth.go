package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/tg-miniapp/internal/auth"
	"github.com/deppfellow/tg-miniapp/internal/errs"
	"github.com/deppfellow/tg-miniapp/internal/server"
)

// AuthMiddleware resolves the Telegram caller through the configured
// IdentityResolver.
type AuthMiddleware struct {
	server   *server.Server
	resolver auth.IdentityResolver
	public   map[string]struct{}
}

// NewAuthMiddleware builds the middleware. Routes listed in publicPaths
// (echo route paths such as "/status") skip identity resolution.
func NewAuthMiddleware(s *server.Server, resolver auth.IdentityResolver, publicPaths ...string) *AuthMiddleware {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}
	return &AuthMiddleware{server: s, resolver: resolver, public: public}
}

// RequireIdentity rejects requests without a valid identity with 401. It
// runs for unknown paths as well, so anonymous callers learn nothing about
// the route table.
func (a *AuthMiddleware) RequireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := a.public[c.Path()]; ok {
			return next(c)
		}

		start := time.Now()
		identity, err := a.resolver.Resolve(c.Request())
		if err != nil {
			GetLogger(c).Warn().
				Err(err).
				Str("function", "RequireIdentity").
				Dur("duration", time.Since(start)).
				Msg("could not resolve telegram identity")

			return errs.NewUnauthorizedError("Unauthorized: Telegram user not found", false)
		}

		c.Set(IdentityKey, identity)
		c.Set(TelegramIDKey, identity.ID)

		identityLogger := GetLogger(c).With().Int64("telegram_id", identity.ID).Logger()
		setLogger(c, &identityLogger)

		identityLogger.Debug().
			Str("function", "RequireIdentity").
			Dur("duration", time.Since(start)).
			Msg("telegram identity resolved")

		return next(c)
	}
}
