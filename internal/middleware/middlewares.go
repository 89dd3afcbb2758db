package middleware

import (
	"github.com/deppfellow/tg-miniapp/internal/auth"
	"github.com/deppfellow/tg-miniapp/internal/server"
)

// Middlewares is built once at startup and handed to the router.
type Middlewares struct {
	Global          *GlobalMiddlewares
	CORS            *CORSMiddleware
	Auth            *AuthMiddleware
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
}

func NewMiddlewares(s *server.Server, resolver auth.IdentityResolver, publicPaths ...string) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		CORS:            NewCORSMiddleware(s),
		Auth:            NewAuthMiddleware(s, resolver, publicPaths...),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
