// Package router builds the echo instance: middleware chain, error handler
// and the route table.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/tg-miniapp/internal/auth"
	"github.com/deppfellow/tg-miniapp/internal/handler"
	"github.com/deppfellow/tg-miniapp/internal/middleware"
	"github.com/deppfellow/tg-miniapp/internal/server"
)

// APIPrefix is the optional mount point for deployments behind a path prefix.
const APIPrefix = "/api"

// Route is one entry of the route table. Public routes skip identity
// resolution.
type Route struct {
	Method  string
	Path    string
	Handler echo.HandlerFunc
	Public  bool
}

// Routes is the whole API. Paths are relative to the mount point.
func Routes(h *handler.Handlers) []Route {
	routes := []Route{
		{Method: http.MethodPost, Path: "/user/init", Handler: h.User.InitUser},

		{Method: http.MethodGet, Path: "/expenses", Handler: h.Expense.ListExpenses},
		{Method: http.MethodPost, Path: "/expenses", Handler: h.Expense.CreateExpense},
		{Method: http.MethodGet, Path: "/expenses/stats", Handler: h.Expense.GetStats},
		{Method: http.MethodDelete, Path: "/expenses/:id", Handler: h.Expense.DeleteExpense},
		{Method: http.MethodGet, Path: "/categories", Handler: h.Expense.ListCategories},

		{Method: http.MethodGet, Path: "/comparisons", Handler: h.Comparison.ListComparisons},
		{Method: http.MethodPost, Path: "/comparisons", Handler: h.Comparison.CreateComparison},
		{Method: http.MethodDelete, Path: "/comparisons/:id", Handler: h.Comparison.DeleteComparison},
	}
	return append(routes, systemRoutes(h)...)
}

// publicPaths lists every mounted path of the public routes.
func publicPaths(routes []Route) []string {
	var paths []string
	for _, r := range routes {
		if r.Public {
			paths = append(paths, r.Path, APIPrefix+r.Path)
		}
	}
	return paths
}

// NewRouter wires the middleware chain and mounts Routes at the root and
// under APIPrefix.
func NewRouter(s *server.Server, h *handler.Handlers, resolver auth.IdentityResolver) *echo.Echo {
	routes := Routes(h)
	middlewares := middleware.NewMiddlewares(s, resolver, publicPaths(routes)...)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// OPTIONS never reaches routing, auth or the rate limiter.
	router.Pre(middlewares.CORS.Preflight())

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Auth.RequireIdentity,
		middlewares.RateLimit.Limit(),
	)

	api := router.Group(APIPrefix)
	for _, r := range routes {
		router.Add(r.Method, r.Path, r.Handler)
		api.Add(r.Method, r.Path, r.Handler)
	}

	return router
}
