package router

import (
	"net/http"

	"github.com/deppfellow/tg-miniapp/internal/handler"
)

// systemRoutes are operational endpoints outside the Mini App API.
func systemRoutes(h *handler.Handlers) []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/status", Handler: h.Health.CheckHealth, Public: true},
	}
}
