package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/tg-miniapp/internal/middleware"
	"github.com/deppfellow/tg-miniapp/internal/model"
	"github.com/deppfellow/tg-miniapp/internal/server"
	"github.com/deppfellow/tg-miniapp/internal/service"
)

type ComparisonHandler struct {
	Handler
	comparisons *service.ComparisonService
}

func NewComparisonHandler(s *server.Server, comparisons *service.ComparisonService) *ComparisonHandler {
	return &ComparisonHandler{Handler: NewHandler(s), comparisons: comparisons}
}

func (h *ComparisonHandler) ListComparisons(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, _ *model.ListComparisonsRequest) ([]model.Comparison, error) {
			return h.comparisons.List(c.Request().Context(), middleware.GetTelegramID(c))
		},
		http.StatusOK,
		&model.ListComparisonsRequest{},
	)(c)
}

// CreateComparison stores the figures the client computed. Price per gram,
// winner and savings are persisted as sent.
func (h *ComparisonHandler) CreateComparison(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, req *model.CreateComparisonRequest) (*model.Comparison, error) {
			return h.comparisons.Create(c.Request().Context(), middleware.GetTelegramID(c), req)
		},
		http.StatusCreated,
		&model.CreateComparisonRequest{},
	)(c)
}

func (h *ComparisonHandler) DeleteComparison(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, req *model.DeleteComparisonRequest) (*service.DeleteResult, error) {
			return h.comparisons.Delete(c.Request().Context(), middleware.GetTelegramID(c), req.ID)
		},
		http.StatusOK,
		&model.DeleteComparisonRequest{},
	)(c)
}
