package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/tg-miniapp/internal/middleware"
	"github.com/deppfellow/tg-miniapp/internal/model"
	"github.com/deppfellow/tg-miniapp/internal/server"
	"github.com/deppfellow/tg-miniapp/internal/service"
)

type ExpenseHandler struct {
	Handler
	expenses *service.ExpenseService
}

func NewExpenseHandler(s *server.Server, expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{Handler: NewHandler(s), expenses: expenses}
}

func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, _ *model.ListExpensesRequest) ([]model.Expense, error) {
			return h.expenses.List(c.Request().Context(), middleware.GetTelegramID(c))
		},
		http.StatusOK,
		&model.ListExpensesRequest{},
	)(c)
}

func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, req *model.CreateExpenseRequest) (*model.Expense, error) {
			return h.expenses.Create(c.Request().Context(), middleware.GetTelegramID(c), req)
		},
		http.StatusCreated,
		&model.CreateExpenseRequest{},
	)(c)
}

func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, req *model.DeleteExpenseRequest) (*service.DeleteResult, error) {
			return h.expenses.Delete(c.Request().Context(), middleware.GetTelegramID(c), req.ID)
		},
		http.StatusOK,
		&model.DeleteExpenseRequest{},
	)(c)
}

// GetStats accepts optional from/to query dates, both inclusive.
func (h *ExpenseHandler) GetStats(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, req *model.ExpenseStatsRequest) (*model.ExpenseStats, error) {
			return h.expenses.Stats(c.Request().Context(), middleware.GetTelegramID(c), req)
		},
		http.StatusOK,
		&model.ExpenseStatsRequest{},
	)(c)
}

func (h *ExpenseHandler) ListCategories(c echo.Context) error {
	return Handle(
		h.Handler,
		func(c echo.Context, _ *model.ListCategoriesRequest) ([]string, error) {
			return h.expenses.Categories(c.Request().Context(), middleware.GetTelegramID(c))
		},
		http.StatusOK,
		&model.ListCategoriesRequest{},
	)(c)
}
