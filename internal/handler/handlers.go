// Package handler is the HTTP layer: it binds and validates requests, takes
// the caller's Telegram identity from the context and calls the services.
package handler

import (
	"github.com/deppfellow/tg-miniapp/internal/server"
	"github.com/deppfellow/tg-miniapp/internal/service"
)

// Handlers groups every HTTP handler so the router gets a single value.
type Handlers struct {
	Health     *HealthHandler
	User       *UserHandler
	Expense    *ExpenseHandler
	Comparison *ComparisonHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s),
		User:       NewUserHandler(s, services.User),
		Expense:    NewExpenseHandler(s, services.Expense),
		Comparison: NewComparisonHandler(s, services.Comparison),
	}
}
