// Package repository holds the SQL behind every API operation.
//
// Reads are single queries against the pool. Each write runs in its own
// transaction so a failure leaves nothing half-applied. Every expense and
// comparison query is scoped by the owner's internal id.
package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deppfellow/tg-miniapp/internal/server"
)

type Repositories struct {
	Users       *UserRepository
	Expenses    *ExpenseRepository
	Comparisons *ComparisonRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return newRepositories(s.DB.Pool)
}

func newRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(pool),
		Expenses:    NewExpenseRepository(pool),
		Comparisons: NewComparisonRepository(pool),
	}
}

// nullable stores empty optional profile fields as NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
