// Package service contains the business rules of the Mini App API.
//
// Services never trust an owner id from the request: every operation
// starts from the caller's Telegram id and resolves the internal user id
// itself.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/tg-miniapp/internal/model"
	"github.com/deppfellow/tg-miniapp/internal/repository"
)

type UserStore interface {
	Upsert(ctx context.Context, identity *model.TelegramIdentity) (*model.User, error)
	GetIDByTelegramID(ctx context.Context, telegramID int64) (uuid.UUID, bool, error)
}

type ExpenseStore interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Expense, error)
	Create(ctx context.Context, userID uuid.UUID, e model.NewExpense) (*model.Expense, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (int64, error)
	Stats(ctx context.Context, userID uuid.UUID, from, to *model.Date) ([]model.CategoryTotal, error)
	Categories(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type ComparisonStore interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Comparison, error)
	Create(ctx context.Context, userID uuid.UUID, c model.NewComparison) (*model.Comparison, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (int64, error)
}

// Stores is the persistence a Services container runs on.
type Stores struct {
	Users       UserStore
	Expenses    ExpenseStore
	Comparisons ComparisonStore
}

type Services struct {
	User       *UserService
	Expense    *ExpenseService
	Comparison *ComparisonService
}

// DeleteResult is the body of every successful delete.
type DeleteResult struct {
	Success bool `json:"success"`
}

// NewServices wires the services to the Postgres repositories.
func NewServices(repos *repository.Repositories) *Services {
	return New(Stores{
		Users:       repos.Users,
		Expenses:    repos.Expenses,
		Comparisons: repos.Comparisons,
	}, time.Now)
}

func New(stores Stores, now func() time.Time) *Services {
	users := NewUserService(stores.Users)
	return &Services{
		User:       users,
		Expense:    NewExpenseService(users, stores.Expenses, now),
		Comparison: NewComparisonService(users, stores.Comparisons, now),
	}
}
