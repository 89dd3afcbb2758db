package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/deppfellow/tg-miniapp/internal/model"
)

var hundred = decimal.NewFromInt(100)

type ExpenseService struct {
	users    *UserService
	expenses ExpenseStore
	now      func() time.Time
}

func NewExpenseService(users *UserService, expenses ExpenseStore, now func() time.Time) *ExpenseService {
	return &ExpenseService{users: users, expenses: expenses, now: now}
}

func (s *ExpenseService) List(ctx context.Context, telegramID int64) ([]model.Expense, error) {
	userID, err := s.users.Resolve(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	return expenses, nil
}

func (s *ExpenseService) Create(ctx context.Context, telegramID int64, req *model.CreateExpenseRequest) (*model.Expense, error) {
	userID, err := s.users.Resolve(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return s.expenses.Create(ctx, userID, req.ToNewExpense(s.now()))
}

// Delete succeeds whether or not a row was removed, so ids owned by other
// users are indistinguishable from ids that never existed.
func (s *ExpenseService) Delete(ctx context.Context, telegramID int64, rawID string) (*DeleteResult, error) {
	userID, err := s.users.Resolve(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	if _, err := s.expenses.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return &DeleteResult{Success: true}, nil
}

// Stats builds the per-category breakdown shown on the analytics tab.
func (s *ExpenseService) Stats(ctx context.Context, telegramID int64, req *model.ExpenseStatsRequest) (*model.ExpenseStats, error) {
	userID, err := s.users.Resolve(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	totals, err := s.expenses.Stats(ctx, userID, req.From, req.To)
	if err != nil {
		return nil, err
	}
	return summarize(totals, req.From, req.To), nil
}

func summarize(totals []model.CategoryTotal, from, to *model.Date) *model.ExpenseStats {
	stats := &model.ExpenseStats{
		From:       from,
		To:         to,
		Total:      decimal.Zero,
		Categories: make([]model.CategoryTotal, 0, len(totals)),
	}
	for _, t := range totals {
		stats.Total = stats.Total.Add(t.Total)
		stats.Count += t.Count
	}

	for _, t := range totals {
		t.Percentage = decimal.Zero
		if stats.Total.IsPositive() {
			t.Percentage = t.Total.Mul(hundred).Div(stats.Total).Round(2)
		}
		stats.Categories = append(stats.Categories, t)
	}

	// Largest first; ties keep the store's order.
	sort.SliceStable(stats.Categories, func(i, j int) bool {
		return stats.Categories[i].Total.GreaterThan(stats.Categories[j].Total)
	})
	return stats
}

// Categories returns the built-in list followed by the caller's own
// categories that are not in it.
func (s *ExpenseService) Categories(ctx context.Context, telegramID int64) ([]string, error) {
	userID, err := s.users.Resolve(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	used, err := s.expenses.Categories(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(model.DefaultCategories)+len(used))
	categories := make([]string, 0, len(model.DefaultCategories)+len(used))
	for _, c := range append(append([]string{}, model.DefaultCategories...), used...) {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}
	return categories, nil
}
