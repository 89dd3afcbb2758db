// Package testutil provides an in-memory stand-in for the Postgres
// repositories, so services and the HTTP stack can be tested without a
// database.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/tg-miniapp/internal/model"
)

// Memory holds every table. Its Users, Expenses and Comparisons views
// satisfy the service store interfaces.
type Memory struct {
	mu          sync.Mutex
	users       map[int64]*model.User
	expenses    map[uuid.UUID]ownedExpense
	comparisons map[uuid.UUID]ownedComparison
	clock       func() time.Time
	seq         int64

	Users       *MemoryUsers
	Expenses    *MemoryExpenses
	Comparisons *MemoryComparisons

	// Err, when set, is returned by every store call.
	Err error
}

type ownedExpense struct {
	owner uuid.UUID
	model.Expense
}

type ownedComparison struct {
	owner uuid.UUID
	model.Comparison
}

func NewMemory() *Memory {
	m := &Memory{
		users:       map[int64]*model.User{},
		expenses:    map[uuid.UUID]ownedExpense{},
		comparisons: map[uuid.UUID]ownedComparison{},
		clock:       time.Now,
	}
	m.Users = &MemoryUsers{m}
	m.Expenses = &MemoryExpenses{m}
	m.Comparisons = &MemoryComparisons{m}
	return m
}

// ExpenseCount reports how many expenses exist across all users.
func (m *Memory) ExpenseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expenses)
}

// ComparisonCount reports how many comparisons exist across all users.
func (m *Memory) ComparisonCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.comparisons)
}

// tick returns strictly increasing timestamps so created_at ordering is stable.
func (m *Memory) tick() time.Time {
	m.seq++
	return m.clock().Add(time.Duration(m.seq) * time.Microsecond)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type MemoryUsers struct{ m *Memory }

func (u *MemoryUsers) Upsert(_ context.Context, identity *model.TelegramIdentity) (*model.User, error) {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	now := m.tick()
	user, ok := m.users[identity.ID]
	if !ok {
		user = &model.User{ID: uuid.New(), TelegramID: identity.ID, CreatedAt: now}
		m.users[identity.ID] = user
	}
	user.Username = optional(identity.Username)
	user.FirstName = optional(identity.FirstName)
	user.LastName = optional(identity.LastName)
	user.UpdatedAt = now

	cp := *user
	return &cp, nil
}

func (u *MemoryUsers) GetIDByTelegramID(_ context.Context, telegramID int64) (uuid.UUID, bool, error) {
	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return uuid.Nil, false, m.Err
	}
	user, ok := m.users[telegramID]
	if !ok {
		return uuid.Nil, false, nil
	}
	return user.ID, true, nil
}

type MemoryExpenses struct{ m *Memory }

func (e *MemoryExpenses) List(_ context.Context, userID uuid.UUID) ([]model.Expense, error) {
	m := e.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := []model.Expense{}
	for _, row := range m.expenses {
		if row.owner == userID {
			out = append(out, row.Expense)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (e *MemoryExpenses) Create(_ context.Context, userID uuid.UUID, ne model.NewExpense) (*model.Expense, error) {
	m := e.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	expense := model.Expense{
		ID:          uuid.New(),
		Amount:      ne.Amount,
		Category:    ne.Category,
		Description: ne.Description,
		Date:        ne.Date,
		CreatedAt:   m.tick(),
	}
	m.expenses[expense.ID] = ownedExpense{owner: userID, Expense: expense}
	return &expense, nil
}

func (e *MemoryExpenses) Delete(_ context.Context, userID, id uuid.UUID) (int64, error) {
	m := e.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	row, ok := m.expenses[id]
	if !ok || row.owner != userID {
		return 0, nil
	}
	delete(m.expenses, id)
	return 1, nil
}

func (e *MemoryExpenses) Stats(_ context.Context, userID uuid.UUID, from, to *model.Date) ([]model.CategoryTotal, error) {
	m := e.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	byCategory := map[string]*model.CategoryTotal{}
	for _, row := range m.expenses {
		if row.owner != userID {
			continue
		}
		if from != nil && row.Date.Before(from.Time) {
			continue
		}
		if to != nil && row.Date.After(to.Time) {
			continue
		}
		t, ok := byCategory[row.Category]
		if !ok {
			t = &model.CategoryTotal{Category: row.Category, Total: decimal.Zero}
			byCategory[row.Category] = t
		}
		t.Total = t.Total.Add(row.Amount)
		t.Count++
	}

	out := make([]model.CategoryTotal, 0, len(byCategory))
	for _, t := range byCategory {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (e *MemoryExpenses) Categories(_ context.Context, userID uuid.UUID) ([]string, error) {
	m := e.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	latest := map[string]time.Time{}
	for _, row := range m.expenses {
		if row.owner != userID {
			continue
		}
		if row.CreatedAt.After(latest[row.Category]) {
			latest[row.Category] = row.CreatedAt
		}
	}
	out := make([]string, 0, len(latest))
	for c := range latest {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return latest[out[i]].After(latest[out[j]]) })
	return out, nil
}

type MemoryComparisons struct{ m *Memory }

func (c *MemoryComparisons) List(_ context.Context, userID uuid.UUID) ([]model.Comparison, error) {
	m := c.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := []model.Comparison{}
	for _, row := range m.comparisons {
		if row.owner == userID {
			out = append(out, row.Comparison)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (c *MemoryComparisons) Create(_ context.Context, userID uuid.UUID, nc model.NewComparison) (*model.Comparison, error) {
	m := c.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comparison := model.Comparison{
		ID:             uuid.New(),
		NameX:          nc.NameX,
		PriceX:         nc.PriceX,
		WeightX:        nc.WeightX,
		NameY:          nc.NameY,
		PriceY:         nc.PriceY,
		WeightY:        nc.WeightY,
		PricePerGramX:  nc.PricePerGramX,
		PricePerGramY:  nc.PricePerGramY,
		BetterOption:   nc.BetterOption,
		SavingsPercent: nc.SavingsPercent,
		Date:           nc.Date,
		CreatedAt:      m.tick(),
	}
	m.comparisons[comparison.ID] = ownedComparison{owner: userID, Comparison: comparison}
	return &comparison, nil
}

func (c *MemoryComparisons) Delete(_ context.Context, userID, id uuid.UUID) (int64, error) {
	m := c.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	row, ok := m.comparisons[id]
	if !ok || row.owner != userID {
		return 0, nil
	}
	delete(m.comparisons, id)
	return 1, nil
}
