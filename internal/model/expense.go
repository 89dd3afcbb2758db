package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCategories are offered by the Mini App before the user has
// recorded anything of their own.
var DefaultCategories = []string{
	"Продукты",
	"Мясо и рыба",
	"Овощи и фрукты",
	"Молочное",
	"Хлеб и выпечка",
	"Напитки",
	"Снеки",
	"Другое",
}

type Expense struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Category    string          `json:"category" db:"category"`
	Description string          `json:"description" db:"description"`
	Date        Date            `json:"date" db:"date"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// NewExpense is what the repository inserts for an owner.
type NewExpense struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        Date
}

// CategoryTotal is one slice of the spending breakdown.
type CategoryTotal struct {
	Category   string          `json:"category" db:"category"`
	Total      decimal.Decimal `json:"total" db:"total"`
	Count      int64           `json:"count" db:"count"`
	Percentage decimal.Decimal `json:"percentage" db:"-"`
}

// ExpenseStats summarizes a user's spending over an optional date range.
type ExpenseStats struct {
	From       *Date           `json:"from,omitempty"`
	To         *Date           `json:"to,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
	Categories []CategoryTotal `json:"categories"`
}
