package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultNameX = "Товар X"
	DefaultNameY = "Товар Y"
)

// Option identifies one side of a comparison.
type Option string

const (
	OptionX Option = "X"
	OptionY Option = "Y"
)

// Comparison records which of two goods is cheaper per gram and by how much.
type Comparison struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	NameX          string          `json:"name_x" db:"name_x"`
	PriceX         decimal.Decimal `json:"price_x" db:"price_x"`
	WeightX        decimal.Decimal `json:"weight_x" db:"weight_x"`
	NameY          string          `json:"name_y" db:"name_y"`
	PriceY         decimal.Decimal `json:"price_y" db:"price_y"`
	WeightY        decimal.Decimal `json:"weight_y" db:"weight_y"`
	PricePerGramX  decimal.Decimal `json:"price_per_gram_x" db:"price_per_gram_x"`
	PricePerGramY  decimal.Decimal `json:"price_per_gram_y" db:"price_per_gram_y"`
	BetterOption   Option          `json:"better_option" db:"better_option"`
	SavingsPercent decimal.Decimal `json:"savings_percent" db:"savings_percent"`
	Date           time.Time       `json:"date" db:"date"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// NewComparison is what the repository inserts for an owner.
type NewComparison struct {
	NameX          string
	PriceX         decimal.Decimal
	WeightX        decimal.Decimal
	NameY          string
	PriceY         decimal.Decimal
	WeightY        decimal.Decimal
	PricePerGramX  decimal.Decimal
	PricePerGramY  decimal.Decimal
	BetterOption   Option
	SavingsPercent decimal.Decimal
	Date           time.Time
}
