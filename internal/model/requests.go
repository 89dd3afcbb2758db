package model

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/tg-miniapp/internal/validation"
)

var validate = newValidator()

// newValidator reports fields by the name the client used (json, query or
// path parameter) rather than the Go field name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

var hundred = decimal.NewFromInt(100)

// ---- expenses ----

type CreateExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Category    string           `json:"category" validate:"required,max=100"`
	Description string           `json:"description" validate:"max=500"`
	Date        *Date            `json:"date"`
}

func (r *CreateExpenseRequest) Validate() error {
	r.Category = strings.TrimSpace(r.Category)
	if err := validate.Struct(r); err != nil {
		return err
	}

	var errs validation.CustomValidationErrors
	if !r.Amount.IsPositive() {
		errs = append(errs, validation.CustomValidationError{Field: "amount", Message: "must be greater than 0"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToNewExpense applies the defaults: empty description, today's date.
func (r *CreateExpenseRequest) ToNewExpense(now time.Time) NewExpense {
	date := NewDate(now)
	if r.Date != nil && !r.Date.IsZero() {
		date = *r.Date
	}
	return NewExpense{
		Amount:      *r.Amount,
		Category:    r.Category,
		Description: r.Description,
		Date:        date,
	}
}

type DeleteExpenseRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *DeleteExpenseRequest) Validate() error {
	return validate.Struct(r)
}

type ExpenseStatsRequest struct {
	From *Date `query:"from"`
	To   *Date `query:"to"`
}

func (r *ExpenseStatsRequest) Validate() error {
	if r.From != nil && r.To != nil && r.To.Before(r.From.Time) {
		return validation.CustomValidationErrors{
			{Field: "to", Message: "must not be before from"},
		}
	}
	return nil
}

type ListExpensesRequest struct{}

func (r *ListExpensesRequest) Validate() error { return nil }

type ListCategoriesRequest struct{}

func (r *ListCategoriesRequest) Validate() error { return nil }

// ---- comparisons ----

type CreateComparisonRequest struct {
	NameX          string           `json:"nameX" validate:"max=255"`
	PriceX         *decimal.Decimal `json:"priceX" validate:"required"`
	WeightX        *decimal.Decimal `json:"weightX" validate:"required"`
	NameY          string           `json:"nameY" validate:"max=255"`
	PriceY         *decimal.Decimal `json:"priceY" validate:"required"`
	WeightY        *decimal.Decimal `json:"weightY" validate:"required"`
	PricePerGramX  *decimal.Decimal `json:"pricePerGramX" validate:"required"`
	PricePerGramY  *decimal.Decimal `json:"pricePerGramY" validate:"required"`
	BetterOption   Option           `json:"betterOption" validate:"required,oneof=X Y"`
	SavingsPercent *decimal.Decimal `json:"savingsPercent" validate:"required"`
	Date           *Timestamp       `json:"date"`
}

func (r *CreateComparisonRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}

	var errs validation.CustomValidationErrors
	nonNegative := func(field string, v *decimal.Decimal) {
		if v.IsNegative() {
			errs = append(errs, validation.CustomValidationError{Field: field, Message: "must not be negative"})
		}
	}
	positive := func(field string, v *decimal.Decimal) {
		if !v.IsPositive() {
			errs = append(errs, validation.CustomValidationError{Field: field, Message: "must be greater than 0"})
		}
	}

	nonNegative("priceX", r.PriceX)
	positive("weightX", r.WeightX)
	nonNegative("priceY", r.PriceY)
	positive("weightY", r.WeightY)
	nonNegative("pricePerGramX", r.PricePerGramX)
	nonNegative("pricePerGramY", r.PricePerGramY)
	nonNegative("savingsPercent", r.SavingsPercent)
	if r.SavingsPercent.GreaterThan(hundred) {
		errs = append(errs, validation.CustomValidationError{Field: "savingsPercent", Message: "must not exceed 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToNewComparison fills in the default item names and the current time.
func (r *CreateComparisonRequest) ToNewComparison(now time.Time) NewComparison {
	nameX := strings.TrimSpace(r.NameX)
	if nameX == "" {
		nameX = DefaultNameX
	}
	nameY := strings.TrimSpace(r.NameY)
	if nameY == "" {
		nameY = DefaultNameY
	}
	date := now
	if r.Date != nil && !r.Date.IsZero() {
		date = r.Date.Time
	}

	return NewComparison{
		NameX:          nameX,
		PriceX:         *r.PriceX,
		WeightX:        *r.WeightX,
		NameY:          nameY,
		PriceY:         *r.PriceY,
		WeightY:        *r.WeightY,
		PricePerGramX:  *r.PricePerGramX,
		PricePerGramY:  *r.PricePerGramY,
		BetterOption:   r.BetterOption,
		SavingsPercent: *r.SavingsPercent,
		Date:           date,
	}
}

type DeleteComparisonRequest struct {
	ID string `param:"id" validate:"required"`
}

func (r *DeleteComparisonRequest) Validate() error {
	return validate.Struct(r)
}

type ListComparisonsRequest struct{}

func (r *ListComparisonsRequest) Validate() error { return nil }

// ---- users ----

// InitUserRequest has no body; the profile comes from the verified identity.
type InitUserRequest struct{}

func (r *InitUserRequest) Validate() error { return nil }
