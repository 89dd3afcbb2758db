package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/tg-miniapp/internal/validation"
)

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-05-17"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2024-05-17"` {
		t.Errorf("marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`"2024-05-17T23:10:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal rfc3339: %v", err)
	}
	if d.String() != "2024-05-17" {
		t.Errorf("rfc3339 input truncated to %s", d)
	}

	if err := json.Unmarshal([]byte(`"17.05.2024"`), &d); err == nil {
		t.Error("expected an error for an unsupported layout")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if d.String() != "2023-12-31" {
		t.Errorf("scanned %s", d)
	}
	if err := d.Scan("2024-01-02"); err != nil || d.String() != "2024-01-02" {
		t.Errorf("scan string: %v %s", err, d)
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected an error scanning an int")
	}
	v, _ := d.Value()
	if v != "2024-01-02" {
		t.Errorf("Value = %v", v)
	}
}

func TestDecimalsMarshalAsNumbers(t *testing.T) {
	c := Comparison{
		PriceX:        decimal.RequireFromString("10"),
		PricePerGramX: decimal.RequireFromString("0.1"),
		BetterOption:  OptionY,
	}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"price_x":10`) || !strings.Contains(string(out), `"price_per_gram_x":0.1`) {
		t.Errorf("decimals should be JSON numbers: %s", out)
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var names []string
	var verrs validator.ValidationErrors
	var cerrs validation.CustomValidationErrors
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			names = append(names, fe.Field())
		}
	case errors.As(err, &cerrs):
		for _, ce := range cerrs {
			names = append(names, ce.Field)
		}
	default:
		t.Fatalf("unexpected error type %T", err)
	}
	return names
}

func TestCreateExpenseRequest(t *testing.T) {
	t.Run("missing amount and category", func(t *testing.T) {
		var req CreateExpenseRequest
		if err := json.Unmarshal([]byte(`{"description":"lunch"}`), &req); err != nil {
			t.Fatal(err)
		}
		got := fieldNames(t, req.Validate())
		if strings.Join(got, ",") != "amount,category" {
			t.Errorf("fields = %v", got)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		var req CreateExpenseRequest
		_ = json.Unmarshal([]byte(`{"amount":0,"category":"Другое"}`), &req)
		got := fieldNames(t, req.Validate())
		if len(got) != 1 || got[0] != "amount" {
			t.Errorf("fields = %v", got)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		var req CreateExpenseRequest
		_ = json.Unmarshal([]byte(`{"amount":"12.50","category":" Продукты "}`), &req)
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		now := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
		ne := req.ToNewExpense(now)
		if ne.Category != "Продукты" || ne.Description != "" || ne.Date.String() != "2024-03-08" {
			t.Errorf("unexpected defaults: %+v", ne)
		}
		if !ne.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("amount = %s", ne.Amount)
		}
	})
}

func TestCreateComparisonRequest(t *testing.T) {
	valid := `{"priceX":10,"weightX":100,"priceY":8,"weightY":100,` +
		`"pricePerGramX":0.1,"pricePerGramY":0.08,"betterOption":"Y","savingsPercent":20}`

	t.Run("valid with default names", func(t *testing.T) {
		var req CreateComparisonRequest
		if err := json.Unmarshal([]byte(valid), &req); err != nil {
			t.Fatal(err)
		}
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		now := time.Now()
		nc := req.ToNewComparison(now)
		if nc.NameX != DefaultNameX || nc.NameY != DefaultNameY || !nc.Date.Equal(now) {
			t.Errorf("unexpected defaults: %+v", nc)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		var req CreateComparisonRequest
		_ = json.Unmarshal([]byte(`{"priceX":10}`), &req)
		got := fieldNames(t, req.Validate())
		want := "weightX,priceY,weightY,pricePerGramX,pricePerGramY,betterOption,savingsPercent"
		if strings.Join(got, ",") != want {
			t.Errorf("fields = %v", got)
		}
	})

	t.Run("date only", func(t *testing.T) {
		var req CreateComparisonRequest
		body := strings.Replace(valid, `}`, `,"date":"2024-01-01"}`, 1)
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatal(err)
		}
		nc := req.ToNewComparison(time.Now())
		if !nc.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("date = %v", nc.Date)
		}
	})

	t.Run("full timestamp", func(t *testing.T) {
		var req CreateComparisonRequest
		body := strings.Replace(valid, `}`, `,"date":"2024-01-01T10:30:00.123Z"}`, 1)
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatal(err)
		}
		nc := req.ToNewComparison(time.Now())
		if !nc.Date.Equal(time.Date(2024, 1, 1, 10, 30, 0, 123_000_000, time.UTC)) {
			t.Errorf("date = %v", nc.Date)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		var req CreateComparisonRequest
		err := json.Unmarshal([]byte(strings.Replace(valid, `}`, `,"date":"01/02/2024"}`, 1)), &req)
		if err == nil || !strings.Contains(err.Error(), "expected YYYY-MM-DD") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("bad option", func(t *testing.T) {
		var req CreateComparisonRequest
		_ = json.Unmarshal([]byte(strings.Replace(valid, `"Y"`, `"Z"`, 1)), &req)
		got := fieldNames(t, req.Validate())
		if len(got) != 1 || got[0] != "betterOption" {
			t.Errorf("fields = %v", got)
		}
	})

	t.Run("zero weight", func(t *testing.T) {
		var req CreateComparisonRequest
		_ = json.Unmarshal([]byte(strings.Replace(valid, `"weightX":100`, `"weightX":0`, 1)), &req)
		got := fieldNames(t, req.Validate())
		if len(got) != 1 || got[0] != "weightX" {
			t.Errorf("fields = %v", got)
		}
	})
}

func TestDeleteRequestsRequireID(t *testing.T) {
	req := DeleteExpenseRequest{}
	got := fieldNames(t, req.Validate())
	if len(got) != 1 || got[0] != "id" {
		t.Errorf("fields = %v", got)
	}

	// The id format is checked when the service parses it.
	ok := DeleteComparisonRequest{ID: "not-a-uuid"}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExpenseStatsRequest(t *testing.T) {
	from, _ := ParseDate("2024-05-10")
	to, _ := ParseDate("2024-05-01")
	req := ExpenseStatsRequest{From: &from, To: &to}
	if err := req.Validate(); err == nil {
		t.Error("expected an error when to precedes from")
	}
	req.To = nil
	if err := req.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
