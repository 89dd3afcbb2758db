package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/tg-miniapp/internal/errs"
	"github.com/deppfellow/tg-miniapp/internal/model"
	"github.com/deppfellow/tg-miniapp/internal/service"
	"github.com/deppfellow/tg-miniapp/internal/testutil"
)

var fixedNow = time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)

func newServices(t *testing.T) (*service.Services, *testutil.Memory) {
	t.Helper()
	mem := testutil.NewMemory()
	svc := service.New(service.Stores{
		Users:       mem.Users,
		Expenses:    mem.Expenses,
		Comparisons: mem.Comparisons,
	}, func() time.Time { return fixedNow })
	return svc, mem
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *errs.HTTPError with status %d, got %v", status, err)
	}
	if httpErr.Status != status {
		t.Fatalf("status = %d, want %d", httpErr.Status, status)
	}
}

func expenseRequest(t *testing.T, body string) *model.CreateExpenseRequest {
	t.Helper()
	var req model.CreateExpenseRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("invalid request %s: %v", body, err)
	}
	return &req
}

func TestUserInitIsIdempotent(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	first, err := svc.User.Init(ctx, &model.TelegramIdentity{ID: 10, FirstName: "Anna"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.User.Init(ctx, &model.TelegramIdentity{ID: 10, FirstName: "Anya", Username: "anya"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID || second.TelegramID != 10 {
		t.Errorf("identity changed between inits")
	}
	if *second.FirstName != "Anya" || *second.Username != "anya" {
		t.Errorf("profile not refreshed: %+v", second)
	}
}

func TestUnknownUserIsNotFound(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	_, err := svc.Expense.List(ctx, 404)
	requireStatus(t, err, http.StatusNotFound)

	var httpErr *errs.HTTPError
	errors.As(err, &httpErr)
	if httpErr.Message != "User not found" || httpErr.Action == nil || httpErr.Action.Type != errs.ActionTypeReinit {
		t.Errorf("unexpected error: %+v", httpErr)
	}

	_, err = svc.Comparison.List(ctx, 404)
	requireStatus(t, err, http.StatusNotFound)
}

func TestExpenseLifecycle(t *testing.T) {
	svc, mem := newServices(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2} {
		if _, err := svc.User.Init(ctx, &model.TelegramIdentity{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	created, err := svc.Expense.Create(ctx, 1, expenseRequest(t, `{"amount":250,"category":"Продукты"}`))
	if err != nil {
		t.Fatal(err)
	}
	if created.Date.String() != "2024-05-20" || created.Description != "" {
		t.Errorf("defaults not applied: %+v", created)
	}

	if _, err := svc.Expense.Create(ctx, 1, expenseRequest(t, `{"amount":99.9,"category":"Напитки","date":"2024-05-25"}`)); err != nil {
		t.Fatal(err)
	}

	list, err := svc.Expense.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Date.String() != "2024-05-25" {
		t.Fatalf("unexpected list: %+v", list)
	}

	others, err := svc.Expense.List(ctx, 2)
	if err != nil || len(others) != 0 {
		t.Fatalf("other user sees %d expenses (err=%v)", len(others), err)
	}

	res, err := svc.Expense.Delete(ctx, 2, created.ID.String())
	if err != nil || !res.Success {
		t.Fatalf("cross-owner delete: %+v %v", res, err)
	}
	if mem.ExpenseCount() != 2 {
		t.Errorf("cross-owner delete removed a row")
	}

	res, err = svc.Expense.Delete(ctx, 1, created.ID.String())
	if err != nil || !res.Success {
		t.Fatalf("owner delete: %+v %v", res, err)
	}
	if mem.ExpenseCount() != 1 {
		t.Errorf("owner delete did not remove the row")
	}

	_, err = svc.Expense.Delete(ctx, 1, "nope")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestExpenseStats(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	if _, err := svc.User.Init(ctx, &model.TelegramIdentity{ID: 1}); err != nil {
		t.Fatal(err)
	}

	for _, body := range []string{
		`{"amount":300,"category":"Мясо и рыба","date":"2024-05-01"}`,
		`{"amount":100,"category":"Напитки","date":"2024-05-02"}`,
		`{"amount":200,"category":"Мясо и рыба","date":"2024-04-01"}`,
	} {
		if _, err := svc.Expense.Create(ctx, 1, expenseRequest(t, body)); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.Expense.Stats(ctx, 1, &model.ExpenseStatsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Total.Equal(decimal.NewFromInt(600)) || stats.Count != 3 {
		t.Errorf("total=%s count=%d", stats.Total, stats.Count)
	}
	if len(stats.Categories) != 2 || stats.Categories[0].Category != "Мясо и рыба" {
		t.Fatalf("unexpected categories: %+v", stats.Categories)
	}
	if !stats.Categories[0].Percentage.Equal(decimal.RequireFromString("83.33")) {
		t.Errorf("percentage = %s", stats.Categories[0].Percentage)
	}

	from, _ := model.ParseDate("2024-05-01")
	stats, err = svc.Expense.Stats(ctx, 1, &model.ExpenseStatsRequest{From: &from})
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Total.Equal(decimal.NewFromInt(400)) || !stats.Categories[0].Percentage.Equal(decimal.NewFromInt(75)) {
		t.Errorf("filtered stats: %+v", stats)
	}

	empty, _ := model.ParseDate("2030-01-01")
	stats, err = svc.Expense.Stats(ctx, 1, &model.ExpenseStatsRequest{From: &empty})
	if err != nil || !stats.Total.IsZero() || len(stats.Categories) != 0 {
		t.Errorf("empty range: %+v %v", stats, err)
	}
}

func TestCategoriesMergeDefaults(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	if _, err := svc.User.Init(ctx, &model.TelegramIdentity{ID: 1}); err != nil {
		t.Fatal(err)
	}
	for _, body := range []string{
		`{"amount":1,"category":"Продукты"}`,
		`{"amount":1,"category":"Кофе"}`,
	} {
		if _, err := svc.Expense.Create(ctx, 1, expenseRequest(t, body)); err != nil {
			t.Fatal(err)
		}
	}

	categories, err := svc.Expense.Categories(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(categories) != len(model.DefaultCategories)+1 {
		t.Fatalf("categories = %v", categories)
	}
	if categories[0] != model.DefaultCategories[0] || categories[len(categories)-1] != "Кофе" {
		t.Errorf("unexpected order: %v", categories)
	}
}

func TestComparisonLifecycle(t *testing.T) {
	svc, mem := newServices(t)
	ctx := context.Background()
	if _, err := svc.User.Init(ctx, &model.TelegramIdentity{ID: 1}); err != nil {
		t.Fatal(err)
	}

	var req model.CreateComparisonRequest
	body := `{"nameX":"","priceX":10,"weightX":100,"priceY":8,"weightY":100,` +
		`"pricePerGramX":0.1,"pricePerGramY":0.08,"betterOption":"Y","savingsPercent":20}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}

	created, err := svc.Comparison.Create(ctx, 1, &req)
	if err != nil {
		t.Fatal(err)
	}
	if created.NameX != model.DefaultNameX || !created.Date.Equal(fixedNow) {
		t.Errorf("defaults not applied: %+v", created)
	}

	list, err := svc.Comparison.List(ctx, 1)
	if err != nil || len(list) != 1 || !list[0].PricePerGramY.Equal(decimal.RequireFromString("0.08")) {
		t.Fatalf("list = %+v (err=%v)", list, err)
	}

	if _, err := svc.Comparison.Delete(ctx, 1, uuid.NewString()); err != nil {
		t.Errorf("deleting a missing id should succeed: %v", err)
	}
	if mem.ComparisonCount() != 1 {
		t.Errorf("wrong row deleted")
	}
	if _, err := svc.Comparison.Delete(ctx, 1, created.ID.String()); err != nil || mem.ComparisonCount() != 0 {
		t.Errorf("delete failed: %v", err)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	svc, mem := newServices(t)
	boom := errors.New("connection reset")
	mem.Err = boom

	if _, err := svc.User.Init(context.Background(), &model.TelegramIdentity{ID: 1}); !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}
