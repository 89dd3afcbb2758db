package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/tg-miniapp/internal/auth"
	"github.com/deppfellow/tg-miniapp/internal/config"
	"github.com/deppfellow/tg-miniapp/internal/errs"
	"github.com/deppfellow/tg-miniapp/internal/handler"
	"github.com/deppfellow/tg-miniapp/internal/model"
	"github.com/deppfellow/tg-miniapp/internal/router"
	"github.com/deppfellow/tg-miniapp/internal/server"
	"github.com/deppfellow/tg-miniapp/internal/service"
	"github.com/deppfellow/tg-miniapp/internal/testutil"
)

const (
	alice = `{"id":111,"username":"alice","first_name":"Alice"}`
	bob   = `{"id":222,"first_name":"Bob"}`
)

type testAPI struct {
	t   *testing.T
	e   *echo.Echo
	mem *testutil.Memory
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := zerolog.Nop()
	obs := config.DefaultObservabilityConfig()
	obs.HealthChecks.Enabled = false

	s := &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Server:        config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
			Auth:          config.AuthConfig{Strategy: config.AuthStrategyHeader},
			Observability: obs,
		},
		Logger: &logger,
	}

	mem := testutil.NewMemory()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	services := service.New(service.Stores{
		Users:       mem.Users,
		Expenses:    mem.Expenses,
		Comparisons: mem.Comparisons,
	}, func() time.Time { return now })

	e := router.NewRouter(s, handler.NewHandlers(s, services), auth.HeaderResolver{})
	return &testAPI{t: t, e: e, mem: mem}
}

func (a *testAPI) do(method, target, identity, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if identity != "" {
		req.Header.Set(auth.HeaderTelegramUser, identity)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) expect(rec *httptest.ResponseRecorder, status int, out any) {
	a.t.Helper()
	if rec.Code != status {
		a.t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
}

func (a *testAPI) init(identity string) model.User {
	a.t.Helper()
	var user model.User
	a.expect(a.do(http.MethodPost, "/user/init", identity, ""), http.StatusOK, &user)
	return user
}

func TestPreflightNeedsNoIdentity(t *testing.T) {
	api := newTestAPI(t)
	for _, target := range []string{"/expenses", "/api/comparisons", "/nowhere"} {
		rec := api.do(http.MethodOptions, target, "", "")
		if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
			t.Errorf("OPTIONS %s = %d %q", target, rec.Code, rec.Body.String())
		}
		if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "*" {
			t.Errorf("OPTIONS %s: missing allow-origin", target)
		}
	}
}

func TestIdentityRequired(t *testing.T) {
	api := newTestAPI(t)

	for _, identity := range []string{"", "not json", `{"username":"x"}`} {
		rec := api.do(http.MethodGet, "/expenses", identity, "")
		var body errs.HTTPError
		api.expect(rec, http.StatusUnauthorized, &body)
		if body.Message != "Unauthorized: Telegram user not found" {
			t.Errorf("message = %q", body.Message)
		}
		if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "*" {
			t.Error("401 without allow-origin")
		}
	}

	api.expect(api.do(http.MethodGet, "/status", "", ""), http.StatusOK, nil)
	api.expect(api.do(http.MethodGet, "/api/status", "", ""), http.StatusOK, nil)
}

func TestUserInitIsIdempotent(t *testing.T) {
	api := newTestAPI(t)

	first := api.init(alice)
	second := api.init(`{"id":111,"username":"alice2","first_name":"Alice"}`)

	if first.ID != second.ID || second.TelegramID != 111 {
		t.Fatalf("init created a second user: %s vs %s", first.ID, second.ID)
	}
	if second.Username == nil || *second.Username != "alice2" {
		t.Errorf("username not refreshed: %+v", second)
	}
}

func TestUninitializedUserGetsReinitAction(t *testing.T) {
	api := newTestAPI(t)

	var body errs.HTTPError
	api.expect(api.do(http.MethodGet, "/expenses", alice, ""), http.StatusNotFound, &body)
	if body.Message != "User not found" || body.Action == nil || body.Action.Type != errs.ActionTypeReinit {
		t.Errorf("body = %+v", body)
	}
}

func TestExpensesAreIsolatedPerUser(t *testing.T) {
	api := newTestAPI(t)
	api.init(alice)
	api.init(bob)

	var older, newer, today model.Expense
	api.expect(api.do(http.MethodPost, "/expenses", alice, `{"amount":100,"category":"Продукты","date":"2024-01-10"}`), http.StatusCreated, &older)
	api.expect(api.do(http.MethodPost, "/api/expenses", alice, `{"amount":25.5,"category":"Напитки","description":"кофе","date":"2024-03-01"}`), http.StatusCreated, &newer)
	api.expect(api.do(http.MethodPost, "/expenses", alice, `{"amount":1,"category":"Другое"}`), http.StatusCreated, &today)

	if today.Date.String() != "2024-06-15" {
		t.Errorf("default date = %s", today.Date)
	}

	var list []model.Expense
	api.expect(api.do(http.MethodGet, "/expenses", alice, ""), http.StatusOK, &list)
	if len(list) != 3 {
		t.Fatalf("alice has %d expenses", len(list))
	}
	if list[0].ID != today.ID || list[1].ID != newer.ID || list[2].ID != older.ID {
		t.Errorf("not ordered by date desc: %s %s %s", list[0].Date, list[1].Date, list[2].Date)
	}
	if !list[1].Amount.Equal(decimal.RequireFromString("25.5")) {
		t.Errorf("amount = %s", list[1].Amount)
	}

	var bobList []model.Expense
	rec := api.do(http.MethodGet, "/expenses", bob, "")
	api.expect(rec, http.StatusOK, &bobList)
	if len(bobList) != 0 || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("bob sees %s", rec.Body.String())
	}

	var result service.DeleteResult
	api.expect(api.do(http.MethodDelete, "/expenses/"+older.ID.String(), bob, ""), http.StatusOK, &result)
	if !result.Success || api.mem.ExpenseCount() != 3 {
		t.Errorf("cross-user delete: success=%v count=%d", result.Success, api.mem.ExpenseCount())
	}

	api.expect(api.do(http.MethodDelete, "/expenses/"+older.ID.String(), alice, ""), http.StatusOK, &result)
	if !result.Success || api.mem.ExpenseCount() != 2 {
		t.Errorf("owner delete: success=%v count=%d", result.Success, api.mem.ExpenseCount())
	}
}

func TestExpenseValidation(t *testing.T) {
	api := newTestAPI(t)
	api.init(alice)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing amount", `{"category":"Продукты"}`, "amount"},
		{"missing category", `{"amount":10}`, "category"},
		{"blank category", `{"amount":10,"category":"   "}`, "category"},
		{"zero amount", `{"amount":0,"category":"Продукты"}`, "amount"},
		{"negative amount", `{"amount":-5,"category":"Продукты"}`, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errs.HTTPError
			api.expect(api.do(http.MethodPost, "/expenses", alice, tt.body), http.StatusBadRequest, &body)
			if len(body.Errors) == 0 || body.Errors[0].Field != tt.field {
				t.Errorf("errors = %+v, want field %q", body.Errors, tt.field)
			}
		})
	}

	api.expect(api.do(http.MethodPost, "/expenses", alice, `{"amount":`), http.StatusBadRequest, nil)
	for _, target := range []string{"/expenses/not-a-uuid", "/comparisons/not-a-uuid"} {
		var body errs.HTTPError
		api.expect(api.do(http.MethodDelete, target, alice, ""), http.StatusBadRequest, &body)
		if body.Message != "Invalid id" || len(body.Errors) != 1 || body.Errors[0].Field != "id" {
			t.Errorf("DELETE %s: body = %+v", target, body)
		}
	}
	if api.mem.ExpenseCount() != 0 {
		t.Errorf("invalid requests stored %d expenses", api.mem.ExpenseCount())
	}
}

func TestExpenseStatsAndCategories(t *testing.T) {
	api := newTestAPI(t)
	api.init(alice)

	for _, body := range []string{
		`{"amount":300,"category":"Мясо и рыба","date":"2024-05-01"}`,
		`{"amount":100,"category":"Кофе","date":"2024-05-02"}`,
		`{"amount":50,"category":"Мясо и рыба","date":"2024-04-01"}`,
	} {
		api.expect(api.do(http.MethodPost, "/expenses", alice, body), http.StatusCreated, nil)
	}

	var stats model.ExpenseStats
	api.expect(api.do(http.MethodGet, "/expenses/stats?from=2024-05-01&to=2024-05-31", alice, ""), http.StatusOK, &stats)
	if !stats.Total.Equal(decimal.NewFromInt(400)) || stats.Count != 2 || len(stats.Categories) != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Categories[0].Category != "Мясо и рыба" || !stats.Categories[0].Percentage.Equal(decimal.NewFromInt(75)) {
		t.Errorf("top category = %+v", stats.Categories[0])
	}

	api.expect(api.do(http.MethodGet, "/expenses/stats?from=2024-06-01&to=2024-05-01", alice, ""), http.StatusBadRequest, nil)

	var categories []string
	api.expect(api.do(http.MethodGet, "/categories", alice, ""), http.StatusOK, &categories)
	if len(categories) != len(model.DefaultCategories)+1 || categories[len(categories)-1] != "Кофе" {
		t.Errorf("categories = %v", categories)
	}
}

func TestComparisonRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	api.init(alice)
	api.init(bob)

	body := `{"priceX":10,"weightX":100,"priceY":8,"weightY":100,` +
		`"pricePerGramX":0.1,"pricePerGramY":0.08,"betterOption":"Y","savingsPercent":20}`

	var created model.Comparison
	api.expect(api.do(http.MethodPost, "/comparisons", alice, body), http.StatusCreated, &created)

	var list []model.Comparison
	api.expect(api.do(http.MethodGet, "/comparisons", alice, ""), http.StatusOK, &list)
	if len(list) != 1 {
		t.Fatalf("got %d comparisons", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.BetterOption != model.OptionY {
		t.Errorf("comparison = %+v", got)
	}
	if got.NameX != model.DefaultNameX || got.NameY != model.DefaultNameY {
		t.Errorf("names = %q %q", got.NameX, got.NameY)
	}
	for name, pair := range map[string][2]decimal.Decimal{
		"price_x":          {decimal.NewFromInt(10), got.PriceX},
		"weight_x":         {decimal.NewFromInt(100), got.WeightX},
		"price_y":          {decimal.NewFromInt(8), got.PriceY},
		"price_per_gram_x": {decimal.RequireFromString("0.1"), got.PricePerGramX},
		"price_per_gram_y": {decimal.RequireFromString("0.08"), got.PricePerGramY},
		"savings_percent":  {decimal.NewFromInt(20), got.SavingsPercent},
	} {
		if !pair[0].Equal(pair[1]) {
			t.Errorf("%s = %s, want %s", name, pair[1], pair[0])
		}
	}

	var bobList []model.Comparison
	api.expect(api.do(http.MethodGet, "/comparisons", bob, ""), http.StatusOK, &bobList)
	if len(bobList) != 0 {
		t.Errorf("bob sees %d comparisons", len(bobList))
	}

	api.expect(api.do(http.MethodPost, "/comparisons", alice, `{"priceX":10,"betterOption":"Z"}`), http.StatusBadRequest, nil)

	api.expect(api.do(http.MethodDelete, "/comparisons/"+created.ID.String(), bob, ""), http.StatusOK, nil)
	api.expect(api.do(http.MethodDelete, "/comparisons/"+created.ID.String(), alice, ""), http.StatusOK, nil)
	if api.mem.ComparisonCount() != 0 {
		t.Errorf("comparison not deleted")
	}
}

func TestComparisonAcceptsCalendarDate(t *testing.T) {
	api := newTestAPI(t)
	api.init(alice)

	body := `{"priceX":10,"weightX":100,"priceY":8,"weightY":100,` +
		`"pricePerGramX":0.1,"pricePerGramY":0.08,"betterOption":"Y","savingsPercent":20,` +
		`"date":"2024-01-01"}`

	var created model.Comparison
	api.expect(api.do(http.MethodPost, "/comparisons", alice, body), http.StatusCreated, &created)
	if !created.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", created.Date)
	}

	var errBody errs.HTTPError
	bad := strings.Replace(body, "2024-01-01", "yesterday", 1)
	api.expect(api.do(http.MethodPost, "/comparisons", alice, bad), http.StatusBadRequest, &errBody)
	if strings.Contains(errBody.Message, "parsing time") {
		t.Errorf("raw parse error leaked: %q", errBody.Message)
	}
}
func TestUnknownRoutes(t *testing.T) {
	api := newTestAPI(t)
	api.init(alice)

	var body errs.HTTPError
	api.expect(api.do(http.MethodGet, "/foo/bar", alice, ""), http.StatusNotFound, &body)
	if body.Message != "Not found" {
		t.Errorf("404 message = %q", body.Message)
	}

	api.expect(api.do(http.MethodPut, "/expenses", alice, `{}`), http.StatusMethodNotAllowed, &body)
	if body.Message != "Method not allowed" {
		t.Errorf("405 message = %q", body.Message)
	}

	api.expect(api.do(http.MethodGet, "/foo/bar", "", ""), http.StatusUnauthorized, nil)
}
