package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/cache"
	"finsight/internal/dashboard"
	"finsight/internal/services"
	"finsight/internal/storage"
)

type testServer struct {
	srv  *Server
	repo *storage.SQLiteRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "finsight.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	engine := analytics.NewEngine(repo.Transactions(), repo.Budgets(), repo.Goals(), repo.Categories(), nil)
	composer := dashboard.NewComposer(engine, nil)
	dashCache := cache.NewLRUCache[dashboard.Summary](16, time.Minute)
	svc := services.NewReportService(engine, composer, repo.Reports(), repo.Budgets(), repo.Goals(), nil, dashCache, nil)

	srv := NewServer(":0", svc, nil, Options{})
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return &testServer{srv: srv, repo: repo}
}

func (ts *testServer) do(t *testing.T, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	ts.srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seedTransaction(t *testing.T, id, userID, amount, txType, categoryID string, date time.Time) {
	t.Helper()
	_, err := ts.repo.DB().Exec(
		`INSERT INTO transactions (id, user_id, amount, type, category_id, date, description)
		 VALUES (?, ?, ?, ?, ?, ?, '')`,
		id, userID, amount, txType, categoryID, date.UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("seed transaction %s: %v", id, err)
	}
}

func (ts *testServer) seedBudget(t *testing.T, id, userID string, start, end time.Time) {
	t.Helper()
	_, err := ts.repo.DB().Exec(
		`INSERT INTO budgets (id, user_id, name, total_amount, period, start_date, end_date)
		 VALUES (?, ?, '', '2000', 'month', ?, ?)`,
		id, userID, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("seed budget %s: %v", id, err)
	}
	_, err = ts.repo.DB().Exec(
		`INSERT INTO budget_allocations (budget_id, category_id, allocated_amount, spent_amount)
		 VALUES (?, 'food', '2000', '0')`, id)
	if err != nil {
		t.Fatalf("seed allocation for %s: %v", id, err)
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Errorf("readyz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMissingUserIDHeader(t *testing.T) {
	ts := newTestServer(t)

	for _, target := range []string{
		"/api/reports",
		"/api/dashboard",
		"/api/insights",
		"/api/budgets/b1/health",
		"/api/budgets/b1/recommendations",
	} {
		rec := ts.do(t, http.MethodGet, target, "", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s without identity = %d, want 400", target, rec.Code)
		}
	}
}

func TestGenerateReport_Endpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.seedTransaction(t, "t1", "user-1", "100", "expense", "food", time.Now().UTC().AddDate(0, 0, -2))

	t.Run("transient report", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/reports", "user-1", `{"type":"spending","period":"month"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["type"] != "spending" {
			t.Errorf("type = %v", body["type"])
		}
	})

	t.Run("persisted report returns 201 and is retrievable", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/reports", "user-1", `{"type":"spending","period":"month","persist":true}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		id, _ := decodeBody(t, rec)["id"].(string)
		if id == "" {
			t.Fatal("missing report id")
		}

		rec = ts.do(t, http.MethodGet, "/api/reports/"+id, "user-1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("get status = %d", rec.Code)
		}

		// Another user must not see it.
		rec = ts.do(t, http.MethodGet, "/api/reports/"+id, "user-2", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("cross-user status = %d, want 404", rec.Code)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/reports", "user-1", `{"type":`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/reports", "user-1", `{"type":"pie_chart"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("bad explicit dates", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/reports", "user-1",
			`{"type":"spending","startDate":"2025-06-30","endDate":"2025-06-01"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestListReports_EmptyIsArray(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/reports", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	reports, ok := body["reports"].([]any)
	if !ok {
		t.Fatalf("reports = %T, want array", body["reports"])
	}
	if len(reports) != 0 {
		t.Errorf("got %d reports, want none", len(reports))
	}
}

func TestGetReport_Unknown(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/reports/nope", "user-1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	ts := newTestServer(t)
	now := time.Now().UTC()
	ts.seedTransaction(t, "t1", "user-1", "2000", "income", "salary", now.AddDate(0, 0, -2))
	ts.seedTransaction(t, "t2", "user-1", "500", "expense", "food", now.AddDate(0, 0, -2))

	rec := ts.do(t, http.MethodGet, "/api/dashboard", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["period"] != "month" {
		t.Errorf("period = %v, want month default", body["period"])
	}
	if body["monthlyIncome"] != 2000.0 {
		t.Errorf("monthlyIncome = %v, want 2000", body["monthlyIncome"])
	}
	if body["savingsRate"] != 75.0 {
		t.Errorf("savingsRate = %v, want 75", body["savingsRate"])
	}
}

func TestInsightsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/insights", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestBudgetHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	now := time.Now().UTC()
	ts.seedBudget(t, "b1", "user-1", now.AddDate(0, 0, -10), now.AddDate(0, 0, 20))

	rec := ts.do(t, http.MethodGet, "/api/budgets/b1/health", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if level, _ := body["healthLevel"].(string); level == "" {
		t.Error("missing health level")
	}

	rec = ts.do(t, http.MethodGet, "/api/budgets/missing/health", "user-1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown budget status = %d, want 404", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/budgets/b1/health", "user-2", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user status = %d, want 404", rec.Code)
	}
}

func TestBudgetHealth_ForeignBudgetBodyMatchesUnknown(t *testing.T) {
	ts := newTestServer(t)

	// Same id, first when it does not exist at all, then when it belongs to
	// another user. The responses must be byte-identical so a 404 cannot be
	// used to probe for foreign budgets.
	before := ts.do(t, http.MethodGet, "/api/budgets/b1/health", "user-2", "")
	if before.Code != http.StatusNotFound {
		t.Fatalf("unknown budget status = %d, want 404", before.Code)
	}

	now := time.Now().UTC()
	ts.seedBudget(t, "b1", "user-1", now.AddDate(0, 0, -10), now.AddDate(0, 0, 20))

	after := ts.do(t, http.MethodGet, "/api/budgets/b1/health", "user-2", "")
	if after.Code != http.StatusNotFound {
		t.Fatalf("foreign budget status = %d, want 404", after.Code)
	}
	if got, want := after.Body.String(), before.Body.String(); got != want {
		t.Errorf("foreign budget body = %q, want %q", got, want)
	}
}

func TestBudgetRecommendationsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	now := time.Now().UTC()
	ts.seedBudget(t, "b1", "user-1", now.AddDate(0, 0, -10), now.AddDate(0, 0, 20))

	rec := ts.do(t, http.MethodGet, "/api/budgets/b1/recommendations", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if _, ok := body["recommendations"].([]any); !ok {
		t.Fatalf("recommendations = %T, want array", body["recommendations"])
	}
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/reports", "user-1", "")
	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Cache-Control":          "no-store",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestRateLimiting_PostsOnly(t *testing.T) {
	ts := newTestServer(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < requestsPerMinute+1; i++ {
		last = ts.do(t, http.MethodPost, "/api/reports", "user-1", `{"type":"spending"}`)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after the limit", last.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", last.Header().Get("Retry-After"))
	}

	// Reads stay unthrottled.
	rec := ts.do(t, http.MethodGet, "/api/reports", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", rec.Code)
	}
}
