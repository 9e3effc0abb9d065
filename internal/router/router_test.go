package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cashflow/internal/cache"
	"cashflow/internal/config"
	"cashflow/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T, cfg *config.Config) (*testServer, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	if cfg.StorageDir == "" {
		cfg.StorageDir = t.TempDir()
	}
	if cfg.LoginRatePerMinute == 0 {
		cfg.LoginRatePerMinute = 100
	}
	user := testutil.CreateTestUser(t, db)
	return &testServer{t: t, engine: New(cfg, NewServices(db, cache.Nop{}, cfg.StorageDir))}, user.Email
}

func (s *testServer) do(method, path, body string, header ...string) (*httptest.ResponseRecorder, map[string]interface{}) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			s.t.Fatalf("bad JSON from %s %s: %v", method, path, err)
		}
	}
	return rec, out
}

func (s *testServer) login(email string) {
	s.t.Helper()
	rec, body := s.do("POST", "/api/v1/auth/login", `{"email":"`+email+`","password":"`+testutil.TestPassword+`"}`)
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	s.token = body["token"].(string)
}

func entityID(t *testing.T, body map[string]interface{}, key string) string {
	t.Helper()
	entity, ok := body[key].(map[string]interface{})
	if !ok {
		t.Fatalf("expected %s in %v", key, body)
	}
	return entity["id"].(string)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &config.Config{})

	rec, body := srv.do("GET", "/api/health", "")

	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response %d %v", rec.Code, body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t, &config.Config{})

	for _, path := range []string{"/api/v1/profile", "/api/v1/dashboard", "/api/v1/wallets", "/api/v1/settings/appearance/history"} {
		rec, _ := srv.do("GET", path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestAppearanceReadIsPublic(t *testing.T) {
	srv, _ := newTestServer(t, &config.Config{})

	rec, body := srv.do("GET", "/api/v1/appearance", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any appearance, got %d", rec.Code)
	}
	if body["error"].(map[string]interface{})["code"] != "APPEARANCE_NOT_FOUND" {
		t.Errorf("unexpected error %v", body)
	}
}

func TestRecordingATransactionMovesTheWallet(t *testing.T) {
	srv, email := newTestServer(t, &config.Config{})
	srv.login(email)

	rec, body := srv.do("POST", "/api/v1/wallets", `{"name":"Cash","initial_balance":"1000"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create wallet: %d %s", rec.Code, rec.Body.String())
	}
	walletID := entityID(t, body, "wallet")

	rec, body = srv.do("POST", "/api/v1/categories", `{"name":"Jajan","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", rec.Code, rec.Body.String())
	}
	categoryID := entityID(t, body, "category")

	rec, body = srv.do("POST", "/api/v1/transactions",
		`{"category_id":"`+categoryID+`","wallet_id":"`+walletID+`","amount":"250","description":"Snacks"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: %d %s", rec.Code, rec.Body.String())
	}
	if body["redirect"] != "/transactions" {
		t.Errorf("expected redirect to /transactions, got %v", body["redirect"])
	}
	code := body["transaction"].(map[string]interface{})["code"].(string)
	if !strings.HasPrefix(code, "TRX") {
		t.Errorf("unexpected code %q", code)
	}

	rec, body = srv.do("GET", "/api/v1/wallets/"+walletID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get wallet: %d", rec.Code)
	}
	balance := decimal.RequireFromString(body["wallet"].(map[string]interface{})["balance"].(string))
	if !balance.Equal(decimal.NewFromInt(750)) {
		t.Errorf("expected balance 750, got %s", balance)
	}

	rec, body = srv.do("GET", "/api/v1/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: %d", rec.Code)
	}
	dash := body["dashboard"].(map[string]interface{})
	if !decimal.RequireFromString(dash["expense_month"].(string)).Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected monthly expense 250, got %v", dash["expense_month"])
	}
	if recent := dash["recent_transactions"].([]interface{}); len(recent) != 1 {
		t.Errorf("expected one recent transaction, got %d", len(recent))
	}

	rec, body = srv.do("POST", "/api/v1/transactions",
		`{"category_id":"`+categoryID+`","wallet_id":"`+walletID+`","type":"income","amount":"5"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("mismatched type: expected 422, got %d %s", rec.Code, rec.Body.String())
	}
	if body["error"].(map[string]interface{})["code"] != "SAVE_FAILED" {
		t.Errorf("unexpected error %v", body)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	srv, email := newTestServer(t, &config.Config{LoginRatePerMinute: 2})

	payload := `{"email":"` + email + `","password":"wrong-password"}`
	for i := 0; i < 2; i++ {
		rec, _ := srv.do("POST", "/api/v1/auth/login", payload)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	rec, _ := srv.do("POST", "/api/v1/auth/login", payload)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestMetricsEndpointKey(t *testing.T) {
	srv, _ := newTestServer(t, &config.Config{MetricsAPIKey: "scrape-key"})
	srv.do("GET", "/api/health", "")

	rec, _ := srv.do("GET", "/metrics", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	rec, _ = srv.do("GET", "/metrics", "", "X-API-Key", "scrape-key")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cashflow_http_requests_total") {
		t.Error("expected http request counter in metrics output")
	}
}
