package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/owaste/rewards-service/internal/api/http"
	"github.com/owaste/rewards-service/internal/api/http/handlers"
	"github.com/owaste/rewards-service/internal/auth"
	"github.com/owaste/rewards-service/internal/catalog"
	"github.com/owaste/rewards-service/internal/config"
	"github.com/owaste/rewards-service/internal/events"
	"github.com/owaste/rewards-service/internal/gateway"
	"github.com/owaste/rewards-service/internal/observability"
	"github.com/owaste/rewards-service/internal/repository"
	"github.com/owaste/rewards-service/internal/scan"
	"github.com/owaste/rewards-service/internal/service"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	store := repository.NewMemoryStore()
	sessions := repository.NewMemorySessionStore()
	cat := catalog.Default()
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, sessions, logger, config.NotificationConfig{}).RegisterHandlers()

	scans := service.NewScanService(config.ScanConfig{}, config.ChallengeConfig{}, service.ScanDependencies{
		LedgerRepo: store,
		Sessions:   sessions,
		Resolver:   scan.NewRandomResolver(cat.WasteTypes()),
		Dispatcher: dispatcher,
	})
	t.Cleanup(scans.Shutdown)
	nav := service.NewNavigationService(sessions, scans, logger)
	scans.SetReturnHandler(nav.ReturnHome)
	authService := service.NewAuthService(config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost}, service.AuthDependencies{
		UserRepo:   store,
		Navigation: nav,
	})
	sim := &gateway.Simulated{}
	wallet, err := service.NewWalletService(config.WalletConfig{PointValueIDR: "150", MilestonePoints: 500}, service.WalletDependencies{
		UserRepo:   store,
		LedgerRepo: store,
		Catalog:    cat,
		Locks:      repository.NewMemoryRedemptionLock(),
		Payments:   sim,
		Fulfiller:  sim,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatal(err)
	}

	hash, err := auth.HashPassword(repository.DemoPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repository.SeedDemo(context.Background(), store, store, hash); err != nil {
		t.Fatal(err)
	}

	metrics := observability.NewMetrics()
	return httptransport.NewServer(httptransport.ServerConfig{
		AppName: "test",
		Logger:  logger,
		Metrics: metrics,
	}, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Session:        handlers.NewSessionHandler(nav),
		Catalog:        handlers.NewCatalogHandler(cat),
		Scan:           handlers.NewScanHandler(scans),
		Wallet:         handlers.NewWalletHandler(wallet),
		History:        handlers.NewHistoryHandler(service.NewHistoryService(store, cat)),
		Home:           handlers.NewHomeHandler(service.NewHomeService(config.ChallengeConfig{WeeklyTarget: 10, BonusPoints: 100}, store, store, sessions)),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store),
	})
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp, env
}

func expectError(t *testing.T, resp *http.Response, env envelope, status int, code string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("status = %d, want %d", resp.StatusCode, status)
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, env := do(t, app, http.MethodPost, "/auth/users/login", "", map[string]string{
		"email":    repository.DemoEmail,
		"password": repository.DemoPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d (%+v)", resp.StatusCode, env.Error)
	}
	var session struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
		View string `json:"view"`
	}
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatal(err)
	}
	if session.View != "home" {
		t.Errorf("view after login = %q", session.View)
	}
	return session.Auth.Token
}

func TestHealthAndUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	resp, _ := do(t, app, http.MethodGet, "/health/live", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("live status = %d", resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodGet, "/health/ready", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready status = %d", resp.StatusCode)
	}
	resp, env := do(t, app, http.MethodGet, "/does-not-exist", "", nil)
	expectError(t, resp, env, http.StatusNotFound, "NOT_FOUND")

	resp, env = do(t, app, http.MethodGet, "/health/metrics", "", nil)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(env.Data, []byte("GET /health/live 200")) {
		t.Errorf("metrics = %s", env.Data)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/me", "/wallet", "/history", "/scan", "/session/view"} {
		resp, env := do(t, app, http.MethodGet, path, "", nil)
		expectError(t, resp, env, http.StatusUnauthorized, "UNAUTHORIZED")
	}
	resp, env := do(t, app, http.MethodGet, "/me", "not-a-jwt", nil)
	expectError(t, resp, env, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestRegisterAndMe(t *testing.T) {
	app := newTestApp(t)
	resp, env := do(t, app, http.MethodPost, "/auth/users/register", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "recycling!",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d (%+v)", resp.StatusCode, env.Error)
	}
	var session struct {
		User struct {
			Points int `json:"points"`
		} `json:"user"`
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatal(err)
	}
	if session.User.Points != 0 {
		t.Errorf("new member points = %d", session.User.Points)
	}

	resp, _ = do(t, app, http.MethodGet, "/me", session.Auth.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("me status = %d", resp.StatusCode)
	}

	resp, env = do(t, app, http.MethodPost, "/auth/users/register", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "recycling!",
	})
	expectError(t, resp, env, http.StatusConflict, "CONFLICT")
}

func TestWalletEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	resp, env := do(t, app, http.MethodGet, "/wallet", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("wallet status = %d", resp.StatusCode)
	}
	var wallet struct {
		Points       int    `json:"points"`
		CashValueIDR string `json:"cash_value_idr"`
	}
	_ = json.Unmarshal(env.Data, &wallet)
	if wallet.Points != 1250 || wallet.CashValueIDR != "187500.00" {
		t.Errorf("wallet = %+v", wallet)
	}

	resp, env = do(t, app, http.MethodPost, "/wallet/convert", token, map[string]int{"points": 500})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("convert status = %d (%+v)", resp.StatusCode, env.Error)
	}
	var converted struct {
		Balance int `json:"balance"`
	}
	_ = json.Unmarshal(env.Data, &converted)
	if converted.Balance != 750 {
		t.Errorf("balance = %d, want 750", converted.Balance)
	}

	resp, env = do(t, app, http.MethodPost, "/wallet/convert", token, map[string]int{"points": 1000})
	expectError(t, resp, env, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE")

	resp, env = do(t, app, http.MethodPost, "/wallet/rewards/4/redeem", token, nil)
	expectError(t, resp, env, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE")

	resp, env = do(t, app, http.MethodPost, "/wallet/rewards/abc/redeem", token, nil)
	expectError(t, resp, env, http.StatusBadRequest, "VALIDATION_FAILED")

	resp, env = do(t, app, http.MethodPost, "/wallet/rewards/1/redeem", token, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("redeem status = %d (%+v)", resp.StatusCode, env.Error)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	resp, env := do(t, app, http.MethodGet, "/history?type=earned&status=completed", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d", resp.StatusCode)
	}
	var entries []struct {
		Type   string `json:"type"`
		Status string `json:"status"`
	}
	_ = json.Unmarshal(env.Data, &entries)
	if len(entries) != 5 {
		t.Errorf("entries = %d, want 5", len(entries))
	}
	for _, e := range entries {
		if e.Type != "earned" || e.Status != "completed" {
			t.Errorf("unexpected entry %+v", e)
		}
	}

	resp, env = do(t, app, http.MethodGet, "/history/stats", token, nil)
	var stats struct {
		TotalEarned int `json:"total_earned"`
		TotalSpent  int `json:"total_spent"`
	}
	_ = json.Unmarshal(env.Data, &stats)
	if resp.StatusCode != http.StatusOK || stats.TotalEarned != 310 || stats.TotalSpent != 2250 {
		t.Errorf("stats = %+v", stats)
	}

	resp, env = do(t, app, http.MethodGet, "/history?type=refund", token, nil)
	expectError(t, resp, env, http.StatusBadRequest, "VALIDATION_FAILED")

	resp, _ = do(t, app, http.MethodGet, "/history/export?search=bin", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "spreadsheetml") {
		t.Errorf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), ".xlsx") {
		t.Errorf("content disposition = %q", resp.Header.Get("Content-Disposition"))
	}
}

func TestSessionAndScanEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app)

	resp, env := do(t, app, http.MethodPost, "/session/navigate", token, map[string]string{"view": "landing"})
	expectError(t, resp, env, http.StatusConflict, "CONFLICT")

	resp, _ = do(t, app, http.MethodPost, "/session/navigate", token, map[string]string{"view": "scanner"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("navigate status = %d", resp.StatusCode)
	}

	resp, env = do(t, app, http.MethodPost, "/scan/camera", token, map[string]bool{"granted": false})
	expectError(t, resp, env, http.StatusConflict, "CAMERA_DENIED")

	resp, env = do(t, app, http.MethodPost, "/scan/camera", token, map[string]any{})
	expectError(t, resp, env, http.StatusBadRequest, "VALIDATION_FAILED")

	resp, env = do(t, app, http.MethodPost, "/scan/camera", token, map[string]bool{"granted": true})
	if resp.StatusCode != http.StatusOK || !bytes.Contains(env.Data, []byte(`"scanning"`)) {
		t.Fatalf("camera retry = %d %s", resp.StatusCode, env.Data)
	}

	resp, env = do(t, app, http.MethodPost, "/scan/stop", token, nil)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(env.Data, []byte(`"idle"`)) {
		t.Fatalf("stop = %d %s", resp.StatusCode, env.Data)
	}
	resp, env = do(t, app, http.MethodPost, "/scan/capture", token, nil)
	expectError(t, resp, env, http.StatusConflict, "CONFLICT")

	resp, env = do(t, app, http.MethodPost, "/auth/logout", token, nil)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(env.Data, []byte(`"landing"`)) {
		t.Fatalf("logout = %d %s", resp.StatusCode, env.Data)
	}
}
