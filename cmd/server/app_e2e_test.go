package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/corequote/corequote/auth"
	"github.com/corequote/corequote/internal/config"
	"github.com/corequote/corequote/internal/db"
	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/storage"
	"gorm.io/gorm"
)

const testSecret = "e2e-secret"

func setupE2E(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file:e2e_" + t.Name() + "?mode=memory&cache=shared"},
		App: config.AppConfig{
			SessionSecret: testSecret,
			AllowedHosts:  []string{"example.com", "localhost"},
			TimeZone:      "America/Mexico_City",
		},
	}
	conn, err := db.Open(cfg.Database)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn, cfg.Database, false); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	return NewApp(cfg, conn, store), conn
}

func sessionCookie(t *testing.T, uid uint) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	auth.NewManager(testSecret, false).CreateSession(rec, uid)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatalf("no session cookie")
	return nil
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	app, _ := setupE2E(t)

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login?next=%2Fclients" {
		t.Fatalf("expected login redirect, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "/clients/create", nil)
	req.Header.Set("HX-Request", "true")
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized || rr.Header().Get("HX-Redirect") != "/login" {
		t.Fatalf("htmx: expected 401 + HX-Redirect, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `href="/signup"`) {
		t.Fatalf("landing page not served: %d", rr.Code)
	}
}

func TestDashboardRenderingE2E(t *testing.T) {
	app, conn := setupE2E(t)
	u := models.User{Email: "e2e@example.com", Password: "hash"}
	if err := conn.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	if err := db.SeedSamples(conn, u.ID); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, u.ID))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Inicio") || !strings.Contains(body, `href="/quotes"`) {
		t.Fatalf("dashboard not rendered for signed-in user: %s", body)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}
}

func TestLanguageSwitch(t *testing.T) {
	app, conn := setupE2E(t)
	u := models.User{Email: "en@example.com", Password: "hash"}
	conn.Create(&u)

	req := httptest.NewRequest(http.MethodGet, "/clients?lang=en", nil)
	req.AddCookie(sessionCookie(t, u.ID))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if !strings.Contains(rr.Body.String(), "Clients") || !strings.Contains(rr.Body.String(), `lang="en"`) {
		t.Fatalf("english page expected: %s", rr.Body.String())
	}
	var remembered bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "lang" && c.Value == "en" {
			remembered = true
		}
	}
	if !remembered {
		t.Fatalf("lang cookie not set")
	}
}

func TestTamperedSessionRejected(t *testing.T) {
	app, conn := setupE2E(t)
	u := models.User{Email: "t@example.com", Password: "hash"}
	conn.Create(&u)
	c := sessionCookie(t, u.ID)
	c.Value = "9" + c.Value[strings.Index(c.Value, "."):]

	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	req.AddCookie(c)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("tampered cookie should not authenticate, got %d", rr.Code)
	}
}

func TestRoutingRules(t *testing.T) {
	app, conn := setupE2E(t)
	u := models.User{Email: "r@example.com", Password: "hash"}
	conn.Create(&u)
	client := models.Client{UserID: u.ID, Name: "Borrar"}
	conn.Create(&client)
	cookie := sessionCookie(t, u.ID)

	// Unsupported method
	req := httptest.NewRequest(http.MethodPut, "/clients/create", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") == "" {
		t.Fatalf("expected 405 with Allow, got %d %q", rr.Code, rr.Header().Get("Allow"))
	}

	// Unknown host
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Host = "attacker.test"
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad host, got %d", rr.Code)
	}

	// DELETE verb reaches the delete handler.
	req = httptest.NewRequest(http.MethodDelete, "/clients/"+idstr(client.ID)+"/delete", nil)
	req.Header.Set("HX-Request", "true")
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Header().Get("HX-Trigger"), "toast") {
		t.Fatalf("delete via DELETE failed: %d", rr.Code)
	}

	// Health and static files are public.
	for _, path := range []string{"/healthz", "/static/app.css", "/static/app.js"} {
		rr = httptest.NewRecorder()
		app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200 got %d", path, rr.Code)
		}
	}
}

func TestCrossOriginPostRejected(t *testing.T) {
	app, conn := setupE2E(t)
	u := models.User{Email: "x@example.com", Password: "hash"}
	conn.Create(&u)
	cookie := sessionCookie(t, u.ID)

	post := func(set func(*http.Request)) int {
		form := url.Values{"name": {"Acme"}}
		req := httptest.NewRequest(http.MethodPost, "/clients/create", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		req.AddCookie(cookie)
		set(req)
		rr := httptest.NewRecorder()
		app.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := post(func(r *http.Request) { r.Header.Set("Sec-Fetch-Site", "cross-site") }); code != http.StatusForbidden {
		t.Fatalf("cross-site post: expected 403, got %d", code)
	}
	if code := post(func(r *http.Request) { r.Header.Set("Origin", "https://attacker.test") }); code != http.StatusForbidden {
		t.Fatalf("foreign origin post: expected 403, got %d", code)
	}
	var n int64
	conn.Model(&models.Client{}).Count(&n)
	if n != 0 {
		t.Fatalf("rejected posts must not create clients, got %d", n)
	}

	if code := post(func(r *http.Request) { r.Header.Set("Sec-Fetch-Site", "same-origin") }); code != http.StatusOK {
		t.Fatalf("same-origin post: expected 200, got %d", code)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := withRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") != "abc-123" || rr.Code != http.StatusTeapot {
		t.Fatalf("unexpected %d %q", rr.Code, rr.Header().Get("X-Request-ID"))
	}
}

func idstr(id uint) string { return strconv.FormatUint(uint64(id), 10) }
