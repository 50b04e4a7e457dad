package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/corequote/corequote/auth"
	"github.com/corequote/corequote/internal/config"
	"github.com/corequote/corequote/internal/db"
	"github.com/corequote/corequote/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	cfg := config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file:" + t.Name() + "?mode=memory&cache=shared"}
	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn, cfg, false); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x", Name: "Owner"}
	if err := conn.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

func seedClient(t *testing.T, conn *gorm.DB, owner uint, name string) models.Client {
	t.Helper()
	c := models.Client{UserID: owner, Name: name}
	if err := conn.Create(&c).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func seedItem(t *testing.T, conn *gorm.DB, owner uint, sku string, stock int, cost string) models.Item {
	t.Helper()
	it := models.Item{UserID: owner, SKU: sku, Name: "Item " + sku, Stock: stock, Cost: decimal.RequireFromString(cost)}
	if err := conn.Create(&it).Error; err != nil {
		t.Fatalf("item: %v", err)
	}
	return it
}

// request builds a request as user uid. A non-nil form is sent url-encoded;
// id, when non-zero, fills the {id} path value.
func request(method, target string, form url.Values, uid, id uint) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if id != 0 {
		req.SetPathValue("id", fmt.Sprint(id))
	}
	if uid != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), uid))
	}
	return req
}

func htmx(req *http.Request) *http.Request {
	req.Header.Set("HX-Request", "true")
	return req
}

// triggerPayload is the decoded HX-Trigger header.
type triggerPayload struct {
	Toast *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"toast"`
	ListChanged *struct {
		Action   string `json:"action"`
		Target   string `json:"target"`
		Selector string `json:"selector"`
		HTML     string `json:"html"`
	} `json:"listChanged"`
	Modal *struct {
		Action string `json:"action"`
		Target string `json:"target"`
	} `json:"modal"`
}

func trigger(t *testing.T, w *httptest.ResponseRecorder) triggerPayload {
	t.Helper()
	var p triggerPayload
	raw := w.Header().Get("HX-Trigger")
	if raw == "" {
		t.Fatalf("missing HX-Trigger header")
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode HX-Trigger %q: %v", raw, err)
	}
	return p
}

func TestClientCreateHTMX(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	h := NewClientHandler(conn)

	w := httptest.NewRecorder()
	h.Create(w, htmx(request(http.MethodPost, "/clients/create", url.Values{"name": {"Acme"}, "email": {"ventas@acme.mx"}}, u.ID, 0)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	p := trigger(t, w)
	if p.Toast == nil || p.Toast.Type != "success" || p.Toast.Message != "Cliente registrado correctamente." {
		t.Fatalf("unexpected toast: %+v", p.Toast)
	}
	if p.ListChanged == nil || p.ListChanged.Action != "prepend" || p.ListChanged.Target != "#clients-table-body" {
		t.Fatalf("unexpected listChanged: %+v", p.ListChanged)
	}
	if !strings.Contains(p.ListChanged.HTML, "Acme") || !strings.Contains(p.ListChanged.HTML, `id="client-`) {
		t.Fatalf("row html missing client: %s", p.ListChanged.HTML)
	}
	if p.Modal != nil {
		t.Fatalf("create must not close a modal")
	}
	if !strings.Contains(w.Body.String(), `id="client-form"`) || strings.Contains(w.Body.String(), "Acme") {
		t.Fatalf("expected a blank create form, got %s", w.Body.String())
	}

	var count int64
	conn.Model(&models.Client{}).Where("user_id = ?", u.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 client got %d", count)
	}
}

func TestClientCreateInvalid(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	h := NewClientHandler(conn)
	form := url.Values{"name": {""}, "email": {"nope"}}

	w := httptest.NewRecorder()
	h.Create(w, htmx(request(http.MethodPost, "/clients/create", form, u.ID, 0)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	p := trigger(t, w)
	if p.Toast == nil || p.Toast.Type != "error" {
		t.Fatalf("expected error toast, got %+v", p.Toast)
	}
	if p.ListChanged != nil {
		t.Fatalf("invalid form must not touch the list")
	}
	if !strings.Contains(w.Body.String(), "has-error") {
		t.Fatalf("form errors not rendered: %s", w.Body.String())
	}

	// Plain post re-renders the whole list page with 200.
	w = httptest.NewRecorder()
	h.Create(w, request(http.MethodPost, "/clients/create", form, u.ID, 0))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<!doctype html>") || !strings.Contains(body, "clients-table-body") || !strings.Contains(body, "has-error") {
		t.Fatalf("expected full page with errors: %s", body)
	}
}

func TestClientPlainCreateRedirects(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	h := NewClientHandler(conn)

	w := httptest.NewRecorder()
	h.Create(w, request(http.MethodPost, "/clients/create", url.Values{"name": {"Acme"}}, u.ID, 0))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/clients" {
		t.Fatalf("expected redirect to /clients got %d %q", w.Code, w.Header().Get("Location"))
	}

	// A plain GET on the form endpoint goes back to the list as well.
	w = httptest.NewRecorder()
	h.New(w, request(http.MethodGet, "/clients/create", nil, u.ID, 0))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", w.Code)
	}
}

func TestClientUpdateHTMX(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	c := seedClient(t, conn, u.ID, "Old name")
	h := NewClientHandler(conn)

	w := httptest.NewRecorder()
	h.Edit(w, htmx(request(http.MethodGet, "/clients/x/edit", nil, u.ID, c.ID)))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Old name") {
		t.Fatalf("edit form not pre-filled: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Update(w, htmx(request(http.MethodPost, "/clients/x/edit", url.Values{"name": {"New name"}}, u.ID, c.ID)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	p := trigger(t, w)
	if p.ListChanged == nil || p.ListChanged.Action != "replace" || p.ListChanged.Selector != fmt.Sprintf("#client-%d", c.ID) {
		t.Fatalf("unexpected listChanged: %+v", p.ListChanged)
	}
	if p.Modal == nil || p.Modal.Action != "close" || p.Modal.Target != "#clients-modal" {
		t.Fatalf("expected modal close, got %+v", p.Modal)
	}
	var got models.Client
	conn.First(&got, c.ID)
	if got.Name != "New name" {
		t.Fatalf("name not updated: %q", got.Name)
	}
}

func TestClientOwnership(t *testing.T) {
	conn := setupTestDB(t)
	owner := seedUser(t, conn, "owner@test")
	other := seedUser(t, conn, "other@test")
	c := seedClient(t, conn, owner.ID, "Private")
	h := NewClientHandler(conn)

	for name, call := range map[string]func(http.ResponseWriter, *http.Request){
		"edit": h.Edit, "update": h.Update, "row": h.Row, "delete": h.Delete,
	} {
		w := httptest.NewRecorder()
		call(w, htmx(request(http.MethodPost, "/clients/x", url.Values{"name": {"Hijack"}}, other.ID, c.ID)))
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404 got %d", name, w.Code)
		}
	}

	// Listing shows only the caller's rows.
	w := httptest.NewRecorder()
	h.List(w, request(http.MethodGet, "/clients", nil, other.ID, 0))
	if strings.Contains(w.Body.String(), "Private") {
		t.Fatalf("other user's client leaked into list")
	}
}

func TestClientDeleteHTMX(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	c := seedClient(t, conn, u.ID, "Gone")
	h := NewClientHandler(conn)

	w := httptest.NewRecorder()
	h.Delete(w, htmx(request(http.MethodDelete, "/clients/x/delete", nil, u.ID, c.ID)))
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("expected empty 200 got %d %q", w.Code, w.Body.String())
	}
	p := trigger(t, w)
	if p.Toast == nil || p.Toast.Type != "info" {
		t.Fatalf("expected info toast, got %+v", p.Toast)
	}

	var live, all int64
	conn.Model(&models.Client{}).Where("id = ?", c.ID).Count(&live)
	conn.Unscoped().Model(&models.Client{}).Where("id = ?", c.ID).Count(&all)
	if live != 0 || all != 1 {
		t.Fatalf("expected soft delete, live=%d all=%d", live, all)
	}
}

func TestPathIDRejectsGarbage(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	h := NewReportHandler(conn)
	req := request(http.MethodGet, "/reports/abc/row", nil, u.ID, 0)
	req.SetPathValue("id", "abc")
	w := httptest.NewRecorder()
	h.Row(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestReportLifecycle(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	h := NewReportHandler(conn)

	w := httptest.NewRecorder()
	h.Create(w, htmx(request(http.MethodPost, "/reports/create", url.Values{"name": {"Cierre Q1"}, "description": {"Ventas del trimestre"}}, u.ID, 0)))
	if w.Code != http.StatusOK {
		t.Fatalf("create: %d", w.Code)
	}
	var r models.Report
	if err := conn.Where("user_id = ?", u.ID).First(&r).Error; err != nil {
		t.Fatalf("report not stored: %v", err)
	}

	w = httptest.NewRecorder()
	h.Update(w, htmx(request(http.MethodPost, "/reports/x/edit", url.Values{"name": {"Cierre Q2"}}, u.ID, r.ID)))
	if p := trigger(t, w); p.Toast == nil || p.Toast.Message != "Reporte actualizado." {
		t.Fatalf("unexpected toast %+v", p.Toast)
	}

	w = httptest.NewRecorder()
	h.Row(w, request(http.MethodGet, "/reports/x/row", nil, u.ID, r.ID))
	if !strings.Contains(w.Body.String(), "Cierre Q2") {
		t.Fatalf("row not updated: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Delete(w, request(http.MethodPost, "/reports/x/delete", nil, u.ID, r.ID))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("plain delete should redirect, got %d", w.Code)
	}
}

func idString(id uint) string { return fmt.Sprint(id) }
