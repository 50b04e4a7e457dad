package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/services"
	"github.com/shopspring/decimal"
)

func TestItemCreateDuplicateSKU(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	seedItem(t, conn, u.ID, "ABC-1", 4, "1.00")
	h := NewItemHandler(services.NewItemService(conn))

	form := url.Values{"sku": {"abc-1"}, "name": {"Copia"}, "stock": {"1"}, "cost": {"2"}}
	w := httptest.NewRecorder()
	h.Create(w, htmx(request(http.MethodPost, "/inventory/create", form, u.ID, 0)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	p := trigger(t, w)
	if p.Toast == nil || p.Toast.Type != "error" || !strings.Contains(p.Toast.Message, "SKU") {
		t.Fatalf("expected duplicate sku toast, got %+v", p.Toast)
	}
	if !strings.Contains(w.Body.String(), "Ya existe un producto con este SKU") {
		t.Fatalf("sku field error not rendered: %s", w.Body.String())
	}
}

func TestItemCreateAndUpdate(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	h := NewItemHandler(services.NewItemService(conn))

	w := httptest.NewRecorder()
	h.Create(w, htmx(request(http.MethodPost, "/inventory/create", url.Values{"sku": {"T-1"}, "name": {"Tornillo"}, "stock": {"10"}, "cost": {"1,250.50"}}, u.ID, 0)))
	p := trigger(t, w)
	if p.ListChanged == nil || p.ListChanged.Target != "#inventory-table-body" {
		t.Fatalf("unexpected listChanged %+v", p.ListChanged)
	}
	var item models.Item
	if err := conn.Where("user_id = ?", u.ID).First(&item).Error; err != nil {
		t.Fatalf("item not stored: %v", err)
	}
	if !item.Cost.Equal(decimal.RequireFromString("1250.5")) {
		t.Fatalf("cost = %s", item.Cost)
	}

	w = httptest.NewRecorder()
	h.Update(w, htmx(request(http.MethodPost, "/inventory/x/edit", url.Values{"sku": {"T-1"}, "name": {"Tornillo"}, "stock": {"7"}, "cost": {"3"}}, u.ID, item.ID)))
	p = trigger(t, w)
	if p.Modal == nil || p.Modal.Target != "#inventory-modal" {
		t.Fatalf("expected inventory modal close, got %+v", p.Modal)
	}
	if p.ListChanged == nil || p.ListChanged.Selector != "#item-"+idString(item.ID) {
		t.Fatalf("unexpected selector %+v", p.ListChanged)
	}
}

func TestItemDeleteInUse(t *testing.T) {
	conn := setupTestDB(t)
	u := seedUser(t, conn, "owner@test")
	c := seedClient(t, conn, u.ID, "Acme")
	item := seedItem(t, conn, u.ID, "USED", 2, "1.00")
	q := models.Quote{UserID: u.ID, ClientID: c.ID, Status: models.QuoteStatusDraft}
	conn.Create(&q)
	conn.Create(&models.QuoteItem{QuoteID: q.ID, ItemID: item.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(5)})
	h := NewItemHandler(services.NewItemService(conn))

	w := httptest.NewRecorder()
	h.Delete(w, htmx(request(http.MethodDelete, "/inventory/x/delete", nil, u.ID, item.ID)))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}
	if p := trigger(t, w); p.Toast == nil || p.Toast.Type != "error" {
		t.Fatalf("expected error toast, got %+v", p.Toast)
	}

	w = httptest.NewRecorder()
	h.Delete(w, request(http.MethodPost, "/inventory/x/delete", nil, u.ID, item.ID))
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), "aparece en una cotización") {
		t.Fatalf("expected list with error, got %d %s", w.Code, w.Body.String())
	}

	// Once the quote is deleted the item can go.
	conn.Delete(&q)
	w = httptest.NewRecorder()
	h.Delete(w, htmx(request(http.MethodDelete, "/inventory/x/delete", nil, u.ID, item.ID)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestItemRowNotOwned(t *testing.T) {
	conn := setupTestDB(t)
	owner := seedUser(t, conn, "owner@test")
	other := seedUser(t, conn, "other@test")
	item := seedItem(t, conn, owner.ID, "MINE", 1, "1")
	h := NewItemHandler(services.NewItemService(conn))

	w := httptest.NewRecorder()
	h.Row(w, request(http.MethodGet, "/inventory/x/row", nil, other.ID, item.ID))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	w = httptest.NewRecorder()
	h.Update(w, htmx(request(http.MethodPost, "/inventory/x/edit", url.Values{"sku": {"X"}, "name": {"X"}}, other.ID, item.ID)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
