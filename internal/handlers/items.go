package handlers

import (
	"errors"
	"net/http"

	"github.com/corequote/corequote/httpx"
	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/services"
)

type ItemHandler struct {
	items *services.ItemService
}

func NewItemHandler(items *services.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

func (h *ItemHandler) form(in forms.ItemInput, action string) map[string]any {
	return map[string]any{"Form": in, "Action": action}
}

func (h *ItemHandler) listData(r *http.Request) (map[string]any, error) {
	items, err := h.items.List(r.Context(), currentUser(r))
	return map[string]any{
		"Title":    i18n.T(lang(r), "nav_inventory"),
		"Rows":     items,
		"FormData": h.form(forms.ItemInput{}, inventoryRes.createURL()),
	}, err
}

func (h *ItemHandler) load(w http.ResponseWriter, r *http.Request) (*models.Item, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	item, err := h.items.Get(r.Context(), currentUser(r), id)
	if errors.Is(err, services.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		serverError(w, r, err)
		return nil, false
	}
	return item, true
}

// List: GET /inventory
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.listData(r)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, inventoryRes.page, data)
}

// New: GET /inventory/create
func (h *ItemHandler) New(w http.ResponseWriter, r *http.Request) {
	formOnly(w, r, inventoryRes, h.form(forms.ItemInput{}, inventoryRes.createURL()))
}

// Create: POST /inventory/create
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := forms.ItemFromForm(r.PostForm)
	item, err := h.items.Create(r.Context(), currentUser(r), in)
	if v, ok := services.AsValidation(err); ok {
		invalid(w, r, inventoryRes, v, h.form(in, inventoryRes.createURL()), func() (map[string]any, error) { return h.listData(r) })
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	saved(w, r, inventoryRes, "item_created", item, 0, h.form(forms.ItemInput{}, inventoryRes.createURL()))
}

// Edit: GET /inventory/{id}/edit
func (h *ItemHandler) Edit(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}
	formOnly(w, r, inventoryRes, h.form(forms.ItemFrom(*item), inventoryRes.editURL(item.ID)))
}

// Update: POST /inventory/{id}/edit
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := forms.ItemFromForm(r.PostForm)
	item, err := h.items.Update(r.Context(), currentUser(r), id, in)
	if v, ok := services.AsValidation(err); ok {
		invalid(w, r, inventoryRes, v, h.form(in, inventoryRes.editURL(id)), func() (map[string]any, error) { return h.listData(r) })
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.NotFound(w, r)
	case err != nil:
		serverError(w, r, err)
	default:
		saved(w, r, inventoryRes, "item_updated", item, id, h.form(forms.ItemInput{}, inventoryRes.createURL()))
	}
}

// Row: GET /inventory/{id}/row
func (h *ItemHandler) Row(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}
	fragment(w, r, inventoryRes.rowTemplate(), item, nil, http.StatusOK)
}

// Delete: POST|DELETE /inventory/{id}/delete. An item a live quote uses
// answers 409 and stays in place.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.items.Delete(r.Context(), currentUser(r), id)
	switch {
	case errors.Is(err, services.ErrItemInUse):
		h.inUse(w, r)
	case errors.Is(err, services.ErrNotFound):
		http.NotFound(w, r)
	case err != nil:
		serverError(w, r, err)
	default:
		deleted(w, r, inventoryRes, "item_deleted")
	}
}

func (h *ItemHandler) inUse(w http.ResponseWriter, r *http.Request) {
	msg := i18n.T(lang(r), "item_in_use")
	if httpx.IsHTMX(r) {
		if err := (httpx.Events{}).Toast(msg, httpx.ToastError).Set(w); err != nil {
			serverError(w, r, err)
			return
		}
		// htmx does not swap 4xx responses, so the row stays.
		w.WriteHeader(http.StatusConflict)
		return
	}
	data, err := h.listData(r)
	if err != nil {
		serverError(w, r, err)
		return
	}
	data["Error"] = msg
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusConflict)
	render(w, r, inventoryRes.page, data)
}
