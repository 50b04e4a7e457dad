package handlers

import (
	"errors"
	"net/http"

	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"gorm.io/gorm"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

func (h *ClientHandler) form(in forms.ClientInput, action string) map[string]any {
	return map[string]any{"Form": in, "Action": action}
}

func (h *ClientHandler) listData(r *http.Request) (map[string]any, error) {
	var clients []models.Client
	err := h.db.WithContext(r.Context()).Scopes(models.OwnedBy(currentUser(r)), models.Newest).Find(&clients).Error
	return map[string]any{
		"Title":    i18n.T(lang(r), "nav_clients"),
		"Rows":     clients,
		"FormData": h.form(forms.ClientInput{}, clientsRes.createURL()),
	}, err
}

// load fetches an owned client, writing 404/500 itself on failure.
func (h *ClientHandler) load(w http.ResponseWriter, r *http.Request) (*models.Client, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	var c models.Client
	err := h.db.WithContext(r.Context()).Scopes(models.OwnedBy(currentUser(r))).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		serverError(w, r, err)
		return nil, false
	}
	return &c, true
}

// List: GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.listData(r)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, clientsRes.page, data)
}

// New: GET /clients/create
func (h *ClientHandler) New(w http.ResponseWriter, r *http.Request) {
	formOnly(w, r, clientsRes, h.form(forms.ClientInput{}, clientsRes.createURL()))
}

// Create: POST /clients/create
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := forms.ClientFromForm(r.PostForm)
	client, v := in.Validate()
	if v != nil {
		invalid(w, r, clientsRes, v, h.form(in, clientsRes.createURL()), func() (map[string]any, error) { return h.listData(r) })
		return
	}
	client.UserID = currentUser(r)
	if err := h.db.WithContext(r.Context()).Create(&client).Error; err != nil {
		serverError(w, r, err)
		return
	}
	saved(w, r, clientsRes, "client_created", client, 0, h.form(forms.ClientInput{}, clientsRes.createURL()))
}

// Edit: GET /clients/{id}/edit
func (h *ClientHandler) Edit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	formOnly(w, r, clientsRes, h.form(forms.ClientFrom(*c), clientsRes.editURL(c.ID)))
}

// Update: POST /clients/{id}/edit
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := forms.ClientFromForm(r.PostForm)
	next, v := in.Validate()
	if v != nil {
		invalid(w, r, clientsRes, v, h.form(in, clientsRes.editURL(c.ID)), func() (map[string]any, error) { return h.listData(r) })
		return
	}
	c.Name, c.Email = next.Name, next.Email
	if err := h.db.WithContext(r.Context()).Model(c).Select("name", "email").Updates(c).Error; err != nil {
		serverError(w, r, err)
		return
	}
	saved(w, r, clientsRes, "client_updated", c, c.ID, h.form(forms.ClientInput{}, clientsRes.createURL()))
}

// Row: GET /clients/{id}/row
func (h *ClientHandler) Row(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	fragment(w, r, clientsRes.rowTemplate(), c, nil, http.StatusOK)
}

// Delete: POST|DELETE /clients/{id}/delete
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(c).Error; err != nil {
		serverError(w, r, err)
		return
	}
	deleted(w, r, clientsRes, "client_deleted")
}
