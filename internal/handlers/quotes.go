package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"github.com/corequote/corequote/internal/pdf"
	"github.com/corequote/corequote/internal/services"
	"gorm.io/gorm"
)

type QuoteHandler struct {
	quotes   *services.QuoteService
	items    *services.ItemService
	db       *gorm.DB
	renderer *pdf.Renderer
}

func NewQuoteHandler(quotes *services.QuoteService, items *services.ItemService, db *gorm.DB, renderer *pdf.Renderer) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, items: items, db: db, renderer: renderer}
}

// blankQuote is the create form: one empty line to start from.
func blankQuote() forms.QuoteInput {
	return forms.QuoteInput{Lines: []forms.QuoteLineInput{{}}}
}

// form builds the quote form data with the owner's clients and items as
// select options.
func (h *QuoteHandler) form(r *http.Request, in forms.QuoteInput, action string) (map[string]any, error) {
	ownerID := currentUser(r)
	var clients []models.Client
	if err := h.db.WithContext(r.Context()).Scopes(models.OwnedBy(ownerID)).Order("name").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	items, err := h.items.Options(r.Context(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	if len(in.Lines) == 0 {
		in.Lines = blankQuote().Lines
	}
	return map[string]any{
		"Form":     in,
		"Action":   action,
		"Clients":  clients,
		"Items":    items,
		"Statuses": models.QuoteStatuses,
	}, nil
}

func (h *QuoteHandler) listData(r *http.Request) (map[string]any, error) {
	quotes, err := h.quotes.List(r.Context(), currentUser(r))
	if err != nil {
		return nil, err
	}
	form, err := h.form(r, blankQuote(), quotesRes.createURL())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"Title":    i18n.T(lang(r), "nav_quotes"),
		"Rows":     quotes,
		"FormData": form,
	}, nil
}

func (h *QuoteHandler) load(w http.ResponseWriter, r *http.Request) (*models.Quote, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	q, err := h.quotes.Get(r.Context(), currentUser(r), id)
	if errors.Is(err, services.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		serverError(w, r, err)
		return nil, false
	}
	return q, true
}

// List: GET /quotes
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.listData(r)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, quotesRes.page, data)
}

// New: GET /quotes/create
func (h *QuoteHandler) New(w http.ResponseWriter, r *http.Request) {
	form, err := h.form(r, blankQuote(), quotesRes.createURL())
	if err != nil {
		serverError(w, r, err)
		return
	}
	formOnly(w, r, quotesRes, form)
}

// Create: POST /quotes/create
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := forms.QuoteFromForm(r.PostForm)
	q, err := h.quotes.Create(r.Context(), currentUser(r), in)
	if h.rejected(w, r, err, in, quotesRes.createURL()) {
		return
	}
	h.saved(w, r, "quote_created", q.ID, 0)
}

// Edit: GET /quotes/{id}/edit
func (h *QuoteHandler) Edit(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	form, err := h.form(r, forms.QuoteFrom(*q), quotesRes.editURL(q.ID))
	if err != nil {
		serverError(w, r, err)
		return
	}
	formOnly(w, r, quotesRes, form)
}

// Update: POST /quotes/{id}/edit
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := forms.QuoteFromForm(r.PostForm)
	q, err := h.quotes.Update(r.Context(), currentUser(r), id, in)
	if errors.Is(err, services.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if h.rejected(w, r, err, in, quotesRes.editURL(id)) {
		return
	}
	h.saved(w, r, "quote_updated", q.ID, q.ID)
}

// rejected writes the response for a failed save and reports whether it did.
func (h *QuoteHandler) rejected(w http.ResponseWriter, r *http.Request, err error, in forms.QuoteInput, action string) bool {
	if err == nil {
		return false
	}
	v, ok := services.AsValidation(err)
	if !ok {
		serverError(w, r, err)
		return true
	}
	form, ferr := h.form(r, in, action)
	if ferr != nil {
		serverError(w, r, ferr)
		return true
	}
	invalid(w, r, quotesRes, v, form, func() (map[string]any, error) { return h.listData(r) })
	return true
}

// saved reloads the quote so the row shows the client name and total.
func (h *QuoteHandler) saved(w http.ResponseWriter, r *http.Request, msgCode string, id, editedID uint) {
	q, err := h.quotes.Get(r.Context(), currentUser(r), id)
	if err != nil {
		serverError(w, r, err)
		return
	}
	fresh, err := h.form(r, blankQuote(), quotesRes.createURL())
	if err != nil {
		serverError(w, r, err)
		return
	}
	saved(w, r, quotesRes, msgCode, q, editedID, fresh)
}

// Row: GET /quotes/{id}/row
func (h *QuoteHandler) Row(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	fragment(w, r, quotesRes.rowTemplate(), q, nil, http.StatusOK)
}

// Delete: POST|DELETE /quotes/{id}/delete
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.quotes.Delete(r.Context(), currentUser(r), id)
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.NotFound(w, r)
	case err != nil:
		serverError(w, r, err)
	default:
		deleted(w, r, quotesRes, "quote_deleted")
	}
}

// PDF: GET /quotes/{id}/pdf downloads the quote as cotizacion-<id>.pdf.
func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.quotes.Document(r.Context(), currentUser(r), id)
	if errors.Is(err, services.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, doc); err != nil {
		serverError(w, r, fmt.Errorf("render quote %d: %w", id, err))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cotizacion-%d.pdf"`, id))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.Write(buf.Bytes())
}
