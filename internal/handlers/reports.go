package handlers

import (
	"errors"
	"net/http"

	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/models"
	"gorm.io/gorm"
)

type ReportHandler struct {
	db *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

func (h *ReportHandler) form(in forms.ReportInput, action string) map[string]any {
	return map[string]any{"Form": in, "Action": action}
}

func (h *ReportHandler) listData(r *http.Request) (map[string]any, error) {
	var reports []models.Report
	err := h.db.WithContext(r.Context()).Scopes(models.OwnedBy(currentUser(r)), models.Newest).Find(&reports).Error
	return map[string]any{
		"Title":    i18n.T(lang(r), "nav_reports"),
		"Rows":     reports,
		"FormData": h.form(forms.ReportInput{}, reportsRes.createURL()),
	}, err
}

// load fetches an owned report, writing 404/500 itself on failure.
func (h *ReportHandler) load(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	var c models.Report
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

// List: GET /reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	data, err := h.listData(r)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, reportsRes.page, data)
}

// New: GET /reports/create
func (h *ReportHandler) New(w http.ResponseWriter, r *http.Request) {
	formOnly(w, r, reportsRes, h.form(forms.ReportInput{}, reportsRes.createURL()))
}

// Create: POST /reports/create
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := forms.ReportFromForm(r.PostForm)
	report, v := in.Validate()
	if v != nil {
		invalid(w, r, reportsRes, v, h.form(in, reportsRes.createURL()), func() (map[string]any, error) { return h.listData(r) })
		return
	}
	report.UserID = currentUser(r)
	if err := h.db.WithContext(r.Context()).Create(&report).Error; err != nil {
		serverError(w, r, err)
		return
	}
	saved(w, r, reportsRes, "report_created", report, 0, h.form(forms.ReportInput{}, reportsRes.createURL()))
}

// Edit: GET /reports/{id}/edit
func (h *ReportHandler) Edit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	formOnly(w, r, reportsRes, h.form(forms.ReportFrom(*c), reportsRes.editURL(c.ID)))
}

// Update: POST /reports/{id}/edit
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := forms.ReportFromForm(r.PostForm)
	next, v := in.Validate()
	if v != nil {
		invalid(w, r, reportsRes, v, h.form(in, reportsRes.editURL(c.ID)), func() (map[string]any, error) { return h.listData(r) })
		return
	}
	c.Name, c.Description = next.Name, next.Description
	if err := h.db.WithContext(r.Context()).Model(c).Select("name", "description").Updates(c).Error; err != nil {
		serverError(w, r, err)
		return
	}
	saved(w, r, reportsRes, "report_updated", c, c.ID, h.form(forms.ReportInput{}, reportsRes.createURL()))
}

// Row: GET /reports/{id}/row
func (h *ReportHandler) Row(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	fragment(w, r, reportsRes.rowTemplate(), c, nil, http.StatusOK)
}

// Delete: POST|DELETE /reports/{id}/delete
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.db.WithContext(r.Context()).Delete(c).Error; err != nil {
		serverError(w, r, err)
		return
	}
	deleted(w, r, reportsRes, "report_deleted")
}
