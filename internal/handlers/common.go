// Package handlers serves the HTML pages and htmx fragments.
package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/corequote/corequote/auth"
	"github.com/corequote/corequote/httpx"
	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/validation"
	"github.com/corequote/corequote/view"
)

// resource names the routes, templates and DOM ids of one entity.
type resource struct {
	singular string // row/form template prefix and row id: "client" -> #client-4
	plural   string // list page, table body and modal: "clients"
	path     string // "/clients"
	page     string // "clients.html"
}

func (res resource) rowTemplate() string  { return res.singular + "_row" }
func (res resource) formTemplate() string { return res.singular + "_form" }
func (res resource) tableBody() string    { return "#" + res.plural + "-table-body" }
func (res resource) modal() string        { return "#" + res.plural + "-modal" }
func (res resource) createURL() string    { return res.path + "/create" }

func (res resource) rowSelector(id uint) string {
	return "#" + res.singular + "-" + strconv.FormatUint(uint64(id), 10)
}

func (res resource) editURL(id uint) string {
	return res.path + "/" + strconv.FormatUint(uint64(id), 10) + "/edit"
}

var (
	clientsRes   = resource{singular: "client", plural: "clients", path: "/clients", page: "clients.html"}
	inventoryRes = resource{singular: "item", plural: "inventory", path: "/inventory", page: "inventory.html"}
	quotesRes    = resource{singular: "quote", plural: "quotes", path: "/quotes", page: "quotes.html"}
	reportsRes   = resource{singular: "report", plural: "reports", path: "/reports", page: "reports.html"}
)

func currentUser(r *http.Request) uint {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

func lang(r *http.Request) string { return i18n.FromContext(r.Context()) }

// pathID parses the {id} path value; it writes a 404 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || n == 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return uint(n), true
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s [%s]: %v", r.Method, r.URL.Path, httpx.RequestID(r.Context()), err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// render writes a page and logs template failures.
func render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	if err := view.Render(w, r, page, data); err != nil {
		serverError(w, r, err)
	}
}

// fragment writes a partial with optional htmx events and status.
func fragment(w http.ResponseWriter, r *http.Request, name string, data any, ev httpx.Events, status int) {
	if err := ev.Set(w); err != nil {
		serverError(w, r, err)
		return
	}
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	if err := view.Fragment(w, r, name, data); err != nil {
		log.Printf("%s %s [%s]: render %s: %v", r.Method, r.URL.Path, httpx.RequestID(r.Context()), name, err)
	}
}

// firstMessage is the translated message of the first violated field.
func firstMessage(r *http.Request, v validation.Violations, order ...string) string {
	_, code, ok := v.First(order...)
	if !ok {
		return i18n.T(lang(r), "form_errors")
	}
	return i18n.T(lang(r), code)
}

// formOnly answers a GET on create/edit: the form fragment for htmx,
// a redirect to the list otherwise.
func formOnly(w http.ResponseWriter, r *http.Request, res resource, data map[string]any) {
	if !httpx.IsHTMX(r) {
		http.Redirect(w, r, res.path, http.StatusSeeOther)
		return
	}
	fragment(w, r, res.formTemplate(), data, nil, http.StatusOK)
}

// saved answers a successful create (editedID == 0) or update. htmx gets a
// fresh create form plus the new row in HX-Trigger; plain posts redirect.
func saved(w http.ResponseWriter, r *http.Request, res resource, msgCode string, row any, editedID uint, fresh map[string]any) {
	if !httpx.IsHTMX(r) {
		http.Redirect(w, r, res.path, http.StatusSeeOther)
		return
	}
	html, err := view.String(r, res.rowTemplate(), row)
	if err != nil {
		serverError(w, r, err)
		return
	}
	ev := httpx.Events{}.Toast(i18n.T(lang(r), msgCode), httpx.ToastSuccess)
	if editedID == 0 {
		ev.Prepend(res.tableBody(), html)
	} else {
		ev.Replace(res.rowSelector(editedID), html).CloseModal(res.modal())
	}
	fragment(w, r, res.formTemplate(), fresh, ev, http.StatusOK)
}

// invalid answers a failed submission. htmx gets the form with errors and
// an error toast; plain posts get the whole list page with the form.
func invalid(w http.ResponseWriter, r *http.Request, res resource, v validation.Violations, form map[string]any, list func() (map[string]any, error)) {
	form["Errors"] = v
	if httpx.IsHTMX(r) {
		ev := httpx.Events{}.Toast(firstMessage(r, v), httpx.ToastError)
		fragment(w, r, res.formTemplate(), form, ev, http.StatusOK)
		return
	}
	data, err := list()
	if err != nil {
		serverError(w, r, err)
		return
	}
	data["FormData"] = form
	render(w, r, res.page, data)
}

// deleted answers a successful delete: empty body plus an info toast for
// htmx, a redirect otherwise.
func deleted(w http.ResponseWriter, r *http.Request, res resource, msgCode string) {
	if !httpx.IsHTMX(r) {
		http.Redirect(w, r, res.path, http.StatusSeeOther)
		return
	}
	ev := httpx.Events{}.Toast(i18n.T(lang(r), msgCode), httpx.ToastInfo)
	if err := ev.Set(w); err != nil {
		serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
