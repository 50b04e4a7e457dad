package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/services"
	"github.com/corequote/corequote/validation"
)

// MaxLogoSize is the largest accepted logo upload.
const MaxLogoSize = 2 << 20

const profilePath = "/accounts/profile"

// profileFlashes are the codes accepted in ?saved= after a redirect.
var profileFlashes = map[string]bool{"profile_saved": true, "account_saved": true, "password_saved": true}

type ProfileHandler struct {
	accounts *services.AccountService
}

func NewProfileHandler(accounts *services.AccountService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

// page assembles the three profile forms. Any of company, account or
// the error maps may be set by a failed POST.
func (h *ProfileHandler) page(r *http.Request, data map[string]any) (map[string]any, error) {
	ownerID := currentUser(r)
	if data == nil {
		data = map[string]any{}
	}
	data["Title"] = i18n.T(lang(r), "nav_profile")
	p, err := h.accounts.CompanyProfile(r.Context(), ownerID)
	if err != nil {
		return nil, err
	}
	data["HasLogo"] = p.Logo != ""
	if _, ok := data["Company"]; !ok {
		data["Company"] = forms.CompanyProfileFrom(*p)
	}
	if _, ok := data["Account"]; !ok {
		user, err := h.accounts.User(r.Context(), ownerID)
		if err != nil {
			return nil, err
		}
		data["Account"] = forms.AccountInput{Name: user.Name, Email: user.Email}
	}
	if code := r.URL.Query().Get("saved"); profileFlashes[code] {
		data["Flash"] = map[string]string{"Type": "success", "Message": i18n.T(lang(r), code)}
	}
	return data, nil
}

// Show: GET /accounts/profile
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	data, err := h.page(r, nil)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, "profile.html", data)
}

// Save: POST /accounts/profile. The hidden "form" field names which of the
// three forms was submitted.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxLogoSize+64<<10)
	if err := r.ParseMultipartForm(MaxLogoSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.rejected(w, r, "CompanyErrors", validation.Violations{"logo": "file_too_large"}, nil)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm == nil {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	switch r.PostForm.Get("form") {
	case "company":
		h.saveCompany(w, r)
	case "account":
		h.saveAccount(w, r)
	case "password":
		h.savePassword(w, r)
	default:
		http.Error(w, "unknown form", http.StatusBadRequest)
	}
}

func (h *ProfileHandler) saveCompany(w http.ResponseWriter, r *http.Request) {
	in := forms.CompanyProfileFromForm(r.PostForm)
	upload, err := logoUpload(r)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if upload != nil && len(upload.Data) > MaxLogoSize {
		h.rejected(w, r, "CompanyErrors", validation.Violations{"logo": "file_too_large"}, map[string]any{"Company": in})
		return
	}
	clearLogo := r.PostForm.Get("logo_clear") != ""
	_, err = h.accounts.SaveCompanyProfile(r.Context(), currentUser(r), in, upload, clearLogo)
	h.done(w, r, err, "profile_saved", "CompanyErrors", map[string]any{"Company": in})
}

func (h *ProfileHandler) saveAccount(w http.ResponseWriter, r *http.Request) {
	in := forms.AccountFromForm(r.PostForm)
	_, err := h.accounts.UpdateAccount(r.Context(), currentUser(r), in)
	h.done(w, r, err, "account_saved", "AccountErrors", map[string]any{"Account": in})
}

func (h *ProfileHandler) savePassword(w http.ResponseWriter, r *http.Request) {
	err := h.accounts.ChangePassword(r.Context(), currentUser(r), forms.PasswordChangeFromForm(r.PostForm))
	h.done(w, r, err, "password_saved", "PasswordErrors", nil)
}

// done redirects with a flash on success and re-renders the page with the
// failed form's errors otherwise.
func (h *ProfileHandler) done(w http.ResponseWriter, r *http.Request, err error, flash, errKey string, data map[string]any) {
	if v, ok := services.AsValidation(err); ok {
		h.rejected(w, r, errKey, v, data)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, profilePath+"?saved="+flash, http.StatusSeeOther)
}

func (h *ProfileHandler) rejected(w http.ResponseWriter, r *http.Request, errKey string, v validation.Violations, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data[errKey] = v
	page, err := h.page(r, data)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, "profile.html", page)
}

// logoUpload reads the optional "logo" file part. A missing or empty file
// means the logo is left unchanged.
func logoUpload(r *http.Request) (*services.LogoUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, header, err := r.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if header.Size == 0 {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(f, MaxLogoSize+1))
	if err != nil {
		return nil, err
	}
	return &services.LogoUpload{Filename: header.Filename, Data: data}, nil
}

// Logo: GET /accounts/profile/logo serves the stored company logo.
func (h *ProfileHandler) Logo(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.accounts.Logo(r.Context(), currentUser(r))
	if errors.Is(err, services.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, no-cache")
	w.Write(data)
}
