package handlers

import (
	"errors"
	"net/http"

	"github.com/corequote/corequote/auth"
	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/internal/forms"
	"github.com/corequote/corequote/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
	sessions *auth.Manager
}

func NewAuthHandler(accounts *services.AccountService, sessions *auth.Manager) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if currentUser(r) != 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, "login.html", map[string]any{
		"Title": i18n.T(lang(r), "login"),
		"Next":  r.URL.Query().Get("next"),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	email, next := r.PostForm.Get("email"), r.PostForm.Get("next")
	user, err := h.accounts.Authenticate(r.Context(), email, r.PostForm.Get("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		render(w, r, "login.html", map[string]any{
			"Title": i18n.T(lang(r), "login"),
			"Error": i18n.T(lang(r), "invalid_credentials"),
			"Email": email,
			"Next":  next,
		})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	h.sessions.CreateSession(w, user.ID)
	http.Redirect(w, r, auth.SafeNext(next), http.StatusSeeOther)
}

func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if currentUser(r) != 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, "signup.html", map[string]any{"Title": i18n.T(lang(r), "signup"), "Form": forms.SignupInput{}})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := forms.SignupFromForm(r.PostForm)
	user, err := h.accounts.Register(r.Context(), in)
	if v, ok := services.AsValidation(err); ok {
		in.Password, in.Confirm = "", ""
		render(w, r, "signup.html", map[string]any{"Title": i18n.T(lang(r), "signup"), "Form": in, "Errors": v})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	h.sessions.CreateSession(w, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
