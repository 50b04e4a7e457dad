package main

import (
	"net/http"

	"github.com/corequote/corequote/auth"
	"github.com/corequote/corequote/internal/config"
	"github.com/corequote/corequote/internal/handlers"
	"github.com/corequote/corequote/internal/pdf"
	"github.com/corequote/corequote/internal/policy"
	"github.com/corequote/corequote/internal/services"
	"github.com/corequote/corequote/internal/storage"
	"github.com/corequote/corequote/view"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	handler  http.Handler
	mux      *http.ServeMux
	cfg      *config.Config
	db       *gorm.DB
	sessions *auth.Manager

	clients   *handlers.ClientHandler
	items     *handlers.ItemHandler
	quotes    *handlers.QuoteHandler
	reports   *handlers.ReportHandler
	dashboard *handlers.DashboardHandler
	profile   *handlers.ProfileHandler
	auth      *handlers.AuthHandler
	health    *handlers.HealthHandler
}

// NewApp wires services and handlers on top of an open database and a
// logo store.
func NewApp(cfg *config.Config, db *gorm.DB, store storage.Storage) *App {
	sessions := auth.NewManager(cfg.App.SessionSecret, !cfg.App.Dev)
	accounts := services.NewAccountService(db, store)
	sessions.SetUserVerifier(accounts.Exists)

	itemSvc := services.NewItemService(db)
	quoteSvc := services.NewQuoteService(db, policy.NewOwnerGate(), store)

	app := &App{
		mux:       http.NewServeMux(),
		cfg:       cfg,
		db:        db,
		sessions:  sessions,
		clients:   handlers.NewClientHandler(db),
		items:     handlers.NewItemHandler(itemSvc),
		quotes:    handlers.NewQuoteHandler(quoteSvc, itemSvc, db, pdf.NewRenderer(cfg.App.Location())),
		reports:   handlers.NewReportHandler(db),
		dashboard: handlers.NewDashboardHandler(services.NewDashboardService(db)),
		profile:   handlers.NewProfileHandler(accounts),
		auth:      handlers.NewAuthHandler(accounts, sessions),
		health:    handlers.NewHealthHandler(db),
	}
	app.setupRoutes()

	// Cross-origin unsafe requests (judged by Sec-Fetch-Site or Origin) are
	// refused with 403 before any form handler runs.
	csrf := http.NewCrossOriginProtection()
	app.handler = withRecover(withLogging(withAllowedHosts(cfg.App,
		csrf.Handler(withPreferences(sessions.Middleware(app.mux))))))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// crud is the handler set every list page exposes.
type crud interface {
	List(http.ResponseWriter, *http.Request)
	New(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Edit(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Row(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

func (a *App) setupRoutes() {
	// Public
	a.mux.HandleFunc("GET /{$}", a.dashboard.Home)
	a.mux.HandleFunc("GET /login", a.auth.LoginForm)
	a.mux.HandleFunc("POST /login", a.auth.Login)
	a.mux.HandleFunc("GET /signup", a.auth.SignupForm)
	a.mux.HandleFunc("POST /signup", a.auth.Signup)
	a.mux.HandleFunc("POST /logout", a.auth.Logout)
	a.mux.HandleFunc("GET /healthz", a.health.Check)
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(view.Static())))

	// Entities
	a.resource("/clients", a.clients)
	a.resource("/inventory", a.items)
	a.resource("/quotes", a.quotes)
	a.resource("/reports", a.reports)
	a.private("GET /quotes/{id}/pdf", a.quotes.PDF)

	// Account
	a.private("GET /accounts/profile", a.profile.Show)
	a.private("POST /accounts/profile", a.profile.Save)
	a.private("GET /accounts/profile/logo", a.profile.Logo)
}

func (a *App) resource(base string, h crud) {
	a.private("GET "+base, h.List)
	a.private("GET "+base+"/create", h.New)
	a.private("POST "+base+"/create", h.Create)
	a.private("GET "+base+"/{id}/edit", h.Edit)
	a.private("POST "+base+"/{id}/edit", h.Update)
	a.private("GET "+base+"/{id}/row", h.Row)
	a.private("POST "+base+"/{id}/delete", h.Delete)
	a.private("DELETE "+base+"/{id}/delete", h.Delete)
}

// private registers a route that requires a session.
func (a *App) private(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.sessions.RequireAuth(h))
}
