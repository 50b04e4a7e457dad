package handlers

import (
	"net/http"

	"github.com/corequote/corequote/i18n"
	"github.com/corequote/corequote/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Home: GET / shows the dashboard, or the landing page when signed out.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	ownerID := currentUser(r)
	if ownerID == 0 {
		render(w, r, "landing.html", nil)
		return
	}
	summary, err := h.dashboard.Summary(r.Context(), ownerID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	render(w, r, "dashboard.html", map[string]any{
		"Title":   i18n.T(lang(r), "nav_dashboard"),
		"Summary": summary,
	})
}
