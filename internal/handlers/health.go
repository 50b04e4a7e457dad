package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/corequote/corequote/httpx"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check: GET /healthz pings the database.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		log.Printf("healthz: database: %v", err)
		httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", map[string]string{"database": "unreachable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}
