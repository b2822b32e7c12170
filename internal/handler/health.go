package handler

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

type HealthHandler struct {
	db *sqlx.DB
}

func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz reports liveness and database reachability.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	err := h.db.Ping()
	if err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]string{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
