package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/filegate/filegate/internal/config"
	"github.com/filegate/filegate/internal/handler"
	"github.com/filegate/filegate/internal/middleware"
)

// Handlers collects everything the router mounts.
type Handlers struct {
	Access *handler.AccessHandler
	File   *handler.FileHandler
	Link   *handler.LinkHandler
	Me     *handler.MeHandler
	Admin  *handler.AdminHandler
	Health *handler.HealthHandler
}

// New builds the full route table with the middleware chain applied.
func New(cfg *config.Config, h Handlers) http.Handler {
	mux := http.NewServeMux()

	// Public link endpoints
	mux.HandleFunc("GET /stream/{token}", h.Access.Stream)
	mux.HandleFunc("GET /download/{token}", h.Access.Download)

	// Operational endpoints
	mux.HandleFunc("GET /healthz", h.Health.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Bot-facing API (JWT)
	mux.HandleFunc("POST /api/files", middleware.RequireAuth(h.File.Upload))
	mux.HandleFunc("POST /api/links", middleware.RequireAuth(h.File.IssueLink))
	mux.HandleFunc("GET /api/links", middleware.RequireAuth(h.Link.List))
	mux.HandleFunc("DELETE /api/links/{token}", middleware.RequireAuth(h.Link.Delete))
	mux.HandleFunc("GET /api/me/stats", middleware.RequireAuth(h.Me.Stats))

	// Administrative API
	mux.HandleFunc("POST /api/premium/{user_id}", middleware.RequireAdmin(h.Admin.GrantPremium))
	mux.HandleFunc("DELETE /api/premium/{user_id}", middleware.RequireAdmin(h.Admin.RevokePremium))
	mux.HandleFunc("GET /api/stats", middleware.RequireAdmin(h.Admin.Stats))

	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.Metrics,
		middleware.SecurityHeaders,
		middleware.Auth(cfg.JWTSecret),
	)
}
