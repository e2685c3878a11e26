// Package api exposes the HTTP surface of the jogging tracker.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rubemlrm/jogging-tracker/internal/auth"
	"github.com/Rubemlrm/jogging-tracker/internal/domain"
)

// Config carries the HTTP-facing settings.
type Config struct {
	Auth           auth.Config
	SessionTTL     time.Duration
	PageSize       int
	MaxPageSize    int
	CORSOrigins    []string
	LoginRateLimit int
	SecureCookies  bool
}

// NewRouter wires every endpoint onto a chi router.
func NewRouter(service *domain.Service, cfg Config) http.Handler {
	mw := auth.NewMiddleware(cfg.Auth, service, writeDomainError)
	pages := pager{defaultSize: cfg.PageSize, maxSize: cfg.MaxPageSize}

	r := chi.NewRouter()
	// Set before mounting so sub-routers inherit them.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method \""+r.Method+"\" not allowed")
	})

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(corsHandler(cfg.CORSOrigins))
	}

	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())

	sessions := &sessionController{
		service:    service,
		tokens:     cfg.Auth,
		sessionTTL: cfg.SessionTTL,
		secure:     cfg.SecureCookies,
	}
	users := &userController{service: service, pager: pages}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(loginLimiter(cfg.LoginRateLimit)).Post("/login", sessions.Login)
		r.With(mw.Required).Get("/logout", sessions.Logout)

		mountResource(r, mw, resource{
			path:       "/activities",
			controller: &activityController{service: service, pager: pages},
		})
		mountResource(r, mw, resource{
			path:            "/users",
			controller:      users,
			anonymousCreate: true,
			extend:          users.routes,
		})
		mountResource(r, mw, resource{
			path:       "/weather",
			controller: &weatherController{service: service, pager: pages},
		})
	})

	return r
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
