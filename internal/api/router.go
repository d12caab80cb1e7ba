package api

import (
	"net/http"

	"github.com/bcnelson/passgate/internal/api/handler"
	"github.com/bcnelson/passgate/internal/api/middleware"
	"github.com/bcnelson/passgate/internal/auth"
	"github.com/bcnelson/passgate/internal/service"
	"github.com/bcnelson/passgate/internal/storage"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// OIDCComponents holds the pieces needed for administrator SSO.
type OIDCComponents struct {
	Provider *auth.OIDCProvider
	States   *auth.StateStore
	Sessions *auth.SessionManager
}

// Options wires the router's dependencies.
type Options struct {
	Store        storage.Storage
	Service      *service.AccessService
	Logger       logrus.FieldLogger
	BootstrapKey string

	// LoginLimiter throttles the login route. Nil disables throttling.
	LoginLimiter *middleware.RateLimiter

	// OIDC enables administrator SSO. Nil disables it.
	OIDC *OIDCComponents
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(opts.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	var sessions *auth.SessionManager
	if opts.OIDC != nil {
		sessions = opts.OIDC.Sessions
		oidcHandler := handler.NewOIDCHandler(opts.OIDC.Provider, opts.OIDC.States, opts.OIDC.Sessions, opts.Logger)
		r.Get("/auth/oidc/login", oidcHandler.Login)
		r.Get("/auth/oidc/callback", oidcHandler.Callback)
		r.Post("/auth/logout", oidcHandler.Logout)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)

		// Public access endpoints
		accessHandler := handler.NewAccessHandler(opts.Service, opts.Logger)
		r.Route("/access", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if opts.LoginLimiter != nil {
					r.Use(opts.LoginLimiter.Middleware)
				}
				r.Post("/login", accessHandler.Login)
			})
			r.Post("/validate", accessHandler.Validate)
		})

		// Administrative endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(opts.Store, opts.BootstrapKey, sessions, opts.Logger))

			keyHandler := handler.NewAPIKeyHandler(opts.Store, opts.Logger)
			r.Post("/keys", keyHandler.Create)
			r.Get("/keys", keyHandler.List)
			r.Delete("/keys/{id}", keyHandler.Delete)

			credHandler := handler.NewCredentialHandler(opts.Service, opts.Logger)
			r.Post("/admin/credentials", credHandler.Create)
			r.Get("/admin/credentials", credHandler.List)
			r.Get("/admin/credentials/{id}", credHandler.Get)
			r.Put("/admin/credentials/{id}", credHandler.Update)
			r.Delete("/admin/credentials/{id}", credHandler.Delete)
		})
	})

	return r
}
