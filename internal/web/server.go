// Package web serves the tree, translation and import operations as a
// JSON API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/qubit/internal/config"
	"github.com/JonMunkholm/qubit/internal/core"
	"github.com/JonMunkholm/qubit/internal/web/middleware"
)

// Pinger reports database reachability for /healthz. *pgxpool.Pool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP layer.
type Options struct {
	Server   config.ServerConfig
	Security config.SecurityConfig
	Import   config.ImportConfig

	// RatePerMinute is the request budget per client IP. Zero disables
	// rate limiting.
	RatePerMinute int

	// DB is pinged by /healthz when set.
	DB Pinger
}

// Server is the HTTP server of the data-access layer.
type Server struct {
	service *core.Service
	opts    Options
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server with its routes in place.
func NewServer(service *core.Service, opts Options) *Server {
	s := &Server{
		service: service,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.opts.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)

	if s.opts.RatePerMinute > 0 {
		s.router.Use(middleware.RateLimit(s.opts.RatePerMinute, time.Minute))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	auth := middleware.APIKeyAuth(&s.opts.Security)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/kinds", s.handleListKinds)
		r.Get("/import/status", s.handleImportStatus)

		// Imports hold the table lock for a long time; they get their own
		// timeout instead of the request one.
		r.With(auth).Post("/import", s.handleImport)

		r.Route("/{kind}", func(r chi.Router) {
			r.Use(chimw.Timeout(s.requestTimeout()))

			r.Get("/roots", s.handleRoots)
			r.Get("/verify", s.handleVerify)
			r.Get("/nodes/{id}", s.handleGetNode)
			r.Get("/nodes/{id}/children", s.handleChildren)
			r.Get("/nodes/{id}/subtree", s.handleSubtree)
			r.Get("/nodes/{id}/ancestors", s.handleAncestors)
			r.Get("/nodes/{id}/i18n/{culture}/{field}", s.handleGetText)

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Post("/nodes", s.handleInsert)
				r.Put("/nodes/{id}/parent", s.handleMove)
				r.Delete("/nodes/{id}", s.handleDelete)
				r.Put("/nodes/{id}/i18n/{culture}", s.handleSetText)
				r.Post("/rebuild", s.handleRebuild)
			})
		})
	})
}

func (s *Server) requestTimeout() time.Duration {
	if s.opts.Server.RequestTimeout > 0 {
		return s.opts.Server.RequestTimeout
	}
	return 60 * time.Second
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.Server.ReadTimeout,
		WriteTimeout: s.opts.Server.WriteTimeout,
		IdleTimeout:  s.opts.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.DB.Ping(ctx); err != nil {
			respondError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// securityHeaders sets the headers that matter for a JSON API.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status. Encoding errors are only
// logged since the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
