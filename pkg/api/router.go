// Package api provides the Inkpad HTTP server and router.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/inkpad/inkpad/internal/api/handlers"
	apimiddleware "github.com/inkpad/inkpad/internal/api/middleware"
	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/logger"
	"github.com/inkpad/inkpad/internal/metrics"
	"github.com/inkpad/inkpad/internal/session"
	"github.com/inkpad/inkpad/pkg/store"
)

// Deps carries the wired components the router serves.
type Deps struct {
	Store     store.Store
	Sessions  *session.Manager
	Local     *auth.Local
	Registrar *auth.Registrar
	Google    *auth.Google
	Metrics   *metrics.Metrics
}

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// Routes:
//   - GET  /health                 - Liveness probe
//   - GET  /health/ready           - Readiness probe (DB ping)
//   - GET  /metrics                - Prometheus metrics (when enabled)
//   - POST /register               - Local account registration
//   - POST /login                  - Local authentication
//   - POST /logout                 - Session destruction
//   - GET  /me                     - Current principal (authenticated)
//   - GET  /auth/google            - Begin Google sign-in
//   - GET  /auth/google/callback   - Complete Google sign-in
//   - GET  /notes                  - List notes (authenticated)
//   - POST /notes                  - Create note (authenticated)
//   - DELETE /notes/{id}           - Delete note (authenticated)
func NewRouter(config Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(deps.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{config.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.Store)
	authHandler := handlers.NewAuthHandler(
		deps.Sessions,
		deps.Local,
		deps.Registrar,
		deps.Google,
		deps.Metrics,
		config.ClientOrigin,
		strings.HasPrefix(config.ClientOrigin, "https://"),
	)
	notesHandler := handlers.NewNotesHandler(deps.Store)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	if config.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	// Authentication routes - unauthenticated
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)
	r.Get("/auth/google", authHandler.GoogleLogin)
	r.Get("/auth/google/callback", authHandler.GoogleCallback)

	// Protected routes - everything behind the authorization gate
	r.Group(func(r chi.Router) {
		r.Use(apimiddleware.RequireSession(deps.Sessions))

		r.Get("/me", authHandler.Me)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", notesHandler.List)
			r.Post("/", notesHandler.Create)
			r.Delete("/{id}", notesHandler.Delete)
		})
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger logs requests through the internal logger and feeds the
// request metrics. Healthcheck requests are logged at DEBUG to reduce noise.
func requestLogger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := chimiddleware.GetReqID(r.Context())

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			m.RecordRequest(r.Method, route, ww.Status(), duration)

			logArgs := []any{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", duration.String(),
			}

			if isHealthPath(r.URL.Path) {
				logger.Debug("request completed", logArgs...)
			} else {
				logger.Info("request completed", logArgs...)
			}
		})
	}
}
