/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:    Unique ID per request (honours X-Request-Id)
  2. RealIP:       Client address behind proxies
  3. RequestLogger: One zap line per request
  4. Recoverer:    Panic recovery (500 instead of crash)
  5. CORS:         Cross-origin requests for a browser frontend
  6. Authenticate: Optional bearer token; RequireUser guards record routes

ROUTE GROUPS:
  /api/health, /api/holidays, /api/bridges, /api/school-holidays, /api/calendar  public
  /api/records, /api/rollover, /api/summary                                      token required

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Token verification
  - cmd/planner/serve.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, auth *Authenticator, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}))
	r.Use(auth.Authenticate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Calendar routes
		r.Get("/holidays/{year}", h.ListHolidays)
		r.Get("/bridges/{year}", h.ListBridges)
		r.Get("/school-holidays/{year}", h.ListSchoolHolidays)
		r.Get("/calendar/{year}/{month}", h.GetMonth)

		// Record routes
		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Get("/records/{year}", h.GetRecord)
			r.Put("/records/{year}", h.PutRecord)
			r.Get("/rollover/{year}", h.GetRollover)
			r.Get("/summary/{year}", h.GetSummary)
		})
	})

	return r
}

// RequestLogger logs each request with zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
