// Package api exposes the dashboard views and the UI control events over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/lifemap/internal/session"
	"github.com/sells-group/lifemap/internal/views"
)

// Options configures a Server. Either Data and Registry are set, or
// LoadErr says why the dataset is unavailable.
type Options struct {
	Data        *views.Data
	Registry    *session.Registry
	LoadErr     error
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	data     *views.Data
	registry *session.Registry
	loadErr  error
	validate *validator.Validate
	router   *chi.Mux
	started  time.Time
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	s := &Server{
		data:     opts.Data,
		registry: opts.Registry,
		loadErr:  opts.LoadErr,
		validate: newValidator(),
		router:   chi.NewRouter(),
		started:  time.Now(),
	}

	s.setupMiddleware(opts.CORSOrigins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Group(func(r chi.Router) {
			r.Use(s.requireData)

			r.Get("/fields", s.handleFields)
			r.Get("/continents", s.handleContinents)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.handleCreateSession)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetSession)
					r.Delete("/", s.handleDeleteSession)
					r.Post("/toggle", s.handleToggle)
					r.Put("/continents", s.handleSetContinents)
					r.Put("/field", s.handleSetField)
					r.Put("/year", s.handleSetYear)
					r.Post("/reset", s.handleReset)
					r.Get("/tooltip", s.handleTooltip)
					r.Get("/map.geojson", s.handleMapGeoJSON)
				})
			})
		})
	})
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// requireData answers 503 while the dataset failed to load.
func (s *Server) requireData(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.data == nil || s.registry == nil {
			msg := "dataset not loaded"
			if s.loadErr != nil {
				msg = s.loadErr.Error()
			}
			fail(w, http.StatusServiceUnavailable, msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}
