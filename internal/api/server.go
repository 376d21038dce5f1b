package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/readiness-engine/internal/config"
	"github.com/terra-clan/readiness-engine/internal/services"
	"github.com/terra-clan/readiness-engine/internal/simulator"
)

// Server represents the HTTP API server
type Server struct {
	config    config.ServerConfig
	router    *chi.Mux
	engine    *simulator.Engine
	registry  *services.Registry
	startedAt time.Time
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, engine *simulator.Engine, registry *services.Registry) *Server {
	if registry == nil {
		registry = services.NewRegistry()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	s := &Server{
		config:    cfg,
		engine:    engine,
		registry:  registry,
		startedAt: time.Now(),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Long-lived; no request timeout
		r.Get("/simulations/stream", s.handleSimulationStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Use(limitBody(s.config.MaxUploadBytes))

			r.Route("/scenarios", func(r chi.Router) {
				r.Post("/", s.handleAddScenarios)
				r.Post("/upload", s.handleUploadScenarios)
				r.Post("/select", s.handleSelectScenarios)
			})

			r.Route("/resources", func(r chi.Router) {
				r.Post("/", s.handleAddResources)
				r.Post("/upload", s.handleUploadResources)
			})

			r.Post("/simulations", s.handleRunSimulation)

			if s.config.DebugEndpoints {
				r.Route("/debug", func(r chi.Router) {
					r.Get("/status", s.handleDebugStatus)
					r.Get("/scenarios", s.handleDebugScenarios)
					r.Get("/resources", s.handleDebugResources)
				})
			}
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
