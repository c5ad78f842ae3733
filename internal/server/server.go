// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trendmine/internal/common/config"
	"trendmine/internal/common/logger"
	"trendmine/internal/common/observability"
	"trendmine/internal/server/handlers"
)

// Dependencies are the pipelines and probes the API serves.
type Dependencies struct {
	Aggregator  handlers.Aggregator
	Generator   handlers.Generator
	ReadyChecks map[string]handlers.ReadyCheck
	// Observability is optional.
	Observability *observability.Observability
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies, log logger.Logger) *Server {
	router := NewRouter(cfg, deps, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// NewRouter builds the route tree. It is exported for tests.
func NewRouter(cfg config.ServerConfig, deps Dependencies, log logger.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(120 * time.Second))
	if deps.Observability != nil {
		router.Use(deps.Observability.Middleware)
	}

	origins := cfg.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "Apikey"},
		MaxAge:         300,
	}))

	signalsHandler := handlers.NewSignalsHandler(deps.Aggregator, log)
	ideasHandler := handlers.NewIdeasHandler(deps.Generator, log)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Route("/v1", func(r chi.Router) {
			r.Post("/signals/aggregate", signalsHandler.Aggregate)
			r.Post("/ideas/generate", ideasHandler.Generate)
		})
	})

	// Paths kept for clients of the original edge functions.
	router.Post("/fetch-trends", signalsHandler.Aggregate)
	router.Post("/generate-ideas", ideasHandler.Generate)

	router.Get("/ready", handlers.Ready(deps.ReadyChecks))
	router.Handle("/metrics", promhttp.Handler())

	return router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request served", map[string]interface{}{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    ww.Status(),
				"bytes":     ww.BytesWritten(),
				"duration":  time.Since(start).String(),
				"requestId": middleware.GetReqID(r.Context()),
			})
		})
	}
}
