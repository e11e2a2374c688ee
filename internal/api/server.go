package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/cfwatch/cfwatch-data/internal/api/handler"
	"github.com/cfwatch/cfwatch-data/internal/cache"
	"github.com/cfwatch/cfwatch-data/internal/config"
	"github.com/cfwatch/cfwatch-data/internal/db"
	"github.com/cfwatch/cfwatch-data/internal/student"
	"github.com/cfwatch/cfwatch-data/internal/sync"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *db.Pool, store *student.Store, appCache *cache.Cache, cfg *config.Config, engine *sync.Engine, scheduler *sync.Scheduler) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag", "Content-Disposition"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, store, appCache, cfg, engine, scheduler)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/students", func(r chi.Router) {
			r.Get("/", h.ListStudents)
			r.Post("/", h.CreateStudent)
			r.Get("/csv", h.DownloadCSV)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetStudent)
				r.Put("/", h.UpdateStudent)
				r.Delete("/", h.DeleteStudent)
				r.Get("/analytics", h.GetAnalytics)
			})
		})

		r.Post("/sync/run", h.TriggerSync)
	})

	return r
}
