// Package handler provides HTTP handlers for all API endpoints.
// Handlers read through the student store and the in-memory cache; the
// heavier analytics responses carry ETags so the SPA can revalidate cheaply.
package handler

import (
	"net/http"
	"time"

	"github.com/cfwatch/cfwatch-data/internal/api/respond"
	"github.com/cfwatch/cfwatch-data/internal/cache"
	"github.com/cfwatch/cfwatch-data/internal/config"
	"github.com/cfwatch/cfwatch-data/internal/db"
	"github.com/cfwatch/cfwatch-data/internal/student"
	"github.com/cfwatch/cfwatch-data/internal/sync"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool      *db.Pool
	store     *student.Store
	cache     *cache.Cache
	cfg       *config.Config
	engine    *sync.Engine
	scheduler *sync.Scheduler
}

// New creates a Handler with shared dependencies.
func New(pool *db.Pool, store *student.Store, c *cache.Cache, cfg *config.Config, engine *sync.Engine, scheduler *sync.Scheduler) *Handler {
	return &Handler{
		pool:      pool,
		store:     store,
		cache:     c,
		cfg:       cfg,
		engine:    engine,
		scheduler: scheduler,
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "CFWatch Data API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
