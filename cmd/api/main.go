// Command api is the CFWatch Data API server.
//
// Usage:
//
//	cfwatch-api
//	API_PORT=8080 cfwatch-api
//
// Serves the student roster, profile analytics, and CSV export, and runs
// the background Codeforces sync scheduler.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/cfwatch/cfwatch-data/internal/api"
	"github.com/cfwatch/cfwatch-data/internal/cache"
	"github.com/cfwatch/cfwatch-data/internal/codeforces"
	"github.com/cfwatch/cfwatch-data/internal/config"
	"github.com/cfwatch/cfwatch-data/internal/db"
	"github.com/cfwatch/cfwatch-data/internal/student"
	"github.com/cfwatch/cfwatch-data/internal/sync"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Sync pipeline: Codeforces client, store, reminder gate, cycle engine
	store := student.NewStore(pool.Pool)
	cfClient := codeforces.NewClient(cfg.CFBaseURL, cfg.CFRequestsPerMin, logger)

	mailer, err := sync.NewSMTPMailer(cfg, logger)
	if err != nil {
		logger.Error("Failed to configure SMTP mailer", "error", err)
		os.Exit(1)
	}
	if mailer.Enabled() {
		logger.Info("Reminder mailer configured", "host", cfg.SMTPHost)
	} else {
		logger.Info("Reminder mailer disabled (no SMTP_HOST)")
	}

	gate := sync.NewGate(store, mailer, cfg.RemindersEnabled, logger)
	engine := sync.NewEngine(cfClient, store, gate, sync.Options{
		Workers:          cfg.SyncWorkers,
		InactivityWindow: cfg.InactivityWindow(),
	}, logger)

	// Start the sync scheduler
	scheduler := sync.NewScheduler(engine, cfg.SyncInterval, cfg.SyncHourUTC, logger)
	go scheduler.Start(ctx)

	// Create router
	router := api.NewRouter(pool, store, appCache, cfg, engine, scheduler)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting CFWatch Data API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
