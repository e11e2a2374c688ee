// Command sync is the CFWatch operations CLI.
//
// Usage:
//
//	cfwatch-sync run
//	cfwatch-sync run --workers 4
//	cfwatch-sync student --id 42
//	cfwatch-sync analytics --id 42 --contest-days 90 --problem-days 30
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cfwatch/cfwatch-data/internal/analytics"
	"github.com/cfwatch/cfwatch-data/internal/codeforces"
	"github.com/cfwatch/cfwatch-data/internal/config"
	"github.com/cfwatch/cfwatch-data/internal/db"
	"github.com/cfwatch/cfwatch-data/internal/student"
	"github.com/cfwatch/cfwatch-data/internal/sync"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "cfwatch-sync",
		Short: "CFWatch sync and analytics CLI",
	}

	root.AddCommand(runCmd())
	root.AddCommand(studentCmd())
	root.AddCommand(analyticsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// run command — one full sync cycle
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one sync cycle over every student with a handle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSetup(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if workers > 0 {
					cfg.SyncWorkers = workers
				}
				engine := buildEngine(cfg, pool)
				start := time.Now()
				result := engine.Run(ctx)
				logger.Info("Sync cycle finished",
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("cycle error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent worker count (0 = configured default)")
	return cmd
}

// --------------------------------------------------------------------------
// student command — sync a single student
// --------------------------------------------------------------------------

func studentCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Sync a single student by ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == 0 {
				return fmt.Errorf("--id is required")
			}
			return withSetup(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				store := student.NewStore(pool.Pool)
				st, err := store.Load(ctx, id)
				if err != nil {
					return err
				}
				if !st.HasHandle() {
					return fmt.Errorf("student %d has no Codeforces handle", id)
				}

				engine := buildEngine(cfg, pool)
				res := engine.SyncOne(ctx, st)
				if res.Error != "" {
					return fmt.Errorf("sync %q: %s", st.Handle, res.Error)
				}
				logger.Info("Student synced",
					"handle", st.Handle, "active", res.Active, "notify", res.Notify)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Student ID to sync")
	return cmd
}

// --------------------------------------------------------------------------
// analytics command — print profile aggregates as JSON
// --------------------------------------------------------------------------

func analyticsCmd() *cobra.Command {
	var (
		id          int64
		contestDays int
		problemDays int
	)
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Compute profile analytics from a student's stored snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == 0 {
				return fmt.Errorf("--id is required")
			}
			return withSetup(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				store := student.NewStore(pool.Pool)
				st, err := store.Load(ctx, id)
				if err != nil {
					return err
				}
				if st.Snapshot == nil {
					return fmt.Errorf("student %d has no snapshot yet — run a sync first", id)
				}

				profile := analytics.Compute(st.Snapshot, time.Now().UTC(), analytics.Options{
					ContestWindowDays: contestDays,
					ProblemWindowDays: problemDays,
				})

				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(profile)
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Student ID")
	cmd.Flags().IntVar(&contestDays, "contest-days", 90, "Contest history window in days")
	cmd.Flags().IntVar(&problemDays, "problem-days", 30, "Solved problems window in days")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// buildEngine wires the Codeforces client, store, gate, and cycle engine
// from configuration.
func buildEngine(cfg *config.Config, pool *db.Pool) *sync.Engine {
	store := student.NewStore(pool.Pool)
	cfClient := codeforces.NewClient(cfg.CFBaseURL, cfg.CFRequestsPerMin, logger)

	mailer, err := sync.NewSMTPMailer(cfg, logger)
	if err != nil {
		logger.Warn("SMTP mailer unavailable, reminders disabled", "error", err)
		mailer = nil
	}

	gate := sync.NewGate(store, mailer, cfg.RemindersEnabled, logger)
	return sync.NewEngine(cfClient, store, gate, sync.Options{
		Workers:          cfg.SyncWorkers,
		InactivityWindow: cfg.InactivityWindow(),
	}, logger)
}

// withSetup handles config loading, DB connection, and context cancellation.
func withSetup(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
