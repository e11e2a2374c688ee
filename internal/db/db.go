// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cfwatch/cfwatch-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// studentColumns is the canonical column list for student row scans.
const studentColumns = `id, student_id, name, phone, email, grades, handle,
	current_rating, max_rating, snapshot, last_synced_at,
	reminder_count, reminders_enabled`

// registerPreparedStatements registers all statements the API and sync
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Roster reads
		"student_by_id":        "SELECT " + studentColumns + " FROM students WHERE id = $1",
		"students_list":        "SELECT " + studentColumns + " FROM students ORDER BY name",
		"students_with_handle": "SELECT " + studentColumns + " FROM students WHERE handle <> '' ORDER BY id",

		// Roster writes
		"student_duplicate_check": "SELECT 1 FROM students WHERE student_id = $1 OR email = $2 LIMIT 1",
		"student_insert": `
			INSERT INTO students (
				student_id, name, phone, email, grades, handle,
				current_rating, max_rating
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id`,
		"student_update": `
			UPDATE students
			SET student_id = $2, name = $3, phone = $4, email = $5, grades = $6,
			    handle = $7, current_rating = $8, max_rating = $9,
			    reminders_enabled = $10, updated_at = NOW()
			WHERE id = $1`,
		"student_delete": "DELETE FROM students WHERE id = $1",

		// Sync: snapshot swap — snapshot and last_synced_at move together or
		// not at all, so a failed save never advances the sync stamp.
		"student_save_snapshot": `
			UPDATE students
			SET snapshot = $2, last_synced_at = NOW(), updated_at = NOW()
			WHERE id = $1`,

		// Sync: reminder tally, incremented only after a confirmed send
		"student_increment_reminders": `
			UPDATE students
			SET reminder_count = reminder_count + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING reminder_count`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
