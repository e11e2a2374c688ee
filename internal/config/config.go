// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/sync.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Window presets — the filter options the profile UI offers
// --------------------------------------------------------------------------

// ContestWindowsDays are the selectable lookback windows for contest history.
var ContestWindowsDays = []int{30, 90, 365}

// ProblemWindowsDays are the selectable lookback windows for solved problems.
var ProblemWindowsDays = []int{7, 30, 90}

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// API rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Codeforces API
	CFBaseURL        string
	CFRequestsPerMin int

	// Sync scheduler
	SyncInterval   time.Duration // cadence between scheduler ticks; 0 disables
	SyncHourUTC    int           // -1 = run a cycle on every tick; otherwise daily at this hour
	SyncWorkers    int           // bounded parallelism across students
	InactivityDays int           // lookback window for the activity check

	// Reminder email (SMTP)
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	MailFrom         string
	RemindersEnabled bool

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CFBaseURL:        envOr("CF_API_BASE_URL", "https://codeforces.com/api"),
		CFRequestsPerMin: envInt("CF_REQUESTS_PER_MINUTE", 60),

		SyncInterval:   time.Duration(envInt("SYNC_INTERVAL_MINUTES", 60)) * time.Minute,
		SyncHourUTC:    envInt("SYNC_HOUR_UTC", 2),
		SyncWorkers:    envInt("SYNC_WORKERS", 2),
		InactivityDays: envInt("INACTIVITY_DAYS", 7),

		SMTPHost:         envOr("SMTP_HOST", ""),
		SMTPPort:         envInt("SMTP_PORT", 587),
		SMTPUser:         envOr("SMTP_USER", ""),
		SMTPPassword:     envOr("SMTP_PASSWORD", ""),
		MailFrom:         envOr("MAIL_FROM", envOr("SMTP_USER", "")),
		RemindersEnabled: envBool("REMINDERS_ENABLED", true),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// InactivityWindow returns the activity-check lookback as a duration.
func (c *Config) InactivityWindow() time.Duration {
	return time.Duration(c.InactivityDays) * 24 * time.Hour
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
