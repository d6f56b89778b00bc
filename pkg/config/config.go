// Package config loads bookwell configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration. It is read once at startup and
// not modified afterwards.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	// UserID is the actor the CLI runs as.
	UserID string

	// Database
	DatabaseDriver   string
	DatabaseURL      string
	SQLitePath       string
	DatabaseMaxConns int

	// Redis backs the distributed commit lock. Empty uses an in-process lock.
	RedisURL string

	// RabbitMQ. Empty makes the worker log events instead of publishing them.
	RabbitMQURL string

	// HTTP
	HTTPAddr string

	// Business calendar
	OpenHour         int
	CloseHour        int
	StepMinutes      int
	ClosedWeekdays   []int
	ClosedDates      []string
	BusinessTimezone string

	// Commit
	CommitLockWait        time.Duration
	CommitBreakerFailures int
	CommitBreakerTimeout  time.Duration

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetentionDays    int
	OutboxProcessorEnabled bool

	// Worker
	WorkerHealthAddr string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	closedWeekdays, err := getClosedWeekdays()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),
		UserID:    getEnv("BOOKWELL_USER_ID", "00000000-0000-0000-0000-000000000001"),

		DatabaseDriver:   getEnv("DATABASE_DRIVER", "auto"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		SQLitePath:       getEnv("SQLITE_PATH", ""),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 10),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		HTTPAddr:    getEnv("HTTP_ADDR", "0.0.0.0:8080"),

		OpenHour:         getIntEnv("OPEN_HOUR", 13),
		CloseHour:        getIntEnv("CLOSE_HOUR", 22),
		StepMinutes:      getIntEnv("STEP_MINUTES", 30),
		ClosedWeekdays:   closedWeekdays,
		ClosedDates:      getListEnv("CLOSED_DATES"),
		BusinessTimezone: getEnv("BUSINESS_TIMEZONE", "Local"),

		CommitLockWait:        getDurationEnv("COMMIT_LOCK_WAIT", 2*time.Second),
		CommitBreakerFailures: getIntEnv("COMMIT_BREAKER_FAILURES", 5),
		CommitBreakerTimeout:  getDurationEnv("COMMIT_BREAKER_TIMEOUT", 30*time.Second),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 7),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location resolves BusinessTimezone.
func (c *Config) Location() (*time.Location, error) {
	if c.BusinessTimezone == "" || c.BusinessTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("BUSINESS_TIMEZONE: %w", err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated value, dropping blanks.
func getListEnv(key string) []string {
	return splitList(os.Getenv(key))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DefaultClosedWeekdays is Friday, the business's weekly rest day
// (0 = Monday).
const DefaultClosedWeekdays = "4"

// getClosedWeekdays reads CLOSED_WEEKDAYS. Unset means
// DefaultClosedWeekdays; "none" means open every day.
func getClosedWeekdays() ([]int, error) {
	raw := getEnv("CLOSED_WEEKDAYS", DefaultClosedWeekdays)
	if strings.EqualFold(strings.TrimSpace(raw), "none") {
		return []int{}, nil
	}
	return parseIntList("CLOSED_WEEKDAYS", raw)
}

func parseIntList(key, raw string) ([]int, error) {
	parts := splitList(raw)
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", key, part)
		}
		out = append(out, n)
	}
	return out, nil
}
