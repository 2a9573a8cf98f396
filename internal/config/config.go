package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const envPrefix = "FACILITYDESK_"

// defaultSQLiteDSN sets per-connection pragmas for a pooled file database.
const defaultSQLiteDSN = "facilitydesk.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"

// Email providers.
const (
	EmailNoop   = "noop"
	EmailResend = "resend"
	EmailSMTP   = "smtp"
)

// Config holds application configuration.
type Config struct {
	// Server
	Addr            string
	Env             string
	ShutdownTimeout time.Duration

	// Database
	DBDriver string
	DBDSN    string

	// Domain
	Timezone          string
	Location          *time.Location
	ExpiryHorizonDays int

	// Observability
	LogLevel      logrus.Level
	SlowQuery     time.Duration
	SlowRequest   time.Duration
	PerfRingSize  int
	RateLimitRate int // requests per second per client IP

	// Security
	CSRFKey []byte // 32 bytes; generated per process when unset

	// Email
	EmailProvider string
	EmailFrom     string
	ResendKey     string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string

	// Jobs
	GreetingSchedule string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:            getEnv("ADDR", ":8080"),
		Env:             getEnv("ENV", "dev"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", defaultSQLiteDSN),

		Timezone:          getEnv("TIMEZONE", "Asia/Kolkata"),
		ExpiryHorizonDays: getEnvInt("EXPIRY_HORIZON_DAYS", 7),

		SlowQuery:     time.Duration(getEnvInt("SLOW_QUERY_MS", 50)) * time.Millisecond,
		SlowRequest:   time.Duration(getEnvInt("SLOW_REQUEST_MS", 200)) * time.Millisecond,
		PerfRingSize:  getEnvInt("PERF_RING_SIZE", 10000),
		RateLimitRate: getEnvInt("RATE_LIMIT_PER_SECOND", 10),

		EmailProvider: getEnv("EMAIL_PROVIDER", EmailNoop),
		EmailFrom:     getEnv("EMAIL_FROM", "FacilityDesk <noreply@facilitydesk.local>"),
		ResendKey:     getEnv("RESEND_KEY", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),

		GreetingSchedule: getEnv("GREETING_SCHEDULE", "0 9 * * *"),
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("%sLOG_LEVEL: %w", envPrefix, err)
	}
	cfg.LogLevel = level

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("%sDB_DRIVER must be sqlite or postgres, got %q", envPrefix, cfg.DBDriver)
	}

	if cfg.Location, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("%sTIMEZONE: %w", envPrefix, err)
	}
	if cfg.ExpiryHorizonDays <= 0 {
		return nil, fmt.Errorf("%sEXPIRY_HORIZON_DAYS must be positive", envPrefix)
	}

	if raw := getEnv("CSRF_KEY", ""); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("%sCSRF_KEY must be 64 hex characters", envPrefix)
		}
		cfg.CSRFKey = key
	}

	switch cfg.EmailProvider {
	case EmailNoop:
	case EmailResend:
		if cfg.ResendKey == "" {
			return nil, fmt.Errorf("%sRESEND_KEY is required for the resend provider", envPrefix)
		}
	case EmailSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("%sSMTP_HOST is required for the smtp provider", envPrefix)
		}
	default:
		return nil, fmt.Errorf("%sEMAIL_PROVIDER must be noop, resend or smtp, got %q", envPrefix, cfg.EmailProvider)
	}

	if cfg.GreetingSchedule != "" {
		if _, err := cron.ParseStandard(cfg.GreetingSchedule); err != nil {
			return nil, fmt.Errorf("%sGREETING_SCHEDULE: %w", envPrefix, err)
		}
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
