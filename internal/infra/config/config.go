package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the overdue-check service.
type AppConfig struct {
	DatabaseURL      string
	JobTriggerSecret string // shared secret for the HTTP trigger endpoint

	HTTPAddr             string
	CronSpecOverdueCheck string

	EmailNotifyURL   string // external email-notification endpoint; empty disables the email stage
	EmailNotifyToken string

	TelegramToken   string // optional failure alerting; empty disables it
	AdminTelegramID int64

	LogLevel       string
	Environment    string
	MetricsEnabled bool
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.JobTriggerSecret = os.Getenv("JOB_TRIGGER_SECRET")
	if cfg.JobTriggerSecret == "" {
		return nil, fmt.Errorf("JOB_TRIGGER_SECRET is not set")
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.CronSpecOverdueCheck = os.Getenv("CRON_SPEC_OVERDUE_CHECK")
	if cfg.CronSpecOverdueCheck == "" {
		cfg.CronSpecOverdueCheck = "*/30 * * * *" // Default: every 30 minutes
	}

	cfg.EmailNotifyURL = os.Getenv("EMAIL_NOTIFY_URL")
	cfg.EmailNotifyToken = os.Getenv("EMAIL_NOTIFY_TOKEN")

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		id, err := strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.AdminTelegramID = id
	}
	if cfg.TelegramToken != "" && cfg.AdminTelegramID == 0 {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is required when TELEGRAM_TOKEN is set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.MetricsEnabled = strings.EqualFold(os.Getenv("METRICS_ENABLED"), "true")

	return cfg, nil
}
