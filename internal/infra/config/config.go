package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken         string
	DatabaseURL           string
	UserChatID            int64 // Telegram chat that receives the reminders
	AdminTelegramID       int64
	LogLevel              string
	Environment           string
	CronSpecProgressCheck string // periodic progress reconciliation
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables; a missing
	// .env file is fine.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	userChatIDStr := os.Getenv("USER_CHAT_ID")
	if userChatIDStr == "" {
		return nil, fmt.Errorf("USER_CHAT_ID is not set")
	}
	cfg.UserChatID, err = strconv.ParseInt(userChatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid USER_CHAT_ID: %w", err)
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecProgressCheck = os.Getenv("CRON_SPEC_PROGRESS_CHECK")
	if cfg.CronSpecProgressCheck == "" {
		cfg.CronSpecProgressCheck = "*/5 * * * *" // every 5 minutes
	}

	return cfg, nil
}
