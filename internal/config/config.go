package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)

	// Database configuration
	DatabaseURL string
	UseMockDB   bool

	// HTTP server
	Host string
	Port int

	PageSize int
	LogLevel string

	// Localization
	Locale    string
	LocaleDir string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	// Use Mock DB (default: false)
	config.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"

	// Database (required if not using mock)
	if !config.UseMockDB {
		config.DatabaseURL = os.Getenv("DATABASE_URL")
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when USE_MOCK_DB is not set")
		}
	}

	// HTTP server
	config.Host = os.Getenv("HOST") // empty means all interfaces
	portStr := os.Getenv("PORT")
	if portStr == "" {
		config.Port = 8080
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = port
	}

	// Pagination
	pageSizeStr := os.Getenv("PAGE_SIZE")
	if pageSizeStr == "" {
		config.PageSize = 10
	} else {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil || pageSize < 1 {
			return nil, fmt.Errorf("invalid PAGE_SIZE: %s", pageSizeStr)
		}
		config.PageSize = pageSize
	}

	config.LogLevel = os.Getenv("LOG_LEVEL")
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	config.Locale = os.Getenv("LOCALE")
	if config.Locale == "" {
		config.Locale = "en"
	}
	config.LocaleDir = os.Getenv("LOCALE_DIR")
	if config.LocaleDir == "" {
		config.LocaleDir = "locale"
	}

	return config, nil
}
