package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string
	AdminID       int64 // Telegram ID of the bot owner, always treated as admin

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)
	Port        int    // HTTP listen port

	// Postgres configuration
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// Redis session store (optional; in-memory when unset)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Generation providers (OpenAI-compatible endpoints)
	LLMAPIKey    string
	LLMBaseURL   string
	LLMModel     string
	ImageAPIKey  string
	ImageBaseURL string
	ImageModel   string

	// ClickHouse analytics sink (optional)
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	UseMockDB bool
}

// AnalyticsEnabled reports whether a ClickHouse sink is configured.
func (c *Config) AnalyticsEnabled() bool { return c.ClickHouseHost != "" }

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Admin ID (required)
	adminStr := os.Getenv("ADMIN_ID")
	if adminStr == "" {
		return nil, fmt.Errorf("ADMIN_ID is required (Telegram user ID of the bot owner)")
	}
	adminID, err := strconv.ParseInt(adminStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_ID: %w", err)
	}
	config.AdminID = adminID

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	config.Port = 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = port
	}

	// Use Mock DB (default: false)
	config.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"

	// Postgres configuration (required if not using mock)
	if !config.UseMockDB {
		config.DBHost = os.Getenv("DB_HOST")
		if config.DBHost == "" {
			return nil, fmt.Errorf("DB_HOST is required when USE_MOCK_DB is not set")
		}

		config.DBPort = 5432
		if portStr := os.Getenv("DB_PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid DB_PORT: %w", err)
			}
			config.DBPort = port
		}

		config.DBName = os.Getenv("DB_NAME")
		if config.DBName == "" {
			config.DBName = "trainbot"
		}

		config.DBUser = os.Getenv("DB_USER")
		if config.DBUser == "" {
			config.DBUser = "postgres"
		}

		config.DBPassword = os.Getenv("DB_PASSWORD")
		// Password is optional, can be empty

		config.DBSSLMode = os.Getenv("DB_SSLMODE")
		if config.DBSSLMode == "" {
			config.DBSSLMode = "disable"
		}
	}

	// Redis session store (optional)
	config.RedisAddr = os.Getenv("REDIS_ADDR")
	config.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		config.RedisDB = db
	}

	// Generation providers. Missing keys disable the capability rather
	// than failing startup, the bot still teaches without them.
	config.LLMAPIKey = os.Getenv("LLM_API_KEY")
	config.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	config.LLMModel = os.Getenv("LLM_MODEL")
	config.ImageAPIKey = os.Getenv("IMAGE_API_KEY")
	config.ImageBaseURL = os.Getenv("IMAGE_BASE_URL")
	config.ImageModel = os.Getenv("IMAGE_MODEL")

	// ClickHouse analytics sink (optional)
	config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if config.ClickHouseHost != "" {
		config.ClickHousePort = 9000
		if portStr := os.Getenv("CLICKHOUSE_PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
			}
			config.ClickHousePort = port
		}

		config.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
		if config.ClickHouseDatabase == "" {
			config.ClickHouseDatabase = "default"
		}

		config.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
		if config.ClickHouseUser == "" {
			config.ClickHouseUser = "default"
		}

		config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
		config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	}

	return config, nil
}
