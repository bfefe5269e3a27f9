package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port     int
	LogLevel string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	CORSOrigins []string

	// Custodial agent credentials for the external trading platform
	BotUsername       string
	BotPassword       string
	BotSharedSecret   string // TOTP seed for login codes
	BotIdentitySecret string // confirmation-approval secret

	// External platform endpoints
	PlatformAPIURL   string
	PlatformEventURL string

	// Settlement tuning
	ConfirmationInterval time.Duration
	DispatchRetryCap     int
	DispatchRetryBackoff time.Duration
	DeliveryMessage      string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "gwskins"),
		CORSOrigins:       []string{getEnv("CORS_ORIGIN", "http://localhost:4200")},
		BotUsername:       getEnv("BOT_USERNAME", ""),
		BotPassword:       getEnv("BOT_PASSWORD", ""),
		BotSharedSecret:   getEnv("BOT_SHARED_SECRET", ""),
		BotIdentitySecret: getEnv("BOT_IDENTITY_SECRET", ""),
		PlatformAPIURL:    getEnv("PLATFORM_API_URL", "https://api.steampowered.com"),
		PlatformEventURL:  getEnv("PLATFORM_EVENT_URL", ""),
		DeliveryMessage:   getEnv("DELIVERY_MESSAGE", "Here is your skin from GW Skins"),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	interval, err := time.ParseDuration(getEnv("CONFIRMATION_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONFIRMATION_INTERVAL value: %w", err)
	}
	cfg.ConfirmationInterval = interval

	retryCap, err := strconv.Atoi(getEnv("DISPATCH_RETRY_CAP", "3"))
	if err != nil || retryCap < 1 {
		return nil, fmt.Errorf("invalid DISPATCH_RETRY_CAP value: %q", getEnv("DISPATCH_RETRY_CAP", "3"))
	}
	cfg.DispatchRetryCap = retryCap

	backoff, err := time.ParseDuration(getEnv("DISPATCH_RETRY_BACKOFF", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_RETRY_BACKOFF value: %w", err)
	}
	cfg.DispatchRetryBackoff = backoff

	// The agent cannot authenticate without credentials; refuse to start a
	// half-configured custody loop.
	if cfg.BotUsername == "" || cfg.BotPassword == "" || cfg.BotSharedSecret == "" {
		return nil, fmt.Errorf("BOT_USERNAME, BOT_PASSWORD and BOT_SHARED_SECRET must be set")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
