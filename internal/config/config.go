// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	Port     int
	DevMode  bool
	LogLevel string

	// Auth
	JWTSecret      string
	JWTExpiry      time.Duration
	GoogleClientID string

	// Market data ingestion
	MarketDataAPIKey  string
	MarketDataBaseURL string
	IngestSchedule    string   // cron spec for the stock ingestion job
	Symbols           []string // symbol universe polled round-robin

	// OTP delivery
	SMSAPIKey   string
	SMSBaseURL  string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	EmailSender string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("STOCKPRO_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8080),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiry:      getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		MarketDataAPIKey:  getEnv("MARKET_DATA_API_KEY", ""),
		MarketDataBaseURL: getEnv("MARKET_DATA_BASE_URL", "https://www.alphavantage.co"),
		IngestSchedule:    getEnv("INGEST_SCHEDULE", "0 * * * *"), // top of every hour
		Symbols:           getEnvAsList("SYMBOLS", defaultSymbols),

		SMSAPIKey:   getEnv("SMS_API_KEY", ""),
		SMSBaseURL:  getEnv("SMS_BASE_URL", "https://www.fast2sms.com/dev/bulkV2"),
		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASS", ""),
		EmailSender: getEnv("EMAIL_SENDER", "noreply@stockpro.local"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultSymbols is the ingestion universe used when SYMBOLS is not configured.
var defaultSymbols = []string{
	"TATAMOTORS.BSE", "SBIN.BSE", "HDFCBANK.BSE", "TCS.BSE", "INFY.BSE",
	"RELIANCE.BSE", "ICICIBANK.BSE", "AXISBANK.BSE", "ITC.BSE", "WIPRO.BSE",
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		// Auth endpoints will refuse to issue tokens without a secret,
		// but the server can still start for local development.
		if !c.DevMode {
			return fmt.Errorf("JWT_SECRET is required outside dev mode")
		}
		c.JWTSecret = "dev-only-secret"
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
