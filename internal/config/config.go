package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Reversal modes for posted journal entries
const (
	ReversalModeFlip       = "flip"
	ReversalModeCompensate = "compensate"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	AppURL      string
	LogLevel    string

	// Database
	DatabaseURL    string
	AutoMigrate    bool
	DBMaxOpenConns int
	DBMaxIdleConns int

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Sessions
	SessionTTLHours         int
	RefreshTokenTTLHours    int
	PasswordResetTTLMinutes int

	// Storage
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	EnableEmailNotifications bool
	ResendAPIKey             string
	FromEmail                string

	// Invitations
	InvitationTTLHours int

	// Ledger
	LedgerReversalMode string

	// Reports
	WkhtmltopdfPath       string
	SnapshotRetentionDays int

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                     getEnv("PORT", "8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		AppURL:                   getEnv("APP_URL", "http://localhost:3000"),
		LogLevel:                 getEnv("LOG_LEVEL", ""),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		AutoMigrate:              getEnvAsBool("AUTO_MIGRATE", true),
		DBMaxOpenConns:           getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		DBMaxIdleConns:           getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		JWTExpirationHours:       getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		SessionTTLHours:          getEnvAsInt("SESSION_TTL_HOURS", 24*30),
		RefreshTokenTTLHours:     getEnvAsInt("REFRESH_TOKEN_TTL_HOURS", 24*30),
		PasswordResetTTLMinutes:  getEnvAsInt("PASSWORD_RESET_TTL_MINUTES", 60),
		StoragePath:              getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:              getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:           getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableEmailNotifications: getEnvAsBool("ENABLE_EMAIL_NOTIFICATIONS", true),
		ResendAPIKey:             getEnv("RESEND_API_KEY", ""),
		FromEmail:                getEnv("FROM_EMAIL", "noreply@modular-erp.app"),
		InvitationTTLHours:       getEnvAsInt("INVITATION_TTL_HOURS", 24*7),
		LedgerReversalMode:       getEnv("LEDGER_REVERSAL_MODE", ReversalModeFlip),
		WkhtmltopdfPath:          getEnv("WKHTMLTOPDF_PATH", ""),
		SnapshotRetentionDays:    getEnvAsInt("SNAPSHOT_RETENTION_DAYS", 30),
		SentryDSN:                getEnv("SENTRY_DSN", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	switch cfg.LedgerReversalMode {
	case ReversalModeFlip, ReversalModeCompensate:
	default:
		return nil, fmt.Errorf("LEDGER_REVERSAL_MODE must be %q or %q, got %q", ReversalModeFlip, ReversalModeCompensate, cfg.LedgerReversalMode)
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool reads an environment variable as boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
