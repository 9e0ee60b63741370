package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Budget lock modes
const (
	LockModeMemory   = "memory"
	LockModePostgres = "postgres"
)

// MinJWTSecretLength is the shortest HS256 secret accepted
const MinJWTSecretLength = 32

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth tokens
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	// Server
	Port               string
	PublicURL          string
	CORSOrigins        []string
	Env                string
	RateLimitPerMinute int

	// BudgetLockMode selects the per-user lock used around budget writes
	BudgetLockMode string

	// Events
	AMQP AMQPConfig
}

// AMQPConfig holds the optional RabbitMQ event sink settings
type AMQPConfig struct {
	URL      string // Empty disables publishing
	Exchange string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
	}

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "budgetly"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "budgetly-api"),
		TokenTTL:           tokenTTL,
		Port:               getEnv("PORT", "8080"),
		PublicURL:          getEnv("PUBLIC_URL", ""),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Env:                getEnv("ENV", "development"),
		RateLimitPerMinute: rateLimit,
		BudgetLockMode:     strings.ToLower(getEnv("BUDGET_LOCK_MODE", LockModeMemory)),
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "budgetly.events"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.BudgetLockMode {
	case LockModeMemory, LockModePostgres:
	default:
		return fmt.Errorf("BUDGET_LOCK_MODE must be %q or %q, got %q", LockModeMemory, LockModePostgres, c.BudgetLockMode)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
