package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret string
	JWTIssuer string

	// Remote accounting API
	AccountingAPIBaseURL string
	AccountingAPIToken   string
	AccountingAPITimeout time.Duration

	// Rate limiting, e.g. "100-M" for 100 requests per minute
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "finbooks-backend")
	viper.SetDefault("ACCOUNTING_API_BASE_URL", "")
	viper.SetDefault("ACCOUNTING_API_TOKEN", "")
	viper.SetDefault("ACCOUNTING_API_TIMEOUT", "30s")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.AccountingAPIBaseURL = viper.GetString("ACCOUNTING_API_BASE_URL")
	if cfg.AccountingAPIBaseURL == "" {
		return nil, fmt.Errorf("ACCOUNTING_API_BASE_URL must be set")
	}
	cfg.AccountingAPIToken = viper.GetString("ACCOUNTING_API_TOKEN")

	timeoutStr := viper.GetString("ACCOUNTING_API_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
		log.Printf("Warning: Invalid value for ACCOUNTING_API_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.AccountingAPITimeout = timeout

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
