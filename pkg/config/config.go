package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	StorageDriver string

	JWTSecret         string
	JWTIssuer         string
	JWTExpiryDuration time.Duration

	ReferenceCurrency          string
	SecondaryReferenceCurrency string

	// Live rate sources
	RateAPIURL     string
	RateAPITimeout time.Duration
	FixedRates     string // "ARS=1362.33,BOB=6.91", units per one ReferenceCurrency

	RateLimit          string // limiter format, e.g. "100-M"
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "finance-assistant")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("REFERENCE_CURRENCY", "USD")
	v.SetDefault("SECONDARY_REFERENCE_CURRENCY", "ARS")
	v.SetDefault("RATE_API_URL", "https://api.exchangerate-api.com/v4/latest")
	v.SetDefault("RATE_API_TIMEOUT", "10s")
	v.SetDefault("FIXED_RATES", "")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Environment variables override defaults and values loaded from .env.
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:                v.GetString("PGSQL_URL"),
		Port:                       v.GetString("PORT"),
		IsProduction:               v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:              v.GetBool("ENABLE_DB_CHECK"),
		StorageDriver:              strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		JWTSecret:                  v.GetString("JWT_SECRET"),
		JWTIssuer:                  v.GetString("JWT_ISSUER"),
		ReferenceCurrency:          strings.ToUpper(strings.TrimSpace(v.GetString("REFERENCE_CURRENCY"))),
		SecondaryReferenceCurrency: strings.ToUpper(strings.TrimSpace(v.GetString("SECONDARY_REFERENCE_CURRENCY"))),
		RateAPIURL:                 v.GetString("RATE_API_URL"),
		FixedRates:                 v.GetString("FIXED_RATES"),
		RateLimit:                  v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:         splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	var err error
	if cfg.JWTExpiryDuration, err = parseDuration(v, "JWT_EXPIRY_DURATION", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateAPITimeout, err = parseDuration(v, "RATE_API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER is %q", StoragePostgres)
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want %q or %q)", cfg.StorageDriver, StoragePostgres, StorageMemory)
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		slog.Warn("JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.ReferenceCurrency == "" {
		return nil, fmt.Errorf("REFERENCE_CURRENCY must not be empty")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
