package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	RunMigrations     bool
	MigrationsPath    string
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	LogLevel  string
	LogFormat string // "json" or "text"

	// ClosedPeriodPolicy decides whether postings into a closed period fail or only warn.
	ClosedPeriodPolicy domain.ClosedPeriodPolicy

	// RedisURL enables the redis-backed rate limit store and async event queue when set.
	RedisURL           string
	RateLimit          string // ulule/limiter format, e.g. "300-M"
	CORSAllowedOrigins []string
	AsyncEvents        bool
	// ReportCacheTTL bounds cached statements in redis; zero disables the cache.
	ReportCacheTTL time.Duration
}

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "marketplace-ledger")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("CLOSED_PERIOD_POLICY", string(domain.ClosedPeriodReject))
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("ASYNC_EVENTS", false)
	v.SetDefault("REPORT_CACHE_TTL", "10m")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:  v.GetBool("RUN_MIGRATIONS"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTIssuer:      v.GetString("JWT_ISSUER"),
		LogLevel:       strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:      strings.ToLower(v.GetString("LOG_FORMAT")),
		RedisURL:       v.GetString("REDIS_URL"),
		RateLimit:      v.GetString("RATE_LIMIT"),
		AsyncEvents:    v.GetBool("ASYNC_EVENTS"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
	}
	if cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	// Load JWT Expiry Duration (e.g., "60m", "1h")
	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.IsProduction {
			cfg.LogFormat = "json"
		}
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q, expected json or text", cfg.LogFormat)
	}

	cfg.ClosedPeriodPolicy = domain.ClosedPeriodPolicy(strings.ToLower(v.GetString("CLOSED_PERIOD_POLICY")))
	if !cfg.ClosedPeriodPolicy.IsValid() {
		return nil, fmt.Errorf("invalid CLOSED_PERIOD_POLICY %q, expected reject or warn", cfg.ClosedPeriodPolicy)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cacheTTLStr := v.GetString("REPORT_CACHE_TTL")
	if cacheTTLStr != "" {
		if cfg.ReportCacheTTL, err = time.ParseDuration(cacheTTLStr); err != nil || cfg.ReportCacheTTL < 0 {
			return nil, fmt.Errorf("invalid REPORT_CACHE_TTL %q", cacheTTLStr)
		}
	}
	if cfg.RedisURL == "" {
		cfg.ReportCacheTTL = 0
	}

	if cfg.AsyncEvents && cfg.RedisURL == "" {
		log.Println("Warning: ASYNC_EVENTS requires REDIS_URL; events will be booked synchronously.")
		cfg.AsyncEvents = false
	}

	return cfg, nil
}
