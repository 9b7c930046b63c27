package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned by Load when no signing key is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not configured")

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Email     EmailConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Scheduler SchedulerConfig
	Admin     AdminConfig
	Catalog   CatalogConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	URL      string // overrides the discrete fields when set
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	Audience    string
	TokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type EmailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
	Timeout     time.Duration
}

type RedisConfig struct {
	Enabled       bool
	Host          string
	Port          string
	Password      string
	DB            int
	ResetCooldown time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type SchedulerConfig struct {
	ResetCleanupSpec string
}

// CatalogConfig controls access to the customer and product routes.
// They are anonymous unless RequireAuth is set.
type CatalogConfig struct {
	RequireAuth bool
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "oms"),
			Password: getEnv("DB_PASSWORD", "oms"),
			DBName:   getEnv("DB_NAME", "oms"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			Issuer:      getEnv("JWT_ISSUER", "OMS"),
			Audience:    getEnv("JWT_AUDIENCE", "OMS"),
			TokenExpiry: parseDuration(getEnv("JWT_TOKEN_EXPIRY", "24h"), 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:4200")),
		},
		Email: EmailConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        parseInt(getEnv("SMTP_PORT", "587"), 587),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			From:        getEnv("SMTP_FROM", "admin@oms.com"),
			FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:4200"), "/"),
			Timeout:     parseDuration(getEnv("SMTP_TIMEOUT", "15s"), 15*time.Second),
		},
		Redis: RedisConfig{
			Enabled:       parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:          getEnv("REDIS_HOST", "localhost"),
			Port:          getEnv("REDIS_PORT", "6379"),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            parseInt(getEnv("REDIS_DB", "0"), 0),
			ResetCooldown: parseDuration(getEnv("RESET_REQUEST_COOLDOWN", "60s"), time.Minute),
		},
		RateLimit: RateLimitConfig{
			RPS:   parseFloat(getEnv("RATE_LIMIT_RPS", "5"), 5),
			Burst: parseInt(getEnv("RATE_LIMIT_BURST", "10"), 10),
		},
		Catalog: CatalogConfig{
			RequireAuth: parseBool(getEnv("CATALOG_AUTH_REQUIRED", "false")),
		},
		Scheduler: SchedulerConfig{
			ResetCleanupSpec: getEnv("RESET_CLEANUP_SCHEDULE", "@hourly"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@oms.com"),
			Password: getEnv("ADMIN_PASSWORD", "Admin@123"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, ErrMissingJWTSecret
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns the host:port pair for the Redis client.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %g", s, fallback)
		return fallback
	}
	return f
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
