package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port           string
	RequestTimeout time.Duration

	// Database configuration
	DBType            string // mysql, mariadb, postgres, sqlite, sqlite-pure, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string // silent, error, warn, info

	// Identity configuration. Authorizer sessions, bearer tokens, or both.
	AuthzURL      string
	AuthzClientID string
	JWTSecret     string

	// Rate limiting of connection actions, per user
	RateLimitRPM   int
	RateLimitBurst int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		RequestTimeout:    getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		DBType:            strings.ToLower(getEnv("DB_TYPE", "mysql")),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBLogLevel:        strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		AuthzURL:          getEnv("AUTHZ_URL", ""),
		AuthzClientID:     getEnv("AUTHZ_CLIENT_ID", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		RateLimitRPM:      getEnvAsInt("RATE_LIMIT_RPM", 60),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 10),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBUser == "" && !cfg.IsSQLite() {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.AuthzURL != "" && cfg.AuthzClientID == "" {
		return nil, fmt.Errorf("AUTHZ_CLIENT_ID is required with AUTHZ_URL")
	}
	if cfg.AuthzURL == "" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("AUTHZ_URL or JWT_SECRET is required")
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if cfg.DBConnectionLimit < 1 {
		return nil, fmt.Errorf("DB_CONNECTION_LIMIT must be positive")
	}

	return cfg, nil
}

// IsSQLite reports whether the database is a local sqlite file
func (c *Config) IsSQLite() bool {
	return c.DBType == "sqlite" || c.DBType == "sqlite-pure"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts a Go duration ("15s") or whole seconds ("15")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
