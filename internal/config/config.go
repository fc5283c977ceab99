// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Pricing  PricingConfig
	Snapshot SnapshotConfig
	Auth     AuthConfig
	Log      LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// PricingConfig selects and tunes the market data provider.
type PricingConfig struct {
	Provider         string
	AlphaVantageKey  string
	QuoteConcurrency int
	QuoteCacheTTL    time.Duration
}

// SnapshotConfig holds the schedule of the daily history snapshot, as a cron
// expression with a leading seconds field.
type SnapshotConfig struct {
	Schedule string
}

// AuthConfig holds the shared key of internal endpoints.
type AuthConfig struct {
	InternalAPIKey string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables and .env file.
// Malformed numeric, boolean or duration values are an error.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	concurrency, err := getEnvInt("QUOTE_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("QUOTE_CONCURRENCY must be at least 1, got %d", concurrency)
	}
	ttl, err := getEnvDuration("QUOTE_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, err
	}
	pretty, err := getEnvBool("LOG_PRETTY", false)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8000"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_tracker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,localhost:3000")),
		},
		Pricing: PricingConfig{
			Provider:         strings.ToLower(getEnv("PRICE_PROVIDER", "yahoo")),
			AlphaVantageKey:  os.Getenv("ALPHA_VANTAGE_API_KEY"),
			QuoteConcurrency: concurrency,
			QuoteCacheTTL:    ttl,
		},
		Snapshot: SnapshotConfig{
			Schedule: getEnv("SNAPSHOT_SCHEDULE", "0 0 22 * * *"),
		},
		Auth: AuthConfig{
			InternalAPIKey: os.Getenv("INTERNAL_API_KEY"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: pretty,
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

// splitList splits a comma separated list, dropping blank entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
