package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string
	LogFormat  string // "json" or "text"

	// Solana configuration
	SolanaRPCURL string

	// Activity aggregation configuration
	SignatureLimit   int           // how many recent signatures to fetch per address
	FetchConcurrency int           // concurrent per-signature detail fetches
	RequestTimeout   time.Duration // overall deadline per activity request; 0 disables

	// CORS configuration
	AllowedOrigins []string
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be 'json' or 'text'"))
	}

	// Solana configuration
	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}

	// Activity aggregation configuration. A key that fails to parse is reported
	// once and falls back to its default so validateBounds stays quiet about it.
	limit, err := parseInt("SIGNATURE_LIMIT", 10)
	if err != nil {
		errs = append(errs, err)
		limit = 10
	}
	cfg.SignatureLimit = limit

	concurrency, err := parseInt("FETCH_CONCURRENCY", 4)
	if err != nil {
		errs = append(errs, err)
		concurrency = 4
	}
	cfg.FetchConcurrency = concurrency

	timeout, err := parseDuration("REQUEST_TIMEOUT", "30s")
	if err != nil {
		errs = append(errs, err)
		timeout = 30 * time.Second
	}
	cfg.RequestTimeout = timeout

	// CORS configuration
	cfg.AllowedOrigins = splitAndTrim(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000"))

	errs = append(errs, validateBounds(cfg)...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	errs = append(errs, validateBounds(c)...)
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// validateBounds checks the numeric configuration ranges shared by Load and Validate.
func validateBounds(c *Config) []error {
	var errs []error

	if c.SignatureLimit < 1 || c.SignatureLimit > 1000 {
		errs = append(errs, fmt.Errorf("SIGNATURE_LIMIT must be between 1 and 1000, got %d", c.SignatureLimit))
	}

	if c.FetchConcurrency < 1 || c.FetchConcurrency > 64 {
		errs = append(errs, fmt.Errorf("FETCH_CONCURRENCY must be between 1 and 64, got %d", c.FetchConcurrency))
	}

	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT cannot be negative"))
	}

	return errs
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}

// splitAndTrim splits a comma-separated list, dropping empty entries.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
