// Package config loads and validates application configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// TxRetryLimit is how many times a booking or enrollment transaction
	// is retried after a serialization conflict before giving up.
	// Defaults to 3. Set TX_RETRY_LIMIT to override.
	TxRetryLimit uint64

	// CodeRetryLimit is how many reservation codes checkout generates
	// before failing with a code-exhaustion error. Defaults to 5.
	// Set CODE_RETRY_LIMIT to override.
	CodeRetryLimit int

	// RequireElapsedOnComplete gates the CONFIRMED → COMPLETED move on
	// every booking window having passed. Defaults to true. Set
	// REQUIRE_ELAPSED_ON_COMPLETE=false to allow early completion.
	RequireElapsedOnComplete bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:                     getEnv("PORT", "8080"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		CORSOrigins:              splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		TxRetryLimit:             getEnvUint("TX_RETRY_LIMIT", 3),
		CodeRetryLimit:           getEnvInt("CODE_RETRY_LIMIT", 5),
		RequireElapsedOnComplete: getEnvBool("REQUIRE_ELAPSED_ON_COMPLETE", true),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses the named variable as a positive integer, falling back
// on absence or a malformed value.
func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// getEnvUint parses the named variable as an unsigned integer, falling
// back on absence or a malformed value.
func getEnvUint(key string, fallback uint64) uint64 {
	if v, err := strconv.ParseUint(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return fallback
}

// getEnvBool parses the named variable as a boolean ("true"/"false"/"1"/"0"),
// falling back on absence or a malformed value.
func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
