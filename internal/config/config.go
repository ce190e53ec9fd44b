// Package config provides configuration for the gateway.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the gateway configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// PublicBaseURL is the externally visible base URL, used in
	// rendered documentation and endpoint links.
	PublicBaseURL string

	// CatalogPath points at the agent catalog JSON document. Empty
	// means the embedded default catalog.
	CatalogPath string

	// Environment gates error-detail disclosure ("production" hides
	// internal fault detail).
	Environment string

	// UpstreamTimeout bounds outbound proxy calls. Zero leaves the
	// transport default in place.
	UpstreamTimeout time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		CatalogPath:     getEnv("CATALOG_PATH", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_MS", 0)) * time.Millisecond,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// IsProduction reports whether the gateway runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
