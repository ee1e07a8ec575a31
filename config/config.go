package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL        string
	Port         string
	LogLevel     log.Level
	BondCacheTTL time.Duration
}

// Load reads configuration from environment variables, after loading a
// .env file from the working directory if one exists
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}

	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	level, err := log.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("BOND_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOND_CACHE_TTL: %w", err)
	}

	return &Config{
		PGURL:        pgURL,
		Port:         getEnv("PORT", "8080"),
		LogLevel:     level,
		BondCacheTTL: ttl,
	}, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
