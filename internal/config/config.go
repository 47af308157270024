package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    int
	DevMode bool

	DatabasePath string
	PanelPath    string

	FreeCurrencyAPIKey string
	AnthropicAPIKey    string
	AssistantModel     string

	HealthProfile  string
	FXHistorical   bool
	SnapshotMaxAge time.Duration
	HistoryCron    string

	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnvAsInt("PORT", 8080),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		DatabasePath:       getEnv("DATABASE_PATH", "./data/etf.db"),
		PanelPath:          getEnv("PANEL_PATH", "./data/imf_dataset.csv"),
		FreeCurrencyAPIKey: getEnv("FREECURRENCY_API_KEY", ""),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		AssistantModel:     getEnv("ASSISTANT_MODEL", ""),
		HealthProfile:      getEnv("HEALTH_PROFILE", "relaxed"),
		FXHistorical:       getEnvAsBool("FX_HISTORICAL", true),
		SnapshotMaxAge:     getEnvAsDuration("SNAPSHOT_MAX_AGE", time.Hour),
		HistoryCron:        getEnv("HISTORY_CRON", "@hourly"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present. The FX credential
// is required before any network call is attempted.
func (c *Config) Validate() error {
	if c.FreeCurrencyAPIKey == "" {
		return fmt.Errorf("FREECURRENCY_API_KEY is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.PanelPath == "" {
		return fmt.Errorf("PANEL_PATH is required")
	}

	// Note: ANTHROPIC_API_KEY optional, the assistant endpoint is
	// disabled without it.

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
