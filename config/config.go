// Package config reads the settings of the carteira server from the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Store kinds.
const (
	StoreJSONL  = "jsonl"
	StoreSQLite = "sqlite"
)

// Config holds application configuration
type Config struct {
	Port      int
	DataDir   string // folder of the ledgers, or of the sqlite database
	Store     string // StoreJSONL or StoreSQLite
	LogLevel  string
	PrettyLog bool
}

// Load reads configuration from environment variables, and from a .env file
// in the working directory when there is one.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnvAsInt("CARTEIRA_PORT", 8080),
		DataDir:   getEnv("CARTEIRA_DATA_DIR", "./data"),
		Store:     getEnv("CARTEIRA_STORE", StoreJSONL),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		PrettyLog: getEnvAsBool("CARTEIRA_PRETTY_LOG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("CARTEIRA_PORT %d is not a valid port", c.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("CARTEIRA_DATA_DIR is required")
	}
	switch c.Store {
	case StoreJSONL, StoreSQLite:
	default:
		return fmt.Errorf("CARTEIRA_STORE %q want %q or %q", c.Store, StoreJSONL, StoreSQLite)
	}
	return nil
}

// Addr is the listening address of the server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// DatabasePath is the sqlite database file.
func (c *Config) DatabasePath() string { return filepath.Join(c.DataDir, "carteira.db") }

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
