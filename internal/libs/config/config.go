// Package config provides application configuration management from environment variables.
package config

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	StoreBackend string

	MongoService    string
	MongoPort       string
	MongoUsername   string
	MongoPassword   string
	MongoDatabase   string
	MongoCollection string

	DatabaseURL string

	APIPort  string
	APIHost  string
	LogLevel string

	SeedOnStart    bool
	SeedFile       string
	SeedBatchSize  int
	ConflictStatus int
	StoreTimeout   time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", BackendMongo)),
		MongoService:    os.Getenv("MONGODB_SERVICE"),
		MongoPort:       os.Getenv("MONGODB_PORT"),
		MongoUsername:   os.Getenv("MONGODB_USERNAME"),
		MongoPassword:   os.Getenv("MONGODB_PASSWORD"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "songs"),
		MongoCollection: getEnv("MONGODB_COLLECTION", "songs"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		APIPort:         getEnv("API_PORT", "8080"),
		APIHost:         getEnv("API_HOST", "0.0.0.0"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SeedFile:        os.Getenv("SEED_FILE"),
	}

	var err error
	if cfg.SeedOnStart, err = strconv.ParseBool(getEnv("SEED_ON_START", "false")); err != nil {
		return nil, fmt.Errorf("invalid SEED_ON_START: %w", err)
	}
	if cfg.SeedBatchSize, err = strconv.Atoi(getEnv("SEED_BATCH_SIZE", "100")); err != nil {
		return nil, fmt.Errorf("invalid SEED_BATCH_SIZE: %w", err)
	}
	if cfg.ConflictStatus, err = strconv.Atoi(getEnv("CONFLICT_STATUS", "302")); err != nil {
		return nil, fmt.Errorf("invalid CONFLICT_STATUS: %w", err)
	}
	if cfg.StoreTimeout, err = time.ParseDuration(getEnv("STORE_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoService == "" {
			return fmt.Errorf("MONGODB_SERVICE is required")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.ConflictStatus != http.StatusFound && c.ConflictStatus != http.StatusConflict {
		return fmt.Errorf("CONFLICT_STATUS must be 302 or 409, got %d", c.ConflictStatus)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return nil
}

// MongoURI builds the connection string.
// Credentials are used only when both username and password are set.
func (c *Config) MongoURI() string {
	host := c.MongoService
	if c.MongoPort != "" && !strings.Contains(host, ":") {
		host = host + ":" + c.MongoPort
	}

	u := url.URL{Scheme: "mongodb", Host: host}
	if c.MongoUsername != "" && c.MongoPassword != "" {
		u.User = url.UserPassword(c.MongoUsername, c.MongoPassword)
	}
	return u.String()
}

// Addr returns the API listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.APIHost, c.APIPort)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
