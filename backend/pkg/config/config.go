package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	apperrors "kinship-graph/backend/pkg/errors"
)

// Store backends understood by store.Open
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendNeo4j    = "neo4j"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Storage
	StoreBackend string
	DatabaseURL  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Graph
	DefaultLanguage string
	PathMaxDepth    int // Depth used by FindPath when the caller passes a negative depth
	EdgeScanLimit   int // Row bound for the scan-then-filter edge lookup
	FanOutLimit     int // Row bound when reading one entity's index partition

	// Search
	SearchCandidateLimit int // Candidate entries fetched per query word

	// Catalog
	SeedCatalog bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", ""),
		StoreBackend:         strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		Neo4jURI:             getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:            getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:        getEnv("NEO4J_PASSWORD", ""),
		DefaultLanguage:      getEnv("DEFAULT_LANGUAGE", "de"),
		PathMaxDepth:         getEnvInt("PATH_MAX_DEPTH", 3),
		EdgeScanLimit:        getEnvInt("EDGE_SCAN_LIMIT", 10000),
		FanOutLimit:          getEnvInt("FAN_OUT_LIMIT", 1000),
		SearchCandidateLimit: getEnvInt("SEARCH_CANDIDATE_LIMIT", 1000),
		SeedCatalog:          getEnvBool("SEED_CATALOG", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return apperrors.NewConfigMissingRequired("DATABASE_URL")
		}
	case BackendNeo4j:
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
		}
	default:
		return apperrors.NewConfigValidationFailed("STORE_BACKEND", fmt.Sprintf("unknown backend %q", c.StoreBackend))
	}
	if c.DefaultLanguage == "" {
		return apperrors.NewConfigMissingRequired("DEFAULT_LANGUAGE")
	}
	if c.PathMaxDepth < 0 {
		return apperrors.NewConfigValidationFailed("PATH_MAX_DEPTH", "must not be negative")
	}
	if c.EdgeScanLimit <= 0 {
		return apperrors.NewConfigValidationFailed("EDGE_SCAN_LIMIT", "must be positive")
	}
	if c.FanOutLimit <= 0 {
		return apperrors.NewConfigValidationFailed("FAN_OUT_LIMIT", "must be positive")
	}
	if c.SearchCandidateLimit <= 0 {
		return apperrors.NewConfigValidationFailed("SEARCH_CANDIDATE_LIMIT", "must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
