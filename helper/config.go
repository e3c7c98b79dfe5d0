package helper

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Configuration holds all process-level settings for the question answering
// service. Values are read from the environment, optionally seeded from a
// .env file.
type Configuration struct {
	// Neo4j
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string
	Neo4jDatabase string

	// LLM provider
	LLMProvider string // openai, anthropic or ollama
	LLMModel    string
	LLMAPIKey   string
	LLMBaseURL  string // optional, for OpenAI-compatible endpoints

	// Query behaviour
	QueryTimeout     time.Duration
	RetrievalTimeout time.Duration
	MaxRows          int

	// Passage store
	Database *DatabaseConfiguration
}

// NewConfiguration loads the configuration from the environment. A .env file
// in the working directory is loaded first if present; real environment
// variables take precedence.
func NewConfiguration() (*Configuration, error) {
	// Missing .env is fine, the environment may be fully set already
	_ = godotenv.Load()

	dbConfig, err := NewDatabaseConfiguration()
	if err != nil {
		return nil, err
	}

	config := &Configuration{
		Neo4jURI:         envOrDefault("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUsername:    envOrDefault("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword:    os.Getenv("NEO4J_PASSWORD"),
		Neo4jDatabase:    os.Getenv("NEO4J_DATABASE"),
		LLMProvider:      envOrDefault("LLM_PROVIDER", "openai"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		LLMBaseURL:       os.Getenv("LLM_BASE_URL"),
		QueryTimeout:     envDuration("QUERY_TIMEOUT", 30*time.Second),
		RetrievalTimeout: envDuration("RETRIEVAL_TIMEOUT", 15*time.Second),
		MaxRows:          envInt("QUERY_MAX_ROWS", 50),
		Database:         dbConfig,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks provider-dependent requirements
func (c *Configuration) Validate() error {
	switch c.LLMProvider {
	case "openai", "anthropic":
		if c.LLMAPIKey == "" {
			return NewError("configuration validation", fmt.Errorf("LLM_API_KEY is required for provider %s", c.LLMProvider))
		}
	case "ollama":
		// Local provider, no key needed
	default:
		return NewError("configuration validation", fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider))
	}

	if c.Neo4jPassword == "" {
		return NewError("configuration validation", fmt.Errorf("NEO4J_PASSWORD must be set"))
	}
	if c.QueryTimeout <= 0 {
		return NewError("configuration validation", fmt.Errorf("QUERY_TIMEOUT must be positive"))
	}
	if c.MaxRows <= 0 {
		return NewError("configuration validation", fmt.Errorf("QUERY_MAX_ROWS must be positive"))
	}

	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
