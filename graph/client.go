package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/kgraph-ai/kgraph/model"
)

// Client is the interface to the structured graph store.
// Implementations must be safe for concurrent use.
type Client interface {
	// Ping verifies connectivity to the store
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool
	Close(ctx context.Context) error

	// Query runs a read-only query and returns all rows
	Query(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error)

	// QueryLimited runs a read-only query collecting at most maxRows rows.
	// The second return value reports whether rows beyond the cap were dropped.
	QueryLimited(ctx context.Context, cypher string, params map[string]interface{}, maxRows int) ([]map[string]interface{}, bool, error)

	// Execute runs a query in a write transaction and returns its rows
	Execute(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error)

	// Introspect enumerates the current vocabulary of the store
	Introspect(ctx context.Context) (*model.SchemaSnapshot, error)
}

// Config contains connection options for the graph store
type Config struct {
	// URI is the bolt/neo4j connection URI, e.g. "bolt://localhost:7687"
	URI      string
	Username string
	Password string

	// Database name; empty uses the server default
	Database string

	// MaxConnectionPoolSize limits pooled connections; zero uses the driver default
	MaxConnectionPoolSize int

	// ConnectionTimeout is the maximum time to wait for a connection
	ConnectionTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		URI:                   "bolt://localhost:7687",
		Username:              "neo4j",
		Password:              "password",
		MaxConnectionPoolSize: 50,
		ConnectionTimeout:     30 * time.Second,
	}
}

// Validate checks if the configuration is usable
func (c Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("URI cannot be empty")
	}
	if c.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if c.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if c.ConnectionTimeout <= 0 {
		return fmt.Errorf("connection timeout must be positive")
	}
	return nil
}
