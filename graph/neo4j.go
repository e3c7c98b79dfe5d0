package graph

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kgraph-ai/kgraph/helper"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jClient implements Client for Neo4j graph databases
type Neo4jClient struct {
	config Config
	driver neo4j.DriverWithContext
	log    *slog.Logger
}

// NewNeo4jClient creates a client and connects it to the configured database.
// Connection attempts use exponential backoff.
func NewNeo4jClient(ctx context.Context, config Config, logger *slog.Logger) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("graph configuration validation", err)
	}

	auth := neo4j.BasicAuth(config.Username, config.Password, "")
	driverConfig := func(c *neo4j.Config) {
		if config.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = config.MaxConnectionPoolSize
		}
		c.ConnectionAcquisitionTimeout = config.ConnectionTimeout
	}

	var driver neo4j.DriverWithContext
	var lastErr error
	maxRetries := 5
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		var err error
		driver, err = neo4j.NewDriverWithContext(config.URI, auth, driverConfig)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				logger.Info("Connected to graph store", slog.String("uri", config.URI))
				return &Neo4jClient{config: config, driver: driver, log: logger}, nil
			}
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, helper.NewError("graph connection", ctx.Err())
		}

		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > config.ConnectionTimeout {
			delay = config.ConnectionTimeout
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, helper.NewError("graph connection", ctx.Err())
		}
	}

	return nil, helper.NewError("graph connection", fmt.Errorf("failed to connect after %d attempts: %w", maxRetries, lastErr))
}

// Ping verifies connectivity to the store
func (c *Neo4jClient) Ping(ctx context.Context) error {
	if c.driver == nil {
		return helper.NewError("graph ping", fmt.Errorf("driver not connected"))
	}
	return c.driver.VerifyConnectivity(ctx)
}

// Close releases the underlying connection pool
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}

// Query runs a read-only query and returns all rows
func (c *Neo4jClient) Query(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	rows, _, err := c.QueryLimited(ctx, cypher, params, 0)
	return rows, err
}

// QueryLimited runs a read-only query collecting at most maxRows rows.
// maxRows <= 0 collects everything.
func (c *Neo4jClient) QueryLimited(ctx context.Context, cypher string, params map[string]interface{}, maxRows int) ([]map[string]interface{}, bool, error) {
	if c.driver == nil {
		return nil, false, helper.NewError("graph query", fmt.Errorf("driver not connected"))
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.config.Database})
	defer session.Close(ctx)

	type limited struct {
		rows      []map[string]interface{}
		truncated bool
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		out := limited{}
		for res.Next(ctx) {
			if maxRows > 0 && len(out.rows) >= maxRows {
				out.truncated = true
				break
			}
			out.rows = append(out.rows, res.Record().AsMap())
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, false, helper.NewError("graph query", err)
	}

	l := result.(limited)
	return l.rows, l.truncated, nil
}

// Execute runs a query in a write transaction and returns its rows
func (c *Neo4jClient) Execute(ctx context.Context, cypher string, params map[string]interface{}) ([]map[string]interface{}, error) {
	if c.driver == nil {
		return nil, helper.NewError("graph execute", fmt.Errorf("driver not connected"))
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.config.Database})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]interface{}, len(records))
		for i, record := range records {
			rows[i] = record.AsMap()
		}
		return rows, nil
	})
	if err != nil {
		return nil, helper.NewError("graph execute", err)
	}

	return result.([]map[string]interface{}), nil
}
