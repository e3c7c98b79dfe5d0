package resolver

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kgraph-ai/kgraph/graph"
	"github.com/kgraph-ai/kgraph/model"
)

// SchemaCache holds the current schema snapshot and introspects lazily.
// A snapshot is fetched at most once between invalidations.
type SchemaCache struct {
	mu       sync.Mutex
	graph    graph.Client
	snapshot *model.SchemaSnapshot
	log      *slog.Logger
}

// NewSchemaCache creates an empty cache over the graph client
func NewSchemaCache(graphClient graph.Client, logger *slog.Logger) *SchemaCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaCache{
		graph: graphClient,
		log:   logger,
	}
}

// Get returns the cached snapshot, introspecting the store if the cache is
// empty. Introspection failure is a SchemaUnavailable error.
func (c *SchemaCache) Get(ctx context.Context) (*model.SchemaSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil {
		return c.snapshot, nil
	}

	snapshot, err := c.graph.Introspect(ctx)
	if err != nil {
		return nil, &SchemaUnavailable{Err: err}
	}

	c.snapshot = snapshot
	c.log.Info("Schema snapshot cached",
		slog.Int("labels", len(snapshot.Labels)),
		slog.Int("relationships", len(snapshot.Relationships)),
	)

	return c.snapshot, nil
}

// Invalidate drops the cached snapshot; the next Get introspects again
func (c *SchemaCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
}
