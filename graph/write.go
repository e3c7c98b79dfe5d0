package graph

import (
	"context"
	"fmt"
	"regexp"
)

// Labels and relationship types cannot be parameterised in Cypher, so the
// write primitives splice them into the query text after an identifier check.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CreateNode merges a node by name under the given label and applies the
// properties. Merging keeps repeated ingestion of the same entity idempotent.
func CreateNode(ctx context.Context, client Client, label string, name string, properties map[string]interface{}) error {
	if !identifierPattern.MatchString(label) {
		return fmt.Errorf("invalid node label: %q", label)
	}
	if name == "" {
		return fmt.Errorf("node name cannot be empty")
	}

	query := "MERGE (n:`" + label + "` {name: $name}) SET n += $props"
	_, err := client.Execute(ctx, query, map[string]interface{}{
		"name":  name,
		"props": properties,
	})
	return err
}

// StoreStats holds the current size of the graph store
type StoreStats struct {
	Nodes         int64 `json:"nodes"`
	Relationships int64 `json:"relationships"`
}

// Stats counts the nodes and relationships currently in the store
func Stats(ctx context.Context, client Client) (*StoreStats, error) {
	nodeRows, err := client.Query(ctx, "MATCH (n) RETURN count(n) AS count", nil)
	if err != nil {
		return nil, err
	}
	relRows, err := client.Query(ctx, "MATCH ()-[r]->() RETURN count(r) AS count", nil)
	if err != nil {
		return nil, err
	}

	return &StoreStats{
		Nodes:         firstCount(nodeRows),
		Relationships: firstCount(relRows),
	}, nil
}

func firstCount(rows []map[string]interface{}) int64 {
	if len(rows) == 0 {
		return 0
	}
	switch v := rows[0]["count"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// CreateRelationship merges a typed relationship between two nodes matched by
// name. Both endpoints must already exist; a missing endpoint is a no-op in
// the store, not an error.
func CreateRelationship(ctx context.Context, client Client, sourceName string, targetName string, relType string, properties map[string]interface{}) error {
	if !identifierPattern.MatchString(relType) {
		return fmt.Errorf("invalid relationship type: %q", relType)
	}
	if sourceName == "" || targetName == "" {
		return fmt.Errorf("relationship endpoints cannot be empty")
	}

	query := "MATCH (a {name: $source}) MATCH (b {name: $target}) MERGE (a)-[r:`" + relType + "`]->(b) SET r += $props"
	_, err := client.Execute(ctx, query, map[string]interface{}{
		"source": sourceName,
		"target": targetName,
		"props":  properties,
	})
	return err
}
