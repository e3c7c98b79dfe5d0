package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/model"
)

const (
	labelCountsQuery = `
		MATCH (n)
		UNWIND labels(n) AS label
		RETURN label, count(n) AS count
		ORDER BY label`

	labelPropertiesQuery = `
		MATCH (n)
		UNWIND labels(n) AS label
		UNWIND keys(n) AS key
		RETURN label, collect(DISTINCT key) AS properties`

	relationshipCountsQuery = `
		MATCH ()-[r]->()
		RETURN type(r) AS type, count(r) AS count
		ORDER BY type`
)

// Introspect enumerates the node labels, their properties and the
// relationship types currently present in the store
func (c *Neo4jClient) Introspect(ctx context.Context) (*model.SchemaSnapshot, error) {
	labelRows, err := c.Query(ctx, labelCountsQuery, nil)
	if err != nil {
		return nil, helper.NewError("schema introspection", err)
	}

	propRows, err := c.Query(ctx, labelPropertiesQuery, nil)
	if err != nil {
		return nil, helper.NewError("schema introspection", err)
	}

	relRows, err := c.Query(ctx, relationshipCountsQuery, nil)
	if err != nil {
		return nil, helper.NewError("schema introspection", err)
	}

	snapshot := buildSnapshot(labelRows, propRows, relRows)

	c.log.Info("Schema introspected",
		slog.Int("labels", len(snapshot.Labels)),
		slog.Int("relationships", len(snapshot.Relationships)),
		slog.Int64("total_nodes", snapshot.TotalNodes()),
	)

	return snapshot, nil
}

// buildSnapshot assembles a SchemaSnapshot from the three introspection row sets
func buildSnapshot(labelRows, propRows, relRows []map[string]interface{}) *model.SchemaSnapshot {
	properties := make(map[string][]string)
	for _, row := range propRows {
		label, _ := row["label"].(string)
		if label == "" {
			continue
		}
		if list, ok := row["properties"].([]interface{}); ok {
			props := make([]string, 0, len(list))
			for _, p := range list {
				if s, ok := p.(string); ok {
					props = append(props, s)
				}
			}
			properties[label] = props
		}
	}

	snapshot := &model.SchemaSnapshot{CapturedAt: time.Now()}

	for _, row := range labelRows {
		label, _ := row["label"].(string)
		if label == "" {
			continue
		}
		snapshot.Labels = append(snapshot.Labels, model.NodeLabel{
			Name:       label,
			Count:      asInt64(row["count"]),
			Properties: properties[label],
		})
	}

	for _, row := range relRows {
		relType, _ := row["type"].(string)
		if relType == "" {
			continue
		}
		snapshot.Relationships = append(snapshot.Relationships, model.RelationshipType{
			Name:  relType,
			Count: asInt64(row["count"]),
		})
	}

	return snapshot
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
