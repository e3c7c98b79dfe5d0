package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/kgraph-ai/kgraph/core/pipeline"
	"github.com/kgraph-ai/kgraph/database"
	"github.com/kgraph-ai/kgraph/graph"
	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/model"
)

// DefaultTextProperties are the node properties read when the caller
// does not name which properties carry indexable text.
var DefaultTextProperties = []string{"content", "text", "page_content", "description", "summary", "bio"}

var validLabel = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IndexBuilder rebuilds the passage index for a node label from the
// graph store. Node text is chunked, embedded and stored as passages.
type IndexBuilder struct {
	graph    graph.Client
	passages database.PassagesDBHandlerFunctions
	pipeline *pipeline.Pipeline
	log      *slog.Logger
}

// NewIndexBuilder creates a new index builder
func NewIndexBuilder(graphClient graph.Client, passages database.PassagesDBHandlerFunctions, processing *pipeline.Pipeline, logger *slog.Logger) (*IndexBuilder, error) {
	if graphClient == nil {
		return nil, helper.NewError("index builder validation", fmt.Errorf("graph client is nil"))
	}
	if passages == nil {
		return nil, helper.NewError("index builder validation", fmt.Errorf("passage store is nil"))
	}
	if processing == nil {
		return nil, helper.NewError("index builder validation", fmt.Errorf("pipeline is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &IndexBuilder{
		graph:    graphClient,
		passages: passages,
		pipeline: processing,
		log:      logger,
	}, nil
}

// Rebuild reads every node carrying the label, chunks and embeds its text
// properties, and replaces the passages stored under the label.
// Returns the number of passages written.
func (b *IndexBuilder) Rebuild(ctx context.Context, label string, textProperties []string) (int, error) {
	if !validLabel.MatchString(label) {
		return 0, helper.NewError("rebuild index", fmt.Errorf("invalid label: %q", label))
	}
	if len(textProperties) == 0 {
		textProperties = DefaultTextProperties
	}

	rows, err := b.graph.Query(ctx, fmt.Sprintf("MATCH (n:`%s`) RETURN properties(n) AS props", label), nil)
	if err != nil {
		return 0, helper.NewError("read nodes", err)
	}

	var passages []*model.Passage
	for _, row := range rows {
		props, ok := row["props"].(map[string]interface{})
		if !ok {
			continue
		}

		text := joinTextProperties(props, textProperties)
		if strings.TrimSpace(text) == "" {
			continue
		}

		processed, err := b.pipeline.Process(text, label, nodeSource(props))
		if err != nil {
			return 0, helper.NewError("process node text", err)
		}
		passages = append(passages, processed...)
	}

	deleted, err := b.passages.DeletePassagesByLabel(label)
	if err != nil {
		return 0, helper.NewError("clear passages", err)
	}

	inserted := 0
	for _, passage := range passages {
		if err := b.passages.InsertPassage(passage); err != nil {
			return inserted, helper.NewError("insert passage", err)
		}
		inserted++
	}

	b.log.Info("Rebuilt passage index",
		slog.String("label", label),
		slog.Int("nodes", len(rows)),
		slog.Int("deleted", deleted),
		slog.Int("inserted", inserted),
	)

	return inserted, nil
}

// nodeSource picks a human-readable identity for the node the text came from
func nodeSource(props map[string]interface{}) string {
	for _, key := range []string{"title", "name", "id"} {
		if v, ok := props[key].(string); ok && v != "" {
			return v
		}
	}
	return "unknown"
}

// joinTextProperties concatenates the string values of the named properties
func joinTextProperties(props map[string]interface{}, textProperties []string) string {
	var parts []string
	for _, key := range textProperties {
		if v, ok := props[key].(string); ok && strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n\n")
}
