package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kgraph-ai/kgraph/core/pipeline"
	"github.com/kgraph-ai/kgraph/database"
	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/model"
)

// Retriever performs semantic similarity search over the passage index.
// It embeds the question with the same model the index was built with.
type Retriever struct {
	passages database.PassagesDBHandlerFunctions
	embedder pipeline.EmbedFunc
	log      *slog.Logger
}

// NewRetriever creates a new retriever over the passage store
func NewRetriever(passages database.PassagesDBHandlerFunctions, embedder pipeline.EmbedFunc, logger *slog.Logger) (*Retriever, error) {
	if passages == nil {
		return nil, helper.NewError("retriever validation", fmt.Errorf("passage store is nil"))
	}
	if embedder == nil {
		return nil, helper.NewError("retriever validation", fmt.Errorf("embedder is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Retriever{
		passages: passages,
		embedder: embedder,
		log:      logger,
	}, nil
}

// Search returns up to k passages under the label, closest first.
// k <= 0 disables semantic retrieval and returns an empty list without
// touching the store. An empty label searches the default collection.
func (r *Retriever) Search(ctx context.Context, question string, k int, label string) ([]*model.Passage, error) {
	if k <= 0 {
		return []*model.Passage{}, nil
	}
	if label == "" {
		label = model.DefaultPassageLabel
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embedding, err := r.embedder(question)
	if err != nil {
		return nil, helper.NewError("embed question", err)
	}

	results, err := r.passages.SelectPassagesBySimilarity(embedding, k, label)
	if err != nil {
		return nil, helper.NewError("similarity search", err)
	}

	r.log.Debug("Semantic retrieval finished",
		slog.String("label", label),
		slog.Int("requested", k),
		slog.Int("found", len(results)),
	)

	return results, nil
}
