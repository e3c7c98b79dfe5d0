package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/kgraph-ai/kgraph/graph"
	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/llm"
	"github.com/kgraph-ai/kgraph/model"
)

// CypherResolver translates questions into validated Cypher bound to one
// schema snapshot and executes them. A resolver never outlives its snapshot;
// schema refresh builds a new resolver.
type CypherResolver struct {
	snapshot  *model.SchemaSnapshot
	generator llm.Generator
	graph     graph.Client
	timeout   time.Duration
	maxRows   int
	log       *slog.Logger
}

// NewCypherResolver binds a resolver to the given snapshot
func NewCypherResolver(snapshot *model.SchemaSnapshot, generator llm.Generator, graphClient graph.Client, timeout time.Duration, maxRows int, logger *slog.Logger) (*CypherResolver, error) {
	if snapshot == nil {
		return nil, helper.NewError("resolver validation", fmt.Errorf("schema snapshot is nil"))
	}
	if generator == nil {
		return nil, helper.NewError("resolver validation", fmt.Errorf("generator is nil"))
	}
	if graphClient == nil {
		return nil, helper.NewError("resolver validation", fmt.Errorf("graph client is nil"))
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRows <= 0 {
		maxRows = 50
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CypherResolver{
		snapshot:  snapshot,
		generator: generator,
		graph:     graphClient,
		timeout:   timeout,
		maxRows:   maxRows,
		log:       logger,
	}, nil
}

// Snapshot returns the snapshot this resolver is bound to
func (r *CypherResolver) Snapshot() *model.SchemaSnapshot {
	return r.snapshot
}

// Resolve generates, validates and executes a query for the question.
// Passage hints only shape the generation prompt. Returns the result, the
// executed query text and a typed error on any fatal step.
func (r *CypherResolver) Resolve(ctx context.Context, question string, hints []*model.Passage) (*model.StructuredResult, string, error) {
	return r.ResolveBounded(ctx, question, hints, r.timeout, r.maxRows)
}

// ResolveBounded is Resolve with per-call execution bounds. Non-positive
// values fall back to the resolver's configured timeout and row cap.
func (r *CypherResolver) ResolveBounded(ctx context.Context, question string, hints []*model.Passage, timeout time.Duration, maxRows int) (*model.StructuredResult, string, error) {
	if timeout <= 0 {
		timeout = r.timeout
	}
	if maxRows <= 0 {
		maxRows = r.maxRows
	}

	prompt := generationPrompt(r.snapshot, question, hints)

	response, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, "", &QueryGenerationError{Question: question, Reason: "model call failed", Err: err}
	}

	query := stripFences(response)
	if query == "" {
		return nil, "", &QueryGenerationError{Question: question, Reason: "model returned no query"}
	}

	if err := validateQuery(question, query, r.snapshot); err != nil {
		return nil, query, err
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	rows, truncated, err := r.graph.QueryLimited(execCtx, query, nil, maxRows)
	if err != nil {
		return nil, query, &QueryExecutionError{Question: question, Query: query, Err: err}
	}
	duration := time.Since(start)

	result := &model.StructuredResult{
		Rows:      rows,
		Columns:   columnsOf(rows),
		Truncated: truncated,
		Duration:  duration,
	}

	r.log.Debug("Structured query resolved",
		slog.String("question", question),
		slog.Int("rows", len(rows)),
		slog.Bool("truncated", truncated),
		slog.Duration("duration", duration),
	)

	return result, query, nil
}

// columnsOf lists the keys of the first row in stable order
func columnsOf(rows []map[string]interface{}) []string {
	if len(rows) == 0 {
		return nil
	}
	columns := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}
