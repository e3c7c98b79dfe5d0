package qa

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kgraph-ai/kgraph/core/resolver"
	"github.com/kgraph-ai/kgraph/core/retrieval"
	"github.com/kgraph-ai/kgraph/core/synthesis"
	"github.com/kgraph-ai/kgraph/graph"
	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/llm"
	"github.com/kgraph-ai/kgraph/model"
)

// Orchestrator coordinates one question-processing cycle: semantic retrieval,
// schema-bound query resolution and answer synthesis. It owns the schema
// cache and the resolver bound to the cached snapshot; the pair is swapped
// atomically so an in-flight request keeps the resolver it started with.
type Orchestrator struct {
	mu       sync.Mutex
	cache    *resolver.SchemaCache
	resolver *resolver.CypherResolver

	graphClient graph.Client
	generator   llm.Generator
	retriever   *retrieval.Retriever
	synthesizer *synthesis.Synthesizer
	builder     *retrieval.IndexBuilder
	log         *slog.Logger
}

// NewOrchestrator creates a new orchestrator. The retriever and index builder
// are optional: without a retriever every answer carries the retrieval
// degraded condition, and RebuildIndex is unavailable.
func NewOrchestrator(graphClient graph.Client, generator llm.Generator, retriever *retrieval.Retriever, builder *retrieval.IndexBuilder, logger *slog.Logger) (*Orchestrator, error) {
	if graphClient == nil {
		return nil, helper.NewError("orchestrator validation", fmt.Errorf("graph client is nil"))
	}
	if generator == nil {
		return nil, helper.NewError("orchestrator validation", fmt.Errorf("generator is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	synthesizer, err := synthesis.NewSynthesizer(generator, logger)
	if err != nil {
		return nil, helper.NewError("orchestrator validation", err)
	}

	return &Orchestrator{
		cache:       resolver.NewSchemaCache(graphClient, logger),
		graphClient: graphClient,
		generator:   generator,
		retriever:   retriever,
		synthesizer: synthesizer,
		builder:     builder,
		log:         logger,
	}, nil
}

// retrievalOutcome carries the semantic path result across the fan-out join
type retrievalOutcome struct {
	passages []*model.Passage
	err      error
}

// Ask answers the question by combining structured graph querying with
// semantic passage retrieval. The semantic path degrades on failure or
// timeout; the structured path is fatal and returns the typed resolver
// errors. Ask never writes to the graph.
func (o *Orchestrator) Ask(ctx context.Context, question string, opts *model.AskOptions) (*model.CompositeAnswer, error) {
	options := model.DefaultAskOptions()
	if opts != nil {
		options = *opts
	}
	if options.RetrievalTimeout <= 0 {
		options.RetrievalTimeout = model.DefaultAskOptions().RetrievalTimeout
	}

	start := time.Now()

	cypherResolver, err := o.currentResolver(ctx)
	if err != nil {
		return nil, err
	}

	// Semantic path fans out with its own timeout. The structured path is
	// not blocked by a hanging retriever: if the deadline passes first the
	// request proceeds without hints and records the degradation.
	outcomes := make(chan retrievalOutcome, 1)
	retrievalCtx, cancelRetrieval := context.WithTimeout(ctx, options.RetrievalTimeout)
	defer cancelRetrieval()
	go func() {
		passages, err := o.searchPassages(retrievalCtx, question, options.TopK, options.PassageLabel)
		outcomes <- retrievalOutcome{passages: passages, err: err}
	}()

	var passages []*model.Passage
	retrievalDegraded := false
	degradedReason := ""
	select {
	case outcome := <-outcomes:
		if outcome.err != nil {
			retrievalDegraded = true
			degradedReason = outcome.err.Error()
			o.log.Warn("Semantic retrieval degraded",
				slog.String("question", question),
				slog.String("error", outcome.err.Error()),
			)
		} else {
			passages = outcome.passages
		}
	case <-retrievalCtx.Done():
		retrievalDegraded = true
		degradedReason = "semantic retrieval timed out"
		o.log.Warn("Semantic retrieval timed out", slog.String("question", question))
	}

	result, query, err := cypherResolver.ResolveBounded(ctx, question, passages, options.QueryTimeout, options.MaxRows)
	if err != nil {
		return nil, err
	}

	summary := result.Summary()
	answer, synthesisDegraded := o.synthesizer.Synthesize(ctx, question, summary, passages)

	composite := &model.CompositeAnswer{
		Question: question,
		Answer:   answer,
		Metadata: model.AnswerMetadata{
			Provider:          o.generator.Provider(),
			Model:             o.generator.Model(),
			PassagesUsed:      dereferencePassages(passages),
			ExecutionTimeMs:   time.Since(start).Milliseconds(),
			StructuredSummary: summary,
			Truncated:         result.Truncated,
			RetrievalDegraded: retrievalDegraded,
			SynthesisDegraded: synthesisDegraded,
			DegradedReason:    degradedReason,
			QueryDuration:     result.Duration,
		},
	}
	if options.IncludeQuery {
		composite.GeneratedQuery = query
	}

	return composite, nil
}

// searchPassages runs the semantic path; a missing retriever degrades
func (o *Orchestrator) searchPassages(ctx context.Context, question string, k int, label string) ([]*model.Passage, error) {
	if k <= 0 {
		return []*model.Passage{}, nil
	}
	if o.retriever == nil {
		return nil, fmt.Errorf("semantic retrieval not configured")
	}
	return o.retriever.Search(ctx, question, k, label)
}

// currentResolver returns the resolver bound to the cached snapshot,
// building both on first use
func (o *Orchestrator) currentResolver(ctx context.Context) (*resolver.CypherResolver, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.resolver != nil {
		return o.resolver, nil
	}
	return o.rebuildResolverLocked(ctx)
}

// rebuildResolverLocked re-introspects and binds a fresh resolver.
// Callers must hold o.mu.
func (o *Orchestrator) rebuildResolverLocked(ctx context.Context) (*resolver.CypherResolver, error) {
	snapshot, err := o.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	cypherResolver, err := resolver.NewCypherResolver(snapshot, o.generator, o.graphClient, 0, 0, o.log)
	if err != nil {
		return nil, helper.NewError("resolver rebuild", err)
	}

	o.resolver = cypherResolver
	return cypherResolver, nil
}

// RefreshSchema invalidates the cached snapshot and binds a new resolver in
// one critical section. Requests already holding the old resolver finish
// against the snapshot they started with.
func (o *Orchestrator) RefreshSchema(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cache.Invalidate()
	o.resolver = nil

	_, err := o.rebuildResolverLocked(ctx)
	return err
}

// RebuildIndex re-indexes the passages for a node label
func (o *Orchestrator) RebuildIndex(ctx context.Context, label string, textProperties []string) (int, error) {
	if o.builder == nil {
		return 0, helper.NewError("rebuild index", fmt.Errorf("index builder not configured"))
	}
	return o.builder.Rebuild(ctx, label, textProperties)
}

// SampleQuestions returns questions known to resolve well against the
// company graph; useful for smoke tests and UI suggestions.
func SampleQuestions() []string {
	return []string{
		"Which projects use Python and who worked on them?",
		"What technologies does Alice Johnson work with?",
		"Show me all active projects",
		"Who worked on the AI Chatbot project?",
		"What programming languages are used across all projects?",
		"Which person has worked on the most projects?",
		"What does the remote work policy say?",
		"List all people who are Full Stack Developers",
	}
}

func dereferencePassages(passages []*model.Passage) []model.Passage {
	if len(passages) == 0 {
		return nil
	}
	out := make([]model.Passage, 0, len(passages))
	for _, p := range passages {
		out = append(out, *p)
	}
	return out
}
