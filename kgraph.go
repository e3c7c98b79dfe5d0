package kgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kgraph-ai/kgraph/core/ingest"
	"github.com/kgraph-ai/kgraph/core/pipeline"
	"github.com/kgraph-ai/kgraph/core/qa"
	"github.com/kgraph-ai/kgraph/core/retrieval"
	"github.com/kgraph-ai/kgraph/database"
	"github.com/kgraph-ai/kgraph/graph"
	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/llm"
	"github.com/kgraph-ai/kgraph/model"
	loadSql "github.com/kgraph-ai/kgraph/sql"
)

// DefaultEmbeddingDim is the dimension of the default all-MiniLM-L6-v2
// embedding model
const DefaultEmbeddingDim = 384

// Service provides a unified interface to the question answering system:
// graph store, passage index, ingestion and the QA orchestrator.
type Service struct {
	Graph        graph.Client
	DB           *helper.Database
	Passages     *database.PassagesDBHandler
	Pipeline     *pipeline.Pipeline // Optional chunking pipeline
	Retriever    *retrieval.Retriever
	Builder      *retrieval.IndexBuilder
	Orchestrator *qa.Orchestrator
	Ingestor     *ingest.Ingestor

	config    *helper.Configuration
	generator llm.Generator
	// Logging
	log *slog.Logger
}

// Stats summarises the current size of both stores
type Stats struct {
	Nodes         int64 `json:"nodes"`
	Relationships int64 `json:"relationships"`
	Passages      int64 `json:"passages"`
}

// NewService creates a new Service with all components initialized.
// A nil configuration is loaded from the environment.
func NewService(ctx context.Context, config *helper.Configuration) (*Service, error) {
	if config == nil {
		loaded, err := helper.NewConfiguration()
		if err != nil {
			return nil, helper.NewError("load configuration", err)
		}
		config = loaded
	}

	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Graph store
	graphClient, err := graph.NewNeo4jClient(ctx, graph.Config{
		URI:      config.Neo4jURI,
		Username: config.Neo4jUsername,
		Password: config.Neo4jPassword,
		Database: config.Neo4jDatabase,
	}, logger)
	if err != nil {
		return nil, helper.NewError("connect graph store", err)
	}

	// Passage store
	db := helper.NewDatabase("kgraph", config.Database, logger)
	if err := loadSql.Init(db.Instance); err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	passages, err := database.NewPassagesDBHandler(db, DefaultEmbeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create passages handler", err)
	}

	generator, err := llm.New(llm.Config{
		Provider: config.LLMProvider,
		Model:    config.LLMModel,
		APIKey:   config.LLMAPIKey,
		BaseURL:  config.LLMBaseURL,
	})
	if err != nil {
		return nil, helper.NewError("create llm generator", err)
	}

	orchestrator, err := qa.NewOrchestrator(graphClient, generator, nil, nil, logger)
	if err != nil {
		return nil, helper.NewError("create orchestrator", err)
	}

	ingestor, err := ingest.NewIngestor(graphClient, generator, logger)
	if err != nil {
		return nil, helper.NewError("create ingestor", err)
	}

	return &Service{
		Graph:        graphClient,
		DB:           db,
		Passages:     passages,
		Orchestrator: orchestrator,
		Ingestor:     ingestor,
		config:       config,
		generator:    generator,
		log:          logger,
	}, nil
}

// Close closes both store connections
func (s *Service) Close(ctx context.Context) error {
	if s.Graph != nil {
		if err := s.Graph.Close(ctx); err != nil {
			return helper.NewError("close graph store", err)
		}
	}
	if s.DB != nil && s.DB.Instance != nil {
		return s.DB.Instance.Close()
	}
	return nil
}

// SetPipeline wires the chunking pipeline and the semantic retrieval path.
// Until a pipeline is set, answers carry the retrieval degraded condition.
func (s *Service) SetPipeline(processing *pipeline.Pipeline) error {
	if processing == nil || processing.Embedder == nil {
		return helper.NewError("set pipeline", fmt.Errorf("pipeline with embedder is required"))
	}

	retriever, err := retrieval.NewRetriever(s.Passages, processing.Embedder, s.log)
	if err != nil {
		return helper.NewError("create retriever", err)
	}

	builder, err := retrieval.NewIndexBuilder(s.Graph, s.Passages, processing, s.log)
	if err != nil {
		return helper.NewError("create index builder", err)
	}

	orchestrator, err := qa.NewOrchestrator(s.Graph, s.generator, retriever, builder, s.log)
	if err != nil {
		return helper.NewError("create orchestrator", err)
	}

	s.Pipeline = processing
	s.Retriever = retriever
	s.Builder = builder
	s.Orchestrator = orchestrator
	return nil
}

// UseDefaultPipeline sets up the default semantic chunking and embedding
// pipeline: DefaultChunker with 500 char max chunks and 0.7 similarity
// threshold, DefaultEmbedder with the all-MiniLM-L6-v2 model (384 dimensions).
func (s *Service) UseDefaultPipeline() error {
	chunker := pipeline.DefaultChunker(500, 0.7)
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	return s.SetPipeline(pipeline.NewPipeline(chunker, embedder))
}

// Ask answers a question against the graph and the passage index.
// Nil options use the configured defaults.
func (s *Service) Ask(ctx context.Context, question string, opts *model.AskOptions) (*model.CompositeAnswer, error) {
	if opts == nil {
		options := model.DefaultAskOptions()
		options.QueryTimeout = s.config.QueryTimeout
		options.RetrievalTimeout = s.config.RetrievalTimeout
		options.MaxRows = s.config.MaxRows
		opts = &options
	}
	return s.Orchestrator.Ask(ctx, question, opts)
}

// Ingest classifies and extracts a document into the graph. When the open
// extraction path may have introduced new labels, the schema cache is
// refreshed so following questions see the new vocabulary.
func (s *Service) Ingest(ctx context.Context, docText string, hints *model.DocumentHints) (*model.IngestResult, error) {
	result, err := s.Ingestor.Ingest(ctx, docText, hints)
	if err != nil {
		return nil, err
	}

	if result.SchemaStale {
		if err := s.Orchestrator.RefreshSchema(ctx); err != nil {
			s.log.Warn("Schema refresh after ingestion failed", slog.String("error", err.Error()))
		}
	}

	return result, nil
}

// IngestFile reads a document from disk and ingests its content.
// The filename seeds the extraction hints.
func (s *Service) IngestFile(ctx context.Context, filePath string, hints *model.DocumentHints) (*model.IngestResult, error) {
	doc, err := model.NewDocumentFromFile(filePath, nil)
	if err != nil {
		return nil, helper.NewError("read document", err)
	}

	if hints == nil {
		hints = &model.DocumentHints{}
	}
	if hints.Filename == "" {
		hints.Filename = doc.Title
	}

	return s.Ingest(ctx, doc.Content, hints)
}

// RefreshSchema re-introspects the graph vocabulary
func (s *Service) RefreshSchema(ctx context.Context) error {
	return s.Orchestrator.RefreshSchema(ctx)
}

// RebuildIndex re-indexes the passages for a node label
func (s *Service) RebuildIndex(ctx context.Context, label string, textProperties []string) (int, error) {
	return s.Orchestrator.RebuildIndex(ctx, label, textProperties)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (s *Service) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return s.Passages.ChangeIndexType(ctx, indexType, params)
}

// SampleQuestions returns questions known to resolve well against the graph
func (s *Service) SampleQuestions() []string {
	return qa.SampleQuestions()
}

// Stats reports the current size of the graph and the passage index
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	graphStats, err := graph.Stats(ctx, s.Graph)
	if err != nil {
		return nil, helper.NewError("read graph stats", err)
	}

	passages, err := s.Passages.CountPassages(model.DefaultPassageLabel)
	if err != nil {
		return nil, helper.NewError("count passages", err)
	}

	return &Stats{
		Nodes:         graphStats.Nodes,
		Relationships: graphStats.Relationships,
		Passages:      passages,
	}, nil
}
