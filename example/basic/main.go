package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	kgraph "github.com/kgraph-ai/kgraph"
	"github.com/kgraph-ai/kgraph/helper"
	"github.com/kgraph-ai/kgraph/model"
)

// Requires a running Neo4j (NEO4J_URI, NEO4J_PASSWORD) and an LLM provider
// key (LLM_PROVIDER, LLM_API_KEY). The passage store runs in a disposable
// PostgreSQL container.
func main() {
	// Start a test PostgreSQL container for the passage store
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	config := &helper.Configuration{
		Neo4jURI:         envOrDefault("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUsername:    envOrDefault("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword:    os.Getenv("NEO4J_PASSWORD"),
		LLMProvider:      envOrDefault("LLM_PROVIDER", "openai"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		QueryTimeout:     30 * time.Second,
		RetrievalTimeout: 15 * time.Second,
		MaxRows:          50,
		Database: &helper.DatabaseConfiguration{
			Host:     "localhost",
			Port:     dbPort,
			Database: "database",
			Username: "user",
			Password: "password",
			Schema:   "public",
			SSLMode:  "disable",
		},
	}

	ctx := context.Background()

	service, err := kgraph.NewService(ctx, config)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close(ctx)

	// Set up the default pipeline (semantic chunking + embeddings)
	if err := service.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Index the text of Document nodes into the passage store
	fmt.Println("Rebuilding the passage index...")
	indexed, err := service.RebuildIndex(ctx, model.DefaultPassageLabel, nil)
	if err != nil {
		log.Fatalf("Failed to rebuild index: %v", err)
	}
	fmt.Printf("Indexed %d passages\n", indexed)

	// Ask a question combining graph querying and semantic retrieval
	question := "Show me all active projects"
	fmt.Printf("\nAsking: %s\n", question)

	answer, err := service.Ask(ctx, question, &model.AskOptions{
		TopK:         3,
		IncludeQuery: true,
	})
	if err != nil {
		log.Fatalf("Failed to answer question: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", answer.Answer)
	fmt.Printf("Generated query: %s\n", answer.GeneratedQuery)
	fmt.Printf("Passages used: %d\n", len(answer.Metadata.PassagesUsed))
	fmt.Printf("Took %d ms (provider %s, model %s)\n",
		answer.Metadata.ExecutionTimeMs, answer.Metadata.Provider, answer.Metadata.Model)
	if answer.Metadata.RetrievalDegraded {
		fmt.Printf("Note: semantic retrieval degraded (%s)\n", answer.Metadata.DegradedReason)
	}

	fmt.Println("\nBasic example completed successfully!")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
