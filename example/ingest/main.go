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

const contractText = `SERVICE AGREEMENT

This Service Agreement is entered into between TechCorp Solutions and Acme Corp,
effective 2024-03-01 and ending 2025-03-01, for a total value of $120,000.

TechCorp Solutions will provide software consulting services including development
of a customer analytics dashboard. Invoices are payable within 30 days.

Signed by Alice Johnson (TechCorp Solutions) and Max Miller (Acme Corp).`

const meetingNotes = `Project kickoff notes

Alice Johnson will lead the new Analytics Dashboard project. The team decided to
build the backend in Python and the frontend in React. Bob Smith joins as the
data engineer and will own the reporting pipeline.`

// Requires a running Neo4j (NEO4J_URI, NEO4J_PASSWORD) and an LLM provider
// key (LLM_PROVIDER, LLM_API_KEY). The passage store runs in a disposable
// PostgreSQL container.
func main() {
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

	// A contract is classified, extracted into a typed node and linked to
	// the client it names
	fmt.Println("Ingesting contract document...")
	contract, err := service.Ingest(ctx, contractText, &model.DocumentHints{
		Filename: "acme_service_agreement.pdf",
	})
	if err != nil {
		log.Fatalf("Failed to ingest contract: %v", err)
	}
	fmt.Printf("Category: %s\n", contract.Category)
	fmt.Printf("Record: %s (%s)\n", contract.Title, contract.RecordID)
	fmt.Printf("Linked entities: %v\n", contract.LinkedEntities)
	if contract.ExtractionFallback {
		fmt.Println("Note: structured extraction fell back to hints")
	}

	// Free-form notes go through open entity extraction; new labels may
	// appear, so the service refreshes its schema afterwards
	fmt.Println("\nIngesting meeting notes...")
	notes, err := service.Ingest(ctx, meetingNotes, nil)
	if err != nil {
		log.Fatalf("Failed to ingest notes: %v", err)
	}
	fmt.Printf("Category: %s\n", notes.Category)
	fmt.Printf("Created %d nodes and %d relationships\n", notes.NodesCreated, notes.RelationshipsCreated)

	// The new vocabulary is immediately queryable
	question := "Which projects use Python and who worked on them?"
	fmt.Printf("\nAsking: %s\n", question)

	answer, err := service.Ask(ctx, question, nil)
	if err != nil {
		log.Fatalf("Failed to answer question: %v", err)
	}
	fmt.Printf("Answer: %s\n", answer.Answer)

	stats, err := service.Stats(ctx)
	if err != nil {
		log.Fatalf("Failed to read stats: %v", err)
	}
	fmt.Printf("\nGraph now holds %d nodes and %d relationships\n", stats.Nodes, stats.Relationships)

	fmt.Println("\nIngest example completed successfully!")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
