package model

import (
	"time"

	"github.com/google/uuid"
)

// Passage is a unit of indexed unstructured text retrieved by similarity search
type Passage struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`  // Node label the passage was indexed from
	Source    string    `json:"source"` // Identity of the graph node the text came from
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Result fields, populated by similarity search
	Similarity float64 `json:"similarity,omitempty"`
}

// DefaultPassageLabel is the collection searched when the caller does not
// name one; general unstructured documents.
const DefaultPassageLabel = "Document"
