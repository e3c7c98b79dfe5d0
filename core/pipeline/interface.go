package pipeline

import "github.com/kgraph-ai/kgraph/model"

// ChunkFunc is a function that splits text into ordered chunks
type ChunkFunc func(text string) ([]Chunk, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// Chunk represents a piece of text produced by a ChunkFunc
type Chunk struct {
	Content    string
	StartPos   *int
	EndPos     *int
	ChunkIndex *int
	Metadata   map[string]interface{}
}

// Pipeline combines chunking and embedding functions
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Process processes text through the pipeline, returning embedded passages
// that carry the given index label and source identity.
func (p *Pipeline) Process(text string, label string, source string) ([]*model.Passage, error) {
	// Split into chunks
	chunks, err := p.Chunker(text)
	if err != nil {
		return nil, err
	}

	// Generate embeddings
	passages := make([]*model.Passage, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := p.Embedder(chunk.Content)
		if err != nil {
			return nil, err
		}

		metadata := model.Metadata{}
		for k, v := range chunk.Metadata {
			metadata[k] = v
		}
		if chunk.ChunkIndex != nil {
			metadata["chunk_index"] = *chunk.ChunkIndex
		}

		passage := &model.Passage{
			Label:     label,
			Source:    source,
			Content:   chunk.Content,
			Embedding: embedding,
			Metadata:  metadata,
		}
		passages = append(passages, passage)
	}

	return passages, nil
}
