package chunking

import (
	"context"

	"semchunk/pkg/embedding"

	"github.com/tmc/langchaingo/schema"
)

// Chunk is a contiguous run of sentences. Embedding is the mean of the member
// sentences' embeddings and is empty for chunks built without embeddings.
type Chunk struct {
	Text          string           `json:"text"`
	Embedding     embedding.Vector `json:"embedding,omitempty"`
	Position      int              `json:"position"`
	Length        int              `json:"length"`
	SentenceCount int              `json:"sentence_count"`
	Degraded      int              `json:"degraded,omitempty"`
}

type ChunkingClient interface {
	ChunkText(ctx context.Context, text string) ([]Chunk, error)
}

// Embeddings returns only the chunk embeddings, in chunk order.
func Embeddings(chunks []Chunk) []embedding.Vector {
	vectors := make([]embedding.Vector, len(chunks))
	for i, c := range chunks {
		vectors[i] = c.Embedding
	}
	return vectors
}

// Documents converts chunks to langchaingo documents for vector stores that
// consume them. The embedding itself is left to the store.
func Documents(chunks []Chunk, source string) []schema.Document {
	docs := make([]schema.Document, len(chunks))
	for i, c := range chunks {
		metadata := map[string]any{
			"position":       c.Position,
			"length":         c.Length,
			"sentence_count": c.SentenceCount,
		}
		if source != "" {
			metadata["source"] = source
		}
		if c.Degraded > 0 {
			metadata["degraded"] = c.Degraded
		}
		docs[i] = schema.Document{
			PageContent: c.Text,
			Metadata:    metadata,
		}
	}
	return docs
}
