package embedding

import "context"

// Vector is one embedding. Its length is fixed by the model that produced it.
type Vector []float64

type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

type ModelLister interface {
	ListModels(ctx context.Context) ([]Model, error)
}

type Pinger interface {
	// Ping reports whether the service answers. It never returns an error.
	Ping(ctx context.Context) bool
}

// Service is everything the chunker needs from a remote embedding backend.
type Service interface {
	Embedder
	ModelLister
	Pinger
}

type Model struct {
	Name       string `json:"name"`
	Size       int64  `json:"size,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
	Digest     string `json:"digest,omitempty"`
}

type EmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type EmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

type TagsResponse struct {
	Models []Model `json:"models"`
}
