package repository

import (
	"context"
	"time"

	"semchunk/pkg/chunking"
)

type ChunkCollectionRepo interface {
	InsertOne(ctx context.Context, doc *ChunkRunDoc) error
	GetBySource(ctx context.Context, source string) ([]*ChunkRunDoc, error)
}

// ChunkRunDoc is the stored result of one chunking run over a source.
type ChunkRunDoc struct {
	ID        string           `json:"id"`
	Source    string           `json:"source"`
	Model     string           `json:"model"`
	Threshold float64          `json:"threshold"`
	Chunks    []chunking.Chunk `json:"chunks"`
	CreatedAt time.Time        `json:"created_at"`
}
