package repository

import (
	"context"

	"semchunk/pkg/chunking"
)

// ChunkVectorRepo stores chunk embeddings for similarity search.
type ChunkVectorRepo interface {
	InsertChunks(ctx context.Context, source string, chunks []chunking.Chunk) error
}
