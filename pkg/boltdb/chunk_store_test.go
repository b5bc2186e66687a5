package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"semchunk/pkg/chunking"
	"semchunk/pkg/embedding"
	"semchunk/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *ChunkStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "chunks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestChunkStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := &repository.ChunkRunDoc{
		Source:    "notes.txt",
		Model:     "nomic-embed-text",
		Threshold: 0.7,
		CreatedAt: base,
		Chunks: []chunking.Chunk{
			{Text: "Cats are great pets.", Embedding: embedding.Vector{1, 0}, Length: 20, SentenceCount: 1},
		},
	}
	second := &repository.ChunkRunDoc{Source: "notes.txt", CreatedAt: base.Add(time.Minute)}
	other := &repository.ChunkRunDoc{Source: "notes.txt.bak", CreatedAt: base}

	require.NoError(t, s.InsertOne(ctx, second))
	require.NoError(t, s.InsertOne(ctx, first))
	require.NoError(t, s.InsertOne(ctx, other))
	assert.NotEmpty(t, first.ID)

	docs, err := s.GetBySource(ctx, "notes.txt")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, second.ID, docs[1].ID)
	assert.Equal(t, first.Chunks, docs[0].Chunks)
	assert.Equal(t, "nomic-embed-text", docs[0].Model)
}

func TestChunkStoreInsertChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	chunks := []chunking.Chunk{{Text: "One.", Length: 4, SentenceCount: 1}}
	require.NoError(t, s.InsertChunks(ctx, "stdin", chunks))

	docs, err := s.GetBySource(ctx, "stdin")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, chunks, docs[0].Chunks)
	assert.False(t, docs[0].CreatedAt.IsZero())

	docs, err = s.GetBySource(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
