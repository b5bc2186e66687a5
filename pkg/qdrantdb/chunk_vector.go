package qdrantdb

import (
	"context"
	"fmt"
	"strconv"

	"semchunk/pkg/chunking"
	"semchunk/pkg/embedding"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	DefaultCollectionName = "semantic_chunks"
)

var pointNamespace = uuid.MustParse("6f1c2a4e-8b3d-5e7f-9a0b-1c2d3e4f5a6b")

// CreateChunkCollection creates the collection with cosine distance and a
// keyword index on source, unless it already exists.
func (c *ChunkClient) CreateChunkCollection(ctx context.Context, dimension int) error {
	exists, err := c.Client.CollectionExists(ctx, c.Collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = c.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("err create chunk collection: %w", err)
	}

	_, err = c.Client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: c.Collection,
		FieldName:      "source",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("err create source index: %w", err)
	}
	return nil
}

// InsertChunks upserts one point per chunk. Point IDs derive from source and
// position, so re-chunking a source overwrites its earlier points.
func (c *ChunkClient) InsertChunks(ctx context.Context, source string, chunks []chunking.Chunk) error {
	points, err := buildPoints(source, chunks)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if err := c.CreateChunkCollection(ctx, len(chunks[0].Embedding)); err != nil {
		return err
	}

	wait := true
	_, err = c.Client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.Collection,
		Wait:           &wait,
		Points:         points,
	})
	return err
}

func buildPoints(source string, chunks []chunking.Chunk) ([]*qdrant.PointStruct, error) {
	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return nil, fmt.Errorf("chunk at position %d has no embedding", chunk.Position)
		}

		md := map[string]any{
			"source":         source,
			"text":           chunk.Text,
			"position":       chunk.Position,
			"length":         chunk.Length,
			"sentence_count": chunk.SentenceCount,
			"degraded":       chunk.Degraded,
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(source, chunk.Position)),
			Vectors: qdrant.NewVectorsDense(toFloat32(chunk.Embedding)),
			Payload: qdrant.NewValueMap(md),
		})
	}
	return points, nil
}

// PointID is a deterministic UUID for the chunk at position within source.
func PointID(source string, position int) string {
	return uuid.NewSHA1(pointNamespace, []byte(source+"#"+strconv.Itoa(position))).String()
}

func toFloat32(v embedding.Vector) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
