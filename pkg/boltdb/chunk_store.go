package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"semchunk/pkg/chunking"
	"semchunk/repository"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var runsBucket = []byte("chunk_runs")

// ChunkStore keeps chunking runs in a local bbolt file, keyed by source then
// creation time.
type ChunkStore struct {
	DBPath string
	db     *bolt.DB
}

func Open(path string) (*ChunkStore, error) {
	s := &ChunkStore{DBPath: path}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ChunkStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for BoltDB: %w", err)
	}

	db, err := bolt.Open(s.DBPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to open BoltDB: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.db = db
	return nil
}

func (s *ChunkStore) InsertOne(_ context.Context, doc *repository.ChunkRunDoc) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	value, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode chunk run: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Put(runKey(doc), value)
	})
}

// InsertChunks stores chunks as a new run for source.
func (s *ChunkStore) InsertChunks(ctx context.Context, source string, chunks []chunking.Chunk) error {
	return s.InsertOne(ctx, &repository.ChunkRunDoc{Source: source, Chunks: chunks})
}

// GetBySource returns the runs stored for source, oldest first.
func (s *ChunkStore) GetBySource(_ context.Context, source string) ([]*repository.ChunkRunDoc, error) {
	prefix := sourcePrefix(source)
	var docs []*repository.ChunkRunDoc

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var doc repository.ChunkRunDoc
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("failed to decode chunk run %q: %w", k, err)
			}
			docs = append(docs, &doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *ChunkStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func sourcePrefix(source string) []byte {
	return append([]byte(source), 0)
}

func runKey(doc *repository.ChunkRunDoc) []byte {
	key := sourcePrefix(doc.Source)
	key = append(key, doc.CreatedAt.UTC().Format("20060102T150405.000000000")...)
	key = append(key, 0)
	return append(key, doc.ID...)
}

var (
	_ repository.ChunkCollectionRepo = (*ChunkStore)(nil)
	_ repository.ChunkVectorRepo     = (*ChunkStore)(nil)
)
