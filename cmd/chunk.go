package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"semchunk/pkg/boltdb"
	"semchunk/pkg/chunking"
	"semchunk/pkg/embedding"
	"semchunk/pkg/qdrantdb"
	"semchunk/repository"
	"semchunk/text"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	storeNone   = "none"
	storeBolt   = "bolt"
	storeQdrant = "qdrant"
)

type chunkFlags struct {
	store  string
	source string
	json   bool
}

type chunkOutput struct {
	Source     string             `json:"source"`
	Chunks     []chunking.Chunk   `json:"chunks"`
	Embeddings []embedding.Vector `json:"embeddings,omitempty"`
}

func ChunkCmd(global *globalFlags) *cobra.Command {
	flags := &chunkFlags{}

	cmd := &cobra.Command{
		Use:   "chunk [file|dir|-]",
		Short: "Chunk text by semantic similarity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			docs, err := loadDocuments(cmd, a.logger, args)
			if err != nil {
				return err
			}

			sink, closeSink, err := openSink(a, flags.store)
			if err != nil {
				return err
			}
			defer closeSink()

			for _, doc := range docs {
				source := doc.Source
				if flags.source != "" {
					source = flags.source
				}

				chunks, err := a.chunker.ChunkText(cmd.Context(), doc.Text)
				if err != nil {
					return fmt.Errorf("failed to chunk %s: %w", source, err)
				}
				if sink != nil && len(chunks) > 0 {
					if err := sink(cmd.Context(), source, chunks); err != nil {
						return fmt.Errorf("failed to store chunks for %s: %w", source, err)
					}
				}

				out := chunkOutput{Source: source, Chunks: chunks, Embeddings: chunking.Embeddings(chunks)}
				if err := printChunks(cmd.OutOrStdout(), out, flags.json); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.store, "store", storeNone, "where to persist chunks: bolt, qdrant or none")
	cmd.Flags().StringVar(&flags.source, "source", "", "source name recorded with stored chunks")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print chunks as JSON")

	return cmd
}

func QuickCmd(global *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "quick [file|dir|-]",
		Short: "Chunk text by length only, without embeddings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			docs, err := loadDocuments(cmd, a.logger, args)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				chunks, err := a.chunker.QuickChunk(doc.Text, a.chunker.Settings().MaxChunkSize)
				if err != nil {
					return err
				}
				if err := printChunks(cmd.OutOrStdout(), chunkOutput{Source: doc.Source, Chunks: chunks}, asJSON); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print chunks as JSON")
	return cmd
}

func loadDocuments(cmd *cobra.Command, logger *zap.Logger, args []string) ([]text.Document, error) {
	core := text.NewCore(logger)

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	if path != "-" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return core.LoadDir(path)
		}
	}

	doc, err := core.Load(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return []text.Document{doc}, nil
}

type sinkFunc func(ctx context.Context, source string, chunks []chunking.Chunk) error

func openSink(a *app, store string) (sinkFunc, func(), error) {
	noop := func() {}

	switch store {
	case "", storeNone:
		return nil, noop, nil
	case storeBolt:
		db, err := boltdb.Open(a.cfg.Bolt.Path)
		if err != nil {
			return nil, noop, err
		}
		settings := a.chunker.Settings()
		sink := func(ctx context.Context, source string, chunks []chunking.Chunk) error {
			return db.InsertOne(ctx, &repository.ChunkRunDoc{
				Source:    source,
				Model:     settings.Model,
				Threshold: settings.SimilarityThreshold,
				Chunks:    chunks,
			})
		}
		return sink, func() { db.Close() }, nil
	case storeQdrant:
		client, err := qdrantdb.NewClient(a.cfg.Qdrant.Host, a.cfg.Qdrant.Port, a.cfg.Qdrant.Collection)
		if err != nil {
			return nil, noop, err
		}
		var repo repository.ChunkVectorRepo = client
		return repo.InsertChunks, func() { client.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown store %q: want %s, %s or %s", store, storeBolt, storeQdrant, storeNone)
	}
}

func printChunks(w io.Writer, out chunkOutput, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "== %s: %d chunks\n", out.Source, len(out.Chunks))
	for i, c := range out.Chunks {
		fmt.Fprintf(w, "\n[%d] position=%d sentences=%d length=%d", i+1, c.Position, c.SentenceCount, c.Length)
		if c.Degraded > 0 {
			fmt.Fprintf(w, " degraded=%d", c.Degraded)
		}
		fmt.Fprintf(w, "\n%s\n", c.Text)
		if len(c.Embedding) > 0 {
			fmt.Fprintf(w, "vector [%d of %d]: %s\n", min(previewSize, len(c.Embedding)), len(c.Embedding), vectorPreview(c.Embedding))
		}
	}
	return nil
}

const previewSize = 5

func vectorPreview(v embedding.Vector) string {
	parts := make([]string, 0, previewSize+1)
	for _, x := range v[:min(previewSize, len(v))] {
		parts = append(parts, strconv.FormatFloat(x, 'f', 4, 64))
	}
	if len(v) > previewSize {
		parts = append(parts, "...")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
