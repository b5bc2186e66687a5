package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"semchunk/pkg/chunking"
	"semchunk/pkg/embedding"
	"semchunk/pkg/errs"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlagsOnlyOverridesChangedFlags(t *testing.T) {
	flags := &globalFlags{}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&flags.url, "url", "", "")
	cmd.Flags().StringVar(&flags.model, "model", "", "")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0.7, "")
	cmd.Flags().IntVar(&flags.maxSize, "max-size", 1000, "")
	cmd.Flags().DurationVar(&flags.delay, "delay", 100*time.Millisecond, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--model", "all-minilm", "--delay", "0s", "--url", "http://gpu:11434/"}))

	base := chunking.DefaultSettings()
	base.SimilarityThreshold = 0.4

	s, err := applyFlags(cmd, flags, base)
	require.NoError(t, err)
	assert.Equal(t, "all-minilm", s.Model)
	assert.Equal(t, time.Duration(0), s.RequestDelay)
	assert.Equal(t, "http://gpu:11434", s.BaseURL)
	assert.Equal(t, 0.4, s.SimilarityThreshold)
	assert.Equal(t, 1000, s.MaxChunkSize)

	require.NoError(t, cmd.Flags().Parse([]string{"--threshold", "3"}))
	_, err = applyFlags(cmd, flags, base)
	assert.True(t, errs.IsValidation(err))
}

func TestQuickCommandReadsStdin(t *testing.T) {
	var out bytes.Buffer
	root := RootCmd()
	root.SetIn(strings.NewReader("aaaa. bbbb. cccc."))
	root.SetOut(&out)
	root.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--max-size", "11",
		"quick", "--json",
	})

	require.NoError(t, root.Execute())

	var got chunkOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "stdin", got.Source)
	require.Len(t, got.Chunks, 2)
	assert.Equal(t, "aaaa. bbbb.", got.Chunks[0].Text)
	assert.Empty(t, got.Embeddings)
}

func TestChunkCommandRejectsUnknownStore(t *testing.T) {
	root := RootCmd()
	root.SetIn(strings.NewReader(""))
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "chunk", "--store", "s3"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown store "s3"`)
}

func TestPrintChunksText(t *testing.T) {
	var out bytes.Buffer
	err := printChunks(&out, chunkOutput{
		Source: "notes.txt",
		Chunks: []chunking.Chunk{{Text: "One. Two.", Position: 0, Length: 9, SentenceCount: 2, Degraded: 1}},
	}, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "== notes.txt: 1 chunks")
	assert.Contains(t, out.String(), "[1] position=0 sentences=2 length=9 degraded=1")
	assert.Contains(t, out.String(), "One. Two.")
}

func TestPrintChunksVectorPreview(t *testing.T) {
	var out bytes.Buffer
	err := printChunks(&out, chunkOutput{
		Source: "stdin",
		Chunks: []chunking.Chunk{
			{Text: "Long.", Embedding: embedding.Vector{0.1, -0.2, 0.3, 0.4, 0.5, 0.6}},
			{Text: "Short.", Embedding: embedding.Vector{1, 0}},
			{Text: "None."},
		},
	}, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "vector [5 of 6]: [0.1000, -0.2000, 0.3000, 0.4000, 0.5000, ...]")
	assert.Contains(t, out.String(), "vector [2 of 2]: [1.0000, 0.0000]")
	assert.Equal(t, 2, strings.Count(out.String(), "vector ["))
}

func TestSizeMB(t *testing.T) {
	assert.Equal(t, "262 MB", sizeMB(274302450))
	assert.Equal(t, "-", sizeMB(0))
}
