package chunking

import (
	"unicode/utf8"

	"semchunk/pkg/errs"

	"github.com/tmc/langchaingo/textsplitter"
)

// RecursiveChunk splits text on paragraph, line and word separators into
// pieces of at most maxChunkSize characters, repeating overlap characters
// between neighbours. It ignores sentence boundaries and embeddings, so
// Position is the chunk ordinal rather than a sentence index.
func RecursiveChunk(text string, maxChunkSize, overlap int) ([]Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, errs.Validation("max_chunk_size", "must be positive, got %d", maxChunkSize)
	}
	if overlap < 0 || overlap >= maxChunkSize {
		return nil, errs.Validation("overlap", "must be in [0, %d), got %d", maxChunkSize, overlap)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(maxChunkSize),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
	)
	pieces, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(pieces))
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Text:          piece,
			Position:      len(chunks),
			Length:        utf8.RuneCountInString(piece),
			SentenceCount: len(SplitSentences(piece)),
		})
	}
	return chunks, nil
}
