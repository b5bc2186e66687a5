package chunking

import (
	"strings"
	"unicode/utf8"

	"semchunk/pkg/embedding"
	"semchunk/pkg/errs"
)

// Assemble groups adjacent sentences in a single forward pass. A new chunk
// starts when the cosine similarity between the previous sentence and the
// next one falls below threshold, or when adding the next sentence would push
// the joined text over maxChunkSize characters. A sentence longer than
// maxChunkSize still forms its own chunk.
func Assemble(sentences []string, outcomes []embedding.Outcome, maxChunkSize int, threshold float64) ([]Chunk, error) {
	if len(sentences) != len(outcomes) {
		return nil, errs.Validation("embeddings", "got %d for %d sentences", len(outcomes), len(sentences))
	}
	if maxChunkSize <= 0 {
		return nil, errs.Validation("max_chunk_size", "must be positive, got %d", maxChunkSize)
	}

	a := &assembler{sentences: sentences, outcomes: outcomes}
	last := 0
	return a.run(maxChunkSize, func(i int) bool {
		similarity := similarityBetween(outcomes[last], outcomes[i])
		last = i
		return similarity < threshold
	})
}

// AssembleVectors is Assemble for callers holding plain vectors.
func AssembleVectors(sentences []string, vectors []embedding.Vector, maxChunkSize int, threshold float64) ([]Chunk, error) {
	outcomes := make([]embedding.Outcome, len(vectors))
	for i, v := range vectors {
		outcomes[i] = embedding.OK(v)
	}
	return Assemble(sentences, outcomes, maxChunkSize, threshold)
}

// QuickAssemble packs sentences by accumulated length only. The resulting
// chunks carry no embedding.
func QuickAssemble(sentences []string, maxChunkSize int) ([]Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, errs.Validation("max_chunk_size", "must be positive, got %d", maxChunkSize)
	}

	a := &assembler{sentences: sentences}
	return a.run(maxChunkSize, func(int) bool { return false })
}

type assembler struct {
	sentences []string
	outcomes  []embedding.Outcome
}

// run walks the sentences once. boundary is consulted for every sentence
// after the first, before the size check, so stateful callbacks see each
// index exactly once.
func (a *assembler) run(maxChunkSize int, boundary func(i int) bool) ([]Chunk, error) {
	chunks := []Chunk{}
	if len(a.sentences) == 0 {
		return chunks, nil
	}

	start := 0
	currentLength := utf8.RuneCountInString(a.sentences[0])

	for i := 1; i < len(a.sentences); i++ {
		sentenceLength := utf8.RuneCountInString(a.sentences[i])
		projectedLength := currentLength + 1 + sentenceLength

		split := boundary(i)
		if split || projectedLength > maxChunkSize {
			chunk, err := a.flush(start, i)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, chunk)
			start = i
			currentLength = sentenceLength
			continue
		}
		currentLength = projectedLength
	}

	chunk, err := a.flush(start, len(a.sentences))
	if err != nil {
		return nil, err
	}
	return append(chunks, chunk), nil
}

func (a *assembler) flush(start, end int) (Chunk, error) {
	text := strings.Join(a.sentences[start:end], " ")
	chunk := Chunk{
		Text:          text,
		Position:      start,
		Length:        utf8.RuneCountInString(text),
		SentenceCount: end - start,
	}
	if a.outcomes == nil {
		return chunk, nil
	}

	members := a.outcomes[start:end]
	mean, err := embedding.Mean(embedding.Vectors(members))
	if err != nil {
		return Chunk{}, err
	}
	chunk.Embedding = mean
	for _, o := range members {
		if o.Degraded {
			chunk.Degraded++
		}
	}
	return chunk, nil
}

// similarityBetween never fails: a degraded side or an incomparable pair
// counts as no similarity, which forces a boundary for any positive threshold.
func similarityBetween(a, b embedding.Outcome) float64 {
	if a.Degraded || b.Degraded {
		return 0
	}
	similarity, err := embedding.CosineSimilarity(a.Vector, b.Vector)
	if err != nil {
		return 0
	}
	return similarity
}
