package embedding

import (
	"context"
	"time"

	"semchunk/pkg/errs"
	"semchunk/pkg/events"
)

const DefaultDimension = 384

// Outcome is the tagged result of one embedding request. A degraded outcome
// carries a zero vector sized to the run's dimension.
type Outcome struct {
	Vector   Vector
	Degraded bool
	Err      error
}

func OK(v Vector) Outcome {
	return Outcome{Vector: v}
}

// Batch embeds texts one after another, pausing Delay between requests.
type Batch struct {
	Delay            time.Duration
	DefaultDimension int
	Observer         events.Observer
	// Wait pauses between requests. Defaults to a context-aware timer.
	Wait func(ctx context.Context, d time.Duration) error
}

// EmbedMany returns exactly one outcome per text, in order. Individual
// failures are reported to the observer and replaced by zero vectors; the
// only error returned is the context's.
func (b Batch) EmbedMany(ctx context.Context, embedder Embedder, texts []string) ([]Outcome, error) {
	observer := b.Observer
	if observer == nil {
		observer = events.Nop
	}
	wait := b.Wait
	if wait == nil {
		wait = waitContext
	}

	outcomes := make([]Outcome, len(texts))
	dimension := 0

	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vector, err := embedder.Embed(ctx, text)
		if err == nil && len(vector) == 0 {
			err = &errs.FormatError{Op: "embed", Field: "embedding array"}
		}
		if err == nil && dimension != 0 && len(vector) != dimension {
			err = errs.Validation("embedding", "dimension %d differs from run dimension %d", len(vector), dimension)
		}

		if err != nil {
			outcomes[i] = Outcome{Degraded: true, Err: err}
			observer.Observe(events.Event{Kind: events.EmbedFailed, Index: i, Err: err})
		} else {
			if dimension == 0 {
				dimension = len(vector)
			}
			outcomes[i] = OK(vector)
			observer.Observe(events.Event{Kind: events.EmbedSucceeded, Index: i, Length: len(vector)})
		}

		if i < len(texts)-1 && b.Delay > 0 {
			if err := wait(ctx, b.Delay); err != nil {
				return nil, err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if dimension == 0 {
		dimension = b.DefaultDimension
		if dimension <= 0 {
			dimension = DefaultDimension
		}
	}
	for i := range outcomes {
		if outcomes[i].Degraded {
			outcomes[i].Vector = Zero(dimension)
		}
	}

	return outcomes, nil
}

// Vectors projects the raw vectors out of outcomes.
func Vectors(outcomes []Outcome) []Vector {
	vectors := make([]Vector, len(outcomes))
	for i, o := range outcomes {
		vectors[i] = o.Vector
	}
	return vectors
}

func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
