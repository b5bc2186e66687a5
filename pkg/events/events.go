package events

import "time"

type Kind string

const (
	RunStarted     Kind = "run_started"
	SentencesSplit Kind = "sentences_split"
	EmbedSucceeded Kind = "embed_succeeded"
	EmbedFailed    Kind = "embed_failed"
	ChunkEmitted   Kind = "chunk_emitted"
	RunFinished    Kind = "run_finished"
)

// Event describes one step of a chunking run. Index is a sentence ordinal for
// embedding events and a starting position for ChunkEmitted.
type Event struct {
	Kind     Kind
	Index    int
	Count    int
	Length   int
	Degraded int
	Err      error
	Duration time.Duration
}

type Observer interface {
	Observe(e Event)
}

type ObserverFunc func(e Event)

func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// Multi fans an event out to every non-nil observer in order.
type Multi []Observer

func (m Multi) Observe(e Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(e)
		}
	}
}

var Nop Observer = ObserverFunc(func(Event) {})

// Recorder keeps every observed event. Useful for callers that want to inspect
// a run after the fact.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Observe(e Event) {
	r.Events = append(r.Events, e)
}

// Filter returns the recorded events of the given kind.
func (r *Recorder) Filter(kind Kind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
