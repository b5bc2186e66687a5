package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsObserver struct {
	embedRequests *prometheus.CounterVec
	chunks        prometheus.Counter
	chunkLength   prometheus.Histogram
	runDuration   prometheus.Histogram
}

// NewMetricsObserver registers the chunker collectors on reg. It panics if
// they are already registered there, like promauto does.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	factory := promauto.With(reg)
	return &MetricsObserver{
		embedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semchunk",
			Name:      "embed_requests_total",
			Help:      "Embedding requests by outcome (ok or degraded).",
		}, []string{"outcome"}),
		chunks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "semchunk",
			Name:      "chunks_total",
			Help:      "Chunks emitted by the assembler.",
		}),
		chunkLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "semchunk",
			Name:      "chunk_length_chars",
			Help:      "Character length of emitted chunks.",
			Buckets:   prometheus.ExponentialBuckets(32, 2, 8),
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "semchunk",
			Name:      "run_duration_seconds",
			Help:      "Wall time of semantic chunking runs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *MetricsObserver) Observe(e Event) {
	switch e.Kind {
	case EmbedSucceeded:
		m.embedRequests.WithLabelValues("ok").Inc()
	case EmbedFailed:
		m.embedRequests.WithLabelValues("degraded").Inc()
	case ChunkEmitted:
		m.chunks.Inc()
		m.chunkLength.Observe(float64(e.Length))
	case RunFinished:
		m.runDuration.Observe(e.Duration.Seconds())
	}
}
