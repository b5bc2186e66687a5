package events

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMultiSkipsNilObservers(t *testing.T) {
	var first, second Recorder
	m := Multi{&first, nil, &second}

	m.Observe(Event{Kind: RunStarted, Length: 42})
	m.Observe(Event{Kind: RunFinished, Count: 2})

	assert.Len(t, first.Events, 2)
	assert.Equal(t, first.Events, second.Events)
	assert.Len(t, first.Filter(RunFinished), 1)
	assert.Empty(t, first.Filter(EmbedFailed))
}

func TestZapObserverLogsDegradedSentences(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	o := NewZapObserver(zap.New(core))

	o.Observe(Event{Kind: EmbedFailed, Index: 3, Err: errors.New("status 500")})
	o.Observe(Event{Kind: RunFinished, Count: 4, Degraded: 1, Duration: time.Second})

	require.Equal(t, 2, logs.Len())
	warn := logs.FilterMessage("failed to get embedding for sentence, using zero vector").All()
	require.Len(t, warn, 1)
	assert.Equal(t, int64(3), warn[0].ContextMap()["sentence"])
	assert.Equal(t, "status 500", warn[0].ContextMap()["error"])

	done := logs.FilterMessage("created semantic chunks").All()
	require.Len(t, done, 1)
	assert.Equal(t, int64(1), done[0].ContextMap()["degraded_sentences"])
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsObserver(reg)

	m.Observe(Event{Kind: EmbedSucceeded})
	m.Observe(Event{Kind: EmbedSucceeded})
	m.Observe(Event{Kind: EmbedFailed, Err: errors.New("boom")})
	m.Observe(Event{Kind: ChunkEmitted, Length: 120})
	m.Observe(Event{Kind: RunFinished, Duration: 2 * time.Second})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.embedRequests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.embedRequests.WithLabelValues("degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chunks))

	count, err := testutil.GatherAndCount(reg, "semchunk_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
