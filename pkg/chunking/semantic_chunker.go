package chunking

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"semchunk/pkg/embedding"
	"semchunk/pkg/errs"
	"semchunk/pkg/events"

	"go.uber.org/zap"
)

type ServiceFactory func(Settings) embedding.Service

// SemanticChunker splits text into sentences, embeds each one through the
// configured service and groups them into chunks. Every run works on a
// snapshot of the settings taken when it starts.
type SemanticChunker struct {
	mu       sync.RWMutex
	settings Settings
	service  embedding.Service

	factory  ServiceFactory
	observer events.Observer
	logger   *zap.Logger
	wait     func(ctx context.Context, d time.Duration) error
}

type Option func(*SemanticChunker)

func WithServiceFactory(factory ServiceFactory) Option {
	return func(c *SemanticChunker) {
		c.factory = factory
	}
}

func WithObserver(observer events.Observer) Option {
	return func(c *SemanticChunker) {
		c.observer = observer
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *SemanticChunker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWait replaces the pause between embedding requests.
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(c *SemanticChunker) {
		c.wait = wait
	}
}

func NewSemanticChunker(settings Settings, opts ...Option) (*SemanticChunker, error) {
	settings.BaseURL = embedding.NormalizeBaseURL(settings.BaseURL)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	c := &SemanticChunker{
		settings: settings,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.factory == nil {
		c.factory = c.newOllamaClient
	}
	if c.observer == nil {
		c.observer = events.NewZapObserver(c.logger)
	}
	c.service = c.factory(settings)

	return c, nil
}

func (c *SemanticChunker) newOllamaClient(s Settings) embedding.Service {
	return embedding.NewOllamaClient(s.BaseURL, s.Model, embedding.WithLogger(c.logger))
}

// Chunk runs semantic chunking over text. Blank text yields no chunks and no
// service calls. Failed embeddings degrade the affected sentences instead of
// failing the run.
func (c *SemanticChunker) Chunk(ctx context.Context, text string, maxChunkSize int) ([]Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, errs.Validation("max_chunk_size", "must be positive, got %d", maxChunkSize)
	}

	settings, service := c.snapshot()
	started := time.Now()
	c.observer.Observe(events.Event{Kind: events.RunStarted, Length: utf8.RuneCountInString(text)})

	sentences := Texts(SplitSentences(text))
	c.observer.Observe(events.Event{Kind: events.SentencesSplit, Count: len(sentences)})
	if len(sentences) == 0 {
		c.observer.Observe(events.Event{Kind: events.RunFinished, Duration: time.Since(started)})
		return []Chunk{}, nil
	}

	batch := embedding.Batch{
		Delay:            settings.RequestDelay,
		DefaultDimension: settings.DefaultDimension,
		Observer:         c.observer,
		Wait:             c.wait,
	}
	outcomes, err := batch.EmbedMany(ctx, service, sentences)
	if err != nil {
		return nil, fmt.Errorf("failed to embed sentences: %w", err)
	}

	chunks, err := Assemble(sentences, outcomes, maxChunkSize, settings.SimilarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble chunks: %w", err)
	}

	degraded := 0
	for _, chunk := range chunks {
		degraded += chunk.Degraded
		c.observer.Observe(events.Event{
			Kind:     events.ChunkEmitted,
			Index:    chunk.Position,
			Count:    chunk.SentenceCount,
			Length:   chunk.Length,
			Degraded: chunk.Degraded,
		})
	}
	c.observer.Observe(events.Event{
		Kind:     events.RunFinished,
		Count:    len(chunks),
		Degraded: degraded,
		Duration: time.Since(started),
	})

	return chunks, nil
}

// ChunkText chunks with the configured maximum chunk size.
func (c *SemanticChunker) ChunkText(ctx context.Context, text string) ([]Chunk, error) {
	return c.Chunk(ctx, text, c.Settings().MaxChunkSize)
}

// QuickChunk groups sentences by length alone, without calling the embedding
// service.
func (c *SemanticChunker) QuickChunk(text string, maxChunkSize int) ([]Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, errs.Validation("max_chunk_size", "must be positive, got %d", maxChunkSize)
	}
	return QuickAssemble(Texts(SplitSentences(text)), maxChunkSize)
}

func (c *SemanticChunker) ListModels(ctx context.Context) ([]embedding.Model, error) {
	_, service := c.snapshot()
	return service.ListModels(ctx)
}

func (c *SemanticChunker) TestConnection(ctx context.Context) bool {
	_, service := c.snapshot()
	return service.Ping(ctx)
}

func (c *SemanticChunker) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

func (c *SemanticChunker) ConfigInfo() string {
	s := c.Settings()
	return fmt.Sprintf("SemanticChunker config: model=%s, similarityThreshold=%g, maxChunkSize=%d, requestDelay=%s, url=%s",
		s.Model, s.SimilarityThreshold, s.MaxChunkSize, s.RequestDelay, s.BaseURL)
}

func (c *SemanticChunker) SetSimilarityThreshold(threshold float64) error {
	return c.update(func(s Settings) (Settings, error) {
		return s.WithSimilarityThreshold(threshold)
	})
}

func (c *SemanticChunker) SetModel(model string) error {
	return c.update(func(s Settings) (Settings, error) {
		return s.WithModel(model)
	})
}

func (c *SemanticChunker) SetRequestDelay(delay time.Duration) error {
	return c.update(func(s Settings) (Settings, error) {
		return s.WithRequestDelay(delay)
	})
}

func (c *SemanticChunker) SetBaseURL(baseURL string) error {
	return c.update(func(s Settings) (Settings, error) {
		return s.WithBaseURL(baseURL)
	})
}

func (c *SemanticChunker) SetMaxChunkSize(size int) error {
	return c.update(func(s Settings) (Settings, error) {
		return s.WithMaxChunkSize(size)
	})
}

func (c *SemanticChunker) update(change func(Settings) (Settings, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := change(c.settings)
	if err != nil {
		return err
	}
	if next.BaseURL != c.settings.BaseURL || next.Model != c.settings.Model {
		c.service = c.factory(next)
	}
	c.settings = next

	c.logger.Info("chunker settings updated",
		zap.String("model", next.Model),
		zap.String("url", next.BaseURL),
		zap.Float64("similarity_threshold", next.SimilarityThreshold),
		zap.Int("max_chunk_size", next.MaxChunkSize),
		zap.Duration("request_delay", next.RequestDelay))
	return nil
}

func (c *SemanticChunker) snapshot() (Settings, embedding.Service) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings, c.service
}
