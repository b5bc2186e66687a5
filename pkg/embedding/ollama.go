package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"semchunk/pkg/errs"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultTimeout = 60 * time.Second
	ProbeTimeout   = 5 * time.Second

	embeddingsPath = "/api/embeddings"
	tagsPath       = "/api/tags"
)

// OllamaClient talks to the Ollama embeddings and model listing endpoints.
type OllamaClient struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	http       *resty.Client
}

type Option func(*OllamaClient)

func WithTimeout(timeout time.Duration) Option {
	return func(c *OllamaClient) {
		c.timeout = timeout
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *OllamaClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *OllamaClient) {
		c.httpClient = httpClient
	}
}

// NewOllamaClient uses baseURL as given; callers normalize it with
// NormalizeBaseURL.
func NewOllamaClient(baseURL, model string, opts ...Option) *OllamaClient {
	c := &OllamaClient{
		baseURL: baseURL,
		model:   model,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var rc *resty.Client
	if c.httpClient != nil {
		rc = resty.NewWithClient(c.httpClient)
	} else {
		rc = resty.New()
	}
	c.http = rc.
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return c
}

// NormalizeBaseURL strips exactly one trailing slash so endpoint paths can be
// appended without doubling it.
func NormalizeBaseURL(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

func (c *OllamaClient) BaseURL() string {
	return c.baseURL
}

func (c *OllamaClient) Model() string {
	return c.model
}

func (c *OllamaClient) Embed(ctx context.Context, text string) (Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.Validation("text", "cannot be empty")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(EmbeddingRequest{Model: c.model, Prompt: text}).
		Post(embeddingsPath)
	if err != nil {
		return nil, &errs.ServiceError{Op: "embed", Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &errs.ServiceError{
			Op:         "embed",
			StatusCode: resp.StatusCode(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &fields); err != nil {
		return nil, &errs.ServiceError{Op: "embed", StatusCode: resp.StatusCode(), Err: err}
	}

	raw, ok := fields["embedding"]
	if !ok || string(raw) == "null" {
		return nil, &errs.FormatError{Op: "embed", Field: "embedding"}
	}

	var vector Vector
	if err := json.Unmarshal(raw, &vector); err != nil || len(vector) == 0 {
		return nil, &errs.FormatError{Op: "embed", Field: "embedding array"}
	}

	return vector, nil
}

func (c *OllamaClient) ListModels(ctx context.Context) ([]Model, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(tagsPath)
	if err != nil {
		return nil, &errs.ServiceError{Op: "list models", Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &errs.ServiceError{
			Op:         "list models",
			StatusCode: resp.StatusCode(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}

	var tags TagsResponse
	if err := json.Unmarshal(resp.Body(), &tags); err != nil {
		return nil, &errs.ServiceError{Op: "list models", StatusCode: resp.StatusCode(), Err: err}
	}
	if tags.Models == nil {
		return []Model{}, nil
	}
	return tags.Models, nil
}

func (c *OllamaClient) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		Get(tagsPath)
	if err != nil {
		c.logger.Warn("embedding service unreachable", zap.String("url", c.baseURL), zap.Error(err))
		return false
	}
	if !resp.IsSuccess() {
		c.logger.Warn("embedding service returned error status",
			zap.String("url", c.baseURL),
			zap.Int("status", resp.StatusCode()))
		return false
	}
	return true
}
