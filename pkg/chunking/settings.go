package chunking

import (
	"math"
	"net/url"
	"strings"
	"time"

	"semchunk/pkg/embedding"
	"semchunk/pkg/errs"
)

const (
	DefaultModel               = "nomic-embed-text"
	DefaultSimilarityThreshold = 0.7
	DefaultMaxChunkSize        = 1000
	DefaultRequestDelay        = 100 * time.Millisecond
)

// Settings is an immutable chunker configuration. The With methods return an
// updated copy and leave the receiver untouched.
type Settings struct {
	BaseURL             string        `json:"base_url"`
	Model               string        `json:"model"`
	SimilarityThreshold float64       `json:"similarity_threshold"`
	MaxChunkSize        int           `json:"max_chunk_size"`
	RequestDelay        time.Duration `json:"request_delay"`
	DefaultDimension    int           `json:"default_dimension"`
}

func DefaultSettings() Settings {
	return Settings{
		BaseURL:             embedding.DefaultBaseURL,
		Model:               DefaultModel,
		SimilarityThreshold: DefaultSimilarityThreshold,
		MaxChunkSize:        DefaultMaxChunkSize,
		RequestDelay:        DefaultRequestDelay,
		DefaultDimension:    embedding.DefaultDimension,
	}
}

func (s Settings) Validate() error {
	if _, err := s.WithBaseURL(s.BaseURL); err != nil {
		return err
	}
	if _, err := s.WithModel(s.Model); err != nil {
		return err
	}
	if _, err := s.WithSimilarityThreshold(s.SimilarityThreshold); err != nil {
		return err
	}
	if _, err := s.WithMaxChunkSize(s.MaxChunkSize); err != nil {
		return err
	}
	if _, err := s.WithRequestDelay(s.RequestDelay); err != nil {
		return err
	}
	if _, err := s.WithDefaultDimension(s.DefaultDimension); err != nil {
		return err
	}
	return nil
}

func (s Settings) WithSimilarityThreshold(threshold float64) (Settings, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return s, errs.Validation("similarity_threshold", "must be between 0.0 and 1.0, got %v", threshold)
	}
	s.SimilarityThreshold = threshold
	return s, nil
}

func (s Settings) WithModel(model string) (Settings, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return s, errs.Validation("model", "cannot be empty")
	}
	s.Model = model
	return s, nil
}

func (s Settings) WithRequestDelay(delay time.Duration) (Settings, error) {
	if delay < 0 {
		return s, errs.Validation("request_delay", "cannot be negative, got %s", delay)
	}
	s.RequestDelay = delay
	return s, nil
}

func (s Settings) WithMaxChunkSize(size int) (Settings, error) {
	if size <= 0 {
		return s, errs.Validation("max_chunk_size", "must be positive, got %d", size)
	}
	s.MaxChunkSize = size
	return s, nil
}

func (s Settings) WithDefaultDimension(dimension int) (Settings, error) {
	if dimension <= 0 {
		return s, errs.Validation("default_dimension", "must be positive, got %d", dimension)
	}
	s.DefaultDimension = dimension
	return s, nil
}

// WithBaseURL accepts an absolute http(s) URL and stores it without its
// trailing slash.
func (s Settings) WithBaseURL(baseURL string) (Settings, error) {
	normalized := embedding.NormalizeBaseURL(baseURL)
	if normalized == "" {
		return s, errs.Validation("base_url", "cannot be empty")
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return s, errs.Validation("base_url", "%v", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return s, errs.Validation("base_url", "must be an absolute http(s) URL, got %q", baseURL)
	}
	s.BaseURL = normalized
	return s, nil
}
