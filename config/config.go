package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"semchunk/pkg/chunking"
	"semchunk/pkg/embedding"
	"semchunk/pkg/errs"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	EnvOllamaURL      = "SEMCHUNK_OLLAMA_URL"
	EnvModel          = "SEMCHUNK_MODEL"
	EnvThreshold      = "SEMCHUNK_THRESHOLD"
	EnvMaxChunkSize   = "SEMCHUNK_MAX_CHUNK_SIZE"
	EnvRequestDelayMS = "SEMCHUNK_REQUEST_DELAY_MS"
	EnvAppPort        = "SEMCHUNK_APP_PORT"
	EnvQdrantHost     = "SEMCHUNK_QDRANT_HOST"
	EnvQdrantPort     = "SEMCHUNK_QDRANT_PORT"
	EnvBoltPath       = "SEMCHUNK_BOLT_PATH"
	EnvLogLevel       = "SEMCHUNK_LOG_LEVEL"
)

type Config struct {
	AppPort  int            `yaml:"app_port"`
	LogLevel string         `yaml:"log_level"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Bolt     BoltConfig     `yaml:"bolt"`
}

type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

type ChunkingConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxChunkSize        int     `yaml:"max_chunk_size"`
	RequestDelayMS      int     `yaml:"request_delay_ms"`
	DefaultDimension    int     `yaml:"default_dimension"`
}

type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

type BoltConfig struct {
	Path string `yaml:"path"`
}

func Default() *Config {
	return &Config{
		AppPort:  8080,
		LogLevel: "info",
		Ollama: OllamaConfig{
			URL:   embedding.DefaultBaseURL,
			Model: chunking.DefaultModel,
		},
		Chunking: ChunkingConfig{
			SimilarityThreshold: chunking.DefaultSimilarityThreshold,
			MaxChunkSize:        chunking.DefaultMaxChunkSize,
			RequestDelayMS:      int(chunking.DefaultRequestDelay / time.Millisecond),
			DefaultDimension:    embedding.DefaultDimension,
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "semantic_chunks",
		},
		Bolt: BoltConfig{
			Path: "semchunk.db",
		},
	}
}

// Load layers the YAML file at path, a .env file in the working directory and
// SEMCHUNK_* environment variables over the defaults. Missing files are
// skipped. An empty path skips the YAML layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(EnvOllamaURL, &c.Ollama.URL)
	setString(EnvModel, &c.Ollama.Model)
	setString(EnvQdrantHost, &c.Qdrant.Host)
	setString(EnvBoltPath, &c.Bolt.Path)
	setString(EnvLogLevel, &c.LogLevel)

	if v, ok := os.LookupEnv(EnvThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errs.Validation(EnvThreshold, "not a number: %q", v)
		}
		c.Chunking.SimilarityThreshold = f
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvMaxChunkSize, &c.Chunking.MaxChunkSize},
		{EnvRequestDelayMS, &c.Chunking.RequestDelayMS},
		{EnvAppPort, &c.AppPort},
		{EnvQdrantPort, &c.Qdrant.Port},
	}
	for _, i := range ints {
		v, ok := os.LookupEnv(i.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Validation(i.key, "not an integer: %q", v)
		}
		*i.dst = n
	}
	return nil
}

func setString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if _, err := c.ChunkSettings(); err != nil {
		return err
	}
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return errs.Validation("app_port", "must be in 1..65535, got %d", c.AppPort)
	}
	if c.Qdrant.Port <= 0 || c.Qdrant.Port > 65535 {
		return errs.Validation("qdrant.port", "must be in 1..65535, got %d", c.Qdrant.Port)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// ChunkSettings converts the chunking section into validated chunker settings.
func (c *Config) ChunkSettings() (chunking.Settings, error) {
	s := chunking.DefaultSettings()
	var err error
	if s, err = s.WithBaseURL(c.Ollama.URL); err != nil {
		return s, err
	}
	if s, err = s.WithModel(c.Ollama.Model); err != nil {
		return s, err
	}
	if s, err = s.WithSimilarityThreshold(c.Chunking.SimilarityThreshold); err != nil {
		return s, err
	}
	if s, err = s.WithMaxChunkSize(c.Chunking.MaxChunkSize); err != nil {
		return s, err
	}
	if s, err = s.WithRequestDelay(time.Duration(c.Chunking.RequestDelayMS) * time.Millisecond); err != nil {
		return s, err
	}
	return s.WithDefaultDimension(c.Chunking.DefaultDimension)
}

func (c *Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return level, errs.Validation("log_level", "%v", err)
	}
	return level, nil
}
