package main

import (
	"time"

	"semchunk/config"
	"semchunk/pkg/chunking"
	"semchunk/pkg/embedding"
	"semchunk/pkg/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	configPath string
	url        string
	model      string
	threshold  float64
	maxSize    int
	delay      time.Duration
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	chunker  *chunking.SemanticChunker
}

func RootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "semchunk",
		Short:         "Split text into semantically coherent chunks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "semchunk.yaml", "path to the YAML config file")
	pf.StringVar(&flags.url, "url", "", "embedding service base URL")
	pf.StringVar(&flags.model, "model", "", "embedding model name")
	pf.Float64Var(&flags.threshold, "threshold", chunking.DefaultSimilarityThreshold, "similarity threshold in [0, 1]")
	pf.IntVar(&flags.maxSize, "max-size", chunking.DefaultMaxChunkSize, "maximum chunk size in characters")
	pf.DurationVar(&flags.delay, "delay", chunking.DefaultRequestDelay, "pause between embedding requests")

	root.AddCommand(
		ChunkCmd(flags),
		QuickCmd(flags),
		ModelsCmd(flags),
		PingCmd(flags),
		ServeCmd(flags),
	)

	return root
}

// newApp loads configuration, applies flags that were set explicitly and
// builds the chunker.
func newApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(level)
	if err != nil {
		return nil, err
	}

	settings, err := cfg.ChunkSettings()
	if err != nil {
		return nil, err
	}
	settings, err = applyFlags(cmd, flags, settings)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	observer := events.Multi{
		events.NewZapObserver(logger),
		events.NewMetricsObserver(registry),
	}

	httpClient := NewHttpClient(embedding.DefaultTimeout)
	chunker, err := chunking.NewSemanticChunker(settings,
		chunking.WithLogger(logger),
		chunking.WithObserver(observer),
		chunking.WithServiceFactory(func(s chunking.Settings) embedding.Service {
			return embedding.NewOllamaClient(s.BaseURL, s.Model,
				embedding.WithHTTPClient(httpClient),
				embedding.WithLogger(logger))
		}),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug(chunker.ConfigInfo())

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		chunker:  chunker,
	}, nil
}

func applyFlags(cmd *cobra.Command, flags *globalFlags, s chunking.Settings) (chunking.Settings, error) {
	var err error
	changed := cmd.Flags().Changed

	if changed("url") {
		if s, err = s.WithBaseURL(flags.url); err != nil {
			return s, err
		}
	}
	if changed("model") {
		if s, err = s.WithModel(flags.model); err != nil {
			return s, err
		}
	}
	if changed("threshold") {
		if s, err = s.WithSimilarityThreshold(flags.threshold); err != nil {
			return s, err
		}
	}
	if changed("max-size") {
		if s, err = s.WithMaxChunkSize(flags.maxSize); err != nil {
			return s, err
		}
	}
	if changed("delay") {
		if s, err = s.WithRequestDelay(flags.delay); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (a *app) Close() {
	_ = a.logger.Sync()
}
