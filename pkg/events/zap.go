package events

import "go.uber.org/zap"

type ZapObserver struct {
	logger *zap.Logger
}

func NewZapObserver(logger *zap.Logger) *ZapObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapObserver{logger: logger}
}

func (o *ZapObserver) Observe(e Event) {
	switch e.Kind {
	case RunStarted:
		o.logger.Info("starting semantic chunking", zap.Int("text_length", e.Length))
	case SentencesSplit:
		o.logger.Info("split text into sentences", zap.Int("sentences", e.Count))
	case EmbedSucceeded:
		o.logger.Debug("embedding received",
			zap.Int("sentence", e.Index),
			zap.Int("dimension", e.Length))
	case EmbedFailed:
		o.logger.Warn("failed to get embedding for sentence, using zero vector",
			zap.Int("sentence", e.Index),
			zap.Error(e.Err))
	case ChunkEmitted:
		o.logger.Debug("chunk emitted",
			zap.Int("position", e.Index),
			zap.Int("sentences", e.Count),
			zap.Int("length", e.Length))
	case RunFinished:
		o.logger.Info("created semantic chunks",
			zap.Int("chunks", e.Count),
			zap.Int("degraded_sentences", e.Degraded),
			zap.Duration("took", e.Duration))
	}
}
