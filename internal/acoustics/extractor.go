package acoustics

import (
	"context"
	"log/slog"
	"time"

	"voicejudge/internal/faults"
	"voicejudge/internal/logging"
)

// Extractor decodes a file and runs a Backend over it.
type Extractor struct {
	decoder Decoder
	backend Backend
	logger  *slog.Logger
}

// NewExtractor builds an Extractor. A nil backend selects the Praat backend.
func NewExtractor(decoder Decoder, backend Backend, logger *slog.Logger) *Extractor {
	if backend == nil {
		backend = NewPraat()
	}
	return &Extractor{
		decoder: decoder,
		backend: backend,
		logger:  logging.NewComponentLogger(logger, "acoustics"),
	}
}

// Extract implements FeatureExtractor.
func (e *Extractor) Extract(ctx context.Context, path string) (Features, error) {
	if err := ctx.Err(); err != nil {
		return Features{}, err
	}
	started := time.Now()
	sig, err := e.decoder.Decode(ctx, path)
	if err != nil {
		return Features{}, faults.Wrap(faults.ErrFeatureExtraction, "acoustics", "decode", path, err)
	}
	features, err := e.backend.Analyze(sig)
	if err != nil {
		return Features{}, faults.Wrap(faults.ErrFeatureExtraction, "acoustics", "analyze", path, err)
	}
	e.logger.Debug("features extracted",
		logging.String("path", path),
		logging.Float64("duration_seconds", sig.Duration()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return features, nil
}
