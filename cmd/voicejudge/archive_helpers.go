package main

import (
	"log/slog"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/archive"
	"voicejudge/internal/config"
	"voicejudge/internal/logging"
)

const backendName = "praat"

// openArchive opens the session archive when it is enabled. A failure is
// logged and returns nil so sessions still reach the CSV logfile.
func openArchive(cfg *config.Config, logger *slog.Logger) *archive.Store {
	if !cfg.Experiment.ArchiveEnabled {
		return nil
	}
	store, err := archive.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "session archive unavailable", "archive_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the archive database if its schema is outdated"),
			logging.String(logging.FieldImpact, "results are written to CSV only"),
		)
		return nil
	}
	return store
}

// newExtractor builds the feature extractor, cached through store when one is
// given and the feature cache is enabled.
func newExtractor(cfg *config.Config, store *archive.Store, useCache bool, logger *slog.Logger) acoustics.FeatureExtractor {
	decoder := acoustics.Decoder{FFmpeg: cfg.Audio.FFmpeg, FFprobe: cfg.Audio.Probe}
	extractor := acoustics.NewExtractor(decoder, nil, logger)
	if store == nil || !useCache || !cfg.Experiment.FeatureCache {
		return extractor
	}
	return archive.NewCachedExtractor(store, extractor, backendName, logger)
}
