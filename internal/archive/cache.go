package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/logging"
)

// FileKey identifies one version of a stimulus file.
type FileKey struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatKey builds the cache key of the file at path.
func StatKey(path string) (FileKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileKey{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileKey{}, err
	}
	return FileKey{Path: abs, Size: info.Size(), ModTime: info.ModTime()}, nil
}

type cacheRow struct {
	Size     int64  `db:"size"`
	ModTime  int64  `db:"mod_time"`
	Features string `db:"features"`
}

// LookupFeatures returns the cached vector for key computed by backend. A
// changed size or modification time is a miss.
func (s *Store) LookupFeatures(ctx context.Context, key FileKey, backend string) (acoustics.Features, bool, error) {
	var row cacheRow
	err := s.db.GetContext(ctx, &row,
		"SELECT size, mod_time, features FROM feature_cache WHERE path = ? AND backend = ?",
		key.Path, backend)
	if errors.Is(err, sql.ErrNoRows) {
		return acoustics.Features{}, false, nil
	}
	if err != nil {
		return acoustics.Features{}, false, fmt.Errorf("lookup features: %w", err)
	}
	if row.Size != key.Size || row.ModTime != key.ModTime.UnixNano() {
		return acoustics.Features{}, false, nil
	}
	features, err := decodeFeatures(row.Features)
	if err != nil {
		return acoustics.Features{}, false, err
	}
	return features, true, nil
}

// StoreFeatures caches features for key, replacing any earlier entry.
func (s *Store) StoreFeatures(ctx context.Context, key FileKey, backend string, features acoustics.Features) error {
	payload, err := encodeFeatures(features)
	if err != nil {
		return err
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO feature_cache (path, size, mod_time, backend, features, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(path, backend) DO UPDATE SET
    size = excluded.size,
    mod_time = excluded.mod_time,
    features = excluded.features,
    created_at = excluded.created_at`,
			key.Path, key.Size, key.ModTime.UnixNano(), backend, payload, time.Now().UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("store features: %w", err)
		}
		return nil
	})
}

// ClearFeatures drops every cached vector and returns how many were removed.
func (s *Store) ClearFeatures(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM feature_cache")
	if err != nil {
		return 0, fmt.Errorf("clear feature cache: %w", err)
	}
	return res.RowsAffected()
}

// Undefined measurements are stored as JSON null.
func encodeFeatures(f acoustics.Features) (string, error) {
	values := f.Values()
	out := make([]*float64, len(values))
	for i := range values {
		if !math.IsNaN(values[i]) && !math.IsInf(values[i], 0) {
			out[i] = &values[i]
		}
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode features: %w", err)
	}
	return string(payload), nil
}

func decodeFeatures(payload string) (acoustics.Features, error) {
	var raw []*float64
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return acoustics.Features{}, fmt.Errorf("decode cached features: %w", err)
	}
	values := make([]float64, len(raw))
	for i, v := range raw {
		if v == nil {
			values[i] = math.NaN()
			continue
		}
		values[i] = *v
	}
	return acoustics.FeaturesFromValues(values), nil
}

// CachedExtractor serves feature vectors from the archive and falls back to
// the wrapped extractor on a miss. Cache problems are logged and never fail
// an extraction.
type CachedExtractor struct {
	store   *Store
	inner   acoustics.FeatureExtractor
	backend string
	logger  *slog.Logger
}

// NewCachedExtractor wraps inner. backend names the analysis so vectors from
// different backends never mix.
func NewCachedExtractor(store *Store, inner acoustics.FeatureExtractor, backend string, logger *slog.Logger) *CachedExtractor {
	return &CachedExtractor{
		store:   store,
		inner:   inner,
		backend: backend,
		logger:  logging.NewComponentLogger(logger, "feature-cache"),
	}
}

// Extract implements acoustics.FeatureExtractor.
func (c *CachedExtractor) Extract(ctx context.Context, path string) (acoustics.Features, error) {
	key, keyErr := StatKey(path)
	if keyErr == nil {
		features, ok, err := c.store.LookupFeatures(ctx, key, c.backend)
		if err != nil {
			c.logger.Debug("feature cache lookup failed", logging.String("path", path), logging.Error(err))
		} else if ok {
			c.logger.Debug("feature cache hit", logging.String("path", path))
			return features, nil
		}
	}

	features, err := c.inner.Extract(ctx, path)
	if err != nil {
		return features, err
	}
	if keyErr == nil {
		if err := c.store.StoreFeatures(ctx, key, c.backend, features); err != nil {
			logging.WarnWithContext(c.logger, "failed to cache features", "feature_cache_store_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "features will be recomputed next session"),
			)
		}
	}
	return features, nil
}
