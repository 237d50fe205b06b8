package archive

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/experiment"
	"voicejudge/internal/stimuli"
	"voicejudge/internal/testsupport"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Path() != cfg.ArchivePath() {
		t.Fatalf("unexpected path %s", store.Path())
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	var version int
	if err := reopened.db.Get(&version, "SELECT version FROM schema_version"); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != schemaVersion {
		t.Fatalf("version = %d", version)
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(cfg); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestNilStoreClose(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("Close on nil store: %v", err)
	}
}

func TestRecordSessionAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := testsupport.NewSession(4)
	newer := testsupport.NewSession(2)
	newer.StartedAt = older.StartedAt.Add(time.Hour)
	newer.EndedAt = newer.StartedAt.Add(time.Minute)
	newer.Aborted = true

	var sink experiment.Sink = store
	for _, s := range []*experiment.Session{older, newer} {
		if err := sink.Save(ctx, s); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	sessions, err := store.ListSessions(ctx, 0)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	first := sessions[0]
	if first.ID != newer.ID || !first.Aborted || first.TrialsCompleted != 2 || first.TrialsPlanned != 2 {
		t.Fatalf("unexpected newest session %+v", first)
	}
	if !first.StartedAt.Equal(newer.StartedAt) {
		t.Fatalf("started_at round trip: %v", first.StartedAt)
	}
	second := sessions[1]
	if second.Correct != 2 || second.Accuracy() != 50 {
		t.Fatalf("unexpected older session %+v", second)
	}

	limited, err := store.ListSessions(ctx, 1)
	if err != nil {
		t.Fatalf("ListSessions limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != newer.ID {
		t.Fatalf("limit not applied: %+v", limited)
	}
}

func TestRecordSessionTwiceReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	session := testsupport.NewSession(4)

	for range 2 {
		if err := store.RecordSession(ctx, session); err != nil {
			t.Fatalf("RecordSession: %v", err)
		}
	}
	var trials int
	if err := store.db.Get(&trials, "SELECT COUNT(1) FROM trial_results"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if trials != 4 {
		t.Fatalf("expected 4 trial rows, got %d", trials)
	}
}

func TestRecordSessionStoresUndefinedFeaturesAsNull(t *testing.T) {
	store := openTestStore(t)
	if err := store.RecordSession(context.Background(), testsupport.NewSession(3)); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}
	var nulls, defined int
	if err := store.db.Get(&nulls, "SELECT COUNT(1) FROM trial_results WHERE shimmer IS NULL"); err != nil {
		t.Fatalf("count nulls: %v", err)
	}
	if err := store.db.Get(&defined, "SELECT COUNT(1) FROM trial_results WHERE hnr = 18.5"); err != nil {
		t.Fatalf("count hnr: %v", err)
	}
	if nulls != 3 || defined != 3 {
		t.Fatalf("nulls=%d defined=%d", nulls, defined)
	}
}

func TestSummaries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	// Two trials per condition: indexes 0 and 4 are real_easy, 1 and 5 real_hard.
	if err := store.RecordSession(ctx, testsupport.NewSession(8)); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}

	summaries, err := store.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 4 {
		t.Fatalf("expected 4 summaries, got %d", len(summaries))
	}
	for i, want := range stimuli.MainConditions {
		if summaries[i].Condition != want {
			t.Fatalf("summary %d is %s, want %s", i, summaries[i].Condition, want)
		}
		if summaries[i].Trials != 2 {
			t.Fatalf("%s has %d trials", want, summaries[i].Trials)
		}
	}
	realEasy := summaries[0]
	if realEasy.Accuracy != 100 || math.Abs(realEasy.MeanRT-1.0) > 1e-9 || math.Abs(realEasy.MedianRT-1.0) > 1e-9 {
		t.Fatalf("unexpected real_easy summary %+v", realEasy)
	}
	if math.Abs(realEasy.StdRT-math.Sqrt(0.5)) > 1e-9 {
		t.Fatalf("StdRT = %v", realEasy.StdRT)
	}
	// Confidence is i%5+1: trials 0 and 4 rate 1 and 5.
	if realEasy.MeanConfidence != 3 {
		t.Fatalf("MeanConfidence = %v", realEasy.MeanConfidence)
	}
	if summaries[1].Accuracy != 0 {
		t.Fatalf("real_hard accuracy = %v", summaries[1].Accuracy)
	}
}

func TestSummariesEmptyArchive(t *testing.T) {
	summaries, err := openTestStore(t).Summaries(context.Background())
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected no summaries, got %d", len(summaries))
	}
}

type countingExtractor struct {
	calls    int
	features acoustics.Features
	err      error
}

func (c *countingExtractor) Extract(context.Context, string) (acoustics.Features, error) {
	c.calls++
	return c.features, c.err
}

func sampleFeatures() acoustics.Features {
	return acoustics.FeaturesFromValues([]float64{150, 3, 68, 5, 510, 1490, 2520, 0.012, 0.05, 19, 950, 600, 2300})
}

func TestCachedExtractorHitsAndInvalidates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clip.wav")
	testsupport.WriteFile(t, path, 256)

	inner := &countingExtractor{features: sampleFeatures()}
	cached := NewCachedExtractor(store, inner, "praat", nil)

	for i := range 2 {
		got, err := cached.Extract(ctx, path)
		if err != nil {
			t.Fatalf("Extract %d: %v", i, err)
		}
		if !got.Equal(inner.features) {
			t.Fatalf("Extract %d = %+v", i, got)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected one analysis, got %d", inner.calls)
	}
	if !math.IsNaN(sampleFeatures().ZeroCrossingRate) {
		t.Fatal("sample vector should leave the last measurement undefined")
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if _, err := cached.Extract(ctx, path); err != nil {
		t.Fatalf("Extract after touch: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("modified file should be re-analysed, calls=%d", inner.calls)
	}

	other := NewCachedExtractor(store, inner, "other", nil)
	if _, err := other.Extract(ctx, path); err != nil {
		t.Fatalf("Extract other backend: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("backends must not share entries, calls=%d", inner.calls)
	}

	removed, err := store.ClearFeatures(ctx)
	if err != nil {
		t.Fatalf("ClearFeatures: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 cached vectors, removed %d", removed)
	}
}

func TestCachedExtractorDoesNotCacheFailures(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clip.wav")
	testsupport.WriteFile(t, path, 64)

	inner := &countingExtractor{err: errors.New("decode failed")}
	cached := NewCachedExtractor(store, inner, "praat", nil)
	for range 2 {
		if _, err := cached.Extract(ctx, path); err == nil {
			t.Fatal("expected failure")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("failures must not be cached, calls=%d", inner.calls)
	}
}

func TestCachedExtractorMissingFile(t *testing.T) {
	store := openTestStore(t)
	inner := &countingExtractor{features: sampleFeatures()}
	cached := NewCachedExtractor(store, inner, "praat", nil)

	if _, err := cached.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.wav")); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("calls = %d", inner.calls)
	}
}
