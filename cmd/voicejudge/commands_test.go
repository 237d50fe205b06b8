package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"voicejudge/internal/archive"
	"voicejudge/internal/faults"
	"voicejudge/internal/stationlock"
	"voicejudge/internal/testsupport"
)

func allStimuli() testsupport.StimulusCounts {
	return testsupport.StimulusCounts{
		RealEasy: 1, RealHard: 1, FakeEasy: 1, FakeHard: 1,
		PracticeReal: 1, PracticeFake: 1,
	}
}

func TestCheckPassesWithStimuliAndTools(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	testsupport.WriteStimuli(t, env.cfg, allStimuli())

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Station checks")
	requireContains(t, out, "[OK] 1 files in")
	requireContains(t, out, "Stimuli real_easy:")
	requireContains(t, out, "Audio player:")
}

func TestCheckFailsWithoutStimuli(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	if code := faults.ExitCode(err); code != faults.ExitConfiguration {
		t.Fatalf("exit code = %d, want %d", code, faults.ExitConfiguration)
	}
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, "Stimuli fake_hard:")
}

func TestRunRefusesWithoutTerminal(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	testsupport.WriteStimuli(t, env.cfg, allStimuli())

	_, stderr, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected run to fail outside a terminal")
	}
	if code := faults.ExitCode(err); code != faults.ExitConfiguration {
		t.Fatalf("exit code = %d, want %d", code, faults.ExitConfiguration)
	}
	requireContains(t, stderr, "Terminal:")
	requireContains(t, stderr, "not a terminal")
}

func TestRunRefusesWhileStationLocked(t *testing.T) {
	env := setupCLITestEnv(t)
	lock, err := stationlock.Acquire(env.cfg.LockPath())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"run"}, env.configPath)
	if !errors.Is(err, stationlock.ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
}

func TestStatsWithEmptyArchive(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "No sessions archived")
}

func TestStatsSummarizesArchivedSessions(t *testing.T) {
	env := setupCLITestEnv(t)
	store, err := archive.Open(env.cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.RecordSession(context.Background(), testsupport.NewSession(8)); err != nil {
		t.Fatalf("RecordSession: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out, _, err := runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"real_easy", "fake_hard", "MEAN RT", "Recent sessions", "P01", "8/8", "50.0"} {
		requireContains(t, out, want)
	}
}

func TestStatsRequiresArchive(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Experiment.ArchiveEnabled = false
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"stats"}, env.configPath)
	if code := faults.ExitCode(err); code != faults.ExitConfiguration {
		t.Fatalf("exit code = %d, want %d (err %v)", code, faults.ExitConfiguration, err)
	}
}

func TestFeaturesTableAndCSV(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteStimuli(t, env.cfg, testsupport.StimulusCounts{RealEasy: 2})

	out, _, err := runCLI(t, []string{"features", env.cfg.Stimuli.RealEasy}, env.configPath)
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	requireContains(t, out, "real_easy_1.wav")
	requireContains(t, out, "real_easy_2.wav")
	requireContains(t, out, "F0_MEAN")

	out, _, err = runCLI(t, []string{"features", "--csv", env.cfg.Stimuli.RealEasy}, env.configPath)
	if err != nil {
		t.Fatalf("features --csv: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if records[0][1] != "F0_mean" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if filepath.Base(records[1][0]) != "real_easy_1.wav" {
		t.Fatalf("rows not sorted: %v", records[1][0])
	}
	if records[1][1] == "" {
		t.Fatalf("expected an F0 estimate for a voiced file")
	}
	if last := records[1][len(records[1])-1]; last != "" {
		t.Fatalf("unexpected error column %q", last)
	}
}

func TestFeaturesReportsUnreadableFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	bogus := filepath.Join(t.TempDir(), "noise.wav")
	testsupport.WriteFile(t, bogus, 128)

	out, _, err := runCLI(t, []string{"features", "--no-cache", bogus}, env.configPath)
	if !errors.Is(err, faults.ErrFeatureExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	if code := faults.ExitCode(err); code != faults.ExitFailure {
		t.Fatalf("exit code = %d, want %d", code, faults.ExitFailure)
	}
	requireContains(t, out, "error")
}

func TestFeaturesRejectsEmptyDirectory(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"features", t.TempDir()}, env.configPath)
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReportSession(t *testing.T) {
	var out bytes.Buffer
	err := reportSession(&out, nil, faults.Wrap(faults.ErrAborted, "runner", "consent", "participant withdrew", nil))
	if err != nil {
		t.Fatalf("withdrawal should not be an error: %v", err)
	}
	requireContains(t, out.String(), "no data was recorded")

	out.Reset()
	interrupted := faults.Wrap(faults.ErrCancelled, "runner", "consent", "session interrupted", context.Canceled)
	if err := reportSession(&out, nil, interrupted); !errors.Is(err, faults.ErrCancelled) {
		t.Fatalf("interrupt should surface as cancellation, got %v", err)
	}
	requireContains(t, out.String(), "Session interrupted before the experiment started")

	out.Reset()
	session := testsupport.NewSession(4)
	if err := reportSession(&out, session, nil); err != nil {
		t.Fatalf("reportSession: %v", err)
	}
	requireContains(t, out.String(), "completed: 4 trials recorded, accuracy 50.0%")

	out.Reset()
	session.Aborted = true
	failure := errors.New("disk gone")
	if err := reportSession(&out, session, failure); !errors.Is(err, failure) {
		t.Fatalf("expected failure to pass through, got %v", err)
	}
	requireContains(t, out.String(), "aborted")
}
