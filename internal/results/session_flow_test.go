package results

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/config"
	"voicejudge/internal/experiment"
	"voicejudge/internal/stimuli"
	"voicejudge/internal/testsupport"
)

// scriptedParticipant drives a whole session: it answers every key wait
// after a fixed delay, judging each clip with answer.
type scriptedParticipant struct {
	now        time.Time
	lastPlayed string
	answer     func(path string) experiment.Key
	confidence experiment.Key
	natural    experiment.Key
	// abortAt is the 1-based response wait at which escape is pressed.
	abortAt   int
	responses int
	ratings   int
}

func newScriptedParticipant(answer func(string) experiment.Key) *scriptedParticipant {
	return &scriptedParticipant{
		now:        time.Date(2026, 3, 2, 14, 15, 0, 0, time.UTC),
		answer:     answer,
		confidence: "3",
		natural:    "4",
	}
}

func (p *scriptedParticipant) Ask(context.Context) (experiment.Participant, error) {
	return experiment.Participant{ID: "P07", Age: 31, Gender: "Male", Nativity: "Yes", Familiarity: "Familiar"}, nil
}

func (p *scriptedParticipant) Show(experiment.Screen) error { return nil }
func (p *scriptedParticipant) Clear() error                 { return nil }
func (p *scriptedParticipant) Flush() error                 { return nil }

func (p *scriptedParticipant) Play(ctx context.Context, path string) error {
	p.lastPlayed = path
	return ctx.Err()
}

func (p *scriptedParticipant) Now() time.Time { return p.now }

func (p *scriptedParticipant) Sleep(ctx context.Context, d time.Duration) error {
	p.now = p.now.Add(d)
	return ctx.Err()
}

func (p *scriptedParticipant) WaitKey(ctx context.Context, allowed ...experiment.Key) (experiment.KeyEvent, error) {
	if err := ctx.Err(); err != nil {
		return experiment.KeyEvent{}, err
	}
	p.now = p.now.Add(700 * time.Millisecond)
	key := experiment.KeySpace
	switch {
	case slices.Contains(allowed, experiment.KeyReal):
		p.responses++
		key = p.answer(p.lastPlayed)
		if p.responses == p.abortAt {
			key = experiment.KeyAbort
		}
	case slices.Contains(allowed, experiment.RatingKeys[0]):
		p.ratings++
		key = p.confidence
		if p.ratings%2 == 0 {
			key = p.natural
		}
	}
	return experiment.KeyEvent{Key: key, At: p.now}, nil
}

type constantExtractor struct{}

func (constantExtractor) Extract(context.Context, string) (acoustics.Features, error) {
	features := acoustics.Undefined()
	features.F0Mean = 142
	return features, nil
}

func judgeCorrectly(path string) experiment.Key {
	if strings.Contains(filepath.Base(path), "real_") {
		return experiment.KeyReal
	}
	return experiment.KeyFake
}

func alwaysReal(string) experiment.Key { return experiment.KeyReal }

// mainTrials catalogs the main folders of cfg that hold stimuli.
func mainTrials(t *testing.T, cfg *config.Config, conditions ...stimuli.Condition) []stimuli.Trial {
	t.Helper()
	var folders []stimuli.Folder
	for _, folder := range stimuli.MainFolders(cfg) {
		if slices.Contains(conditions, folder.Condition) {
			folders = append(folders, folder)
		}
	}
	trials, err := stimuli.Build(folders, cfg.Stimuli.Extensions)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return trials
}

func runSession(t *testing.T, cfg *config.Config, participant *scriptedParticipant, trials []stimuli.Trial) *experiment.Session {
	t.Helper()
	runner := experiment.NewRunner(experiment.Deps{
		Form:      participant,
		Display:   participant,
		Keyboard:  participant,
		Player:    participant,
		Clock:     participant,
		Extractor: constantExtractor{},
		Sink:      NewPersister(cfg, nil),
		Rand:      rand.New(rand.NewPCG(3, 5)),
	}, trials, nil, experiment.OptionsFromConfig(cfg))
	session, err := runner.Run(t.Context())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return session
}

// persistedRows returns the data rows of the only logfile in the output dir.
func persistedRows(t *testing.T, cfg *config.Config) [][]string {
	t.Helper()
	entries, err := os.ReadDir(cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one logfile, got %d", len(entries))
	}
	records := readCSV(t, filepath.Join(cfg.Paths.OutputDir, entries[0].Name()))
	if !slices.Equal(records[0], Columns) {
		t.Fatalf("header mismatch: %v", records[0])
	}
	return records[1:]
}

func TestSessionPersistsCorrectJudgements(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutPractice())
	testsupport.WriteStimuli(t, cfg, testsupport.StimulusCounts{RealEasy: 1, FakeHard: 1})
	trials := mainTrials(t, cfg, stimuli.RealEasy, stimuli.FakeHard)

	session := runSession(t, cfg, newScriptedParticipant(judgeCorrectly), trials)
	if session.Aborted {
		t.Fatal("session should complete")
	}

	rows := persistedRows(t, cfg)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	var conditions []string
	for i, r := range rows {
		checks := map[string]string{
			"ParticipantID": "P07",
			"Trial":         strconv.Itoa(i + 1),
			"Correct":       "1",
			"Confidence":    "3",
			"Naturalness":   "4",
			"ResponseTime":  "0.7",
			"F0_mean":       "142",
			"HNR":           "",
		}
		for name, want := range checks {
			if got := r[column(name)]; got != want {
				t.Errorf("row %d %s = %q, want %q", i+1, name, got, want)
			}
		}
		conditions = append(conditions, r[column("Condition")])
	}
	slices.Sort(conditions)
	if !slices.Equal(conditions, []string{"fake_hard", "real_easy"}) {
		t.Fatalf("unexpected conditions %v", conditions)
	}
}

func TestSessionAbortedAtSecondResponseKeepsFirstTrial(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutPractice())
	testsupport.WriteStimuli(t, cfg, testsupport.StimulusCounts{RealEasy: 2, RealHard: 1, FakeEasy: 1, FakeHard: 1})
	trials := mainTrials(t, cfg, stimuli.MainConditions...)
	if len(trials) != 5 {
		t.Fatalf("expected 5 trials, got %d", len(trials))
	}

	participant := newScriptedParticipant(judgeCorrectly)
	participant.abortAt = 2
	session := runSession(t, cfg, participant, trials)
	if !session.Aborted {
		t.Fatal("session should be marked aborted")
	}

	rows := persistedRows(t, cfg)
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 row, got %d", len(rows))
	}
	if got := rows[0][column("Trial")]; got != "1" {
		t.Fatalf("persisted trial %q, want 1", got)
	}
	if got := rows[0][column("Filename")]; got != session.Trials[0].Filename {
		t.Fatalf("persisted %q, want first presented %q", got, session.Trials[0].Filename)
	}
}

func TestSessionAccuracyFromLogfile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutPractice())
	testsupport.WriteStimuli(t, cfg, testsupport.StimulusCounts{RealEasy: 1, RealHard: 1, FakeEasy: 1, FakeHard: 1})
	trials := mainTrials(t, cfg, stimuli.MainConditions...)

	session := runSession(t, cfg, newScriptedParticipant(alwaysReal), trials)

	rows := persistedRows(t, cfg)
	correct := 0
	for _, r := range rows {
		n, err := strconv.Atoi(r[column("Correct")])
		if err != nil {
			t.Fatalf("Correct column: %v", err)
		}
		correct += n
	}
	fromFile := 100 * float64(correct) / float64(len(rows))
	if fromFile != 50 {
		t.Fatalf("accuracy from logfile = %v, want 50", fromFile)
	}
	if got := experiment.Accuracy(session.Results()); got != fromFile {
		t.Fatalf("session accuracy %v differs from logfile %v", got, fromFile)
	}
}
