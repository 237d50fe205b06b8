package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/faults"
	"voicejudge/internal/stimuli"
)

type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	return nil
}

// keyInterrupt in a script cancels the session context instead of pressing a
// key, like SIGINT arriving mid-wait.
const keyInterrupt Key = "<interrupt>"

type press struct {
	key   Key
	after time.Duration
}

type fakeKeyboard struct {
	clock   *fakeClock
	presses []press
	waits   [][]Key
	cancel  context.CancelFunc
	// flushes records the clock at every Flush; flushLatency advances it.
	flushes      []time.Time
	flushLatency time.Duration
	flushErr     error
}

func (k *fakeKeyboard) Flush() error {
	k.clock.now = k.clock.now.Add(k.flushLatency)
	k.flushes = append(k.flushes, k.clock.now)
	return k.flushErr
}

func (k *fakeKeyboard) script(keys ...Key) {
	for _, key := range keys {
		k.presses = append(k.presses, press{key: key, after: 100 * time.Millisecond})
	}
}

func (k *fakeKeyboard) WaitKey(ctx context.Context, allowed ...Key) (KeyEvent, error) {
	k.waits = append(k.waits, allowed)
	for {
		if err := ctx.Err(); err != nil {
			return KeyEvent{}, err
		}
		if len(k.presses) == 0 {
			return KeyEvent{}, errors.New("keyboard script exhausted")
		}
		p := k.presses[0]
		k.presses = k.presses[1:]
		k.clock.now = k.clock.now.Add(p.after)
		if p.key == keyInterrupt {
			k.cancel()
			continue
		}
		if len(allowed) == 0 || slices.Contains(allowed, p.key) {
			return KeyEvent{Key: p.key, At: k.clock.now}, nil
		}
	}
}

type fakeDisplay struct {
	screens []Screen
	clears  int
}

func (d *fakeDisplay) Show(screen Screen) error {
	d.screens = append(d.screens, screen)
	return nil
}

func (d *fakeDisplay) Clear() error {
	d.clears++
	return nil
}

func (d *fakeDisplay) texts() []string {
	out := make([]string, len(d.screens))
	for i, s := range d.screens {
		out[i] = s.Text
	}
	return out
}

type fakePlayer struct {
	played []string
	fail   map[string]error
	onPlay func()
}

func (p *fakePlayer) Play(ctx context.Context, path string) error {
	p.played = append(p.played, path)
	if p.onPlay != nil {
		p.onPlay()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.fail[path]
}

type fakeExtractor struct {
	calls []string
	fail  map[string]bool
}

func (e *fakeExtractor) Extract(_ context.Context, path string) (acoustics.Features, error) {
	e.calls = append(e.calls, path)
	if e.fail[path] {
		return acoustics.Features{}, faults.Wrap(faults.ErrFeatureExtraction, "fake", "extract", path, errors.New("corrupt"))
	}
	features := acoustics.Undefined()
	features.F0Mean = float64(len(e.calls))
	return features, nil
}

type fakeForm struct {
	participant Participant
	err         error
}

func (f fakeForm) Ask(context.Context) (Participant, error) {
	return f.participant, f.err
}

type recordingSink struct {
	saved   []*Session
	results [][]TrialResult
	err     error
}

func (s *recordingSink) Save(_ context.Context, session *Session) error {
	s.saved = append(s.saved, session)
	s.results = append(s.results, session.Results())
	return s.err
}

func testParticipant() Participant {
	return Participant{ID: "P01", Age: 27, Gender: "Female", Nativity: "No", Familiarity: "Somewhat familiar"}
}

func trial(condition stimuli.Condition, n int) stimuli.Trial {
	name := fmt.Sprintf("%s_%d.flac", condition, n)
	return stimuli.Trial{
		Path:         "stimuli/" + string(condition) + "/" + name,
		Filename:     name,
		Condition:    condition,
		Authenticity: condition.Authenticity(),
		Difficulty:   condition.Difficulty(),
	}
}

func mainTrials(perCondition int) []stimuli.Trial {
	var out []stimuli.Trial
	for _, c := range stimuli.MainConditions {
		for i := range perCondition {
			out = append(out, trial(c, i+1))
		}
	}
	return out
}

func practiceTrials() []stimuli.Trial {
	return []stimuli.Trial{trial(stimuli.PracticeFake, 1), trial(stimuli.PracticeReal, 1)}
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

// answer scripts a full response sequence for one trial.
func answer(response, confidence, naturalness Key) []Key {
	return []Key{response, confidence, naturalness}
}
