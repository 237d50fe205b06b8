package experiment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/faults"
	"voicejudge/internal/logging"
	"voicejudge/internal/stimuli"
)

// State is a step of the per-trial state machine.
type State int

const (
	StateFixation State = iota
	StatePlayback
	StateResponseWait
	StateConfidenceWait
	StateNaturalnessWait
	StateComplete
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateFixation:
		return "fixation"
	case StatePlayback:
		return "playback"
	case StateResponseWait:
		return "response_wait"
	case StateConfidenceWait:
		return "confidence_wait"
	case StateNaturalnessWait:
		return "naturalness_wait"
	case StateComplete:
		return "complete"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Timing holds the fixed pauses of a trial.
type Timing struct {
	Fixation       time.Duration
	PostAudioPause time.Duration
	InterTrial     time.Duration
}

// TrialOptions parameterizes one Run.
type TrialOptions struct {
	// Index is the 1-based position of the trial in its block.
	Index int
	// Extract enables acoustic feature extraction at completion.
	Extract bool
}

// Outcome is the result of running one trial. Result is only meaningful when
// State is StateComplete.
type Outcome struct {
	State  State
	Result TrialResult
}

// Aborted reports whether the trial ended on the abort signal.
func (o Outcome) Aborted() bool { return o.State == StateAborted }

// Sequencer presents single trials.
type Sequencer struct {
	display   Display
	keyboard  Keyboard
	player    Player
	clock     Clock
	extractor acoustics.FeatureExtractor
	timing    Timing
	logger    *slog.Logger
	observe   func(State)
}

// NewSequencer wires a Sequencer. extractor may be nil when no trial runs with
// extraction enabled.
func NewSequencer(display Display, keyboard Keyboard, player Player, clock Clock, extractor acoustics.FeatureExtractor, timing Timing, logger *slog.Logger) *Sequencer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Sequencer{
		display:   display,
		keyboard:  keyboard,
		player:    player,
		clock:     clock,
		extractor: extractor,
		timing:    timing,
		logger:    logging.NewComponentLogger(logger, "sequencer"),
	}
}

// Observe registers a callback invoked on every state entry.
func (s *Sequencer) Observe(fn func(State)) {
	s.observe = fn
}

// Run takes trial through fixation, playback, response, confidence and
// naturalness. The abort key or a cancelled context in any wait returns an
// Outcome in StateAborted with a nil error; nothing is recorded for the trial.
// Errors are reserved for failures (display, playback, extraction).
func (s *Sequencer) Run(ctx context.Context, trial stimuli.Trial, opts TrialOptions) (Outcome, error) {
	logger := logging.WithContext(ctx, s.logger).With(logging.String("stimulus", trial.Filename))

	s.enter(logger, StateFixation)
	if err := s.display.Show(fixationScreen); err != nil {
		return Outcome{}, displayError(err)
	}
	if err := s.clock.Sleep(ctx, s.timing.Fixation); err != nil {
		return s.abort(logger, err)
	}

	s.enter(logger, StatePlayback)
	if err := s.player.Play(ctx, trial.Path); err != nil {
		if ctx.Err() != nil {
			return s.abort(logger, ctx.Err())
		}
		return Outcome{}, err
	}
	if err := s.display.Clear(); err != nil {
		return Outcome{}, displayError(err)
	}
	if err := s.clock.Sleep(ctx, s.timing.PostAudioPause); err != nil {
		return s.abort(logger, err)
	}

	s.enter(logger, StateResponseWait)
	if err := s.display.Show(responseScreen); err != nil {
		return Outcome{}, displayError(err)
	}
	if err := s.keyboard.Flush(); err != nil {
		return Outcome{}, err
	}
	onset := s.clock.Now()
	response, err := s.keyboard.WaitKey(ctx, KeyReal, KeyFake, KeyAbort)
	if aborted, err := s.interrupted(response, err); aborted || err != nil {
		return s.abortOrFail(logger, err)
	}
	rt := max(response.At.Sub(onset).Seconds(), 0)

	s.enter(logger, StateConfidenceWait)
	confidence, err := s.rate(ctx, confidenceScreen)
	if aborted, err := s.interrupted(confidence, err); aborted || err != nil {
		return s.abortOrFail(logger, err)
	}

	s.enter(logger, StateNaturalnessWait)
	naturalness, err := s.rate(ctx, naturalnessScreen)
	if aborted, err := s.interrupted(naturalness, err); aborted || err != nil {
		return s.abortOrFail(logger, err)
	}

	s.enter(logger, StateComplete)
	answer := stimuli.Real
	if response.Key == KeyFake {
		answer = stimuli.Fake
	}
	result := TrialResult{
		Index:        opts.Index,
		Trial:        trial,
		Response:     answer,
		ResponseTime: rt,
		Confidence:   confidence.Key.Rating(),
		Naturalness:  naturalness.Key.Rating(),
		Correct:      Score(answer, trial.Authenticity),
		Features:     acoustics.Undefined(),
	}
	if opts.Extract {
		if s.extractor == nil {
			return Outcome{}, faults.Wrap(faults.ErrFeatureExtraction, "sequencer", "extract", "no extractor configured", nil)
		}
		features, err := s.extractor.Extract(ctx, trial.Path)
		if err != nil {
			if ctx.Err() != nil {
				return s.abort(logger, ctx.Err())
			}
			return Outcome{}, err
		}
		result.Features = features
	}

	logger.Debug("trial complete",
		logging.String("response", string(answer)),
		logging.Float64("response_time", rt),
		logging.Int("correct", result.Correct),
	)
	// The trial is already complete; a cancellation here surfaces on the next
	// trial's fixation.
	_ = s.clock.Sleep(ctx, s.timing.InterTrial)
	return Outcome{State: StateComplete, Result: result}, nil
}

func (s *Sequencer) rate(ctx context.Context, screen Screen) (KeyEvent, error) {
	if err := s.display.Show(screen); err != nil {
		return KeyEvent{}, displayError(err)
	}
	if err := s.keyboard.Flush(); err != nil {
		return KeyEvent{}, err
	}
	allowed := append(append([]Key(nil), RatingKeys...), KeyAbort)
	return s.keyboard.WaitKey(ctx, allowed...)
}

// interrupted classifies a key wait: the abort key and context cancellation
// abort the trial, anything else is a failure.
func (s *Sequencer) interrupted(event KeyEvent, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || faults.IsAbort(err) {
			return true, nil
		}
		return false, err
	}
	return event.Key == KeyAbort, nil
}

func (s *Sequencer) abortOrFail(logger *slog.Logger, err error) (Outcome, error) {
	if err != nil {
		return Outcome{}, err
	}
	return s.abort(logger, nil)
}

func (s *Sequencer) abort(logger *slog.Logger, cause error) (Outcome, error) {
	s.enter(logger, StateAborted)
	if cause != nil {
		logger.Debug("trial interrupted", logging.Error(cause))
	}
	return Outcome{State: StateAborted}, nil
}

func (s *Sequencer) enter(logger *slog.Logger, state State) {
	logger.Debug("trial state", logging.String(logging.FieldState, state.String()))
	if s.observe != nil {
		s.observe(state)
	}
}

func displayError(err error) error {
	return faults.Wrap(faults.ErrExternalTool, "sequencer", "display", "", err)
}
