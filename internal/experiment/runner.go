package experiment

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/config"
	"voicejudge/internal/faults"
	"voicejudge/internal/logging"
	"voicejudge/internal/stimuli"
)

// Session phases, used as the phase log field.
const (
	PhaseIntake   = "intake"
	PhaseConsent  = "consent"
	PhasePractice = "practice"
	PhaseMain     = "main"
	PhaseSummary  = "summary"
	PhasePersist  = "persist"
)

// Options configures a Runner.
type Options struct {
	Timing          Timing
	Welcome         time.Duration
	PracticeEnabled bool
	// OnExtractionError is config.PolicySkipTrial or config.PolicyAbortSession.
	OnExtractionError string
}

// OptionsFromConfig maps the configuration onto runner options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Timing: Timing{
			Fixation:       cfg.Fixation(),
			PostAudioPause: cfg.PostAudioPause(),
			InterTrial:     cfg.InterTrial(),
		},
		Welcome:           cfg.Welcome(),
		PracticeEnabled:   cfg.Experiment.PracticeEnabled,
		OnExtractionError: cfg.Experiment.OnExtractionError,
	}
}

// Deps are the collaborators of a Runner. Archive and Rand are optional.
type Deps struct {
	Form      Form
	Display   Display
	Keyboard  Keyboard
	Player    Player
	Clock     Clock
	Extractor acoustics.FeatureExtractor
	Sink      Sink
	Archive   Sink
	Rand      *rand.Rand
	Logger    *slog.Logger
}

// Runner executes complete sessions.
type Runner struct {
	deps     Deps
	opts     Options
	main     []stimuli.Trial
	practice []stimuli.Trial
	logger   *slog.Logger
	observe  func(State)
}

// NewRunner builds a Runner over the catalogued main and practice trials.
// Both lists are shuffled when a session starts.
func NewRunner(deps Deps, main, practice []stimuli.Trial, opts Options) *Runner {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	return &Runner{
		deps:     deps,
		opts:     opts,
		main:     append([]stimuli.Trial(nil), main...),
		practice: append([]stimuli.Trial(nil), practice...),
		logger:   logging.NewComponentLogger(deps.Logger, "runner"),
	}
}

// Observe registers a callback for every trial state entry.
func (r *Runner) Observe(fn func(State)) { r.observe = fn }

// Run executes one session.
//
// A cancelled participant form returns faults.ErrCancelled and no session.
// Leaving at the consent screens returns faults.ErrAborted without persisting;
// a cancelled ctx there returns faults.ErrCancelled and no session.
// Aborting in practice or the main block skips to persistence; the returned
// error is then nil. Failures during the blocks still persist the completed
// trials before the failure is returned.
func (r *Runner) Run(ctx context.Context) (*Session, error) {
	intakeCtx := logging.WithPhase(ctx, PhaseIntake)
	participant, err := r.deps.Form.Ask(intakeCtx)
	if err != nil {
		if !errors.Is(err, faults.ErrCancelled) && ctx.Err() != nil {
			err = faults.Wrap(faults.ErrCancelled, "runner", "participant form", "interrupted", err)
		}
		return nil, err
	}
	if err := participant.Validate(); err != nil {
		return nil, err
	}

	session := NewSession(participant, stimuli.Shuffle(r.main, r.deps.Rand), r.deps.Clock.Now())
	logger := logging.WithSessionID(r.logger, session.ID)
	seq := NewSequencer(r.deps.Display, r.deps.Keyboard, r.deps.Player, r.deps.Clock, r.deps.Extractor, r.opts.Timing,
		logging.WithSessionID(r.deps.Logger, session.ID))
	seq.Observe(r.observe)

	logger.Info("session started",
		logging.String("participant", participant.ID),
		logging.Int("main_trials", len(session.Trials)),
		logging.Int("practice_trials", len(r.practice)),
	)

	if proceed, err := r.consent(logging.WithPhase(ctx, PhaseConsent)); err != nil || !proceed {
		if errors.Is(err, faults.ErrCancelled) {
			logger.Info("session interrupted before the practice block; no data written")
			return nil, err
		}
		if err == nil {
			logger.Info("participant left before the practice block; no data written")
			err = faults.Wrap(faults.ErrAborted, "runner", "consent", "participant withdrew", nil)
		}
		return session, err
	}

	aborted, runErr := r.blocks(ctx, seq, session, logger)
	session.Aborted = aborted

	if !aborted && runErr == nil {
		summaryCtx := logging.WithPhase(ctx, PhaseSummary)
		if err := r.deps.Display.Show(summaryScreen(session.CorrectCount(), len(session.results))); err != nil {
			runErr = displayError(err)
		} else if err := r.deps.Keyboard.Flush(); err != nil {
			runErr = err
		} else if _, err := r.deps.Keyboard.WaitKey(summaryCtx); err != nil && ctx.Err() == nil {
			runErr = err
		}
	}

	session.EndedAt = r.deps.Clock.Now()
	persistErr := r.persist(logging.WithPhase(context.WithoutCancel(ctx), PhasePersist), session, logger)
	return session, errors.Join(runErr, persistErr)
}

// consent shows the welcome, consent and instruction screens. It returns
// false when the participant leaves, and faults.ErrCancelled when ctx ends.
func (r *Runner) consent(ctx context.Context) (bool, error) {
	if err := r.deps.Display.Show(welcomeScreen); err != nil {
		return false, displayError(err)
	}
	if err := r.deps.Clock.Sleep(ctx, r.opts.Welcome); err != nil {
		return false, interruptedError("welcome", err)
	}
	for _, screen := range []Screen{consentScreen, procedureScreen, instructionsScreen} {
		proceed, err := r.gate(ctx, screen)
		if err != nil {
			return false, err
		}
		if !proceed {
			if ctx.Err() != nil {
				return false, interruptedError("consent", ctx.Err())
			}
			return false, nil
		}
	}
	return true, nil
}

func interruptedError(op string, err error) error {
	return faults.Wrap(faults.ErrCancelled, "runner", op, "session interrupted", err)
}

// gate shows screen and waits for space (true) or the abort key (false).
func (r *Runner) gate(ctx context.Context, screen Screen) (bool, error) {
	if err := r.deps.Display.Show(screen); err != nil {
		return false, displayError(err)
	}
	if err := r.deps.Keyboard.Flush(); err != nil {
		return false, err
	}
	event, err := r.deps.Keyboard.WaitKey(ctx, KeySpace, KeyAbort)
	if err != nil {
		if ctx.Err() != nil || faults.IsAbort(err) {
			return false, nil
		}
		return false, err
	}
	return event.Key == KeySpace, nil
}

// blocks runs practice and the main block. It reports whether the session was
// aborted and any failure that ended it early.
func (r *Runner) blocks(ctx context.Context, seq *Sequencer, session *Session, logger *slog.Logger) (bool, error) {
	practice := r.opts.PracticeEnabled && len(r.practice) > 0
	if practice {
		practiceCtx := logging.WithPhase(ctx, PhasePractice)
		proceed, err := r.gate(practiceCtx, practiceStartScreen)
		if err != nil || !proceed {
			return true, err
		}
		for i, trial := range stimuli.Shuffle(r.practice, r.deps.Rand) {
			outcome, err := seq.Run(logging.WithTrial(practiceCtx, i+1), trial, TrialOptions{Index: i + 1})
			if err != nil {
				return true, err
			}
			if outcome.Aborted() {
				logger.Info("session aborted during practice", logging.Int(logging.FieldTrial, i+1))
				return true, nil
			}
		}
	}

	mainCtx := logging.WithPhase(ctx, PhaseMain)
	gateScreen := mainStartScreen
	if practice {
		gateScreen = practiceCompleteScreen
	}
	proceed, err := r.gate(mainCtx, gateScreen)
	if err != nil || !proceed {
		return true, err
	}

	for i, trial := range session.Trials {
		index := i + 1
		trialCtx := logging.WithTrial(mainCtx, index)
		outcome, err := seq.Run(trialCtx, trial, TrialOptions{Index: index, Extract: true})
		if err != nil {
			if errors.Is(err, faults.ErrFeatureExtraction) && r.opts.OnExtractionError != config.PolicyAbortSession {
				logging.WarnWithContext(logging.WithContext(trialCtx, logger), "feature extraction failed; trial discarded", "feature_extraction_failed",
					logging.String("stimulus", trial.Filename),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check that the stimulus file decodes"),
					logging.String(logging.FieldImpact, "trial omitted from the dataset"),
				)
				continue
			}
			logging.ErrorWithContext(logging.WithContext(trialCtx, logger), "trial failed; ending session", "trial_failed",
				logging.String("stimulus", trial.Filename),
				logging.Error(err),
			)
			return true, err
		}
		if outcome.Aborted() {
			logger.Info("session aborted", logging.Int(logging.FieldTrial, index), logging.Int("completed", len(session.results)))
			return true, nil
		}
		session.Record(outcome.Result)
		logger.Info("trial completed",
			logging.Int(logging.FieldTrial, index),
			logging.Int("total", len(session.Trials)),
		)
	}
	return false, nil
}

func (r *Runner) persist(ctx context.Context, session *Session, logger *slog.Logger) error {
	results := session.results
	if r.deps.Sink == nil {
		return faults.Wrap(faults.ErrPersistence, "runner", "persist", "no result sink configured", nil)
	}
	if err := r.deps.Sink.Save(ctx, session); err != nil {
		logging.ErrorWithContext(logger, "failed to persist session", "persist_failed", logging.Error(err))
		return err
	}
	if r.deps.Archive != nil {
		if err := r.deps.Archive.Save(ctx, session); err != nil {
			logging.WarnWithContext(logger, "failed to archive session", "archive_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "session missing from stats; CSV is unaffected"),
			)
		}
	}
	logger.Info("session finished",
		logging.Int("completed", len(results)),
		logging.Int("correct", CorrectCount(results)),
		logging.Float64("accuracy", Accuracy(results)),
		logging.Bool("aborted", session.Aborted),
	)
	return nil
}
