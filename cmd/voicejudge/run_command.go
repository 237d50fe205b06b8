package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voicejudge/internal/config"
	"voicejudge/internal/experiment"
	"voicejudge/internal/faults"
	"voicejudge/internal/logging"
	"voicejudge/internal/media/playback"
	"voicejudge/internal/preflight"
	"voicejudge/internal/results"
	"voicejudge/internal/stationlock"
	"voicejudge/internal/stimuli"
	"voicejudge/internal/terminal"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var seed uint64
	var noPractice bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a participant session at this station",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if noPractice {
				cfg.Experiment.PracticeEnabled = false
			}
			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(seed, seed))
			}

			lock, err := stationlock.Acquire(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			checks := preflight.RunAll(cfg, preflight.Options{RequireTerminal: true})
			if failed := preflight.Failures(checks); len(failed) > 0 {
				renderChecks(cmd.ErrOrStderr(), checks, shouldColorize(cmd.ErrOrStderr()))
				return faults.Wrap(faults.ErrConfiguration, "cli", "preflight", fmt.Sprintf("%d station checks failed", len(failed)), nil)
			}

			logger, err := ctx.logger(true)
			if err != nil {
				return err
			}

			signalCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			station := terminal.NewStation(os.Stdin, os.Stdout)
			session, runErr := runSession(signalCtx, cfg, station, rng, logger)
			if err := station.Close(); err != nil {
				logger.Warn("failed to restore terminal", logging.Error(err))
			}
			return reportSession(cmd.OutOrStdout(), session, runErr)
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed the trial order for a reproducible session")
	cmd.Flags().BoolVar(&noPractice, "no-practice", false, "Skip the practice block")
	return cmd
}

// stationIO is what a session needs from the participant console.
type stationIO interface {
	experiment.Display
	experiment.Keyboard
	experiment.Form
}

// runSession builds the catalog and collaborators from cfg and runs one
// session on station.
func runSession(ctx context.Context, cfg *config.Config, station stationIO, rng *rand.Rand, logger *slog.Logger) (*experiment.Session, error) {
	mainTrials, err := stimuli.Build(stimuli.MainFolders(cfg), cfg.Stimuli.Extensions)
	if err != nil {
		return nil, err
	}
	var practiceTrials []stimuli.Trial
	if cfg.Experiment.PracticeEnabled {
		practiceTrials, err = stimuli.Build(stimuli.PracticeFolders(cfg), cfg.Stimuli.Extensions)
		if err != nil {
			return nil, err
		}
	}

	store := openArchive(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	deps := experiment.Deps{
		Form:      station,
		Display:   station,
		Keyboard:  station,
		Player:    playback.NewPlayer(cfg.Audio.Player, cfg.Audio.Probe, logger),
		Clock:     experiment.SystemClock{},
		Extractor: newExtractor(cfg, store, true, logger),
		Sink:      results.NewPersister(cfg, logger),
		Rand:      rng,
		Logger:    logger,
	}
	if store != nil {
		deps.Archive = store
	}

	runner := experiment.NewRunner(deps, mainTrials, practiceTrials, experiment.OptionsFromConfig(cfg))
	return runner.Run(ctx)
}

// reportSession prints the operator summary once the participant screen is
// gone. Leaving at the consent screens is a normal outcome.
func reportSession(out io.Writer, session *experiment.Session, err error) error {
	if errors.Is(err, faults.ErrAborted) {
		fmt.Fprintln(out, "Participant left before the experiment started; no data was recorded.")
		return nil
	}
	if session == nil && errors.Is(err, faults.ErrCancelled) {
		fmt.Fprintln(out, "Session interrupted before the experiment started; no data was recorded.")
		return err
	}
	if session != nil {
		res := session.Results()
		state := "completed"
		if session.Aborted {
			state = "aborted"
		}
		fmt.Fprintf(out, "Session %s %s: %d trials recorded, accuracy %.1f%%\n",
			session.ID, state, len(res), experiment.Accuracy(res))
	}
	return err
}
