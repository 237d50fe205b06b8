package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strings"
	"time"

	"voicejudge/internal/faults"
	"voicejudge/internal/logging"
	"voicejudge/internal/media/ffprobe"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Player plays audio files with ffplay (or a compatible binary).
type Player struct {
	binary  string
	probe   string
	logger  *slog.Logger
	run     commandRunner
	inspect probeFunc
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewPlayer constructs a Player. Empty binaries default to ffplay and ffprobe.
func NewPlayer(binary, probe string, logger *slog.Logger) *Player {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffplay"
	}
	probe = strings.TrimSpace(probe)
	if probe == "" {
		probe = "ffprobe"
	}
	return &Player{
		binary:  binary,
		probe:   probe,
		logger:  logging.NewComponentLogger(logger, "playback"),
		run:     defaultCommandRunner,
		inspect: ffprobe.Inspect,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (p *Player) WithCommandRunner(r commandRunner) {
	if p != nil && r != nil {
		p.run = r
	}
}

// Play blocks until the file has finished playing: at least the clip length
// reported by ffprobe, even when the player exits early. Without a probed
// length the player's exit ends playback. A cancelled context stops playback
// and returns the context error.
func (p *Player) Play(ctx context.Context, path string) error {
	if p == nil {
		return errors.New("player not initialized")
	}
	if strings.TrimSpace(path) == "" {
		return faults.Wrap(faults.ErrValidation, "playback", "play", "empty path", nil)
	}
	length, probeErr := p.Duration(ctx, path)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if probeErr != nil {
		p.logger.Debug("clip length unknown; waiting for player exit only",
			logging.String("path", path),
			logging.Error(probeErr),
		)
	}

	started := p.now()
	err := p.run(ctx, p.binary, p.args(path)...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return faults.Wrap(faults.ErrExternalTool, "playback", "play", path, err)
	}
	elapsed := p.now().Sub(started)
	if remaining := length - elapsed; remaining > 0 {
		p.logger.Debug("player exited before clip end",
			logging.String("path", path),
			logging.Duration("remaining", remaining),
		)
		if err := p.sleep(ctx, remaining); err != nil {
			return err
		}
	}
	p.logger.Debug("clip played",
		logging.String("path", path),
		logging.Duration("elapsed", p.now().Sub(started)),
	)
	return nil
}

// Duration reports the clip length as measured by ffprobe.
func (p *Player) Duration(ctx context.Context, path string) (time.Duration, error) {
	result, err := p.inspect(ctx, p.probe, path)
	if err != nil {
		return 0, faults.Wrap(faults.ErrExternalTool, "playback", "probe", path, err)
	}
	seconds := result.DurationSeconds()
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0, faults.Wrap(faults.ErrExternalTool, "playback", "probe", fmt.Sprintf("%s: no duration reported", path), nil)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (p *Player) args(path string) []string {
	return []string{"-nodisp", "-autoexit", "-loglevel", "error", "--", path}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
