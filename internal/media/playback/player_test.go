package playback

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"voicejudge/internal/faults"
	"voicejudge/internal/media/ffprobe"
)

// stubClock is a manual clock; the player's command runner advances it.
type stubClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *stubClock) Now() time.Time { return c.now }

func (c *stubClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

// newTestPlayer returns a player whose probe reports length (zero means the
// probe fails) and whose runner takes ran on clock.
func newTestPlayer(binary string, length, ran time.Duration) (*Player, *stubClock) {
	clock := &stubClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	player := NewPlayer(binary, "", nil)
	player.now = clock.Now
	player.sleep = clock.Sleep
	player.inspect = func(context.Context, string, string) (ffprobe.Result, error) {
		if length == 0 {
			return ffprobe.Result{}, errors.New("ffprobe: not found")
		}
		return ffprobe.Result{Format: ffprobe.Format{Duration: strconv.FormatFloat(length.Seconds(), 'f', -1, 64)}}, nil
	}
	player.WithCommandRunner(func(context.Context, string, ...string) error {
		clock.now = clock.now.Add(ran)
		return nil
	})
	return player, clock
}

func TestPlayPassesNoDisplayFlags(t *testing.T) {
	player, _ := newTestPlayer("", 0, 0)
	var gotName string
	var gotArgs []string
	player.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	})

	if err := player.Play(context.Background(), "stimuli/real/easy/a.flac"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if gotName != "ffplay" {
		t.Fatalf("expected ffplay, got %q", gotName)
	}
	want := []string{"-nodisp", "-autoexit", "-loglevel", "error", "--", "stimuli/real/easy/a.flac"}
	if len(gotArgs) != len(want) {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Fatalf("arg %d = %q, want %q", i, gotArgs[i], want[i])
		}
	}
}

func TestPlayWaitsOutEarlyPlayerExit(t *testing.T) {
	player, clock := newTestPlayer("", 2*time.Second, 500*time.Millisecond)

	if err := player.Play(context.Background(), "clip.flac"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(clock.slept) != 1 || clock.slept[0] != 1500*time.Millisecond {
		t.Fatalf("expected the remaining 1.5s to be waited, got %v", clock.slept)
	}
}

func TestPlayDoesNotWaitAfterFullPlayback(t *testing.T) {
	player, clock := newTestPlayer("", 2*time.Second, 2100*time.Millisecond)

	if err := player.Play(context.Background(), "clip.flac"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Fatalf("unexpected wait %v", clock.slept)
	}
}

func TestPlayWithoutProbedLengthEndsAtPlayerExit(t *testing.T) {
	player, clock := newTestPlayer("", 0, 300*time.Millisecond)

	if err := player.Play(context.Background(), "clip.flac"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Fatalf("unexpected wait %v", clock.slept)
	}
}

func TestPlayCancelledWhileWaitingForClipEnd(t *testing.T) {
	player, _ := newTestPlayer("", 2*time.Second, 0)
	ctx, cancel := context.WithCancel(context.Background())
	player.sleep = func(context.Context, time.Duration) error {
		cancel()
		return ctx.Err()
	}
	if err := player.Play(ctx, "clip.flac"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPlayWrapsPlayerFailure(t *testing.T) {
	player, _ := newTestPlayer("ffplay", 0, 0)
	player.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1: no such file")
	})
	err := player.Play(context.Background(), "missing.flac")
	if !errors.Is(err, faults.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestPlayReturnsContextErrorWhenCancelled(t *testing.T) {
	player, _ := newTestPlayer("ffplay", 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	player.WithCommandRunner(func(context.Context, string, ...string) error {
		cancel()
		return errors.New("signal: killed")
	})
	if err := player.Play(ctx, "clip.flac"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPlayRejectsEmptyPath(t *testing.T) {
	if err := NewPlayer("", "", nil).Play(context.Background(), " "); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlayRunsRealBinary(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "played")
	script := filepath.Join(dir, "fakeplay")
	body := "#!/bin/sh\nfor last; do :; done\necho \"$last\" > " + marker + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	player := NewPlayer(script, "", nil)
	player.inspect = func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{Format: ffprobe.Format{Duration: "0.01"}}, nil
	}
	if err := player.Play(context.Background(), "clip.flac"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("player did not run: %v", err)
	}
	if string(data) != "clip.flac\n" {
		t.Fatalf("unexpected argument recorded: %q", data)
	}
}

func TestDurationUsesProbe(t *testing.T) {
	player := NewPlayer("", "", nil)
	player.inspect = func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{Format: ffprobe.Format{Duration: "1.5"}}, nil
	}
	got, err := player.Duration(context.Background(), "clip.flac")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if got != 1500*time.Millisecond {
		t.Fatalf("unexpected duration %v", got)
	}
}

func TestDurationFailsWithoutValue(t *testing.T) {
	player := NewPlayer("", "", nil)
	player.inspect = func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, nil
	}
	if _, err := player.Duration(context.Background(), "clip.flac"); !errors.Is(err, faults.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
