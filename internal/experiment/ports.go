package experiment

import (
	"context"
	"time"
)

// Key names a keyboard input the task reacts to.
type Key string

const (
	KeyReal  Key = "r"
	KeyFake  Key = "f"
	KeyAbort Key = "escape"
	KeySpace Key = "space"
	KeyEnter Key = "enter"
)

// RatingKeys are the keys of the 1-5 rating scales.
var RatingKeys = []Key{"1", "2", "3", "4", "5"}

// Rating returns the numeric value of a rating key, or 0 for other keys.
func (k Key) Rating() int {
	if len(k) == 1 && k[0] >= '1' && k[0] <= '5' {
		return int(k[0] - '0')
	}
	return 0
}

// KeyEvent is a key press with its monotonic timestamp.
type KeyEvent struct {
	Key Key
	At  time.Time
}

// TextSize is the relative height of screen text.
type TextSize int

const (
	SizeNormal TextSize = iota
	SizeSmall
	SizeLarge
)

// Align controls horizontal text placement.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
)

// Screen is one full-screen message.
type Screen struct {
	Text  string
	Size  TextSize
	Align Align
}

// Display shows participant-facing screens.
type Display interface {
	Show(screen Screen) error
	Clear() error
}

// Keyboard waits for key presses. Flush discards presses made so far; WaitKey
// blocks until one of allowed is pressed (any key when allowed is empty) or
// ctx is done. Presses made between Flush and WaitKey are delivered.
type Keyboard interface {
	Flush() error
	WaitKey(ctx context.Context, allowed ...Key) (KeyEvent, error)
}

// Player plays a clip and returns when it has finished.
type Player interface {
	Play(ctx context.Context, path string) error
}

// Form collects participant details before the session starts.
type Form interface {
	Ask(ctx context.Context) (Participant, error)
}

// Clock provides the current time and interruptible pauses.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Sink receives the finished session.
type Sink interface {
	Save(ctx context.Context, session *Session) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep implements Clock.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
