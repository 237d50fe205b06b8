package terminal

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/term"

	"voicejudge/internal/experiment"
	"voicejudge/internal/faults"
)

const (
	keyEscape    = 0x1b
	keyInterrupt = 0x03
	eventBuffer  = 64
)

// ErrKeyboardClosed is returned by WaitKey after Close or once stdin ends.
var ErrKeyboardClosed = errors.New("keyboard closed")

// Keyboard reads single key presses from a raw-mode terminal. A reader
// goroutine timestamps each press as it arrives so response times do not
// depend on when WaitKey is called.
type Keyboard struct {
	events chan experiment.KeyEvent
	done   chan struct{}
	failed chan struct{}
	now    func() time.Time

	mu      sync.Mutex
	readErr error

	closeOnce sync.Once
	restore   func() error
}

// OpenKeyboard switches in to raw mode and starts reading key presses. Close
// restores the previous terminal state.
func OpenKeyboard(in *os.File) (*Keyboard, error) {
	if !IsTTY(in) {
		return nil, faults.Wrap(faults.ErrConfiguration, "terminal", "keyboard", "stdin is not a terminal", nil)
	}
	fd := int(in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, faults.Wrap(faults.ErrExternalTool, "terminal", "keyboard", "enter raw mode", err)
	}
	k := newKeyboard(in, time.Now)
	k.restore = func() error { return term.Restore(fd, state) }
	return k, nil
}

func newKeyboard(r io.Reader, now func() time.Time) *Keyboard {
	k := &Keyboard{
		events: make(chan experiment.KeyEvent, eventBuffer),
		done:   make(chan struct{}),
		failed: make(chan struct{}),
		now:    now,
	}
	go k.read(r)
	return k
}

// Flush discards the presses buffered so far.
func (k *Keyboard) Flush() error {
	for {
		select {
		case <-k.events:
		default:
			return nil
		}
	}
}

// WaitKey blocks until one of allowed arrives. Presses buffered since the
// last Flush count. An empty allowed list accepts any key.
func (k *Keyboard) WaitKey(ctx context.Context, allowed ...experiment.Key) (experiment.KeyEvent, error) {
	for {
		select {
		case <-ctx.Done():
			return experiment.KeyEvent{}, ctx.Err()
		case <-k.done:
			return experiment.KeyEvent{}, ErrKeyboardClosed
		case ev := <-k.events:
			if len(allowed) == 0 || slices.Contains(allowed, ev.Key) {
				return ev, nil
			}
		case <-k.failed:
			select {
			case ev := <-k.events:
				if len(allowed) == 0 || slices.Contains(allowed, ev.Key) {
					return ev, nil
				}
				continue
			default:
			}
			return experiment.KeyEvent{}, k.err()
		}
	}
}

// Close stops delivering key presses and restores the terminal.
func (k *Keyboard) Close() error {
	var err error
	k.closeOnce.Do(func() {
		close(k.done)
		if k.restore != nil {
			err = k.restore()
		}
	})
	return err
}

func (k *Keyboard) err() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.readErr == nil || errors.Is(k.readErr, io.EOF) {
		return ErrKeyboardClosed
	}
	return faults.Wrap(faults.ErrExternalTool, "terminal", "keyboard", "read stdin", k.readErr)
}

func (k *Keyboard) read(r io.Reader) {
	buf := make([]byte, 32)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			at := k.now()
			for _, key := range decodeKeys(buf[:n]) {
				select {
				case k.events <- experiment.KeyEvent{Key: key, At: at}:
				case <-k.done:
					return
				}
			}
		}
		if err != nil {
			k.mu.Lock()
			k.readErr = err
			k.mu.Unlock()
			close(k.failed)
			return
		}
	}
}

// decodeKeys maps one read from a raw terminal to key names. A lone ESC is
// the abort key; ESC followed by '[' or 'O' starts a cursor or function key
// sequence, which is skipped.
func decodeKeys(chunk []byte) []experiment.Key {
	var keys []experiment.Key
	for i := 0; i < len(chunk); i++ {
		b := chunk[i]
		switch {
		case b == keyEscape:
			if i+1 < len(chunk) && (chunk[i+1] == '[' || chunk[i+1] == 'O') {
				i = skipSequence(chunk, i+2)
				continue
			}
			keys = append(keys, experiment.KeyAbort)
		case b == keyInterrupt:
			keys = append(keys, experiment.KeyAbort)
		case b == ' ':
			keys = append(keys, experiment.KeySpace)
		case b == '\r' || b == '\n':
			keys = append(keys, experiment.KeyEnter)
		case b >= 'A' && b <= 'Z':
			keys = append(keys, experiment.Key(string(rune(b+'a'-'A'))))
		case b > ' ' && b < 0x7f:
			keys = append(keys, experiment.Key(string(rune(b))))
		}
	}
	return keys
}

// skipSequence returns the index of the final byte of a CSI or SS3 sequence
// whose parameters start at from.
func skipSequence(chunk []byte, from int) int {
	for j := from; j < len(chunk); j++ {
		if chunk[j] >= 0x40 && chunk[j] <= 0x7e {
			return j
		}
	}
	return len(chunk) - 1
}
