package terminal

import (
	"context"
	"io"
	"os"
	"sync"

	"voicejudge/internal/experiment"
)

const (
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

// Station is the participant console: the form runs in cooked mode, then the
// first key wait switches stdin to raw mode for the rest of the session.
type Station struct {
	*Display
	form *Form
	in   *os.File
	out  io.Writer

	mu       sync.Mutex
	keyboard *Keyboard
	open     func(*os.File) (*Keyboard, error)
}

// NewStation builds a Station on the given terminal streams.
func NewStation(in *os.File, out io.Writer) *Station {
	return &Station{
		Display: NewDisplay(out),
		form:    NewForm(in, out),
		in:      in,
		out:     out,
		open:    OpenKeyboard,
	}
}

// Ask implements experiment.Form.
func (s *Station) Ask(ctx context.Context) (experiment.Participant, error) {
	return s.form.Ask(ctx)
}

// Flush implements experiment.Keyboard. The first call switches stdin to raw
// mode so presses after it are captured.
func (s *Station) Flush() error {
	keyboard, err := s.ensureKeyboard()
	if err != nil {
		return err
	}
	return keyboard.Flush()
}

// WaitKey implements experiment.Keyboard.
func (s *Station) WaitKey(ctx context.Context, allowed ...experiment.Key) (experiment.KeyEvent, error) {
	keyboard, err := s.ensureKeyboard()
	if err != nil {
		return experiment.KeyEvent{}, err
	}
	return keyboard.WaitKey(ctx, allowed...)
}

func (s *Station) ensureKeyboard() (*Keyboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyboard != nil {
		return s.keyboard, nil
	}
	keyboard, err := s.open(s.in)
	if err != nil {
		return nil, err
	}
	_, _ = io.WriteString(s.out, hideCursor)
	s.keyboard = keyboard
	return keyboard, nil
}

// Close restores the terminal and clears the participant screen.
func (s *Station) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyboard == nil {
		return nil
	}
	err := s.keyboard.Close()
	s.keyboard = nil
	_, _ = io.WriteString(s.out, ansiClear+showCursor)
	return err
}
