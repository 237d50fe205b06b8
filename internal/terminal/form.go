package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"voicejudge/internal/experiment"
	"voicejudge/internal/faults"
	"voicejudge/internal/textutil"
)

// Form asks for participant details one line at a time. It runs in cooked
// mode, before the Keyboard takes over stdin.
type Form struct {
	out io.Writer

	start    sync.Once
	in       io.Reader
	requests chan struct{}
	lines    chan line
	pending  bool
}

type line struct {
	text string
	err  error
}

// NewForm returns a Form reading answers from in and writing prompts to out.
func NewForm(in io.Reader, out io.Writer) *Form {
	return &Form{in: in, out: out, requests: make(chan struct{}), lines: make(chan line)}
}

// Ask implements experiment.Form. Closing the input, or cancelling ctx,
// returns faults.ErrCancelled.
func (f *Form) Ask(ctx context.Context) (experiment.Participant, error) {
	f.start.Do(func() { go f.scan() })

	var p experiment.Participant
	var err error

	fmt.Fprintln(f.out, "Participant information")
	fmt.Fprintln(f.out)

	if p.ID, err = f.askText(ctx, "Participant ID"); err != nil {
		return p, err
	}
	if p.Age, err = f.askAge(ctx); err != nil {
		return p, err
	}
	if p.Gender, err = f.askChoice(ctx, "Gender", experiment.GenderOptions); err != nil {
		return p, err
	}
	if p.Nativity, err = f.askChoice(ctx, "Is English your native language?", experiment.NativityOptions); err != nil {
		return p, err
	}
	if p.Familiarity, err = f.askChoice(ctx, "How familiar are you with AI-generated voices?", experiment.FamiliarityOptions); err != nil {
		return p, err
	}
	return p, nil
}

func (f *Form) askText(ctx context.Context, label string) (string, error) {
	for {
		fmt.Fprintf(f.out, "%s: ", label)
		answer, err := f.next(ctx)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintf(f.out, "Please enter a %s.\n", strings.ToLower(label))
	}
}

func (f *Form) askAge(ctx context.Context) (int, error) {
	for {
		fmt.Fprint(f.out, "Age: ")
		answer, err := f.next(ctx)
		if err != nil {
			return 0, err
		}
		age, convErr := strconv.Atoi(answer)
		if convErr == nil && age >= experiment.MinAge && age <= experiment.MaxAge {
			return age, nil
		}
		fmt.Fprintf(f.out, "Please enter a whole number between %d and %d.\n", experiment.MinAge, experiment.MaxAge)
	}
}

func (f *Form) askChoice(ctx context.Context, label string, choices []string) (string, error) {
	for {
		fmt.Fprintln(f.out, label)
		for i, choice := range choices {
			fmt.Fprintf(f.out, "  %d) %s\n", i+1, choice)
		}
		fmt.Fprint(f.out, "> ")
		answer, err := f.next(ctx)
		if err != nil {
			return "", err
		}
		if choice, ok := textutil.MatchChoice(answer, choices); ok {
			return choice, nil
		}
		fmt.Fprintf(f.out, "Please choose 1-%d or type an option.\n", len(choices))
	}
}

func (f *Form) next(ctx context.Context) (string, error) {
	if !f.pending {
		select {
		case f.requests <- struct{}{}:
			f.pending = true
		case <-ctx.Done():
			return "", faults.Wrap(faults.ErrCancelled, "terminal", "participant form", "interrupted", ctx.Err())
		}
	}
	select {
	case <-ctx.Done():
		fmt.Fprintln(f.out)
		return "", faults.Wrap(faults.ErrCancelled, "terminal", "participant form", "interrupted", ctx.Err())
	case l := <-f.lines:
		f.pending = false
		if l.err != nil {
			fmt.Fprintln(f.out)
			if errors.Is(l.err, io.EOF) {
				return "", faults.Wrap(faults.ErrCancelled, "terminal", "participant form", "input closed", nil)
			}
			return "", faults.Wrap(faults.ErrExternalTool, "terminal", "participant form", "read input", l.err)
		}
		return strings.TrimSpace(l.text), nil
	}
}

// scan reads one line per request so prompts can observe cancellation while
// stdin stays untouched between questions and after the form is done. A
// final line without a newline is delivered before the error.
func (f *Form) scan() {
	reader := bufio.NewReader(f.in)
	var failure error
	for range f.requests {
		if failure != nil {
			f.lines <- line{err: failure}
			continue
		}
		text, err := reader.ReadString('\n')
		if text != "" || err == nil {
			failure = err
			f.lines <- line{text: text}
			continue
		}
		failure = err
		f.lines <- line{err: err}
	}
}
