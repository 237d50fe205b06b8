package terminal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"voicejudge/internal/experiment"
	"voicejudge/internal/faults"
)

func TestFormCollectsParticipant(t *testing.T) {
	input := strings.Join([]string{
		"  P-07 ",
		"thirty",
		"200",
		"30",
		"f",
		"no",
		"som",
	}, "\n") + "\n"
	var out bytes.Buffer

	p, err := NewForm(strings.NewReader(input), &out).Ask(context.Background())
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	want := experiment.Participant{
		ID:          "P-07",
		Age:         30,
		Gender:      "Female",
		Nativity:    "No",
		Familiarity: "Somewhat familiar",
	}
	if p != want {
		t.Fatalf("Ask = %+v, want %+v", p, want)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("collected participant invalid: %v", err)
	}
	if n := strings.Count(out.String(), "Please enter a whole number"); n != 2 {
		t.Fatalf("expected 2 age reprompts, got %d\n%s", n, out.String())
	}
}

func TestFormRepromptsAmbiguousChoice(t *testing.T) {
	input := "P1\n40\n9\nm\n2\nfamiliar\n"
	var out bytes.Buffer

	p, err := NewForm(strings.NewReader(input), &out).Ask(context.Background())
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if p.Gender != "Male" || p.Nativity != "Yes" || p.Familiarity != "Familiar" {
		t.Fatalf("unexpected participant %+v", p)
	}
	if !strings.Contains(out.String(), "Please choose 1-3") {
		t.Fatalf("missing reprompt:\n%s", out.String())
	}
}

func TestFormInputClosedCancels(t *testing.T) {
	_, err := NewForm(strings.NewReader("P1\n25"), io.Discard).Ask(context.Background())
	if !errors.Is(err, faults.ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
}

func TestFormRejectsBlankID(t *testing.T) {
	var out bytes.Buffer
	_, err := NewForm(strings.NewReader("\n   \n"), &out).Ask(context.Background())
	if !errors.Is(err, faults.ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
	if n := strings.Count(out.String(), "Please enter a participant id"); n != 2 {
		t.Fatalf("expected 2 reprompts, got %d", n)
	}
}

func TestFormContextCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewForm(r, io.Discard).Ask(ctx)
	if !errors.Is(err, faults.ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause, got %v", err)
	}
}
