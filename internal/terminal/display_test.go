package terminal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"voicejudge/internal/experiment"
	"voicejudge/internal/faults"
)

func TestDisplayCentersText(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out, WithSize(20, 6))

	if err := d.Show(experiment.Screen{Text: "Hi"}); err != nil {
		t.Fatalf("Show: %v", err)
	}
	want := ansiClear + "\r\n\r\n" + strings.Repeat(" ", 9) + "Hi"
	if got := out.String(); got != want {
		t.Fatalf("unexpected output\n got %q\nwant %q", got, want)
	}
}

func TestDisplayLeftAlignKeepsLineBreaks(t *testing.T) {
	var out bytes.Buffer
	d := NewDisplay(&out, WithSize(40, 10))

	screen := experiment.Screen{Text: "line one\n\nline two", Align: experiment.AlignLeft}
	if err := d.Show(screen); err != nil {
		t.Fatalf("Show: %v", err)
	}
	body := strings.TrimPrefix(out.String(), ansiClear)
	lines := strings.Split(body, "\r\n")
	// (10 - 3) / 2 blank lines precede the text.
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d: %q", len(lines), lines)
	}
	if lines[3] != "    line one" || lines[4] != "" || lines[5] != "    line two" {
		t.Fatalf("unexpected layout %q", lines[3:])
	}
}

func TestDisplayWrapsLongLines(t *testing.T) {
	got := wrapLines("alpha beta gamma delta", 11)
	want := []string{"alpha beta", "gamma delta"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("wrapLines = %q, want %q", got, want)
	}
}

func TestDisplayClear(t *testing.T) {
	var out bytes.Buffer
	if err := NewDisplay(&out).Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if out.String() != ansiClear {
		t.Fatalf("Clear wrote %q", out.String())
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestDisplayWriteFailure(t *testing.T) {
	err := NewDisplay(brokenWriter{}, WithSize(10, 5)).Show(experiment.Screen{Text: "x"})
	if !errors.Is(err, faults.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestIsTTYRejectsNonFiles(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Fatal("buffer reported as terminal")
	}
	if w, h := size(&bytes.Buffer{}); w != defaultWidth || h != defaultHeight {
		t.Fatalf("size = %dx%d", w, h)
	}
}
