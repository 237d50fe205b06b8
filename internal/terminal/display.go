package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"voicejudge/internal/experiment"
	"voicejudge/internal/faults"
)

const (
	ansiClear = "\x1b[2J\x1b[H"
	// Raw mode disables output post-processing, so lines end in CRLF.
	lineBreak = "\r\n"
	// Left-aligned screens keep a margin and wrap at this width.
	leftMargin = 4
)

// Display renders experiment screens on a console.
type Display struct {
	out  io.Writer
	size func() (int, int)
}

// DisplayOption customizes a Display.
type DisplayOption func(*Display)

// WithSize fixes the screen dimensions instead of querying the terminal.
func WithSize(width, height int) DisplayOption {
	return func(d *Display) {
		d.size = func() (int, int) { return width, height }
	}
}

// NewDisplay returns a Display writing to out.
func NewDisplay(out io.Writer, opts ...DisplayOption) *Display {
	d := &Display{out: out}
	d.size = func() (int, int) { return size(out) }
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Show clears the console and draws screen centred vertically.
func (d *Display) Show(screen experiment.Screen) error {
	width, height := d.size()
	lines := d.layout(screen, width)

	var b strings.Builder
	b.WriteString(ansiClear)
	if pad := (height - len(lines)) / 2; pad > 0 {
		b.WriteString(strings.Repeat(lineBreak, pad))
	}
	b.WriteString(strings.Join(lines, lineBreak))
	return d.write(b.String())
}

// Clear blanks the console.
func (d *Display) Clear() error {
	return d.write(ansiClear)
}

func (d *Display) layout(screen experiment.Screen, width int) []string {
	wrap, margin := width, ""
	if screen.Align == experiment.AlignLeft {
		wrap = max(width-2*leftMargin, 20)
		margin = strings.Repeat(" ", leftMargin)
	}

	var lines []string
	for _, line := range wrapLines(screen.Text, wrap) {
		line = style(line, screen.Size)
		if screen.Align == experiment.AlignLeft {
			if line != "" {
				line = margin + line
			}
			lines = append(lines, line)
			continue
		}
		lines = append(lines, strings.TrimRight(text.AlignCenter.Apply(line, width), " "))
	}
	return lines
}

// wrapLines soft-wraps each line of body on its own so explicit line breaks
// survive.
func wrapLines(body string, width int) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " ")
		if line == "" {
			out = append(out, "")
			continue
		}
		for _, wrapped := range strings.Split(text.WrapSoft(line, width), "\n") {
			out = append(out, strings.TrimRight(wrapped, " "))
		}
	}
	return out
}

func style(line string, size experiment.TextSize) string {
	if strings.TrimSpace(line) == "" {
		return line
	}
	switch size {
	case experiment.SizeLarge:
		return text.Bold.Sprint(line)
	case experiment.SizeSmall:
		return text.Faint.Sprint(line)
	default:
		return line
	}
}

func (d *Display) write(payload string) error {
	if _, err := io.WriteString(d.out, payload); err != nil {
		return faults.Wrap(faults.ErrExternalTool, "terminal", "display", fmt.Sprintf("write %d bytes", len(payload)), err)
	}
	return nil
}
