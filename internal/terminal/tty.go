package terminal

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// IsTTY reports whether stream is attached to an interactive terminal.
func IsTTY(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// size returns the terminal dimensions of w, falling back to 80x24 when w is
// not a terminal.
func size(w io.Writer) (int, int) {
	file, ok := w.(*os.File)
	if !ok || !IsTTY(file) {
		return defaultWidth, defaultHeight
	}
	width, height, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return defaultWidth, defaultHeight
	}
	return width, height
}
