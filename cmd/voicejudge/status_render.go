package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"voicejudge/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 24
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// checkKind maps a preflight result onto a status. Optional checks that fail
// are warnings.
func checkKind(result preflight.Result) statusKind {
	switch {
	case result.Passed:
		return statusOK
	case result.Optional:
		return statusWarn
	default:
		return statusError
	}
}

// checkLines renders a summary line followed by one line per check.
func checkLines(results []preflight.Result, colorize bool) []string {
	failed := len(preflight.Failures(results))
	summaryKind := statusOK
	summary := fmt.Sprintf("%d checks passed", len(results))
	if failed > 0 {
		summaryKind = statusError
		summary = fmt.Sprintf("%d of %d required checks failed", failed, len(results))
	}
	lines := []string{renderStatusLine("Summary", summaryKind, summary, colorize)}
	for _, result := range results {
		detail := result.Detail
		if result.Passed && detail == "" {
			detail = "Ready"
		}
		lines = append(lines, renderStatusLine(result.Name, checkKind(result), detail, colorize))
	}
	return lines
}

func renderChecks(w io.Writer, results []preflight.Result, colorize bool) {
	for _, line := range renderSectionHeader("Station checks", colorize) {
		fmt.Fprintln(w, line)
	}
	for _, line := range checkLines(results, colorize) {
		fmt.Fprintln(w, line)
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
