package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"voicejudge/internal/config"
)

// FileName is the name of the session log inside the configured log directory.
const FileName = "voicejudge.log"

// Options describes logger construction parameters.
type Options struct {
	Level string
	// Format selects the console rendering: "console" or "json".
	Format string
	// Console receives operator-facing lines. Nil keeps the console silent.
	Console io.Writer
	// FilePath, when set, receives every record as a JSON line regardless of
	// Format so sessions can be audited afterwards.
	FilePath    string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	var handlers []slog.Handler
	if opts.Console != nil {
		switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
		case "", "console":
			handlers = append(handlers, newConsoleHandler(opts.Console, levelVar, addSource))
		case "json":
			handlers = append(handlers, newJSONHandler(opts.Console, levelVar, addSource))
		default:
			return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
		}
	}
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, newJSONHandler(file, levelVar, addSource))
	}

	switch len(handlers) {
	case 0:
		return NewNop(), nil
	case 1:
		return slog.New(handlers[0]), nil
	default:
		return slog.New(teeHandler(handlers)), nil
	}
}

// NewFromConfig creates a logger using application config defaults. When the
// terminal hosts the participant screen, pass quietConsole to keep log lines
// out of it; they still reach the log file.
func NewFromConfig(cfg *config.Config, quietConsole bool) (*slog.Logger, error) {
	opts := Options{Level: "info", Format: "console"}
	if !quietConsole {
		opts.Console = os.Stderr
	}
	if cfg == nil {
		return New(opts)
	}
	opts.Level = cfg.Logging.Level
	opts.Format = cfg.Logging.Format
	if cfg.Paths.LogDir != "" {
		opts.FilePath = filepath.Join(cfg.Paths.LogDir, FileName)
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}
