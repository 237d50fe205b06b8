package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleTimeLayout keeps operator lines short; the JSON log file carries the
// full timestamp.
const consoleTimeLayout = "15:04:05"

// shortSessionLen is how much of a session UUID the console shows.
const shortSessionLen = 8

// consoleHandler renders one line per record:
//
//	14:05:09 INFO  runner [1f0c2a9e main #12]: trial complete rt=1.42
//
// Session, phase and trial fields form the bracketed subject instead of
// trailing key=value pairs.
type consoleHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]field, 0, record.NumAttrs()+len(h.attrs))
	flatten(&fields, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flatten(&fields, h.groups, []slog.Attr{attr})
		return true
	})

	var component string
	var subject subject
	rest := fields[:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = f.value.String()
		case FieldSessionID:
			subject.session = f.value.String()
		case FieldPhase:
			subject.phase = f.value.String()
		case FieldTrial:
			subject.trial = f.value.String()
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var buf bytes.Buffer
	buf.Grow(96 + len(rest)*24)
	buf.WriteString(ts.Local().Format(consoleTimeLayout))
	fmt.Fprintf(&buf, " %-5s ", levelLabel(record.Level))
	if component != "" {
		buf.WriteString(component)
	}
	if s := subject.String(); s != "" {
		if component != "" {
			buf.WriteByte(' ')
		}
		buf.WriteString(s)
	}
	if component != "" || !subject.empty() {
		buf.WriteString(": ")
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}
	if h.addSource {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range rest {
		if f.key == "" {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(f.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

type subject struct {
	session, phase, trial string
}

func (s subject) empty() bool {
	return s.session == "" && s.phase == "" && s.trial == ""
}

func (s subject) String() string {
	if s.empty() {
		return ""
	}
	parts := make([]string, 0, 3)
	if s.session != "" {
		id := s.session
		if len(id) > shortSessionLen {
			id = id[:shortSessionLen]
		}
		parts = append(parts, id)
	}
	if s.phase != "" {
		parts = append(parts, s.phase)
	}
	if s.trial != "" {
		parts = append(parts, "#"+s.trial)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

type field struct {
	key   string
	value slog.Value
}

func flatten(dst *[]field, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Equal(slog.Attr{}) {
			continue
		}
		attr.Value = attr.Value.Resolve()
		if attr.Value.Kind() == slog.KindGroup {
			next := prefix
			if attr.Key != "" {
				next = append(append([]string(nil), prefix...), attr.Key)
			}
			flatten(dst, next, attr.Value.Group())
			continue
		}
		key := attr.Key
		if len(prefix) > 0 && key != "" {
			key = strings.Join(prefix, ".") + "." + key
		}
		*dst = append(*dst, field{key: key, value: attr.Value})
	}
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', 6, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Local().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
