package results

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voicejudge/internal/config"
	"voicejudge/internal/experiment"
	"voicejudge/internal/faults"
	"voicejudge/internal/logging"
	"voicejudge/internal/textutil"
)

const timestampLayout = "2006-01-02_1504"

// Written describes the files produced for one session.
type Written struct {
	CSV      string
	XLSX     string
	Rows     int
	Fallback bool
}

// Persister writes session logfiles.
type Persister struct {
	outputDir   string
	fallbackDir string
	writeXLSX   bool
	now         func() time.Time
	logger      *slog.Logger
}

// Option customizes a Persister.
type Option func(*Persister)

// WithClock overrides the time used when a session has no end time.
func WithClock(now func() time.Time) Option {
	return func(p *Persister) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPersister builds a persister from the configured directories.
func NewPersister(cfg *config.Config, logger *slog.Logger, opts ...Option) *Persister {
	p := &Persister{
		outputDir:   cfg.Paths.OutputDir,
		fallbackDir: cfg.Paths.FallbackDir,
		writeXLSX:   cfg.Experiment.WriteXLSX,
		now:         time.Now,
		logger:      logging.NewComponentLogger(logger, "results"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FileName returns the logfile name for a participant and timestamp.
func FileName(participantID string, at time.Time) string {
	id := textutil.SanitizeFileName(participantID)
	if id == "" {
		id = "unknown"
	}
	return fmt.Sprintf("logfile_%s_%s.csv", id, at.Format(timestampLayout))
}

// Save implements experiment.Sink.
func (p *Persister) Save(_ context.Context, session *experiment.Session) error {
	written, err := p.Write(session)
	if err != nil {
		logging.ErrorWithContext(p.logger, "failed to write logfile", "logfile_write_failed",
			logging.String("participant_id", session.Participant.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check output_dir and fallback_dir permissions"),
		)
		return err
	}
	attrs := []logging.Attr{
		logging.String("path", written.CSV),
		logging.Int("rows", written.Rows),
		logging.Float64("accuracy", experiment.Accuracy(session.Results())),
		logging.Bool("aborted", session.Aborted),
	}
	if written.XLSX != "" {
		attrs = append(attrs, logging.String("xlsx", written.XLSX))
	}
	if written.Fallback {
		logging.WarnWithContext(p.logger, "logfile written to fallback directory", "logfile_fallback",
			append(attrs,
				logging.String(logging.FieldErrorHint, "check output_dir permissions"),
				logging.String(logging.FieldImpact, "data saved outside the usual output directory"),
			)...,
		)
		return nil
	}
	p.logger.Info("logfile written", logging.Args(attrs...)...)
	return nil
}

// Write renders session to CSV in the output directory, retrying once in the
// fallback directory. A session with no results still produces a header-only
// file.
func (p *Persister) Write(session *experiment.Session) (Written, error) {
	if session == nil {
		return Written{}, faults.Wrap(faults.ErrPersistence, "results", "write", "no session", nil)
	}
	at := session.EndedAt
	if at.IsZero() {
		at = p.now()
	}
	name := FileName(session.Participant.ID, at)
	records := Records(session)

	written := Written{Rows: len(records) - 1}
	path, primaryErr := writeCSV(p.outputDir, name, records)
	if primaryErr != nil {
		fallback := strings.TrimSpace(p.fallbackDir)
		if fallback == "" || filepath.Clean(fallback) == filepath.Clean(p.outputDir) {
			return Written{}, faults.Wrap(faults.ErrPersistence, "results", "write", "write logfile", primaryErr)
		}
		p.logger.Debug("primary logfile write failed; retrying in fallback directory",
			logging.String("output_dir", p.outputDir),
			logging.String("fallback_dir", fallback),
			logging.Error(primaryErr),
		)
		var fallbackErr error
		path, fallbackErr = writeCSV(fallback, name, records)
		if fallbackErr != nil {
			return Written{}, faults.Wrap(faults.ErrPersistence, "results", "write", "write logfile and fallback", errors.Join(primaryErr, fallbackErr))
		}
		written.Fallback = true
	}
	written.CSV = path

	if p.writeXLSX {
		xlsxPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
		if err := writeXLSX(xlsxPath, session); err != nil {
			logging.WarnWithContext(p.logger, "failed to write spreadsheet copy", "xlsx_write_failed",
				logging.String("path", xlsxPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "CSV logfile is unaffected"),
			)
		} else {
			written.XLSX = xlsxPath
		}
	}
	return written, nil
}

// writeCSV writes records into dir under an unused name derived from name and
// returns the final path. Data lands in a temporary file first so a partial
// write never leaves a truncated logfile behind.
func writeCSV(dir, name string, records [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".logfile-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close csv: %w", err)
	}

	path, err := availablePath(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("publish logfile: %w", err)
	}
	return path, nil
}

// availablePath returns path, or path with a numeric suffix when a logfile of
// the same name already exists.
func availablePath(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	candidate := path
	for i := 2; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
}
