package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/faults"
	"voicejudge/internal/logging"
	"voicejudge/internal/stimuli"
)

// featureColumns are the descriptors shown in the table view.
var featureColumns = []string{"F0_mean", "Intensity_mean", "F1", "F2", "F3", "Jitter", "Shimmer", "HNR"}

type featureRow struct {
	path     string
	features acoustics.Features
	err      error
}

func newFeaturesCommand(ctx *commandContext) *cobra.Command {
	var asCSV bool
	var noCache bool
	var clearCache bool

	cmd := &cobra.Command{
		Use:   "features <file|dir>...",
		Short: "Extract acoustic features from audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}
			files, err := collectAudioFiles(args, cfg.Stimuli.Extensions)
			if err != nil {
				return err
			}

			store := openArchive(cfg, logger)
			if store != nil {
				defer store.Close()
				if clearCache {
					removed, err := store.ClearFeatures(cmd.Context())
					if err != nil {
						return err
					}
					logger.Info("feature cache cleared", logging.Int("entries", int(removed)))
				}
			}
			extractor := newExtractor(cfg, store, !noCache, logger)

			rows := make([]featureRow, 0, len(files))
			failed := 0
			for _, path := range files {
				features, err := extractor.Extract(cmd.Context(), path)
				if err != nil {
					if errors.Is(err, cmd.Context().Err()) && cmd.Context().Err() != nil {
						return faults.Wrap(faults.ErrCancelled, "cli", "features", "interrupted", err)
					}
					failed++
				}
				rows = append(rows, featureRow{path: path, features: features, err: err})
			}

			out := cmd.OutOrStdout()
			if asCSV {
				if err := writeFeatureCSV(out, rows); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, renderFeatureTable(rows))
			}
			if failed > 0 {
				return faults.Wrap(faults.ErrFeatureExtraction, "cli", "features", fmt.Sprintf("%d of %d files failed", failed, len(rows)), nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write all descriptors as CSV")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the feature cache")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Empty the feature cache before extracting")
	return cmd
}

// collectAudioFiles expands directories to their audio files, sorted by name.
// Files named explicitly are kept whatever their extension.
func collectAudioFiles(args []string, extensions []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "cli", "features", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, faults.Wrap(faults.ErrValidation, "cli", "features", arg, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !stimuli.HasExtension(entry.Name(), extensions) {
				continue
			}
			found = append(found, filepath.Join(arg, entry.Name()))
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, faults.Wrap(faults.ErrValidation, "cli", "features", "no audio files found", nil)
	}
	return files, nil
}

func renderFeatureTable(rows []featureRow) string {
	view := tableView{columns: []column{{"File", alignLeft}}}
	indexes := make([]int, len(featureColumns))
	for i, name := range featureColumns {
		indexes[i] = slices.Index(acoustics.FeatureNames, name)
		view.columns = append(view.columns, column{name, alignRight})
	}

	for _, row := range rows {
		cells := []string{filepath.Base(row.path)}
		if row.err != nil {
			view.addRow(append(cells, "error")...)
			continue
		}
		values := row.features.Values()
		for _, idx := range indexes {
			cells = append(cells, formatFloat(values[idx], 3))
		}
		view.addRow(cells...)
	}
	return view.render()
}

func writeFeatureCSV(w io.Writer, rows []featureRow) error {
	writer := csv.NewWriter(w)
	header := append([]string{"File"}, acoustics.FeatureNames...)
	header = append(header, "Error")
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.path}
		for _, value := range row.features.Values() {
			if row.err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(value, 'f', -1, 64))
		}
		errText := ""
		if row.err != nil {
			errText = row.err.Error()
		}
		record = append(record, errText)
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
