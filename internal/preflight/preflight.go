package preflight

import (
	"os"
	"path/filepath"
	"strings"

	"voicejudge/internal/config"
	"voicejudge/internal/deps"
)

// Result reports the outcome of a single preflight check. A failed optional
// check is a warning.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Options selects station-dependent checks.
type Options struct {
	// RequireTerminal makes the interactive terminal check mandatory.
	RequireTerminal bool
	// MinFreeBytes is the free space required in the output directory.
	MinFreeBytes uint64
}

// DefaultMinFreeBytes is the free space required when Options leaves it zero.
const DefaultMinFreeBytes = 64 << 20

// RunAll executes every preflight check for the given config.
func RunAll(cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}
	minFree := opts.MinFreeBytes
	if minFree == 0 {
		minFree = DefaultMinFreeBytes
	}

	var results []Result
	results = append(results, CheckStimuli(cfg)...)
	results = append(results, CheckAudioTools(cfg)...)
	results = append(results, CheckFreeSpace("Output directory", cfg.Paths.OutputDir, minFree))
	if fallback := strings.TrimSpace(cfg.Paths.FallbackDir); fallback != "" {
		check := CheckFreeSpace("Fallback directory", fallback, minFree)
		check.Optional = true
		results = append(results, check)
	}
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	terminal := CheckTerminal(os.Stdin, os.Stdout)
	terminal.Optional = !opts.RequireTerminal
	results = append(results, terminal)
	return results
}

// Failures returns the failed checks that are not optional.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// CheckAudioTools verifies the playback and inspection binaries. ffmpeg and
// ffprobe are only required when a configured extension cannot be decoded
// natively.
func CheckAudioTools(cfg *config.Config) []Result {
	external := needsExternalDecoder(cfg.Stimuli.Extensions)
	requirements := []deps.Requirement{
		{
			Name:        "Audio player",
			Command:     cfg.Audio.Player,
			Description: "Required for stimulus playback",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Audio.Probe,
			Description: "Used for stimulus inspection",
			Optional:    !external,
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Audio.FFmpeg,
			Description: "Used to decode formats other than WAV and FLAC",
			Optional:    !external,
		},
	}
	statuses := deps.CheckBinaries(requirements)
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   status.Summary(),
		})
	}
	return results
}

func needsExternalDecoder(extensions []string) bool {
	for _, ext := range extensions {
		switch strings.ToLower(strings.TrimSpace(ext)) {
		case ".wav", ".wave", ".flac":
		default:
			return true
		}
	}
	return false
}

// nearestExisting walks up from path to the closest directory that exists.
func nearestExisting(path string) string {
	current := filepath.Clean(path)
	for {
		if info, err := os.Stat(current); err == nil && info.IsDir() {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}
