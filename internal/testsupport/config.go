package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"voicejudge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Stimulus folders point at <base>/stimuli with the default layout, WAV is the
// recognized extension, and all presentation pauses are zero.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	stimuli := filepath.Join(base, "stimuli")
	cfgVal.Paths.StimuliDir = stimuli
	cfgVal.Paths.OutputDir = filepath.Join(base, "logfiles")
	cfgVal.Paths.FallbackDir = filepath.Join(base, "fallback")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Stimuli.Extensions = []string{".wav"}
	cfgVal.Stimuli.RealEasy = filepath.Join(stimuli, "real", "easy")
	cfgVal.Stimuli.RealHard = filepath.Join(stimuli, "real", "hard")
	cfgVal.Stimuli.FakeEasy = filepath.Join(stimuli, "fake", "easy")
	cfgVal.Stimuli.FakeHard = filepath.Join(stimuli, "fake", "hard")
	cfgVal.Stimuli.PracticeReal = filepath.Join(stimuli, "practice_real")
	cfgVal.Stimuli.PracticeFake = filepath.Join(stimuli, "practice_fake")
	cfgVal.Timing = config.Timing{}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithExtractionPolicy overrides experiment.on_extraction_error.
func WithExtractionPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Experiment.OnExtractionError = policy
	}
}

// WithoutPractice disables the practice block.
func WithoutPractice() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Experiment.PracticeEnabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external audio
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffplay", "ffprobe", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StimuliDir)
}
