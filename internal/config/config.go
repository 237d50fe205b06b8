package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StimuliDir  string `toml:"stimuli_dir"`
	OutputDir   string `toml:"output_dir"`
	FallbackDir string `toml:"fallback_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
}

// Stimuli describes the condition folder layout below Paths.StimuliDir.
// Relative folder names are resolved against StimuliDir.
type Stimuli struct {
	Extensions   []string `toml:"extensions"`
	RealEasy     string   `toml:"real_easy"`
	RealHard     string   `toml:"real_hard"`
	FakeEasy     string   `toml:"fake_easy"`
	FakeHard     string   `toml:"fake_hard"`
	PracticeReal string   `toml:"practice_real"`
	PracticeFake string   `toml:"practice_fake"`
}

// Timing holds the fixed presentation pauses, in seconds.
type Timing struct {
	FixationSeconds       float64 `toml:"fixation_seconds"`
	PostAudioPauseSeconds float64 `toml:"post_audio_pause_seconds"`
	InterTrialSeconds     float64 `toml:"inter_trial_seconds"`
	WelcomeSeconds        float64 `toml:"welcome_seconds"`
}

// Audio names the external binaries used for playback and probing.
type Audio struct {
	Player string `toml:"player"`
	Probe  string `toml:"probe"`
	FFmpeg string `toml:"ffmpeg"`
}

// Experiment contains session behaviour switches.
type Experiment struct {
	// OnExtractionError is either "skip_trial" or "abort_session".
	OnExtractionError string `toml:"on_extraction_error"`
	PracticeEnabled   bool   `toml:"practice_enabled"`
	WriteXLSX         bool   `toml:"write_xlsx"`
	ArchiveEnabled    bool   `toml:"archive_enabled"`
	FeatureCache      bool   `toml:"feature_cache"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Extraction failure policies.
const (
	PolicySkipTrial    = "skip_trial"
	PolicyAbortSession = "abort_session"
)

// Config encapsulates all configuration values for voicejudge.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Stimuli    Stimuli    `toml:"stimuli"`
	Timing     Timing     `toml:"timing"`
	Audio      Audio      `toml:"audio"`
	Experiment Experiment `toml:"experiment"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voicejudge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voicejudge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. The output directory
// is created lazily by the result writer so a failure there can fall back.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ArchivePath returns the SQLite session archive location.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Paths.StateDir, "voicejudge.db")
}

// LockPath returns the station lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "voicejudge.lock")
}

// Fixation returns the fixation cross duration.
func (c *Config) Fixation() time.Duration { return seconds(c.Timing.FixationSeconds) }

// PostAudioPause returns the blank pause between playback and the response prompt.
func (c *Config) PostAudioPause() time.Duration { return seconds(c.Timing.PostAudioPauseSeconds) }

// InterTrial returns the pause after a completed trial.
func (c *Config) InterTrial() time.Duration { return seconds(c.Timing.InterTrialSeconds) }

// Welcome returns how long the welcome screen stays up.
func (c *Config) Welcome() time.Duration { return seconds(c.Timing.WelcomeSeconds) }

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
// A non-empty stimuliDir replaces the sample's paths.stimuli_dir.
func CreateSample(path, stimuliDir string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	content := sampleConfig
	if dir := strings.TrimSpace(stimuliDir); dir != "" {
		content = strings.Replace(content, `stimuli_dir = "stimuli"`, "stimuli_dir = "+strconv.Quote(dir), 1)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
