package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnvOverrides()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStimuli(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeExperiment()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnvOverrides() {
	if value, ok := os.LookupEnv("VOICEJUDGE_STIMULI_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StimuliDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("VOICEJUDGE_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("VOICEJUDGE_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = strings.TrimSpace(value)
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StimuliDir) == "" {
		c.Paths.StimuliDir = defaultStimuliDir
	}
	if c.Paths.StimuliDir, err = expandPath(c.Paths.StimuliDir); err != nil {
		return fmt.Errorf("paths.stimuli_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.FallbackDir, err = expandPath(strings.TrimSpace(c.Paths.FallbackDir)); err != nil {
		return fmt.Errorf("paths.fallback_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStimuli() error {
	folders := []struct {
		key   string
		value *string
		def   string
	}{
		{"stimuli.real_easy", &c.Stimuli.RealEasy, defaultRealEasy},
		{"stimuli.real_hard", &c.Stimuli.RealHard, defaultRealHard},
		{"stimuli.fake_easy", &c.Stimuli.FakeEasy, defaultFakeEasy},
		{"stimuli.fake_hard", &c.Stimuli.FakeHard, defaultFakeHard},
		{"stimuli.practice_real", &c.Stimuli.PracticeReal, defaultPracticeReal},
		{"stimuli.practice_fake", &c.Stimuli.PracticeFake, defaultPracticeFake},
	}
	for _, folder := range folders {
		value := strings.TrimSpace(*folder.value)
		if value == "" {
			value = folder.def
		}
		if !filepath.IsAbs(value) && !strings.HasPrefix(value, "~") {
			value = filepath.Join(c.Paths.StimuliDir, value)
		}
		resolved, err := expandPath(value)
		if err != nil {
			return fmt.Errorf("%s: %w", folder.key, err)
		}
		*folder.value = resolved
	}

	exts := make([]string, 0, len(c.Stimuli.Extensions))
	seen := make(map[string]struct{}, len(c.Stimuli.Extensions))
	for _, ext := range c.Stimuli.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = []string{defaultExtension}
	}
	c.Stimuli.Extensions = exts
	return nil
}

func (c *Config) normalizeAudio() {
	c.Audio.Player = strings.TrimSpace(c.Audio.Player)
	if c.Audio.Player == "" {
		c.Audio.Player = defaultPlayer
	}
	c.Audio.Probe = strings.TrimSpace(c.Audio.Probe)
	if c.Audio.Probe == "" {
		c.Audio.Probe = defaultProbe
	}
	c.Audio.FFmpeg = strings.TrimSpace(c.Audio.FFmpeg)
	if c.Audio.FFmpeg == "" {
		c.Audio.FFmpeg = defaultFFmpeg
	}
}

func (c *Config) normalizeExperiment() {
	policy := strings.ToLower(strings.TrimSpace(c.Experiment.OnExtractionError))
	policy = strings.ReplaceAll(policy, "-", "_")
	if policy == "" {
		policy = PolicySkipTrial
	}
	c.Experiment.OnExtractionError = policy
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
