package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateStimuli(); err != nil {
		return err
	}
	if err := c.validateExperiment(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTiming() error {
	return ensureNonNegativeMap(map[string]float64{
		"timing.fixation_seconds":         c.Timing.FixationSeconds,
		"timing.post_audio_pause_seconds": c.Timing.PostAudioPauseSeconds,
		"timing.inter_trial_seconds":      c.Timing.InterTrialSeconds,
		"timing.welcome_seconds":          c.Timing.WelcomeSeconds,
	})
}

func (c *Config) validateStimuli() error {
	if len(c.Stimuli.Extensions) == 0 {
		return errors.New("stimuli.extensions must include at least one extension")
	}
	seen := map[string]string{}
	for key, dir := range map[string]string{
		"stimuli.real_easy": c.Stimuli.RealEasy,
		"stimuli.real_hard": c.Stimuli.RealHard,
		"stimuli.fake_easy": c.Stimuli.FakeEasy,
		"stimuli.fake_hard": c.Stimuli.FakeHard,
	} {
		if other, ok := seen[dir]; ok {
			return fmt.Errorf("%s and %s must point to different folders", other, key)
		}
		seen[dir] = key
	}
	return nil
}

func (c *Config) validateExperiment() error {
	switch c.Experiment.OnExtractionError {
	case PolicySkipTrial, PolicyAbortSession:
		return nil
	default:
		return fmt.Errorf("experiment.on_extraction_error must be %q or %q, got %q",
			PolicySkipTrial, PolicyAbortSession, c.Experiment.OnExtractionError)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensureNonNegativeMap(values map[string]float64) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
