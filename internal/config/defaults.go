package config

const (
	defaultStimuliDir        = "stimuli"
	defaultOutputDir         = "logfiles"
	defaultFallbackDir       = "~/.local/share/voicejudge/fallback"
	defaultStateDir          = "~/.local/share/voicejudge"
	defaultLogDir            = "~/.local/share/voicejudge/logs"
	defaultExtension         = ".flac"
	defaultRealEasy          = "real/easy"
	defaultRealHard          = "real/hard"
	defaultFakeEasy          = "fake/easy"
	defaultFakeHard          = "fake/hard"
	defaultPracticeReal      = "practice_real"
	defaultPracticeFake      = "practice_fake"
	defaultFixationSeconds   = 0.5
	defaultPostAudioSeconds  = 0.3
	defaultInterTrialSeconds = 0.5
	defaultWelcomeSeconds    = 2
	defaultPlayer            = "ffplay"
	defaultProbe             = "ffprobe"
	defaultFFmpeg            = "ffmpeg"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StimuliDir:  defaultStimuliDir,
			OutputDir:   defaultOutputDir,
			FallbackDir: defaultFallbackDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Stimuli: Stimuli{
			Extensions:   []string{defaultExtension},
			RealEasy:     defaultRealEasy,
			RealHard:     defaultRealHard,
			FakeEasy:     defaultFakeEasy,
			FakeHard:     defaultFakeHard,
			PracticeReal: defaultPracticeReal,
			PracticeFake: defaultPracticeFake,
		},
		Timing: Timing{
			FixationSeconds:       defaultFixationSeconds,
			PostAudioPauseSeconds: defaultPostAudioSeconds,
			InterTrialSeconds:     defaultInterTrialSeconds,
			WelcomeSeconds:        defaultWelcomeSeconds,
		},
		Audio: Audio{
			Player: defaultPlayer,
			Probe:  defaultProbe,
			FFmpeg: defaultFFmpeg,
		},
		Experiment: Experiment{
			OnExtractionError: PolicySkipTrial,
			PracticeEnabled:   true,
			ArchiveEnabled:    true,
			FeatureCache:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
