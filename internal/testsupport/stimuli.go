package testsupport

import (
	"fmt"
	"path/filepath"
	"testing"

	"voicejudge/internal/config"
)

// StimulusCounts sets how many WAV files to create per folder.
type StimulusCounts struct {
	RealEasy, RealHard, FakeEasy, FakeHard int
	PracticeReal, PracticeFake             int
}

// WriteStimuli populates the config's stimulus folders with synthetic WAV
// files named <condition>_<n>.wav. Each file uses a slightly different F0 so
// feature vectors differ between files.
func WriteStimuli(t testing.TB, cfg *config.Config, counts StimulusCounts) {
	t.Helper()
	folders := []struct {
		name  string
		dir   string
		count int
	}{
		{"real_easy", cfg.Stimuli.RealEasy, counts.RealEasy},
		{"real_hard", cfg.Stimuli.RealHard, counts.RealHard},
		{"fake_easy", cfg.Stimuli.FakeEasy, counts.FakeEasy},
		{"fake_hard", cfg.Stimuli.FakeHard, counts.FakeHard},
		{"practice_real", cfg.Stimuli.PracticeReal, counts.PracticeReal},
		{"practice_fake", cfg.Stimuli.PracticeFake, counts.PracticeFake},
	}
	for fi, folder := range folders {
		for i := 0; i < folder.count; i++ {
			voice := DefaultVoice()
			voice.Seconds = 0.3
			voice.F0 = 120 + float64(fi*10+i*3)
			WriteWAV(t, filepath.Join(folder.dir, fmt.Sprintf("%s_%d.wav", folder.name, i+1)), voice)
		}
	}
}
