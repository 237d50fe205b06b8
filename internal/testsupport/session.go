package testsupport

import (
	"fmt"
	"math"
	"time"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/experiment"
	"voicejudge/internal/stimuli"
)

// SessionStart is the start time of sessions built by NewSession.
var SessionStart = time.Date(2026, 3, 2, 14, 5, 0, 0, time.UTC)

// TestParticipant returns a participant that passes validation.
func TestParticipant() experiment.Participant {
	return experiment.Participant{
		ID:          "P01",
		Age:         27,
		Gender:      "Female",
		Nativity:    "No",
		Familiarity: "Somewhat familiar",
	}
}

// NewSession builds a finished session with n results cycling through the
// main conditions. Odd-numbered trials are answered correctly, and the
// shimmer of every result is undefined.
func NewSession(n int) *experiment.Session {
	var trials []stimuli.Trial
	for i := range n {
		condition := stimuli.MainConditions[i%len(stimuli.MainConditions)]
		name := fmt.Sprintf("%s_%02d.wav", condition, i+1)
		trials = append(trials, stimuli.Trial{
			Path:         "/stimuli/" + string(condition) + "/" + name,
			Filename:     name,
			Condition:    condition,
			Authenticity: condition.Authenticity(),
			Difficulty:   condition.Difficulty(),
		})
	}

	session := experiment.NewSession(TestParticipant(), trials, SessionStart)
	for i, trial := range trials {
		response := trial.Authenticity
		if i%2 == 1 {
			response = opposite(response)
		}
		features := acoustics.Features{
			F0Mean:            150 + float64(i),
			F0Std:             2.5,
			IntensityMean:     70,
			IntensityStd:      4,
			F1:                500,
			F2:                1500,
			F3:                2500,
			Jitter:            0.01,
			Shimmer:           math.NaN(),
			HNR:               18.5,
			SpectralCentroid:  900,
			SpectralBandwidth: 650,
			SpectralRolloff:   2100,
			ZeroCrossingRate:  310,
		}
		session.Record(experiment.TrialResult{
			Index:        i + 1,
			Trial:        trial,
			Response:     response,
			ResponseTime: 0.5 + float64(i)*0.25,
			Confidence:   i%5 + 1,
			Naturalness:  (i+2)%5 + 1,
			Correct:      experiment.Score(response, trial.Authenticity),
			Features:     features,
		})
	}
	session.EndedAt = SessionStart.Add(10 * time.Minute)
	return session
}

func opposite(a stimuli.Authenticity) stimuli.Authenticity {
	if a == stimuli.Real {
		return stimuli.Fake
	}
	return stimuli.Real
}
