package experiment

import (
	"time"

	"github.com/google/uuid"

	"voicejudge/internal/acoustics"
	"voicejudge/internal/stimuli"
)

// TrialResult is the recorded outcome of one completed trial.
type TrialResult struct {
	// Index is the 1-based position of the trial in the shuffled block.
	Index        int
	Trial        stimuli.Trial
	Response     stimuli.Authenticity
	ResponseTime float64
	Confidence   int
	Naturalness  int
	Correct      int
	Features     acoustics.Features
}

// Score returns 1 when the response matches the ground truth, else 0.
func Score(response, actual stimuli.Authenticity) int {
	if response == actual {
		return 1
	}
	return 0
}

// Session is the state of one participant run.
type Session struct {
	ID          string
	Participant Participant
	StartedAt   time.Time
	EndedAt     time.Time
	// Trials is the shuffled main-block order.
	Trials  []stimuli.Trial
	Aborted bool

	results []TrialResult
}

// NewSession starts a session with a fresh identifier.
func NewSession(participant Participant, trials []stimuli.Trial, startedAt time.Time) *Session {
	return &Session{
		ID:          uuid.NewString(),
		Participant: participant,
		StartedAt:   startedAt,
		Trials:      append([]stimuli.Trial(nil), trials...),
	}
}

// Record appends a completed trial.
func (s *Session) Record(result TrialResult) {
	s.results = append(s.results, result)
}

// Results returns a copy of the completed trials in presentation order.
func (s *Session) Results() []TrialResult {
	return append([]TrialResult(nil), s.results...)
}

// CorrectCount returns the number of correct responses recorded so far.
func (s *Session) CorrectCount() int {
	return CorrectCount(s.results)
}

// CorrectCount sums the Correct column.
func CorrectCount(results []TrialResult) int {
	total := 0
	for _, r := range results {
		total += r.Correct
	}
	return total
}

// Accuracy returns the percentage of correct responses, or 0 when there are
// no results.
func Accuracy(results []TrialResult) float64 {
	if len(results) == 0 {
		return 0
	}
	return 100 * float64(CorrectCount(results)) / float64(len(results))
}
