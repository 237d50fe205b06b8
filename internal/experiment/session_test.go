package experiment

import (
	"errors"
	"testing"
	"time"

	"voicejudge/internal/faults"
	"voicejudge/internal/stimuli"
)

func TestScore(t *testing.T) {
	cases := []struct {
		response, actual stimuli.Authenticity
		want             int
	}{
		{stimuli.Real, stimuli.Real, 1},
		{stimuli.Fake, stimuli.Fake, 1},
		{stimuli.Real, stimuli.Fake, 0},
		{stimuli.Fake, stimuli.Real, 0},
	}
	for _, tc := range cases {
		if got := Score(tc.response, tc.actual); got != tc.want {
			t.Fatalf("Score(%s, %s) = %d, want %d", tc.response, tc.actual, got, tc.want)
		}
	}
}

func TestAccuracy(t *testing.T) {
	results := []TrialResult{{Correct: 1}, {Correct: 0}, {Correct: 1}, {Correct: 1}}
	if got := Accuracy(results); got != 75 {
		t.Fatalf("Accuracy = %v, want 75", got)
	}
	if got := Accuracy(nil); got != 0 {
		t.Fatalf("Accuracy(nil) = %v, want 0", got)
	}
}

func TestSessionResultsAreCopies(t *testing.T) {
	session := NewSession(testParticipant(), mainTrials(1), time.Now())
	session.Record(TrialResult{Index: 1, Correct: 1})
	results := session.Results()
	results[0].Index = 99
	if session.Results()[0].Index != 1 {
		t.Fatal("Results exposed internal storage")
	}
	if session.CorrectCount() != 1 {
		t.Fatalf("CorrectCount = %d", session.CorrectCount())
	}
}

func TestNewSessionAssignsDistinctIDs(t *testing.T) {
	a := NewSession(testParticipant(), nil, time.Now())
	b := NewSession(testParticipant(), nil, time.Now())
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct IDs, got %q and %q", a.ID, b.ID)
	}
}

func TestParticipantValidate(t *testing.T) {
	if err := testParticipant().Validate(); err != nil {
		t.Fatalf("valid participant rejected: %v", err)
	}
	bad := []func(*Participant){
		func(p *Participant) { p.ID = "  " },
		func(p *Participant) { p.Age = 0 },
		func(p *Participant) { p.Age = 200 },
		func(p *Participant) { p.Gender = "female" },
		func(p *Participant) { p.Nativity = "Maybe" },
		func(p *Participant) { p.Familiarity = "Expert" },
	}
	for i, mutate := range bad {
		p := testParticipant()
		mutate(&p)
		if err := p.Validate(); !errors.Is(err, faults.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestRatingKeys(t *testing.T) {
	for i, k := range RatingKeys {
		if k.Rating() != i+1 {
			t.Fatalf("key %q rating %d", k, k.Rating())
		}
	}
	if KeyReal.Rating() != 0 || Key("6").Rating() != 0 {
		t.Fatal("non-rating keys must rate 0")
	}
}
