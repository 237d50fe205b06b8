package experiment

import (
	"fmt"
	"slices"
	"strings"

	"voicejudge/internal/faults"
)

// Participant identifies the person taking the session.
type Participant struct {
	ID          string
	Age         int
	Gender      string
	Nativity    string
	Familiarity string
}

// Answer options offered by the participant form.
var (
	GenderOptions      = []string{"Female", "Male", "Other"}
	NativityOptions    = []string{"No", "Yes"}
	FamiliarityOptions = []string{
		"Completely unfamiliar",
		"Unfamiliar",
		"Somewhat familiar",
		"Familiar",
		"Very familiar",
	}
)

// Age bounds accepted by Validate.
const (
	MinAge = 1
	MaxAge = 120
)

// Validate checks that every field holds an offered answer.
func (p Participant) Validate() error {
	var problems []string
	if strings.TrimSpace(p.ID) == "" {
		problems = append(problems, "participant ID is required")
	}
	if p.Age < MinAge || p.Age > MaxAge {
		problems = append(problems, fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge))
	}
	if !slices.Contains(GenderOptions, p.Gender) {
		problems = append(problems, fmt.Sprintf("gender %q is not an offered option", p.Gender))
	}
	if !slices.Contains(NativityOptions, p.Nativity) {
		problems = append(problems, fmt.Sprintf("nativity %q is not an offered option", p.Nativity))
	}
	if !slices.Contains(FamiliarityOptions, p.Familiarity) {
		problems = append(problems, fmt.Sprintf("familiarity %q is not an offered option", p.Familiarity))
	}
	if len(problems) > 0 {
		return faults.Wrap(faults.ErrValidation, "experiment", "participant", strings.Join(problems, "; "), nil)
	}
	return nil
}
