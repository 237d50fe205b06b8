package stimuli

import "fmt"

// Authenticity is the ground-truth label of a stimulus, also used for responses.
type Authenticity string

const (
	Real Authenticity = "real"
	Fake Authenticity = "fake"
)

// Difficulty is the difficulty tier of a main-block stimulus.
type Difficulty string

const (
	Easy Difficulty = "easy"
	Hard Difficulty = "hard"
)

// Condition combines authenticity and difficulty. Practice trials use the
// practice conditions, which carry no difficulty.
type Condition string

const (
	RealEasy     Condition = "real_easy"
	RealHard     Condition = "real_hard"
	FakeEasy     Condition = "fake_easy"
	FakeHard     Condition = "fake_hard"
	PracticeReal Condition = "practice_real"
	PracticeFake Condition = "practice_fake"
)

// MainConditions lists the four conditions of the main block in catalog order.
var MainConditions = []Condition{RealEasy, RealHard, FakeEasy, FakeHard}

// Authenticity returns the ground truth implied by the condition.
func (c Condition) Authenticity() Authenticity {
	switch c {
	case RealEasy, RealHard, PracticeReal:
		return Real
	default:
		return Fake
	}
}

// Difficulty returns the tier of a main condition, or "" for practice.
func (c Condition) Difficulty() Difficulty {
	switch c {
	case RealEasy, FakeEasy:
		return Easy
	case RealHard, FakeHard:
		return Hard
	default:
		return ""
	}
}

// IsPractice reports whether the condition belongs to the practice block.
func (c Condition) IsPractice() bool {
	return c == PracticeReal || c == PracticeFake
}

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	switch c {
	case RealEasy, RealHard, FakeEasy, FakeHard, PracticeReal, PracticeFake:
		return true
	default:
		return false
	}
}

// Trial is one stimulus to be judged.
type Trial struct {
	Path         string
	Filename     string
	Condition    Condition
	Authenticity Authenticity
	Difficulty   Difficulty
}

// Practice reports whether the trial belongs to the practice block.
func (t Trial) Practice() bool {
	return t.Condition.IsPractice()
}

func (t Trial) String() string {
	return fmt.Sprintf("%s (%s)", t.Filename, t.Condition)
}
