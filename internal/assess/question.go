package assess

import (
	"fmt"
	"slices"
)

// Kind describes how a question is presented. It does not change scoring.
type Kind string

const (
	KindMCQ      Kind = "mcq"
	KindScenario Kind = "scenario"
	KindMatching Kind = "matching"
)

// Question is a single multiple-choice item as authored.
// Options are in canonical order and CorrectIndex points into them.
type Question struct {
	ID           string   `json:"id" yaml:"id"`
	Kind         Kind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Scenario     string   `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"correct_index" yaml:"correct_index"`
	Feedback     string   `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// Validate checks the invariants the engine relies on.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question %q has %d options, need at least 2", ErrInvalidQuestion, q.ID, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: question %q correct index %d out of range [0,%d)",
			ErrInvalidQuestion, q.ID, q.CorrectIndex, len(q.Options))
	}
	return nil
}

// CorrectAnswer returns the text of the correct option.
func (q Question) CorrectAnswer() string {
	return q.Options[q.CorrectIndex]
}

// ShuffledQuestion is a question with its options permuted for one session.
type ShuffledQuestion struct {
	Question        Question
	Options         []string
	OriginalIndices []int
}

func shuffleQuestion(src Rand, q Question) ShuffledQuestion {
	opts, idx := Shuffle(src, q.Options)
	return ShuffledQuestion{Question: q, Options: opts, OriginalIndices: idx}
}

// CorrectIndex is the shuffled position of the correct option.
func (sq ShuffledQuestion) CorrectIndex() int {
	return slices.Index(sq.OriginalIndices, sq.Question.CorrectIndex)
}

// IsCorrect reports whether shuffled position k is the correct option.
func (sq ShuffledQuestion) IsCorrect(k int) bool {
	return k == sq.CorrectIndex()
}

// Label returns the letter shown next to shuffled position k.
func Label(k int) string {
	if k < 0 || k >= 26 {
		return fmt.Sprint(k + 1)
	}
	return string(rune('A' + k))
}

// ValidateQuestions checks a question list the way New does.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidQuestion, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}
