// Package assess implements the multiple-choice assessment engine used by
// every quiz widget: options are shuffled once per attempt, answers are
// scored against the shuffled position of the correct option, and the
// attempt moves question by question until it completes.
//
// A Session is not safe for concurrent use. Hosts that share one across
// goroutines must serialize access.
package assess

import (
	"errors"
	"slices"
)

var (
	// ErrNoQuestions is returned when a session is started with an empty list.
	ErrNoQuestions = errors.New("assess: no questions")
	// ErrInvalidQuestion wraps a question that breaks the model invariants.
	ErrInvalidQuestion = errors.New("assess: invalid question")
	// ErrNoSelection is returned by Submit when nothing is selected.
	ErrNoSelection = errors.New("assess: submit without a selection")
	// ErrNotCompleted is returned by Result before the last question is advanced past.
	ErrNotCompleted = errors.New("assess: session not completed")
)

// State is the coarse position of a session in its lifecycle.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Session is one attempt at an ordered list of questions.
type Session struct {
	questions []Question
	src       Rand

	shuffled  []ShuffledQuestion
	current   int
	selected  int
	hasSelect bool
	answered  bool
	history   []bool
	score     int
	completed bool
}

// New validates questions and starts a session with freshly shuffled options.
// A nil src uses the global generator.
func New(questions []Question, src Rand) (*Session, error) {
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	s := &Session{questions: questions, src: src}
	s.Restart()
	return s, nil
}

// Restart discards all attempt state and draws a new shuffle for every question.
func (s *Session) Restart() {
	s.shuffled = make([]ShuffledQuestion, len(s.questions))
	for i, q := range s.questions {
		s.shuffled[i] = shuffleQuestion(s.src, q)
	}
	s.current = 0
	s.selected = 0
	s.hasSelect = false
	s.answered = false
	s.history = nil
	s.score = 0
	s.completed = false
}

// Select records the option at shuffled position k for the current question.
// It is ignored once the answer is submitted, after completion, or when k is
// not a valid position.
func (s *Session) Select(k int) {
	if s.completed || s.answered {
		return
	}
	if k < 0 || k >= len(s.shuffled[s.current].Options) {
		return
	}
	s.selected = k
	s.hasSelect = true
}

// Submit scores the current selection and reveals feedback.
// It returns ErrNoSelection if nothing is selected. Submitting twice, or
// after completion, does nothing and reports false.
func (s *Session) Submit() (bool, error) {
	if s.completed || s.answered {
		return false, nil
	}
	if !s.hasSelect {
		return false, ErrNoSelection
	}
	correct := s.shuffled[s.current].IsCorrect(s.selected)
	s.history = append(s.history, correct)
	if correct {
		s.score++
	}
	s.answered = true
	return correct, nil
}

// Advance moves past an answered question. On the last question it completes
// the session and leaves the current index where it is. Before Submit it does
// nothing.
func (s *Session) Advance() {
	if s.completed || !s.answered {
		return
	}
	if s.current == len(s.shuffled)-1 {
		s.completed = true
		return
	}
	s.current++
	s.selected = 0
	s.hasSelect = false
	s.answered = false
}

// Questions returns the questions the session was started with.
func (s *Session) Questions() []Question { return s.questions }

// Current returns the shuffled form of the question being shown.
func (s *Session) Current() ShuffledQuestion { return s.shuffled[s.current] }

// Shuffled returns the shuffled form of question i.
func (s *Session) Shuffled(i int) ShuffledQuestion { return s.shuffled[i] }

// CurrentIndex is the zero-based position of the current question.
func (s *Session) CurrentIndex() int { return s.current }

// Selected returns the pending selection, if any.
func (s *Session) Selected() (int, bool) { return s.selected, s.hasSelect }

// Answered reports whether the current question has been submitted.
func (s *Session) Answered() bool { return s.answered }

// Completed reports whether the session has advanced past the last question.
func (s *Session) Completed() bool { return s.completed }

// IsLast reports whether the current question is the final one.
func (s *Session) IsLast() bool { return s.current == len(s.shuffled)-1 }

// History returns per-question correctness in answering order.
func (s *Session) History() []bool { return slices.Clone(s.history) }

// Score is the number of correct answers so far.
func (s *Session) Score() int { return s.score }

// Total is the number of questions in the session.
func (s *Session) Total() int { return len(s.questions) }

// State returns the lifecycle state.
func (s *Session) State() State {
	if s.completed {
		return StateCompleted
	}
	return StateInProgress
}

// LastCorrect reports whether the current question was answered correctly.
// It is only meaningful while Answered is true.
func (s *Session) LastCorrect() bool {
	return s.answered && len(s.history) > 0 && s.history[len(s.history)-1]
}

// Summary returns the running tally. Use Result for the final grade.
func (s *Session) Summary() Summary {
	return NewSummary(s.score, len(s.questions))
}

// Result returns the final summary once the session is completed.
func (s *Session) Result() (Summary, error) {
	if !s.completed {
		return Summary{}, ErrNotCompleted
	}
	return s.Summary(), nil
}
