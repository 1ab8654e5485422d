package assess

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
)

func testQuestions(n, options, correct int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		opts := make([]string, options)
		for k := range opts {
			opts[k] = fmt.Sprintf("q%d-opt%d", i, k)
		}
		qs[i] = Question{
			ID:           fmt.Sprintf("q%d", i),
			Kind:         KindMCQ,
			Prompt:       fmt.Sprintf("Question %d?", i),
			Options:      opts,
			CorrectIndex: correct,
			Feedback:     "because",
		}
	}
	return qs
}

func newTestSession(t *testing.T, qs []Question, src Rand) *Session {
	t.Helper()
	s, err := New(qs, src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// answer selects and submits the correct (or a wrong) option and advances.
func answer(t *testing.T, s *Session, correct bool) {
	t.Helper()
	sq := s.Current()
	k := sq.CorrectIndex()
	if !correct {
		k = (k + 1) % len(sq.Options)
	}
	s.Select(k)
	got, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got != correct {
		t.Fatalf("Submit returned %v, want %v", got, correct)
	}
	s.Advance()
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		qs      []Question
		wantErr error
	}{
		{"empty", nil, ErrNoQuestions},
		{"one option", []Question{{ID: "a", Prompt: "?", Options: []string{"x"}}}, ErrInvalidQuestion},
		{"index too high", []Question{{ID: "a", Options: []string{"x", "y"}, CorrectIndex: 2}}, ErrInvalidQuestion},
		{"negative index", []Question{{ID: "a", Options: []string{"x", "y"}, CorrectIndex: -1}}, ErrInvalidQuestion},
		{"missing id", []Question{{Options: []string{"x", "y"}}}, ErrInvalidQuestion},
		{"duplicate id", []Question{
			{ID: "a", Options: []string{"x", "y"}},
			{ID: "a", Options: []string{"x", "y"}},
		}, ErrInvalidQuestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.qs, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInitialState(t *testing.T) {
	s := newTestSession(t, testQuestions(3, 4, 1), nil)
	if s.CurrentIndex() != 0 {
		t.Errorf("expected index 0, got %d", s.CurrentIndex())
	}
	if _, ok := s.Selected(); ok {
		t.Error("expected no selection")
	}
	if s.Answered() || s.Completed() {
		t.Error("expected unanswered, in-progress session")
	}
	if s.State() != StateInProgress {
		t.Errorf("expected in_progress, got %q", s.State())
	}
	if len(s.History()) != 0 || s.Score() != 0 {
		t.Errorf("expected empty history and zero score")
	}
	if s.Total() != 3 {
		t.Errorf("expected total 3, got %d", s.Total())
	}
}

func TestRemapCorrectness(t *testing.T) {
	src := rand.New(rand.NewPCG(3, 4))
	qs := testQuestions(20, 5, 3)
	for round := 0; round < 20; round++ {
		s := newTestSession(t, qs, src)
		for i := range qs {
			sq := s.Shuffled(i)
			if !isPermutation(sq.OriginalIndices) {
				t.Fatalf("indices %v not a permutation", sq.OriginalIndices)
			}
			if sq.Options[sq.CorrectIndex()] != qs[i].CorrectAnswer() {
				t.Fatalf("shuffled correct option %q, want %q", sq.Options[sq.CorrectIndex()], qs[i].CorrectAnswer())
			}
		}
	}
}

func TestScenarioFromOriginalIndices(t *testing.T) {
	// Question 0 draws [2 0 3 1]; later questions keep their order.
	src := &scriptedRand{picks: []int{1, 1, 0, 3, 2, 1, 3, 2, 1}}
	s := newTestSession(t, testQuestions(3, 4, 1), src)

	sq := s.Current()
	if !slices.Equal(sq.OriginalIndices, []int{2, 0, 3, 1}) {
		t.Fatalf("expected indices [2 0 3 1], got %v", sq.OriginalIndices)
	}
	if sq.CorrectIndex() != 3 {
		t.Fatalf("expected shuffled correct index 3, got %d", sq.CorrectIndex())
	}

	s.Select(3)
	ok, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !ok {
		t.Error("expected correct answer")
	}
	if s.Score() != 1 {
		t.Errorf("expected score 1, got %d", s.Score())
	}
	if !slices.Equal(s.History(), []bool{true}) {
		t.Errorf("expected history [true], got %v", s.History())
	}
}

func TestSubmitWithoutSelection(t *testing.T) {
	s := newTestSession(t, testQuestions(2, 3, 0), nil)
	_, err := s.Submit()
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if s.Answered() || len(s.History()) != 0 {
		t.Error("failed submit must not change state")
	}
}

func TestSelectionRules(t *testing.T) {
	s := newTestSession(t, testQuestions(2, 4, 0), InOrder)

	s.Select(1)
	s.Select(2)
	if k, ok := s.Selected(); !ok || k != 2 {
		t.Errorf("expected latest selection 2, got %d (%v)", k, ok)
	}

	s.Select(9)
	s.Select(-1)
	if k, _ := s.Selected(); k != 2 {
		t.Errorf("out-of-range select changed selection to %d", k)
	}

	if _, err := s.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	s.Select(0)
	if k, _ := s.Selected(); k != 2 {
		t.Errorf("select after submit changed selection to %d", k)
	}

	// A second submit is ignored.
	if ok, err := s.Submit(); ok || err != nil {
		t.Errorf("expected ignored submit, got %v, %v", ok, err)
	}
	if len(s.History()) != 1 {
		t.Errorf("expected one history entry, got %d", len(s.History()))
	}
}

func TestAdvanceBeforeSubmitIsNoop(t *testing.T) {
	s := newTestSession(t, testQuestions(2, 3, 0), nil)
	s.Select(1)
	s.Advance()
	if s.CurrentIndex() != 0 {
		t.Errorf("expected index 0, got %d", s.CurrentIndex())
	}
	if k, ok := s.Selected(); !ok || k != 1 {
		t.Errorf("advance before submit cleared selection")
	}
}

func TestCompletionGate(t *testing.T) {
	s := newTestSession(t, testQuestions(3, 4, 2), nil)

	answer(t, s, true)
	if s.CurrentIndex() != 1 {
		t.Fatalf("expected index 1, got %d", s.CurrentIndex())
	}
	if _, ok := s.Selected(); ok || s.Answered() {
		t.Error("advance must clear selection and answered flag")
	}

	answer(t, s, false)
	if !s.IsLast() {
		t.Fatal("expected to be on the last question")
	}

	if _, err := s.Result(); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("expected ErrNotCompleted, got %v", err)
	}

	answer(t, s, true)
	if !s.Completed() || s.State() != StateCompleted {
		t.Fatal("expected completed session")
	}
	if s.CurrentIndex() != 2 {
		t.Errorf("completion must leave index at 2, got %d", s.CurrentIndex())
	}

	// Everything is ignored after completion.
	s.Select(0)
	s.Advance()
	if ok, err := s.Submit(); ok || err != nil {
		t.Errorf("expected ignored submit, got %v, %v", ok, err)
	}
	if s.CurrentIndex() != 2 || len(s.History()) != 3 {
		t.Error("state changed after completion")
	}

	res, err := s.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	want := Summary{Score: 2, Total: 3, Percentage: 67, Grade: GradeKeepPracticing}
	if res != want {
		t.Errorf("expected %+v, got %+v", want, res)
	}
}

func TestScoreMonotonic(t *testing.T) {
	s := newTestSession(t, testQuestions(8, 4, 0), rand.New(rand.NewPCG(9, 9)))
	pattern := []bool{true, false, false, true, true, false, true, true}
	prev := 0
	for i, correct := range pattern {
		answer(t, s, correct)
		if s.Score() < prev {
			t.Fatalf("score decreased from %d to %d", prev, s.Score())
		}
		prev = s.Score()
		want := 0
		for _, c := range s.History() {
			if c {
				want++
			}
		}
		if s.Score() != want {
			t.Fatalf("after %d answers score %d, history count %d", i+1, s.Score(), want)
		}
	}
	if !slices.Equal(s.History(), pattern) {
		t.Errorf("expected history %v, got %v", pattern, s.History())
	}
}

func TestRestart(t *testing.T) {
	src := &scriptedRand{picks: []int{0, 0, 0, 0, 0, 0}}
	qs := testQuestions(2, 3, 1)
	s := newTestSession(t, qs, src)
	answer(t, s, true)
	answer(t, s, false)
	if !s.Completed() {
		t.Fatal("expected completed")
	}

	drawsBefore := len(src.bounds)
	s.Restart()
	if len(src.bounds) != drawsBefore+4 {
		t.Errorf("expected 4 fresh draws on restart, got %d", len(src.bounds)-drawsBefore)
	}
	if s.CurrentIndex() != 0 || s.Completed() || s.Answered() || s.Score() != 0 || len(s.History()) != 0 {
		t.Error("restart did not reset state")
	}
	if _, ok := s.Selected(); ok {
		t.Error("restart did not clear selection")
	}
	if qs[0].Options[0] != "q0-opt0" || qs[0].CorrectIndex != 1 {
		t.Error("restart modified the caller's questions")
	}
}

func TestLastCorrect(t *testing.T) {
	s := newTestSession(t, testQuestions(2, 2, 0), InOrder)
	if s.LastCorrect() {
		t.Error("expected false before submit")
	}
	s.Select(0)
	_, _ = s.Submit()
	if !s.LastCorrect() {
		t.Error("expected true after correct submit")
	}
	s.Advance()
	if s.LastCorrect() {
		t.Error("expected false on a fresh question")
	}
}
