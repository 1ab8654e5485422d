package tui

import (
	"fmt"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pavelanni/approaches/internal/assess"
	appI18n "github.com/pavelanni/approaches/internal/i18n"
	"github.com/pavelanni/approaches/internal/model"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init("en"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, n int) Model {
	t.Helper()
	qs := make([]assess.Question, n)
	for i := range qs {
		qs[i] = assess.Question{
			ID:           fmt.Sprintf("q%d", i),
			Kind:         assess.KindMCQ,
			Prompt:       fmt.Sprintf("Question %d?", i+1),
			Options:      []string{"alpha", "beta", "gamma"},
			CorrectIndex: 1,
			Feedback:     "beta is right",
		}
	}
	s, err := assess.New(qs, assess.InOrder)
	if err != nil {
		t.Fatalf("assess.New: %v", err)
	}
	return NewModel(s, Options{Title: "Test lesson", Theme: model.Theme{Color: "teal"}, Lang: "en", NoColor: true})
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func expectView(t *testing.T, m Model, want ...string) {
	t.Helper()
	view := m.View()
	for _, w := range want {
		if !strings.Contains(view, w) {
			t.Errorf("expected view to contain %q, got:\n%s", w, view)
		}
	}
}

func TestLetterSelectsAndEnterSubmits(t *testing.T) {
	m := newTestModel(t, 2)
	expectView(t, m, "Test lesson", "Question 1 of 2", "Question 1?", "  A) alpha", "  B) beta")

	m = press(t, m, runes("b"))
	if sel, ok := m.session.Selected(); !ok || sel != 1 {
		t.Fatalf("expected option 1 selected, got %d (%v)", sel, ok)
	}
	expectView(t, m, "> B) beta")

	m = press(t, m, enter)
	if !m.session.Answered() {
		t.Fatal("expected answer submitted")
	}
	if m.session.Score() != 1 {
		t.Errorf("expected score 1, got %d", m.session.Score())
	}
	expectView(t, m, "Correct!", "beta is right", "Next question")

	m = press(t, m, enter)
	if m.session.CurrentIndex() != 1 {
		t.Errorf("expected second question, got index %d", m.session.CurrentIndex())
	}
	expectView(t, m, "Question 2 of 2", "Score: 1/2")
}

func TestWrongAnswerShowsCorrectOne(t *testing.T) {
	m := newTestModel(t, 1)
	m = press(t, m, runes("c"), enter)
	expectView(t, m, "Not quite.", "The correct answer was B: beta", "See results")
	if m.session.Score() != 0 {
		t.Errorf("expected score 0, got %d", m.session.Score())
	}
}

func TestArrowKeysMoveSelection(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"down from nothing", []tea.KeyMsg{down}, 0},
		{"up from nothing", []tea.KeyMsg{up}, 2},
		{"down twice", []tea.KeyMsg{down, down}, 1},
		{"wrap past end", []tea.KeyMsg{down, down, down, down}, 0},
		{"wrap past start", []tea.KeyMsg{down, up}, 2},
		{"letter then up", []tea.KeyMsg{runes("c"), up}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, newTestModel(t, 1), tt.keys...)
			sel, ok := m.session.Selected()
			if !ok || sel != tt.want {
				t.Errorf("expected selection %d, got %d (%v)", tt.want, sel, ok)
			}
		})
	}
}

func TestLetterOutOfRangeIgnored(t *testing.T) {
	m := press(t, newTestModel(t, 1), runes("h"))
	if _, ok := m.session.Selected(); ok {
		t.Error("expected no selection for a letter past the last option")
	}
}

func TestEnterWithoutSelection(t *testing.T) {
	m := press(t, newTestModel(t, 1), enter)
	if m.session.Answered() {
		t.Error("expected submit to be refused")
	}
	expectView(t, m, "Select an option first.")

	m = press(t, m, runes("a"))
	if strings.Contains(m.View(), "Select an option first.") {
		t.Error("expected notice cleared by the next key")
	}
}

func TestSelectionLockedAfterSubmit(t *testing.T) {
	m := press(t, newTestModel(t, 2), runes("a"), enter, runes("b"), down)
	if sel, _ := m.session.Selected(); sel != 0 {
		t.Errorf("expected selection to stay 0 after submit, got %d", sel)
	}
}

func TestResultsAndRestart(t *testing.T) {
	m := newTestModel(t, 2)
	m = press(t, m, runes("r"))
	if m.session.Completed() {
		t.Fatal("restart key must not finish the quiz")
	}

	m = press(t, m, runes("b"), enter, enter, runes("a"), enter, enter)
	if !m.session.Completed() {
		t.Fatal("expected quiz completed")
	}
	expectView(t, m, "You scored 1 out of 2 (50%)", "Keep practicing!", "✓ 1. Question 1?", "✗ 2. Question 2?", "Try again")

	m = press(t, m, runes("a"), enter)
	if !m.session.Completed() {
		t.Error("expected answer keys ignored on the results screen")
	}

	m = press(t, m, runes("r"))
	if m.session.Completed() || m.session.CurrentIndex() != 0 || m.session.Score() != 0 {
		t.Errorf("expected fresh attempt, got index %d score %d", m.session.CurrentIndex(), m.session.Score())
	}
	expectView(t, m, "Question 1 of 2")
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, 1)
	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if v := next.(Model).View(); v != "" {
		t.Errorf("expected empty view after quit, got %q", v)
	}
}

func TestSpanishLabels(t *testing.T) {
	qs := []assess.Question{{ID: "q", Kind: assess.KindMCQ, Prompt: "?", Options: []string{"x", "y"}, CorrectIndex: 0}}
	s, err := assess.New(qs, assess.InOrder)
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(s, Options{Lang: "es", NoColor: true})
	m = press(t, m, runes("a"), enter)
	expectView(t, m, "¡Correcto!")
}
