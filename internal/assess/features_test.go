package assess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

func TestSessionFeatures(t *testing.T) {
	options := godog.Options{
		Format:    "progress",
		Paths:     []string{filepath.Join("testdata", "features")},
		Output:    io.Discard,
		TestingT:  t,
		Randomize: 0,
	}

	suite := godog.TestSuite{
		Name:                "assess-features",
		ScenarioInitializer: initializeSessionScenario,
		Options:             &options,
	}

	if suite.Run() != 0 {
		t.Fatalf("session features failed")
	}
}

// sessionState holds one scenario's questions and session.
type sessionState struct {
	questions   []Question
	firstOrder  []int
	session     *Session
	lastCorrect bool
	lastErr     error
}

func initializeSessionScenario(ctx *godog.ScenarioContext) {
	state := &sessionState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*state = sessionState{}
		return ctx, nil
	})

	ctx.Step(`^(\d+) questions with (\d+) options each and correct index (\d+)$`, state.questionsWithOptions)
	ctx.Step(`^the first question is shuffled to original order "([^"]*)"$`, state.firstQuestionOrder)
	ctx.Step(`^the session starts$`, state.sessionStarts)
	ctx.Step(`^I select option (\d+)$`, state.selectOption)
	ctx.Step(`^I submit$`, state.submit)
	ctx.Step(`^I advance$`, state.advance)
	ctx.Step(`^I restart$`, state.restart)
	ctx.Step(`^I answer "([^"]*)"$`, state.answerAll)
	ctx.Step(`^the correct option of the current question is at position (\d+)$`, state.correctOptionAt)
	ctx.Step(`^the answer is correct$`, state.answerIsCorrect)
	ctx.Step(`^the score is (\d+)$`, state.scoreIs)
	ctx.Step(`^the history is "([^"]*)"$`, state.historyIs)
	ctx.Step(`^the session is completed$`, state.sessionCompleted)
	ctx.Step(`^the session is in progress$`, state.sessionInProgress)
	ctx.Step(`^the summary is (\d+) of (\d+) at (\d+) percent graded "([^"]*)"$`, state.summaryIs)
	ctx.Step(`^the current question is (\d+)$`, state.currentQuestionIs)
	ctx.Step(`^option (\d+) is still selected$`, state.optionStillSelected)
	ctx.Step(`^the submit fails because nothing is selected$`, state.submitFailedNoSelection)
}

func (s *sessionState) questionsWithOptions(n, options, correct int) error {
	s.questions = testQuestions(n, options, correct)
	return nil
}

func (s *sessionState) firstQuestionOrder(order string) error {
	idx, err := parseInts(order)
	if err != nil {
		return err
	}
	s.firstOrder = idx
	return nil
}

func (s *sessionState) sessionStarts() error {
	var src Rand
	if s.firstOrder != nil {
		picks := picksFor(s.firstOrder)
		for _, q := range s.questions[1:] {
			picks = append(picks, picksFor(identity(len(q.Options)))...)
		}
		src = &scriptedRand{picks: picks}
	}
	sess, err := New(s.questions, src)
	if err != nil {
		return err
	}
	s.session = sess
	return nil
}

func (s *sessionState) selectOption(k int) error {
	s.session.Select(k)
	return nil
}

func (s *sessionState) submit() error {
	s.lastCorrect, s.lastErr = s.session.Submit()
	return nil
}

func (s *sessionState) advance() error {
	s.session.Advance()
	return nil
}

func (s *sessionState) restart() error {
	s.session.Restart()
	return nil
}

func (s *sessionState) answerAll(plan string) error {
	for _, step := range strings.Split(plan, ",") {
		sq := s.session.Current()
		k := sq.CorrectIndex()
		if strings.TrimSpace(step) == "wrong" {
			k = (k + 1) % len(sq.Options)
		}
		s.session.Select(k)
		if _, err := s.session.Submit(); err != nil {
			return err
		}
		s.session.Advance()
	}
	return nil
}

func (s *sessionState) correctOptionAt(k int) error {
	if got := s.session.Current().CorrectIndex(); got != k {
		return fmt.Errorf("expected correct option at %d, got %d", k, got)
	}
	return nil
}

func (s *sessionState) answerIsCorrect() error {
	if s.lastErr != nil {
		return s.lastErr
	}
	if !s.lastCorrect {
		return errors.New("expected a correct answer")
	}
	return nil
}

func (s *sessionState) scoreIs(score int) error {
	if s.session.Score() != score {
		return fmt.Errorf("expected score %d, got %d", score, s.session.Score())
	}
	return nil
}

func (s *sessionState) historyIs(want string) error {
	var expected []bool
	if want != "" {
		for _, v := range strings.Split(want, ",") {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			expected = append(expected, b)
		}
	}
	if got := s.session.History(); !slices.Equal(got, expected) {
		return fmt.Errorf("expected history %v, got %v", expected, got)
	}
	return nil
}

func (s *sessionState) sessionCompleted() error {
	if !s.session.Completed() {
		return errors.New("expected a completed session")
	}
	return nil
}

func (s *sessionState) sessionInProgress() error {
	if s.session.State() != StateInProgress {
		return fmt.Errorf("expected in_progress, got %s", s.session.State())
	}
	return nil
}

func (s *sessionState) summaryIs(score, total, pct int, grade string) error {
	res, err := s.session.Result()
	if err != nil {
		return err
	}
	want := Summary{Score: score, Total: total, Percentage: pct, Grade: Grade(grade)}
	if res != want {
		return fmt.Errorf("expected %+v, got %+v", want, res)
	}
	return nil
}

func (s *sessionState) currentQuestionIs(i int) error {
	if s.session.CurrentIndex() != i {
		return fmt.Errorf("expected current question %d, got %d", i, s.session.CurrentIndex())
	}
	return nil
}

func (s *sessionState) optionStillSelected(k int) error {
	got, ok := s.session.Selected()
	if !ok || got != k {
		return fmt.Errorf("expected option %d selected, got %d (%v)", k, got, ok)
	}
	return nil
}

func (s *sessionState) submitFailedNoSelection() error {
	if !errors.Is(s.lastErr, ErrNoSelection) {
		return fmt.Errorf("expected ErrNoSelection, got %v", s.lastErr)
	}
	return nil
}

func parseInts(csv string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(csv, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// picksFor returns the draws that make Shuffle produce target.
func picksFor(target []int) []int {
	idx := identity(len(target))
	var picks []int
	for i := len(target) - 1; i > 0; i-- {
		j := slices.Index(idx[:i+1], target[i])
		picks = append(picks, j)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return picks
}
