package assess

import (
	"errors"
	"testing"
)

func newTestBatch(t *testing.T, qs []Question) *Batch {
	t.Helper()
	b, err := NewBatch(qs, InOrder)
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	return b
}

func TestBatchCheckRequiresAllAnswers(t *testing.T) {
	b := newTestBatch(t, testQuestions(3, 3, 1))
	b.Select(0, 1)
	b.Select(1, 0)

	if b.Ready() {
		t.Fatal("expected batch not ready")
	}
	if err := b.Check(); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if b.Revealed() {
		t.Error("failed check must not reveal")
	}

	b.Select(2, 1)
	if err := b.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !b.Revealed() || !b.Checked() {
		t.Error("expected revealed and checked")
	}
	if got := b.Summary(); got.Score != 2 || got.Total != 3 {
		t.Errorf("expected 2/3, got %d/%d", got.Score, got.Total)
	}
}

func TestBatchSelectionLockedAfterReveal(t *testing.T) {
	b := newTestBatch(t, testQuestions(2, 3, 0))
	b.Select(0, 2)
	b.Select(0, 0)
	if k, ok := b.Selection(0); !ok || k != 0 {
		t.Errorf("expected latest selection 0, got %d (%v)", k, ok)
	}

	b.Reveal()
	if !b.Revealed() {
		t.Fatal("expected revealed")
	}
	if b.Checked() {
		t.Error("partial reveal must not run the session")
	}
	b.Select(1, 0)
	if _, ok := b.Selection(1); ok {
		t.Error("selection accepted after reveal")
	}
	if b.Score() != 1 {
		t.Errorf("expected live score 1, got %d", b.Score())
	}
}

func TestBatchRevealWhenCompleteScoresThroughSession(t *testing.T) {
	b := newTestBatch(t, testQuestions(2, 3, 2))
	b.Select(0, 2)
	b.Select(1, 2)
	b.Reveal()
	if !b.Checked() {
		t.Fatal("expected full reveal to check")
	}
	if b.Summary().Grade != GradeExcellent {
		t.Errorf("expected Excellent, got %q", b.Summary().Grade)
	}
}

func TestBatchIgnoresBadIndices(t *testing.T) {
	b := newTestBatch(t, testQuestions(2, 3, 0))
	b.Select(-1, 0)
	b.Select(5, 0)
	b.Select(0, 7)
	if b.AnsweredCount() != 0 {
		t.Errorf("expected no answers, got %d", b.AnsweredCount())
	}
}

func TestBatchReset(t *testing.T) {
	b := newTestBatch(t, testQuestions(2, 3, 0))
	b.Select(0, 0)
	b.Select(1, 0)
	if err := b.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
	b.Reset()
	if b.Revealed() || b.Checked() || b.AnsweredCount() != 0 || b.Score() != 0 {
		t.Error("reset did not clear the batch")
	}
}
