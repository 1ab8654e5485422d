package assess

import "errors"

// ErrIncomplete is returned by Batch.Check while a question has no selection.
var ErrIncomplete = errors.New("assess: not every question is answered")

// Batch is the "check all" variant: selections are collected for every
// question first and submitted together. Scoring goes through a Session so
// both variants share the same shuffle and correctness rules.
type Batch struct {
	session  *Session
	pending  []int
	revealed bool
}

// NewBatch starts a batch over questions. A nil src uses the global generator.
func NewBatch(questions []Question, src Rand) (*Batch, error) {
	s, err := New(questions, src)
	if err != nil {
		return nil, err
	}
	b := &Batch{session: s}
	b.clearPending()
	return b, nil
}

func (b *Batch) clearPending() {
	b.pending = make([]int, b.session.Total())
	for i := range b.pending {
		b.pending[i] = -1
	}
	b.revealed = false
}

// Len is the number of questions.
func (b *Batch) Len() int { return len(b.pending) }

// Question returns the shuffled form of question i.
func (b *Batch) Question(i int) ShuffledQuestion { return b.session.Shuffled(i) }

// Select records option k for question i. Ignored once answers are shown.
func (b *Batch) Select(i, k int) {
	if b.revealed || i < 0 || i >= len(b.pending) {
		return
	}
	if k < 0 || k >= len(b.session.Shuffled(i).Options) {
		return
	}
	b.pending[i] = k
}

// Selection returns the option chosen for question i, if any.
func (b *Batch) Selection(i int) (int, bool) {
	if i < 0 || i >= len(b.pending) || b.pending[i] < 0 {
		return 0, false
	}
	return b.pending[i], true
}

// AnsweredCount is the number of questions with a selection.
func (b *Batch) AnsweredCount() int {
	n := 0
	for _, k := range b.pending {
		if k >= 0 {
			n++
		}
	}
	return n
}

// Ready reports whether every question has a selection.
func (b *Batch) Ready() bool { return b.AnsweredCount() == len(b.pending) }

// Check submits every selection in order and reveals the answers.
// It returns ErrIncomplete while a question is unanswered.
func (b *Batch) Check() error {
	if b.revealed {
		return nil
	}
	if !b.Ready() {
		return ErrIncomplete
	}
	for _, k := range b.pending {
		b.session.Select(k)
		if _, err := b.session.Submit(); err != nil {
			return err
		}
		b.session.Advance()
	}
	b.revealed = true
	return nil
}

// Reveal shows the correct answers whether or not every question is answered.
func (b *Batch) Reveal() {
	if b.Ready() {
		_ = b.Check()
		return
	}
	b.revealed = true
}

// Revealed reports whether answers are being shown.
func (b *Batch) Revealed() bool { return b.revealed }

// Checked reports whether the selections went through the session.
func (b *Batch) Checked() bool { return b.session.Completed() }

// Score counts correct selections. Unanswered questions score nothing.
func (b *Batch) Score() int {
	if b.session.Completed() {
		return b.session.Score()
	}
	n := 0
	for i, k := range b.pending {
		if k >= 0 && b.session.Shuffled(i).IsCorrect(k) {
			n++
		}
	}
	return n
}

// Summary returns the tally over all questions.
func (b *Batch) Summary() Summary { return NewSummary(b.Score(), len(b.pending)) }

// Reset clears selections and reshuffles.
func (b *Batch) Reset() {
	b.session.Restart()
	b.clearPending()
}
