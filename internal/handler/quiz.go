package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/approaches/internal/assess"
	"github.com/pavelanni/approaches/internal/handler/views"
	appI18n "github.com/pavelanni/approaches/internal/i18n"
	"github.com/pavelanni/approaches/internal/model"
)

// errBadForm marks a request whose form values cannot be used.
var errBadForm = errors.New("bad form value")

// widgetRef is what a widget needs to post back to its own slide.
type widgetRef struct {
	lessonID int64
	set      model.QuestionSet
	slide    int
	mode     model.DisplayMode
}

func quizView(s *assess.Session, ref widgetRef) views.QuizView {
	sq := s.Current()
	v := views.QuizView{
		LessonID:  ref.lessonID,
		Set:       ref.set.Name,
		Title:     ref.set.Title,
		Slide:     ref.slide,
		Mode:      ref.mode,
		N:         s.CurrentIndex() + 1,
		Total:     s.Total(),
		Kind:      sq.Question.Kind,
		Scenario:  sq.Question.Scenario,
		Prompt:    sq.Question.Prompt,
		Answered:  s.Answered(),
		IsLast:    s.IsLast(),
		Completed: s.Completed(),
		Score:     s.Score(),
		Summary:   s.Summary(),
	}
	sel, hasSel := s.Selected()
	for k, text := range sq.Options {
		o := views.OptionView{Index: k, Label: assess.Label(k), Text: text, Selected: hasSel && sel == k}
		if v.Answered {
			o.Correct = sq.IsCorrect(k)
			o.Wrong = o.Selected && !o.Correct
		}
		v.Options = append(v.Options, o)
	}
	if v.Answered {
		v.LastCorrect = s.LastCorrect()
		v.Feedback = sq.Question.Feedback
		v.CorrectLabel = assess.Label(sq.CorrectIndex())
		v.CorrectAnswer = sq.Question.CorrectAnswer()
	}
	if v.Completed {
		questions := s.Questions()
		for i, ok := range s.History() {
			v.History = append(v.History, views.ResultRow{N: i + 1, Prompt: questions[i].Prompt, Correct: ok})
		}
	}
	return v
}

func doNowView(b *assess.Batch, ref widgetRef) views.DoNowView {
	v := views.DoNowView{
		LessonID: ref.lessonID,
		Title:    ref.set.Title,
		Slide:    ref.slide,
		Mode:     ref.mode,
		Answered: b.AnsweredCount(),
		Total:    b.Len(),
		Ready:    b.Ready(),
		Revealed: b.Revealed(),
		Score:    b.Score(),
	}
	for i := range b.Len() {
		sq := b.Question(i)
		sel, hasSel := b.Selection(i)
		q := views.DoNowQuestion{
			Index:    i,
			N:        i + 1,
			Prompt:   sq.Question.Prompt,
			Answered: hasSel,
		}
		for k, text := range sq.Options {
			o := views.OptionView{Index: k, Label: assess.Label(k), Text: text, Selected: hasSel && sel == k}
			if v.Revealed {
				o.Correct = sq.IsCorrect(k)
				o.Wrong = o.Selected && !o.Correct
			}
			q.Options = append(q.Options, o)
		}
		if v.Revealed {
			q.Correct = hasSel && sq.IsCorrect(sel)
			q.Feedback = sq.Question.Feedback
			q.CorrectAnswer = sq.Question.CorrectAnswer()
		}
		v.Questions = append(v.Questions, q)
	}
	return v
}

// widgetRequest resolves the lesson, set and return slide shared by both quiz endpoints.
func (h *Handler) widgetRequest(w http.ResponseWriter, r *http.Request, name model.SetName) (widgetRef, AttemptKey, bool) {
	lesson := h.loadLesson(w, r)
	if lesson == nil {
		return widgetRef{}, AttemptKey{}, false
	}
	set, ok := lesson.Set(name)
	if !ok {
		http.NotFound(w, r)
		return widgetRef{}, AttemptKey{}, false
	}
	slide, err := strconv.Atoi(r.FormValue("slide"))
	if err != nil || slide < 0 || slide >= len(lesson.Slides) {
		slide = 0
	}
	ref := widgetRef{
		lessonID: lesson.ID,
		set:      set,
		slide:    slide,
		mode:     model.ParseDisplayMode(r.FormValue("mode")),
	}
	key := AttemptKey{
		Visitor:  visitorFromContext(r.Context()),
		LessonID: lesson.ID,
		Version:  lesson.Version,
		Set:      name,
	}
	return ref, key, true
}

func formInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.FormValue(name))
	if err != nil {
		return 0, errBadForm
	}
	return v, nil
}

func (h *Handler) handleQuizAction(w http.ResponseWriter, r *http.Request) {
	name, ok := model.ParseSetName(chi.URLParam(r, "set"))
	if !ok || name.Batch() {
		http.NotFound(w, r)
		return
	}
	ref, key, ok := h.widgetRequest(w, r, name)
	if !ok {
		return
	}

	var (
		view      views.QuizView
		actionErr error
	)
	err := h.attempts.Session(key, ref.set.Questions, func(s *assess.Session) error {
		switch chi.URLParam(r, "action") {
		case "select":
			k, err := formInt(r, "option")
			if err != nil {
				return err
			}
			s.Select(k)
		case "submit":
			if k, err := formInt(r, "option"); err == nil {
				s.Select(k)
			}
			if _, err := s.Submit(); err != nil {
				actionErr = err
			}
		case "advance":
			s.Advance()
		case "restart":
			s.Restart()
		default:
			return errUnknownAction
		}
		view = quizView(s, ref)
		return nil
	})
	if !h.checkActionErr(w, r, err) {
		return
	}

	if actionErr != nil {
		if !isHTMX(r) {
			http.Error(w, appI18n.T(r.Context(), "SelectAnOption"), http.StatusBadRequest)
			return
		}
		view.Error = appI18n.T(r.Context(), "SelectAnOption")
	}

	if !isHTMX(r) {
		http.Redirect(w, r, h.slideURL(ref.lessonID, ref.slide, ref.mode), http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.QuizWidget(view).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleDoNowAction(w http.ResponseWriter, r *http.Request) {
	ref, key, ok := h.widgetRequest(w, r, model.SetDoNow)
	if !ok {
		return
	}

	var (
		view      views.DoNowView
		actionErr error
	)
	err := h.attempts.Batch(key, ref.set.Questions, func(b *assess.Batch) error {
		switch chi.URLParam(r, "action") {
		case "select":
			i, err := formInt(r, "question")
			if err != nil {
				return err
			}
			k, err := formInt(r, "option")
			if err != nil {
				return err
			}
			b.Select(i, k)
		case "check":
			actionErr = b.Check()
		case "reveal":
			b.Reveal()
		case "reset":
			b.Reset()
		default:
			return errUnknownAction
		}
		view = doNowView(b, ref)
		return nil
	})
	if !h.checkActionErr(w, r, err) {
		return
	}

	if errors.Is(actionErr, assess.ErrIncomplete) {
		if !isHTMX(r) {
			http.Error(w, appI18n.T(r.Context(), "AnswerAllFirst"), http.StatusBadRequest)
			return
		}
		view.Error = appI18n.T(r.Context(), "AnswerAllFirst")
	}

	if !isHTMX(r) {
		http.Redirect(w, r, h.slideURL(ref.lessonID, ref.slide, ref.mode), http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.DoNowWidget(view).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

var errUnknownAction = errors.New("unknown action")

// checkActionErr writes the response for a failed widget action and reports
// whether the handler may continue.
func (h *Handler) checkActionErr(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, errUnknownAction):
		http.NotFound(w, r)
	case errors.Is(err, errBadForm):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("quiz action failed", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
	return false
}
