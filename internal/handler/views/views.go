// Package views holds the templ components of the lesson player: full pages
// and the htmx fragments the quiz widgets swap in. Translations, links and
// the CSRF token are resolved from the render context.
package views

//go:generate templ generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"

	"github.com/pavelanni/approaches/internal/assess"
	"github.com/pavelanni/approaches/internal/model"
)

// OptionView is one answer option as displayed.
type OptionView struct {
	Index    int
	Label    string
	Text     string
	Selected bool
	Correct  bool
	Wrong    bool
}

// State is the option's highlight, empty when it has none.
func (o OptionView) State() string {
	switch {
	case o.Correct:
		return "correct"
	case o.Wrong:
		return "wrong"
	case o.Selected:
		return "selected"
	}
	return ""
}

// ResultRow is one line of the results list.
type ResultRow struct {
	N       int
	Prompt  string
	Correct bool
}

// QuizView is a snapshot of a per-question attempt.
type QuizView struct {
	LessonID      int64
	Set           model.SetName
	Title         string
	Slide         int
	Mode          model.DisplayMode
	N             int
	Total         int
	Kind          assess.Kind
	Scenario      string
	Prompt        string
	Options       []OptionView
	Answered      bool
	LastCorrect   bool
	Feedback      string
	CorrectLabel  string
	CorrectAnswer string
	IsLast        bool
	Completed     bool
	Score         int
	Summary       assess.Summary
	History       []ResultRow
	Error         string
}

// DoNowQuestion is one question of the check-all widget.
type DoNowQuestion struct {
	Index         int
	N             int
	Prompt        string
	Options       []OptionView
	Answered      bool
	Correct       bool
	CorrectAnswer string
	Feedback      string
}

// DoNowView is a snapshot of a check-all attempt.
type DoNowView struct {
	LessonID  int64
	Title     string
	Slide     int
	Mode      model.DisplayMode
	Questions []DoNowQuestion
	Answered  int
	Total     int
	Ready     bool
	Revealed  bool
	Score     int
	Error     string
}

// SlideView is everything the slide page shows.
type SlideView struct {
	Lesson   model.Lesson
	Slide    model.Slide
	Index    int
	Total    int
	Progress int
	Prev     int
	Next     int
	HasPrev  bool
	HasNext  bool
	Mode     model.DisplayMode
	Lessons  []model.LessonSummary
	Quiz     *QuizView
	DoNow    *DoNowView
}

// Present reports whether the slide is shown in presentation mode.
func (v SlideView) Present() bool { return v.Mode == model.ModePresent }

// AdminLesson is a lesson row on the presenter page.
type AdminLesson struct {
	model.LessonSummary
	Questions int
}

// AdminView is the presenter's lesson management page.
type AdminView struct {
	Lessons []AdminLesson
	Imports []model.ImportedFile
	Message string
	Warning bool
}

// link prefixes an app path with the base path of the request.
func link(ctx context.Context, format string, args ...any) templ.SafeURL {
	return templ.SafeURL(model.BasePathFromContext(ctx) + fmt.Sprintf(format, args...))
}

// slideLink points at a slide, keeping presentation mode.
func slideLink(ctx context.Context, lessonID int64, slide int, mode model.DisplayMode) templ.SafeURL {
	u := link(ctx, "/lessons/%d/slides/%d", lessonID, slide)
	if mode == model.ModePresent {
		u += "?mode=present"
	}
	return u
}

// themeStyles maps every theme color to the accent variable.
func themeStyles() string {
	var b strings.Builder
	b.WriteString("<style>")
	for _, c := range model.ThemeColors() {
		fmt.Fprintf(&b, "[data-theme=%q]{--accent:%s}", c, model.Theme{Color: c}.Hex())
	}
	b.WriteString("</style>")
	return b.String()
}

func themeName(t model.Theme) string {
	if t.Color == "" {
		return "slate"
	}
	return t.Color
}

func quizURL(ctx context.Context, v QuizView, action string) templ.SafeURL {
	return link(ctx, "/lessons/%d/quiz/%s/%s", v.LessonID, v.Set, action)
}

func doNowURL(ctx context.Context, v DoNowView, action string) templ.SafeURL {
	return link(ctx, "/lessons/%d/donow/%s", v.LessonID, action)
}
