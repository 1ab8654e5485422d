package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pavelanni/approaches/internal/assess"
	appI18n "github.com/pavelanni/approaches/internal/i18n"
)

var (
	correctColor = lipgloss.Color("34")
	wrongColor   = lipgloss.Color("160")
	mutedColor   = lipgloss.Color("242")
)

func (m Model) renderQuestion() string {
	s := m.session
	sq := s.Current()
	lines := []string{
		m.muted(appI18n.Td(m.ctx, "QuestionNofM", map[string]any{"N": s.CurrentIndex() + 1, "Total": s.Total()}) +
			"  " + appI18n.Td(m.ctx, "ScoreSoFar", map[string]any{"Score": s.Score(), "Total": s.Total()})),
		m.progressBar(float64(s.CurrentIndex()+1) / float64(s.Total())),
		"",
	}
	if sq.Question.Scenario != "" {
		lines = append(lines, m.muted(sq.Question.Scenario), "")
	}
	lines = append(lines, sq.Question.Prompt, "")

	sel, hasSel := s.Selected()
	for k, text := range sq.Options {
		cursor := "  "
		if hasSel && sel == k {
			cursor = "> "
		}
		line := cursor + assess.Label(k) + ") " + text
		switch {
		case s.Answered() && sq.IsCorrect(k):
			line = m.colored(line+"  ✓", correctColor)
		case s.Answered() && hasSel && sel == k:
			line = m.colored(line+"  ✗", wrongColor)
		case hasSel && sel == k:
			line = m.stylize(line, true)
		}
		lines = append(lines, line)
	}

	if s.Answered() {
		lines = append(lines, "")
		if s.LastCorrect() {
			lines = append(lines, m.colored(appI18n.T(m.ctx, "Correct"), correctColor))
		} else {
			lines = append(lines, m.colored(appI18n.T(m.ctx, "Incorrect"), wrongColor),
				appI18n.Td(m.ctx, "CorrectAnswerWas", map[string]any{
					"Label":  assess.Label(sq.CorrectIndex()),
					"Answer": sq.Question.CorrectAnswer(),
				}))
		}
		if sq.Question.Feedback != "" {
			lines = append(lines, m.muted(sq.Question.Feedback))
		}
		next := "NextQuestion"
		if s.IsLast() {
			next = "SeeResults"
		}
		lines = append(lines, "", m.muted("enter: "+appI18n.T(m.ctx, next)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderResults() string {
	s := m.session
	sum := s.Summary()
	lines := []string{
		appI18n.Td(m.ctx, "ScoreSummary", map[string]any{
			"Score":      sum.Score,
			"Total":      sum.Total,
			"Percentage": sum.Percentage,
		}),
		m.stylize(appI18n.Grade(m.ctx, sum.Grade), true),
		"",
	}
	questions := s.Questions()
	for i, ok := range s.History() {
		mark, color := "✓", correctColor
		if !ok {
			mark, color = "✗", wrongColor
		}
		lines = append(lines, m.colored(mark, color)+" "+strconv.Itoa(i+1)+". "+questions[i].Prompt)
	}
	lines = append(lines, "", m.muted("r: "+appI18n.T(m.ctx, "TryAgain")))
	return strings.Join(lines, "\n")
}

// progressBar renders the bubbles bar, or a plain one without color.
func (m Model) progressBar(pct float64) string {
	if !m.noColor {
		return m.progress.ViewAs(pct)
	}
	width := m.progress.Width
	filled := int(pct * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// stylize renders text in the lesson accent color, bold when asked.
func (m Model) stylize(text string, bold bool) string {
	if m.noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(m.accent).Bold(bold).Render(text)
}

func (m Model) colored(text string, color lipgloss.Color) string {
	if m.noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func (m Model) muted(text string) string {
	return m.colored(text, mutedColor)
}
