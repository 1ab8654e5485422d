// Package tui plays one question set in the terminal with Bubble Tea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pavelanni/approaches/internal/assess"
	appI18n "github.com/pavelanni/approaches/internal/i18n"
	"github.com/pavelanni/approaches/internal/model"
)

// Options configures the quiz player.
type Options struct {
	Title   string
	Theme   model.Theme
	Lang    string
	NoColor bool
}

// Model drives an assess.Session from key presses.
type Model struct {
	ctx      context.Context
	session  *assess.Session
	title    string
	keys     keyMap
	help     help.Model
	progress progress.Model
	accent   lipgloss.Color
	noColor  bool
	notice   string
	quitting bool
}

// NewModel wraps a started session.
func NewModel(s *assess.Session, opts Options) Model {
	var langs []string
	if opts.Lang != "" {
		langs = append(langs, opts.Lang)
	}
	m := Model{
		ctx:     appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer(langs...)),
		session: s,
		title:   opts.Title,
		keys:    defaultKeys(),
		help:    help.New(),
		progress: progress.New(
			progress.WithSolidFill(opts.Theme.Hex()),
			progress.WithoutPercentage(),
			progress.WithWidth(40),
		),
		accent:  lipgloss.Color(opts.Theme.Hex()),
		noColor: opts.NoColor,
	}
	m.syncKeys()
	return m
}

// Init has no startup command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update applies one key press to the session.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = max(min(typed.Width-4, 60), 10)
		m.help.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		s.Restart()
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Letter):
		s.Select(strings.Index(optionLetters, msg.String()))
	case key.Matches(msg, m.keys.Enter):
		switch {
		case s.Answered():
			s.Advance()
		default:
			if _, err := s.Submit(); errors.Is(err, assess.ErrNoSelection) {
				m.notice = appI18n.T(m.ctx, "SelectAnOption")
			}
		}
	}
	m.syncKeys()
	return m, nil
}

// move shifts the highlighted option, starting from the top when nothing is
// selected yet.
func (m *Model) move(delta int) {
	s := m.session
	if s.Completed() || s.Answered() {
		return
	}
	n := len(s.Current().Options)
	sel, ok := s.Selected()
	switch {
	case !ok && delta > 0:
		sel = 0
	case !ok:
		sel = n - 1
	default:
		sel = (sel + delta + n) % n
	}
	s.Select(sel)
}

func (m *Model) syncKeys() {
	done := m.session.Completed()
	m.keys.Restart.SetEnabled(done)
	m.keys.Up.SetEnabled(!done)
	m.keys.Down.SetEnabled(!done)
	m.keys.Letter.SetEnabled(!done)
	m.keys.Enter.SetEnabled(!done)
}

// View renders the current question or the results screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var body string
	if m.session.Completed() {
		body = m.renderResults()
	} else {
		body = m.renderQuestion()
	}
	parts := []string{m.stylize(m.title, true), body}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	parts = append(parts, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

// Run plays the session on the terminal until the user quits.
func Run(s *assess.Session, opts Options, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(NewModel(s, opts), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running quiz: %w", err)
	}
	return nil
}
