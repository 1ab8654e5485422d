package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Letter  key.Binding
	Enter   key.Binding
	Restart key.Binding
	Quit    key.Binding
}

// optionLetters are the keys that pick an option directly. They stop before
// the letters bound to restart and quit.
const optionLetters = "abcdefgh"

func defaultKeys() keyMap {
	letters := make([]string, 0, len(optionLetters))
	for _, r := range optionLetters {
		letters = append(letters, string(r))
	}
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "previous option"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "next option"),
		),
		Letter: key.NewBinding(
			key.WithKeys(letters...),
			key.WithHelp("a-d", "pick option"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit / next"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "try again"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Letter, k.Enter, k.Restart, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Letter}, {k.Enter, k.Restart, k.Quit}}
}
