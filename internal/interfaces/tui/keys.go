package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Quit           key.Binding
	Up             key.Binding
	Down           key.Binding
	PageUp         key.Binding
	PageDown       key.Binding
	ClearDecisions key.Binding
	NextPanel      key.Binding
	PrevPanel      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:         key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:       key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		ClearDecisions: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "clear decisions")),
		NextPanel:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevPanel:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("⇧tab", "prev panel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.NextPanel, k.ClearDecisions, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.PrevPanel}}
}

func (k keyMap) resolve(msg tea.KeyMsg) Action {
	switch {
	case key.Matches(msg, k.Quit):
		return ActionQuit
	case key.Matches(msg, k.Up):
		return ActionUp
	case key.Matches(msg, k.Down):
		return ActionDown
	case key.Matches(msg, k.PageUp):
		return ActionPageUp
	case key.Matches(msg, k.PageDown):
		return ActionPageDown
	case key.Matches(msg, k.ClearDecisions):
		return ActionClearDecisions
	case key.Matches(msg, k.NextPanel):
		return ActionNextPanel
	case key.Matches(msg, k.PrevPanel):
		return ActionPrevPanel
	default:
		return ActionNone
	}
}
