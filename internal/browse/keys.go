package browse

import "github.com/charmbracelet/bubbles/key"

// keyMap holds key bindings for the browser.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Search key.Binding
	Field  key.Binding
	Apply  key.Binding
	Clear  key.Binding
	Quit   key.Binding
}

// ShortHelp returns the bindings for the help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Search, k.Field, k.Clear, k.Quit}
}

// FullHelp returns the bindings grouped for expanded help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Search, k.Field, k.Apply, k.Clear},
		{k.Quit},
	}
}

// defaultKeyMap returns the browser key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Field: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "search field"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
