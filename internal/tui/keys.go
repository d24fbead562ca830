package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Select    key.Binding
	Back      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	Refresh   key.Binding
	Toggle    key.Binding
	Connect   key.Binding
	LEDOn     key.Binding
	LEDOff    key.Binding
}

// DefaultKeyMap returns the default vim-style keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "back"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "in"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "exit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s/space", "start/stop scan"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect"),
		),
		LEDOn: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "LED on"),
		),
		LEDOff: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "LED off"),
		),
	}
}

// ShortHelp returns keybindings to show in the help view (horizontal).
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back},
		{k.Toggle, k.Connect, k.LEDOn, k.LEDOff, k.Refresh, k.Help, k.Quit},
	}
}

// viewKeys narrows the help line to the bindings a screen handles.
type viewKeys struct {
	short []key.Binding
	full  KeyMap
}

func (v viewKeys) ShortHelp() []key.Binding  { return v.short }
func (v viewKeys) FullHelp() [][]key.Binding { return v.full.FullHelp() }

// forView returns the help bindings for view.
func (k KeyMap) forView(view View) viewKeys {
	switch view {
	case ViewScan:
		return viewKeys{short: []key.Binding{k.Up, k.Down, k.Toggle, k.Select, k.Back}, full: k}
	case ViewDevice:
		return viewKeys{short: []key.Binding{k.Up, k.Down, k.Select, k.Connect, k.LEDOn, k.LEDOff, k.Back}, full: k}
	}
	return viewKeys{short: []key.Binding{k.Up, k.Down, k.Select, k.Refresh, k.Quit}, full: k}
}
