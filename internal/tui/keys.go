package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines keybindings for the window list.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Focus     key.Binding
	Minimize  key.Binding
	Maximize  key.Binding
	Close     key.Binding
	MoveLeft  key.Binding
	MoveDown  key.Binding
	MoveUp    key.Binding
	MoveRight key.Binding
	Narrower  key.Binding
	Wider     key.Binding
	Shorter   key.Binding
	Taller    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns keybindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Focus, k.Minimize, k.Maximize, k.Close, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus},
		{k.Minimize, k.Maximize, k.Close},
		{k.MoveLeft, k.MoveDown, k.MoveUp, k.MoveRight},
		{k.Narrower, k.Wider, k.Shorter, k.Taller},
		{k.Refresh, k.Help, k.Quit},
	}
}

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
		Focus: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "focus"),
		),
		Minimize: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "minimize"),
		),
		Maximize: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "maximize"),
		),
		Close: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "close"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "move left"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move down"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move up"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "move right"),
		),
		Narrower: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "narrower"),
		),
		Wider: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "wider"),
		),
		Shorter: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "shorter"),
		),
		Taller: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "taller"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
