package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Open     key.Binding
	Back     key.Binding
	Grab     key.Binding
	MoveL    key.Binding
	MoveR    key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Search   key.Binding
	Status   key.Binding
	Sort     key.Binding
	Mode     key.Binding
	Calendar key.Binding
	CalView  key.Binding
	Reload   key.Binding
	Detail   key.Binding
	Focus    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/drop")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back/cancel")),
		Grab:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab/drop")),
		MoveL:    key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "move left")),
		MoveR:    key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "move right")),
		NextPage: key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		Sort:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
		Mode:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view mode")),
		Calendar: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "calendar")),
		CalView:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "day/week/month")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Detail:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "content/calendar")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Grab, k.Search, k.Mode, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Open, k.Back, k.Grab, k.MoveL, k.MoveR},
		{k.NextPage, k.PrevPage, k.Search, k.Status, k.Sort},
		{k.Mode, k.Calendar, k.CalView, k.Focus, k.Detail, k.Reload, k.Help, k.Quit},
	}
}
