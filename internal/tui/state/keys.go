package state

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	MarkRead    key.Binding
	MarkAllRead key.Binding
	Delete      key.Binding
	DeleteAll   key.Binding
	LoadMore    key.Binding
	Reload      key.Binding
	Filter      key.Binding
	UnreadFirst key.Binding
	Quit        key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		MarkRead:    key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "read")),
		MarkAllRead: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "read all")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		DeleteAll:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete all")),
		LoadMore:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "more")),
		Reload:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "reload")),
		Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		UnreadFirst: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unread first")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:     key.NewBinding(key.WithKeys("y", "Y")),
		Cancel:      key.NewBinding(key.WithKeys("n", "N", "esc")),
	}
}
