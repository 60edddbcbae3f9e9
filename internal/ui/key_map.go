package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	next   key.Binding
	prev   key.Binding
	enter  key.Binding
	back   key.Binding
	yes    key.Binding
	no     key.Binding
	sort   key.Binding
	order  key.Binding
	group  key.Binding
	filter key.Binding
	clear  key.Binding
	add    key.Binding
	remove key.Binding
	logout key.Binding
	help   key.Binding
	quit   key.Binding
	force  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		sort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort field")),
		order:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "asc/desc")),
		group:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group")),
		filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add song")),
		remove: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		logout: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "logout")),
		help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		force:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.filter, k.sort, k.order, k.group, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.filter, k.clear},
		{k.sort, k.order, k.group},
		{k.add, k.remove},
		{k.logout, k.quit},
	}
}

// libraryKeys returns the help bindings for the library view; mutation keys are shown to admins only.
func (k keyMap) libraryKeys(admin bool) keyMap {
	k.add.SetEnabled(admin)
	k.remove.SetEnabled(admin)
	return k
}
