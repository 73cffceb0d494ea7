package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"splitbrowse/config"
)

type keyMap struct {
	Quit           key.Binding
	Omnibox        key.Binding
	NewTab         key.Binding
	CloseTab       key.Binding
	NextTab        key.Binding
	PrevTab        key.Binding
	Back           key.Binding
	Forward        key.Binding
	Refresh        key.Binding
	ToggleSplit    key.Binding
	ToggleBookmark key.Binding
	RenameTab      key.Binding
	Shortcuts      key.Binding
	WebSearch      key.Binding
	AISearch       key.Binding
	Results        key.Binding
	OpenExternal   key.Binding
	AddShortcut    key.Binding
	Logout         key.Binding

	Submit key.Binding
	Cancel key.Binding
	Up     key.Binding
	Down   key.Binding
	Delete key.Binding
}

func bind(keys, help string) key.Binding {
	return key.NewBinding(key.WithKeys(keys), key.WithHelp(keys, help))
}

func newKeyMap(kb config.Keybindings) keyMap {
	return keyMap{
		Quit:           bind(kb.Quit, "quit"),
		Omnibox:        bind(kb.Omnibox, "address"),
		NewTab:         bind(kb.NewTab, "new tab"),
		CloseTab:       bind(kb.CloseTab, "close tab"),
		NextTab:        bind(kb.NextTab, "next tab"),
		PrevTab:        bind(kb.PrevTab, "prev tab"),
		Back:           bind(kb.Back, "back"),
		Forward:        bind(kb.Forward, "forward"),
		Refresh:        bind(kb.Refresh, "refresh"),
		ToggleSplit:    bind(kb.ToggleSplit, "split"),
		ToggleBookmark: bind(kb.ToggleBookmark, "bookmark"),
		RenameTab:      bind(kb.RenameTab, "rename"),
		Shortcuts:      bind(kb.Shortcuts, "shortcuts"),
		WebSearch:      bind(kb.WebSearch, "web search"),
		AISearch:       bind(kb.AISearch, "ask AI"),
		Results:        bind(kb.Results, "results"),
		OpenExternal:   bind(kb.OpenExternal, "open in browser"),
		AddShortcut:    bind(kb.AddShortcut, "add shortcut"),
		Logout:         bind(kb.Logout, "sign out"),

		Submit: key.NewBinding(key.WithKeys("enter")),
		Cancel: key.NewBinding(key.WithKeys("esc")),
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Delete: key.NewBinding(key.WithKeys("x", "delete")),
	}
}

// helpLine lists the main bindings for the status bar.
func (k keyMap) helpLine() []key.Binding {
	return []key.Binding{k.Omnibox, k.WebSearch, k.AISearch, k.ToggleSplit, k.NewTab, k.CloseTab, k.ToggleBookmark, k.Shortcuts, k.Results, k.Quit}
}
