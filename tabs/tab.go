package tabs

import (
	"splitbrowse/history"
	"splitbrowse/locator"
)

// Order decides which split pane fetches first. It never changes layout.
type Order int

const (
	WebFirst Order = iota
	AIFirst
)

func (o Order) String() string {
	if o == AIFirst {
		return "ai-first"
	}
	return "web-first"
}

// SearchKind records which search was dispatched last on a tab.
type SearchKind int

const (
	SearchNone SearchKind = iota
	SearchWeb
	SearchAI
)

func (k SearchKind) String() string {
	switch k {
	case SearchWeb:
		return "web"
	case SearchAI:
		return "ai"
	}
	return "none"
}

// NewTabTitle is the title of a blank tab.
const NewTabTitle = "New Tab"

// Tab is a read-only snapshot of a tab. Mutate tabs through the Store.
type Tab struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Locator locator.Locator `json:"locator"`

	// Split view panes. Both queries are non-empty while SplitView is set.
	SplitView      bool   `json:"splitView"`
	AIQuery        string `json:"aiQuery,omitempty"`
	WebQuery       string `json:"webQuery,omitempty"`
	PreferredOrder Order  `json:"preferredOrder"`

	// Most recent dispatched queries, used to seed split view.
	LastSearch   SearchKind `json:"lastSearch"`
	LastWebQuery string     `json:"lastWebQuery,omitempty"`
	LastAIQuery  string     `json:"lastAIQuery,omitempty"`

	IsBookmarked bool `json:"isBookmarked"`

	History    []locator.Locator `json:"history"`
	HistoryPos int               `json:"historyPos"`
}

// CanBack reports whether the tab has an earlier history entry.
func (t Tab) CanBack() bool { return t.HistoryPos > 0 }

// CanForward reports whether the tab has a later history entry.
func (t Tab) CanForward() bool { return t.HistoryPos < len(t.History)-1 }

// tab is the mutable state owned by the Store.
type tab struct {
	id      string
	title   string
	loc     locator.Locator
	hist    *history.History
	split   bool
	aiQ     string
	webQ    string
	order   Order
	last    SearchKind
	lastWeb string
	lastAI  string
	marked  bool
}

func (t *tab) snapshot() Tab {
	return Tab{
		ID:             t.id,
		Title:          t.title,
		Locator:        t.loc,
		SplitView:      t.split,
		AIQuery:        t.aiQ,
		WebQuery:       t.webQ,
		PreferredOrder: t.order,
		LastSearch:     t.last,
		LastWebQuery:   t.lastWeb,
		LastAIQuery:    t.lastAI,
		IsBookmarked:   t.marked,
		History:        t.hist.Entries(),
		HistoryPos:     t.hist.Position(),
	}
}

// titleFor is the default title a locator gives its tab.
func titleFor(l locator.Locator) string {
	switch l.Kind {
	case locator.KindBlank:
		return NewTabTitle
	case locator.KindWeb:
		return "Google: " + l.Value
	case locator.KindAI:
		return "AI: " + l.Value
	}
	return l.Value
}
