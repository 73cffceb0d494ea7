package tabs

import (
	"strings"

	"go.uber.org/zap"

	"splitbrowse/history"
)

// State is a serializable copy of the whole store.
type State struct {
	Tabs   []Tab  `json:"tabs"`
	Active string `json:"active"`
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{Active: s.active, Tabs: make([]Tab, len(s.tabs))}
	for i, t := range s.tabs {
		st.Tabs[i] = t.snapshot()
	}
	return st
}

// Restore replaces every tab with the ones in st. Tabs without an ID get a
// fresh one and a split tab missing a pane query has split view turned off.
// Bookmark flags are kept only for tabs whose shortcut still exists.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	restored := make([]*tab, 0, len(st.Tabs))
	for _, in := range st.Tabs {
		h := history.Restore(in.History, in.HistoryPos)
		h.SetMax(s.maxHistory)
		t := &tab{
			id:      in.ID,
			title:   strings.TrimSpace(in.Title),
			loc:     h.Current(),
			hist:    h,
			split:   in.SplitView,
			aiQ:     in.AIQuery,
			webQ:    in.WebQuery,
			order:   in.PreferredOrder,
			last:    in.LastSearch,
			lastWeb: in.LastWebQuery,
			lastAI:  in.LastAIQuery,
			marked:  in.IsBookmarked && s.shortcuts.Has(in.ID),
		}
		if t.id == "" {
			t.id = s.newID()
		}
		if t.title == "" {
			t.title = titleFor(t.loc)
		}
		if t.split && (t.aiQ == "" || t.webQ == "") {
			clearSplit(t)
		}
		restored = append(restored, t)
	}
	s.tabs = restored

	s.active = ""
	if _, t := s.find(st.Active); t != nil {
		s.active = t.id
	} else if n := len(s.tabs); n > 0 {
		s.active = s.tabs[n-1].id
	}
	active, n := s.active, len(s.tabs)
	s.mu.Unlock()

	s.log.Info("session restored", zap.Int("tabs", n))
	s.emit(Event{Kind: EventRestored, TabID: active})
}
