// Package history implements a tab's back/forward navigation stack.
package history

import "splitbrowse/locator"

// DefaultMaxEntries bounds a history when no limit is configured.
const DefaultMaxEntries = 100

// History is an ordered list of visited locators with a cursor.
// The cursor always points at a valid entry.
type History struct {
	entries []locator.Locator
	pos     int
	max     int
}

// New returns a history seeded with the tab's first locator.
func New(initial locator.Locator) *History {
	return &History{
		entries: []locator.Locator{initial},
		max:     DefaultMaxEntries,
	}
}

// SetMax sets the maximum number of retained entries. Values below one
// disable the bound.
func (h *History) SetMax(n int) {
	h.max = n
	h.trim()
}

// Visit records a navigation to l. Visiting the current entry is a no-op.
// Any forward entries are discarded. Reports whether the history changed.
func (h *History) Visit(l locator.Locator) bool {
	if h.entries[h.pos] == l {
		return false
	}
	h.entries = append(h.entries[:h.pos+1], l)
	h.pos = len(h.entries) - 1
	h.trim()
	return true
}

// Back moves the cursor one entry back. At the first entry it does nothing
// and returns false.
func (h *History) Back() (locator.Locator, bool) {
	if h.pos == 0 {
		return h.entries[h.pos], false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Forward moves the cursor one entry forward. At the last entry it does
// nothing and returns false.
func (h *History) Forward() (locator.Locator, bool) {
	if h.pos == len(h.entries)-1 {
		return h.entries[h.pos], false
	}
	h.pos++
	return h.entries[h.pos], true
}

// Refresh returns the current entry without moving the cursor.
func (h *History) Refresh() locator.Locator {
	return h.entries[h.pos]
}

// Current returns the entry under the cursor.
func (h *History) Current() locator.Locator {
	return h.entries[h.pos]
}

// Position returns the cursor index.
func (h *History) Position() int { return h.pos }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// CanBack reports whether Back would move.
func (h *History) CanBack() bool { return h.pos > 0 }

// CanForward reports whether Forward would move.
func (h *History) CanForward() bool { return h.pos < len(h.entries)-1 }

// Entries returns a copy of the recorded locators.
func (h *History) Entries() []locator.Locator {
	out := make([]locator.Locator, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clone returns an independent copy.
func (h *History) Clone() *History {
	return &History{entries: h.Entries(), pos: h.pos, max: h.max}
}

// Restore rebuilds a history from saved entries. An empty slice yields a
// blank history and an out-of-range position is clamped to the tail.
func Restore(entries []locator.Locator, pos int) *History {
	if len(entries) == 0 {
		return New(locator.Blank())
	}
	h := &History{
		entries: append([]locator.Locator(nil), entries...),
		pos:     pos,
		max:     DefaultMaxEntries,
	}
	if h.pos < 0 || h.pos >= len(h.entries) {
		h.pos = len(h.entries) - 1
	}
	return h
}

// trim drops the oldest entries past the bound, keeping the cursor on the
// same locator.
func (h *History) trim() {
	if h.max < 1 || len(h.entries) <= h.max {
		return
	}
	drop := len(h.entries) - h.max
	if drop > h.pos {
		drop = h.pos
	}
	h.entries = append([]locator.Locator(nil), h.entries[drop:]...)
	h.pos -= drop
}
