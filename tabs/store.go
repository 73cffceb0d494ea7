// Package tabs owns the open tabs, the active tab and every tab mutation.
package tabs

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"splitbrowse/history"
	"splitbrowse/locator"
	"splitbrowse/logging"
	"splitbrowse/omnibox"
	"splitbrowse/shortcuts"
)

var (
	// ErrTabNotFound is returned when no tab has the given ID.
	ErrTabNotFound = errors.New("tab not found")
	// ErrEmptyTitle is returned when renaming a tab to a blank title.
	ErrEmptyTitle = errors.New("tab title cannot be empty")
	// ErrEmptyQuery is returned when dispatching a blank search.
	ErrEmptyQuery = errors.New("search query cannot be empty")
	// ErrShortcutNotFound is returned when opening an unknown shortcut.
	ErrShortcutNotFound = errors.New("shortcut not found")
)

// Store holds the ordered tabs and the active tab pointer. All mutations
// take the store lock and run to completion, so no mutation observes a
// half-applied one. Listeners run after the lock is released.
type Store struct {
	mu     sync.Mutex
	tabs   []*tab
	active string

	shortcuts  *shortcuts.Store
	parser     *omnibox.Parser
	newID      func() string
	maxHistory int
	log        *zap.Logger

	lmu       sync.Mutex
	listeners []func(Event)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = logging.OrNop(l) }
}

// WithIDFunc replaces the tab ID generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithHistoryLimit bounds each tab's history.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.maxHistory = n }
}

// WithListener registers a listener for store events.
func WithListener(fn func(Event)) Option {
	return func(s *Store) { s.listeners = append(s.listeners, fn) }
}

// New creates a store holding one blank, active tab. Bookmarks are mirrored
// into sc; a nil sc keeps an in-memory store of its own.
func New(sc *shortcuts.Store, opts ...Option) *Store {
	if sc == nil {
		sc = shortcuts.New(nil, "")
	}
	s := &Store{
		shortcuts:  sc,
		parser:     omnibox.NewParser(),
		newID:      func() string { return uuid.NewString() },
		maxHistory: history.DefaultMaxEntries,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	first := s.newTab()
	s.tabs = []*tab{first}
	s.active = first.id
	return s
}

// Subscribe registers fn for store events.
func (s *Store) Subscribe(fn func(Event)) {
	s.lmu.Lock()
	s.listeners = append(s.listeners, fn)
	s.lmu.Unlock()
}

// Shortcuts returns the shortcut store kept in sync with bookmarks.
func (s *Store) Shortcuts() *shortcuts.Store {
	return s.shortcuts
}

func (s *Store) emit(events ...Event) {
	s.lmu.Lock()
	ls := append([]func(Event){}, s.listeners...)
	s.lmu.Unlock()
	for _, ev := range events {
		for _, fn := range ls {
			fn(ev)
		}
	}
}

func (s *Store) newTab() *tab {
	h := history.New(locator.Blank())
	h.SetMax(s.maxHistory)
	return &tab{
		id:    s.newID(),
		title: NewTabTitle,
		loc:   locator.Blank(),
		hist:  h,
	}
}

func (s *Store) find(id string) (int, *tab) {
	for i, t := range s.tabs {
		if t.id == id {
			return i, t
		}
	}
	return -1, nil
}

// AddTab appends a blank tab and makes it active.
func (s *Store) AddTab() Tab {
	s.mu.Lock()
	t := s.newTab()
	s.tabs = append(s.tabs, t)
	s.active = t.id
	snap := t.snapshot()
	s.mu.Unlock()

	s.log.Debug("tab added", zap.String("tab", snap.ID))
	s.emit(Event{Kind: EventAdded, TabID: snap.ID}, Event{Kind: EventActivated, TabID: snap.ID})
	return snap
}

// CloseTab removes a tab. Closing the active tab activates the last
// remaining tab, or none. Unknown IDs are ignored.
func (s *Store) CloseTab(id string) bool {
	s.mu.Lock()
	i, _ := s.find(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tabs = append(s.tabs[:i], s.tabs[i+1:]...)
	events := []Event{{Kind: EventClosed, TabID: id}}
	if s.active == id {
		s.active = ""
		if n := len(s.tabs); n > 0 {
			s.active = s.tabs[n-1].id
		}
		events = append(events, Event{Kind: EventActivated, TabID: s.active})
	}
	s.mu.Unlock()

	s.log.Debug("tab closed", zap.String("tab", id))
	s.emit(events...)
	return true
}

// SetActive makes the tab with the given ID active.
func (s *Store) SetActive(id string) bool {
	s.mu.Lock()
	if _, t := s.find(id); t == nil {
		s.mu.Unlock()
		return false
	}
	s.active = id
	s.mu.Unlock()

	s.emit(Event{Kind: EventActivated, TabID: id})
	return true
}

// RenameTab sets a tab's title. A bookmarked tab's shortcut gets the same
// title.
func (s *Store) RenameTab(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	s.mu.Lock()
	_, t := s.find(id)
	if t == nil {
		s.mu.Unlock()
		return ErrTabNotFound
	}
	t.title = title
	if t.marked {
		s.shortcuts.Rename(id, title)
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventRenamed, TabID: id})
	return nil
}

// NavOption adjusts SetLocator.
type NavOption func(*navOpts)

type navOpts struct {
	exitSplit bool
}

// ExitSplit turns split view off as part of the navigation, discarding the
// pane queries.
func ExitSplit() NavOption {
	return func(o *navOpts) { o.exitSplit = true }
}

// SetLocator points a tab at l and records it in the tab's history.
// Switching to a page clears the remembered search queries. Split panes are
// only cleared when ExitSplit is passed.
func (s *Store) SetLocator(id string, l locator.Locator, opts ...NavOption) error {
	var o navOpts
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	_, t := s.find(id)
	if t == nil {
		s.mu.Unlock()
		return ErrTabNotFound
	}
	s.navigate(t, l)
	if o.exitSplit {
		clearSplit(t)
	}
	s.mu.Unlock()

	s.log.Debug("tab navigated", zap.String("tab", id), zap.Stringer("kind", l.Kind))
	s.emit(Event{Kind: EventNavigated, TabID: id})
	return nil
}

// navigate points t at l and records it in the tab's history. Callers hold
// s.mu.
func (s *Store) navigate(t *tab, l locator.Locator) {
	t.hist.Visit(l)
	point(t, l)
}

// point sets the locator, title and remembered queries of t without
// touching its history.
func point(t *tab, l locator.Locator) {
	t.loc = l
	t.title = titleFor(l)

	switch l.Kind {
	case locator.KindURL, locator.KindBlank:
		t.lastWeb, t.lastAI = "", ""
		t.last = SearchNone
	case locator.KindWeb:
		t.lastWeb = l.Value
		t.last = SearchWeb
		if t.split {
			t.webQ = l.Value
		}
	case locator.KindAI:
		t.lastAI = l.Value
		t.last = SearchAI
		if t.split {
			t.aiQ = l.Value
		}
	}
}

// DispatchWebSearch points the active tab at a web search for q.
func (s *Store) DispatchWebSearch(q string) (Tab, error) {
	return s.dispatch(locator.Web(strings.TrimSpace(q)))
}

// DispatchAISearch points the active tab at an AI answer for q.
func (s *Store) DispatchAISearch(q string) (Tab, error) {
	return s.dispatch(locator.AI(strings.TrimSpace(q)))
}

// dispatch mutates the active tab in place. With no active tab a new one is
// opened for it.
func (s *Store) dispatch(l locator.Locator) (Tab, error) {
	if l.Kind != locator.KindBlank && l.Value == "" {
		return Tab{}, ErrEmptyQuery
	}

	var events []Event
	s.mu.Lock()
	_, t := s.find(s.active)
	if t == nil {
		t = s.newTab()
		s.tabs = append(s.tabs, t)
		s.active = t.id
		events = append(events, Event{Kind: EventAdded, TabID: t.id}, Event{Kind: EventActivated, TabID: t.id})
	}
	s.navigate(t, l)
	snap := t.snapshot()
	s.mu.Unlock()

	s.log.Info("tab dispatched",
		zap.String("tab", snap.ID),
		zap.Stringer("kind", l.Kind),
		zap.String("query", l.Value))
	s.emit(append(events, Event{Kind: EventNavigated, TabID: snap.ID})...)
	return snap, nil
}

// ToggleSplitView switches a tab between one pane and two. Turning it on
// seeds each pane from the current locator when it is that pane's kind of
// search, then from the tab's last query, then from its title.
// Turning it off leaves the single-pane locator as it was.
func (s *Store) ToggleSplitView(id string) error {
	s.mu.Lock()
	_, t := s.find(id)
	if t == nil {
		s.mu.Unlock()
		return ErrTabNotFound
	}

	if t.split {
		clearSplit(t)
	} else {
		seed := t.title
		if seed == "" {
			seed = t.loc.String()
		}
		t.split = true
		t.aiQ = firstNonEmpty(queryOf(t.loc, locator.KindAI), t.lastAI, seed)
		t.webQ = firstNonEmpty(queryOf(t.loc, locator.KindWeb), t.lastWeb, seed)
		if t.last == SearchNone {
			t.last = SearchWeb
		}
		t.order = WebFirst
		if t.last == SearchAI {
			t.order = AIFirst
		}
	}
	on := t.split
	s.mu.Unlock()

	s.log.Debug("split view toggled", zap.String("tab", id), zap.Bool("on", on))
	s.emit(Event{Kind: EventSplitToggled, TabID: id})
	return nil
}

func queryOf(l locator.Locator, k locator.Kind) string {
	if l.Kind == k {
		return l.Value
	}
	return ""
}

func clearSplit(t *tab) {
	t.split = false
	t.aiQ, t.webQ = "", ""
	t.order = WebFirst
}

// ToggleBookmark flips a tab's bookmark flag, adding or removing its
// shortcut to match.
func (s *Store) ToggleBookmark(id string) error {
	s.mu.Lock()
	_, t := s.find(id)
	if t == nil {
		s.mu.Unlock()
		return ErrTabNotFound
	}

	if t.marked {
		t.marked = false
		s.shortcuts.Remove(id)
	} else {
		sc := shortcuts.FromLocator(id, t.title, t.loc)
		if err := s.shortcuts.Add(sc); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("bookmarking tab %s: %w", id, err)
		}
		t.marked = true
	}
	marked := t.marked
	s.mu.Unlock()

	s.log.Debug("bookmark toggled", zap.String("tab", id), zap.Bool("bookmarked", marked))
	s.emit(Event{Kind: EventBookmarkToggled, TabID: id})
	return nil
}

// Back moves a tab one step back in its history.
func (s *Store) Back(id string) (locator.Locator, bool) {
	return s.move(id, (*history.History).Back)
}

// Forward moves a tab one step forward in its history.
func (s *Store) Forward(id string) (locator.Locator, bool) {
	return s.move(id, (*history.History).Forward)
}

func (s *Store) move(id string, step func(*history.History) (locator.Locator, bool)) (locator.Locator, bool) {
	s.mu.Lock()
	_, t := s.find(id)
	if t == nil {
		s.mu.Unlock()
		return locator.Locator{}, false
	}
	l, ok := step(t.hist)
	if ok {
		point(t, l)
	}
	s.mu.Unlock()

	if ok {
		s.emit(Event{Kind: EventNavigated, TabID: id})
	}
	return l, ok
}

// Refresh asks for the tab's current locator to be fetched again without
// touching its history.
func (s *Store) Refresh(id string) (locator.Locator, bool) {
	s.mu.Lock()
	_, t := s.find(id)
	if t == nil {
		s.mu.Unlock()
		return locator.Locator{}, false
	}
	l := t.hist.Refresh()
	s.mu.Unlock()

	s.emit(Event{Kind: EventRefreshed, TabID: id})
	return l, true
}

// OpenShortcut navigates the active tab to the locator a shortcut was saved
// with, opening a tab first when none is active. The address is not parsed
// again.
func (s *Store) OpenShortcut(shortcutID string) (Tab, error) {
	sc, ok := s.shortcuts.Get(shortcutID)
	if !ok {
		return Tab{}, ErrShortcutNotFound
	}
	return s.dispatch(sc.Locator())
}

// AddShortcut saves a page shortcut that is not tied to a tab. An address
// without a scheme gets https://.
func (s *Store) AddShortcut(title, rawURL string) (shortcuts.Shortcut, error) {
	title, rawURL = strings.TrimSpace(title), strings.TrimSpace(rawURL)
	if rawURL != "" && !strings.Contains(rawURL, "://") && rawURL != locator.BlankURL {
		rawURL = "https://" + rawURL
	}

	s.mu.Lock()
	id := s.newID()
	s.mu.Unlock()

	sc := shortcuts.FromLocator(id, title, locator.URL(rawURL))
	if err := s.shortcuts.Add(sc); err != nil {
		return shortcuts.Shortcut{}, fmt.Errorf("adding shortcut: %w", err)
	}
	s.log.Debug("shortcut added", zap.String("shortcut", id))
	return sc, nil
}

// SyncBookmarks clears the bookmark flag of tabs whose shortcut is gone,
// as after the shortcut store switches user.
func (s *Store) SyncBookmarks() {
	var events []Event
	s.mu.Lock()
	for _, t := range s.tabs {
		if t.marked && !s.shortcuts.Has(t.id) {
			t.marked = false
			events = append(events, Event{Kind: EventBookmarkToggled, TabID: t.id})
		}
	}
	s.mu.Unlock()
	s.emit(events...)
}

// Open handles address bar input: the input is parsed once into a locator
// and the active tab navigates to it.
func (s *Store) Open(input string) (Tab, error) {
	res := s.parser.Parse(input)
	if res.Empty() {
		return Tab{}, ErrEmptyQuery
	}
	return s.dispatch(res.Locator)
}

// Parser returns the omnibox parser used by Open.
func (s *Store) Parser() *omnibox.Parser {
	return s.parser
}

// Tabs returns snapshots of all tabs in order.
func (s *Store) Tabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = t.snapshot()
	}
	return out
}

// Len returns the number of open tabs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tabs)
}

// Active returns the active tab, if any.
func (s *Store) Active() (Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, t := s.find(s.active); t != nil {
		return t.snapshot(), true
	}
	return Tab{}, false
}

// ActiveID returns the active tab ID, or "" when no tab is active.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Get returns the tab with the given ID.
func (s *Store) Get(id string) (Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, t := s.find(id); t != nil {
		return t.snapshot(), true
	}
	return Tab{}, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
