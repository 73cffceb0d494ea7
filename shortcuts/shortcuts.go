// Package shortcuts keeps the bookmarked tabs of a user.
package shortcuts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"splitbrowse/locator"
	"splitbrowse/logging"
)

// ErrInvalidShortcut is returned when a shortcut has no title or URL.
var ErrInvalidShortcut = errors.New("shortcut needs a title and a url")

// Shortcut is a bookmark. ID matches the tab it was created from, but the
// shortcut outlives that tab. URL holds the locator value and Kind its
// locator kind; a shortcut saved without a kind is a page.
type Shortcut struct {
	ID      string    `json:"id" yaml:"id"`
	Title   string    `json:"title" yaml:"title"`
	URL     string    `json:"url" yaml:"url"`
	Kind    string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}

// FromLocator builds the shortcut for a tab pointing at l.
func FromLocator(id, title string, l locator.Locator) Shortcut {
	return Shortcut{ID: id, Title: title, URL: l.FrameURL(), Kind: l.Kind.String()}
}

// Locator returns what the shortcut opens.
func (s Shortcut) Locator() locator.Locator {
	k, ok := locator.ParseKind(s.Kind)
	if !ok {
		k = locator.KindURL
	}
	if k == locator.KindBlank {
		return locator.Blank()
	}
	return locator.Locator{Kind: k, Value: s.URL}
}

// Validate checks the fields a shortcut cannot live without.
func (s Shortcut) Validate() error {
	if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.URL) == "" {
		return ErrInvalidShortcut
	}
	return nil
}

// Persistence loads and saves a user's shortcuts.
type Persistence interface {
	LoadShortcuts(ctx context.Context, userID string) ([]Shortcut, error)
	SaveShortcut(ctx context.Context, userID string, s Shortcut) error
}

// Deleter is implemented by persistence backends that can remove shortcuts.
type Deleter interface {
	DeleteShortcut(ctx context.Context, userID, id string) error
}

// Renamer is implemented by persistence backends that can retitle shortcuts.
type Renamer interface {
	RenameShortcut(ctx context.Context, userID, id, title string) error
}

// Store is the in-memory shortcut collection. Memory is the source of truth:
// persistence runs in the background, in mutation order, and its failures
// are logged without touching the in-memory state. Queuing a write never
// blocks the caller.
type Store struct {
	mu        sync.Mutex
	shortcuts []Shortcut
	userID    string

	persist Persistence
	log     *zap.Logger

	qmu    sync.Mutex
	qcond  *sync.Cond
	queue  []job
	busy   bool // a job is running
	closed bool
	done   chan struct{}
}

// job is a queued persistence write for one user.
type job struct {
	userID string
	fn     func(ctx context.Context, userID string)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = logging.OrNop(l) }
}

// New creates a store backed by p for userID. A nil p keeps shortcuts in
// memory only.
func New(p Persistence, userID string, opts ...Option) *Store {
	if p == nil {
		p = Nop{}
	}
	s := &Store{
		persist: p,
		userID:  userID,
		log:     zap.NewNop(),
		done:    make(chan struct{}),
	}
	s.qcond = sync.NewCond(&s.qmu)
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

func (s *Store) run() {
	defer close(s.done)
	for {
		s.qmu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.qcond.Wait()
		}
		if len(s.queue) == 0 {
			s.qmu.Unlock()
			return
		}
		j := s.queue[0]
		s.queue[0] = job{}
		s.queue = s.queue[1:]
		s.busy = true
		s.qmu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		j.fn(ctx, j.userID)
		cancel()

		s.qmu.Lock()
		s.busy = false
		s.qcond.Broadcast()
		s.qmu.Unlock()
	}
}

// flush waits until every queued write has run.
func (s *Store) flush() {
	s.qmu.Lock()
	for len(s.queue) > 0 || s.busy {
		s.qcond.Wait()
	}
	s.qmu.Unlock()
}

// enqueue queues a write for userID. Anonymous users are never persisted
// and writes after Close are dropped.
func (s *Store) enqueue(userID string, fn func(ctx context.Context, userID string)) {
	if userID == "" {
		return
	}
	s.qmu.Lock()
	defer s.qmu.Unlock()
	if s.closed {
		s.log.Warn("shortcut store closed, dropping write", zap.String("user", userID))
		return
	}
	s.queue = append(s.queue, job{userID: userID, fn: fn})
	s.qcond.Broadcast()
}

// Close flushes pending persistence work and stops the background worker.
// It is safe to call more than once.
func (s *Store) Close() {
	s.qmu.Lock()
	s.closed = true
	s.qcond.Broadcast()
	s.qmu.Unlock()
	<-s.done
}

// UserID returns the user whose shortcuts are held.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// SwitchUser drops the in-memory shortcuts and loads those of userID. An
// empty userID leaves the store empty and memory-only.
func (s *Store) SwitchUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.userID = userID
	s.shortcuts = nil
	s.mu.Unlock()

	s.log.Info("shortcut user switched", zap.Bool("signed_in", userID != ""))
	return s.Load(ctx)
}

// Load replaces the in-memory set with the persisted one, after any queued
// writes have landed. On failure the current set is kept.
func (s *Store) Load(ctx context.Context) error {
	user := s.UserID()
	if user == "" {
		return nil
	}
	s.flush()
	loaded, err := s.persist.LoadShortcuts(ctx, user)
	if err != nil {
		s.log.Warn("loading shortcuts", zap.String("user", user), zap.Error(err))
		return err
	}

	s.mu.Lock()
	if s.userID != user {
		s.mu.Unlock()
		return nil
	}
	s.shortcuts = s.shortcuts[:0]
	for _, sc := range loaded {
		if sc.Validate() == nil {
			s.shortcuts = append(s.shortcuts, sc)
		}
	}
	n := len(s.shortcuts)
	s.mu.Unlock()

	s.log.Debug("shortcuts loaded", zap.String("user", user), zap.Int("count", n))
	return nil
}

// Add inserts sc, replacing any shortcut with the same ID.
func (s *Store) Add(sc Shortcut) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if sc.AddedAt.IsZero() {
		sc.AddedAt = time.Now()
	}

	s.mu.Lock()
	if i := s.index(sc.ID); i >= 0 {
		s.shortcuts[i] = sc
	} else {
		s.shortcuts = append(s.shortcuts, sc)
	}
	user := s.userID
	s.mu.Unlock()

	s.enqueue(user, func(ctx context.Context, user string) {
		if err := s.persist.SaveShortcut(ctx, user, sc); err != nil {
			s.log.Warn("saving shortcut", zap.String("id", sc.ID), zap.Error(err))
		}
	})
	return nil
}

// Remove deletes the shortcut with the given ID.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.shortcuts = append(s.shortcuts[:i], s.shortcuts[i+1:]...)
	user := s.userID
	s.mu.Unlock()

	if d, ok := s.persist.(Deleter); ok {
		s.enqueue(user, func(ctx context.Context, user string) {
			if err := d.DeleteShortcut(ctx, user, id); err != nil {
				s.log.Warn("deleting shortcut", zap.String("id", id), zap.Error(err))
			}
		})
	}
	return true
}

// Rename sets the title of the shortcut with the given ID.
func (s *Store) Rename(id, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.shortcuts[i].Title = title
	user := s.userID
	s.mu.Unlock()

	if r, ok := s.persist.(Renamer); ok {
		s.enqueue(user, func(ctx context.Context, user string) {
			if err := r.RenameShortcut(ctx, user, id, title); err != nil {
				s.log.Warn("renaming shortcut", zap.String("id", id), zap.Error(err))
			}
		})
	}
	return true
}

// Get returns the shortcut with the given ID.
func (s *Store) Get(id string) (Shortcut, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.shortcuts[i], true
	}
	return Shortcut{}, false
}

// Has reports whether a shortcut with the given ID exists.
func (s *Store) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// List returns a copy of all shortcuts in insertion order.
func (s *Store) List() []Shortcut {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Shortcut, len(s.shortcuts))
	copy(out, s.shortcuts)
	return out
}

// Len returns the number of shortcuts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shortcuts)
}

func (s *Store) index(id string) int {
	for i, sc := range s.shortcuts {
		if sc.ID == id {
			return i
		}
	}
	return -1
}

// Nop is a persistence backend that stores nothing.
type Nop struct{}

// LoadShortcuts returns no shortcuts.
func (Nop) LoadShortcuts(context.Context, string) ([]Shortcut, error) { return nil, nil }

// SaveShortcut discards s.
func (Nop) SaveShortcut(context.Context, string, Shortcut) error { return nil }
