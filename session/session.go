// Package session handles the signed-in user and saving and restoring the
// open tabs between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"splitbrowse/tabs"
)

// ErrNotSignedIn is returned by Logout when nobody is signed in.
var ErrNotSignedIn = errors.New("not signed in")

// Identity reports who is using the shell. Shortcuts are stored per user.
type Identity interface {
	CurrentUserID() (string, bool)
	Logout() error
}

// Static is an Identity fixed at startup, e.g. from config.
type Static struct {
	mu   sync.Mutex
	user string
}

// NewStatic returns an identity signed in as user. An empty user means
// signed out.
func NewStatic(user string) *Static {
	return &Static{user: user}
}

func (s *Static) CurrentUserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.user != ""
}

func (s *Static) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == "" {
		return ErrNotSignedIn
	}
	s.user = ""
	return nil
}

// Session represents the complete browser session state.
type Session struct {
	Tabs          tabs.State `json:"tabs"`
	SearchHistory []string   `json:"searchHistory,omitempty"`
}

// MaxSearchHistory bounds the saved omnibox history.
const MaxSearchHistory = 50

// Remember appends an omnibox entry, dropping an earlier copy and the
// oldest entries beyond MaxSearchHistory.
func (s *Session) Remember(entry string) {
	if entry == "" {
		return
	}
	for i, e := range s.SearchHistory {
		if e == entry {
			s.SearchHistory = append(s.SearchHistory[:i], s.SearchHistory[i+1:]...)
			break
		}
	}
	s.SearchHistory = append(s.SearchHistory, entry)
	if n := len(s.SearchHistory); n > MaxSearchHistory {
		s.SearchHistory = s.SearchHistory[n-MaxSearchHistory:]
	}
}

// Path returns the default session file path.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "splitbrowse", "session.json"), nil
}

// Load reads the session from path.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the session to path.
func Save(path string, s *Session) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Clear removes the session file. A missing file is not an error.
func Clear(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
