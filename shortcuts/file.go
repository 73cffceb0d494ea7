package shortcuts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FilePersistence stores each user's shortcuts in a JSON file.
type FilePersistence struct {
	dir string
	mu  sync.Mutex
}

type fileData struct {
	Shortcuts []Shortcut `json:"shortcuts"`
}

// NewFilePersistence stores files under dir.
func NewFilePersistence(dir string) *FilePersistence {
	return &FilePersistence{dir: dir}
}

// DefaultDir returns the default shortcut directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "splitbrowse", "shortcuts"), nil
}

func (f *FilePersistence) path(userID string) string {
	return filepath.Join(f.dir, filepath.Base(userID)+".json")
}

// LoadShortcuts reads the user's file. A missing file yields no shortcuts.
func (f *FilePersistence) LoadShortcuts(_ context.Context, userID string) ([]Shortcut, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, err := f.read(userID)
	if err != nil {
		return nil, err
	}
	return d.Shortcuts, nil
}

// SaveShortcut adds or replaces s in the user's file.
func (f *FilePersistence) SaveShortcut(_ context.Context, userID string, s Shortcut) error {
	return f.update(userID, func(d *fileData) {
		for i := range d.Shortcuts {
			if d.Shortcuts[i].ID == s.ID {
				d.Shortcuts[i] = s
				return
			}
		}
		d.Shortcuts = append(d.Shortcuts, s)
	})
}

// DeleteShortcut removes the shortcut with the given ID.
func (f *FilePersistence) DeleteShortcut(_ context.Context, userID, id string) error {
	return f.update(userID, func(d *fileData) {
		kept := d.Shortcuts[:0]
		for _, s := range d.Shortcuts {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		d.Shortcuts = kept
	})
}

// RenameShortcut retitles the shortcut with the given ID.
func (f *FilePersistence) RenameShortcut(_ context.Context, userID, id, title string) error {
	return f.update(userID, func(d *fileData) {
		for i := range d.Shortcuts {
			if d.Shortcuts[i].ID == id {
				d.Shortcuts[i].Title = title
			}
		}
	})
}

func (f *FilePersistence) update(userID string, fn func(*fileData)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := f.read(userID)
	if err != nil {
		return err
	}
	fn(d)

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating shortcut directory: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(userID), data, 0644)
}

func (f *FilePersistence) read(userID string) (*fileData, error) {
	var d fileData
	data, err := os.ReadFile(f.path(userID))
	if os.IsNotExist(err) {
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing shortcuts for %s: %w", userID, err)
	}
	return &d, nil
}
