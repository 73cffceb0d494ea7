package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitbrowse/locator"
	"splitbrowse/shortcuts"
	"splitbrowse/tabs"
)

func TestStaticIdentity(t *testing.T) {
	id := NewStatic("ada")
	user, ok := id.CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, "ada", user)

	require.NoError(t, id.Logout())
	_, ok = id.CurrentUserID()
	assert.False(t, ok)
	assert.ErrorIs(t, id.Logout(), ErrNotSignedIn)
}

func TestSaveLoadRestoresTabs(t *testing.T) {
	sc := shortcuts.New(nil, "")
	defer sc.Close()
	store := tabs.New(sc)

	_, err := store.DispatchWebSearch("cats")
	require.NoError(t, err)
	_, err = store.DispatchAISearch("why do cats purr")
	require.NoError(t, err)
	require.NoError(t, store.ToggleSplitView(store.ActiveID()))
	second := store.AddTab()
	require.NoError(t, store.SetLocator(second.ID, locator.URL("https://go.dev")))

	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := &Session{Tabs: store.Snapshot()}
	s.Remember("cats")
	require.NoError(t, Save(path, s))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cats"}, loaded.SearchHistory)

	restored := tabs.New(sc)
	restored.Restore(loaded.Tabs)
	assert.Equal(t, store.Tabs(), restored.Tabs())
	assert.Equal(t, second.ID, restored.ActiveID())
}

func TestLoadMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, Save(path, &Session{}))
	require.NoError(t, Clear(path))
	require.NoError(t, Clear(path))
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRememberDeduplicatesAndBounds(t *testing.T) {
	var s Session
	s.Remember("a")
	s.Remember("b")
	s.Remember("a")
	s.Remember("")
	assert.Equal(t, []string{"b", "a"}, s.SearchHistory)

	for i := 0; i < MaxSearchHistory+10; i++ {
		s.Remember(string(rune('A' + i%26)) + string(rune('0'+i/26)))
	}
	assert.Len(t, s.SearchHistory, MaxSearchHistory)
}
