package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"GOOGLE_API_KEY", "GOOGLE_CSE_ID", "GEMINI_API_KEY", "ANTHROPIC_API_KEY",
		"OPENAI_API_KEY", "SPLITBROWSE_USER", "SPLITBROWSE_LOG_LEVEL", "SPLITBROWSE_HISTORY_MAX"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOMLLayersOnDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[search]
provider = "wikipedia"

[session]
restore = false

[keybindings]
quit = "q"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wikipedia", cfg.Search.Provider)
	assert.False(t, cfg.Session.Restore, "explicit false overrides default")
	assert.Equal(t, "q", cfg.Keybindings.Quit)
	assert.Equal(t, "ctrl+l", cfg.Keybindings.Omnibox)
	assert.Equal(t, 100, cfg.History.MaxEntries)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
shortcuts:
  backend: sqlite
  path: /tmp/shortcuts.db
history:
  max_entries: 20
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Shortcuts.Backend)
	assert.Equal(t, "/tmp/shortcuts.db", cfg.Shortcuts.Path)
	assert.Equal(t, 20, cfg.History.MaxEntries)
	assert.Equal(t, "file", Default().Shortcuts.Backend)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "config.toml", "[search]\nprovidr = \"x\"\n"))
	assert.ErrorContains(t, err, "providr")

	_, err = Load(writeFile(t, "config.yml", "search:\n  providr: x\n"))
	assert.Error(t, err)
}

func TestLoadEmptyYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "config.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"GOOGLE_API_KEY":          "gkey",
		"ANTHROPIC_API_KEY":       "akey",
		"SPLITBROWSE_LOG_LEVEL":   "debug",
		"SPLITBROWSE_HISTORY_MAX": "7",
	}
	cfg := Default()
	cfg.AI.OpenAIAPIKey = "from-file"
	applyEnv(cfg, func(k string) string { return env[k] })

	assert.Equal(t, "gkey", cfg.Search.GoogleAPIKey)
	assert.Equal(t, "gkey", cfg.AI.GeminiAPIKey, "Gemini falls back to the Google key")
	assert.Equal(t, "akey", cfg.AI.AnthropicAPIKey)
	assert.Equal(t, "from-file", cfg.AI.OpenAIAPIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7, cfg.History.MaxEntries)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Shortcuts.Backend = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.History.MaxEntries = 0
	assert.Error(t, cfg.Validate())
}

func TestDefaultTOMLMatchesDefault(t *testing.T) {
	cfg := Default()
	md, err := toml.Decode(DefaultTOML(), cfg)
	require.NoError(t, err)
	assert.Empty(t, md.Undecoded())
	assert.Equal(t, Default(), cfg)
}
