// Package config provides configuration loading for splitbrowse. Files are
// TOML, or YAML when the name ends in .yaml or .yml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Display settings
type Display struct {
	Theme         string `toml:"theme" yaml:"theme"`
	SidebarWidth  int    `toml:"sidebar_width" yaml:"sidebar_width"`
	ShowShortcuts bool   `toml:"show_shortcuts" yaml:"show_shortcuts"`
	ShowURL       bool   `toml:"show_url" yaml:"show_url"`
}

// Web search settings
type Search struct {
	Provider       string `toml:"provider" yaml:"provider"` // google, duckduckgo, wikipedia; empty picks google when keyed
	GoogleAPIKey   string `toml:"google_api_key" yaml:"google_api_key"`
	GoogleCSEID    string `toml:"google_cse_id" yaml:"google_cse_id"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// AI answer settings
type AI struct {
	Provider        string `toml:"provider" yaml:"provider"` // gemini, claude-api, openai
	Model           string `toml:"model" yaml:"model"`
	GeminiAPIKey    string `toml:"gemini_api_key" yaml:"gemini_api_key"`
	AnthropicAPIKey string `toml:"anthropic_api_key" yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `toml:"openai_api_key" yaml:"openai_api_key"`
}

// Embedded page settings
type Fetcher struct {
	UserAgent      string `toml:"user_agent" yaml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
	ProbeFrames    bool   `toml:"probe_frames" yaml:"probe_frames"`
	EmbedOrigin    string `toml:"embed_origin" yaml:"embed_origin"`
}

// Per-tab navigation history
type History struct {
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`
}

// Session settings
type Session struct {
	Restore bool   `toml:"restore" yaml:"restore"`
	User    string `toml:"user" yaml:"user"`
	Path    string `toml:"path" yaml:"path"` // empty = default location
}

// Shortcut storage
type Shortcuts struct {
	Backend string `toml:"backend" yaml:"backend"` // file, sqlite, none
	Path    string `toml:"path" yaml:"path"`       // directory for file, database file for sqlite
}

// Log settings
type Log struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// Keybindings configuration. Values use bubbletea key names, e.g. "ctrl+l".
type Keybindings struct {
	Quit           string `toml:"quit" yaml:"quit"`
	Omnibox        string `toml:"omnibox" yaml:"omnibox"`
	NewTab         string `toml:"new_tab" yaml:"new_tab"`
	CloseTab       string `toml:"close_tab" yaml:"close_tab"`
	NextTab        string `toml:"next_tab" yaml:"next_tab"`
	PrevTab        string `toml:"prev_tab" yaml:"prev_tab"`
	Back           string `toml:"back" yaml:"back"`
	Forward        string `toml:"forward" yaml:"forward"`
	Refresh        string `toml:"refresh" yaml:"refresh"`
	ToggleSplit    string `toml:"toggle_split" yaml:"toggle_split"`
	ToggleBookmark string `toml:"toggle_bookmark" yaml:"toggle_bookmark"`
	RenameTab      string `toml:"rename_tab" yaml:"rename_tab"`
	Shortcuts      string `toml:"shortcuts" yaml:"shortcuts"`
	WebSearch      string `toml:"web_search" yaml:"web_search"`
	AISearch       string `toml:"ai_search" yaml:"ai_search"`
	Results        string `toml:"results" yaml:"results"`
	OpenExternal   string `toml:"open_external" yaml:"open_external"`
	AddShortcut    string `toml:"add_shortcut" yaml:"add_shortcut"`
	Logout         string `toml:"logout" yaml:"logout"`
}

// Config is the main configuration struct
type Config struct {
	Display     Display     `toml:"display" yaml:"display"`
	Search      Search      `toml:"search" yaml:"search"`
	AI          AI          `toml:"ai" yaml:"ai"`
	Fetcher     Fetcher     `toml:"fetcher" yaml:"fetcher"`
	History     History     `toml:"history" yaml:"history"`
	Session     Session     `toml:"session" yaml:"session"`
	Shortcuts   Shortcuts   `toml:"shortcuts" yaml:"shortcuts"`
	Log         Log         `toml:"log" yaml:"log"`
	Keybindings Keybindings `toml:"keybindings" yaml:"keybindings"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Display: Display{
			Theme:         "default-dark",
			SidebarWidth:  28,
			ShowShortcuts: true,
			ShowURL:       true,
		},
		Search: Search{
			TimeoutSeconds: 30,
		},
		AI: AI{
			Provider: "gemini",
		},
		Fetcher: Fetcher{
			UserAgent:      "splitbrowse/1.0",
			TimeoutSeconds: 10,
			ProbeFrames:    true,
		},
		History: History{
			MaxEntries: 100,
		},
		Session: Session{
			Restore: true,
		},
		Shortcuts: Shortcuts{
			Backend: "file",
		},
		Log: Log{
			Level: "info",
		},
		Keybindings: Keybindings{
			Quit:           "ctrl+c",
			Omnibox:        "ctrl+l",
			NewTab:         "ctrl+t",
			CloseTab:       "ctrl+w",
			NextTab:        "ctrl+n",
			PrevTab:        "ctrl+p",
			Back:           "alt+left",
			Forward:        "alt+right",
			Refresh:        "ctrl+r",
			ToggleSplit:    "ctrl+s",
			ToggleBookmark: "ctrl+d",
			RenameTab:      "f2",
			Shortcuts:      "ctrl+o",
			WebSearch:      "ctrl+g",
			AISearch:       "ctrl+a",
			Results:        "ctrl+f",
			OpenExternal:   "ctrl+e",
			AddShortcut:    "ctrl+b",
			Logout:         "ctrl+q",
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "splitbrowse"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads configuration, layering the file at path on top of defaults and
// environment overrides on top of both. An empty path means ConfigPath.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			applyEnv(cfg, os.Getenv)
			return cfg, nil // Return defaults if we can't determine path
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyEnv(cfg, os.Getenv)
	return cfg, nil
}

// decode layers the file contents onto cfg. Keys absent from the file keep
// their current values, so false booleans in the file do override defaults.
func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parsing config YAML: %w", err)
		}
		return nil
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parsing config TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return nil
}

// applyEnv fills settings from the environment. Keys already present in the
// config file win.
func applyEnv(cfg *Config, getenv func(string) string) {
	setIfEmpty(&cfg.Search.GoogleAPIKey, getenv("GOOGLE_API_KEY"))
	setIfEmpty(&cfg.Search.GoogleCSEID, getenv("GOOGLE_CSE_ID"))
	setIfEmpty(&cfg.AI.GeminiAPIKey, getenv("GEMINI_API_KEY"))
	setIfEmpty(&cfg.AI.GeminiAPIKey, getenv("GOOGLE_API_KEY"))
	setIfEmpty(&cfg.AI.AnthropicAPIKey, getenv("ANTHROPIC_API_KEY"))
	setIfEmpty(&cfg.AI.OpenAIAPIKey, getenv("OPENAI_API_KEY"))
	setIfEmpty(&cfg.Session.User, getenv("SPLITBROWSE_USER"))

	if v := getenv("SPLITBROWSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv("SPLITBROWSE_HISTORY_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.History.MaxEntries = n
		}
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Shortcuts.Backend {
	case "file", "sqlite", "none":
	default:
		return fmt.Errorf("shortcuts.backend must be file, sqlite or none, got %q", c.Shortcuts.Backend)
	}
	if c.History.MaxEntries < 1 {
		return fmt.Errorf("history.max_entries must be positive, got %d", c.History.MaxEntries)
	}
	if c.Search.TimeoutSeconds < 1 {
		return fmt.Errorf("search.timeout_seconds must be positive, got %d", c.Search.TimeoutSeconds)
	}
	return nil
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# splitbrowse configuration
# Save to ~/.config/splitbrowse/config.toml and customize
# Only include settings you want to change from defaults

[display]
theme = "default-dark"        # default-dark, default-light, solarized-dark, solarized-light, nord
sidebar_width = 28
show_shortcuts = true
show_url = true

# Web search. provider is google, duckduckgo or wikipedia.
# Without google_api_key and google_cse_id, DuckDuckGo is used.
[search]
provider = ""
google_api_key = ""           # or GOOGLE_API_KEY
google_cse_id = ""            # or GOOGLE_CSE_ID
timeout_seconds = 30

# AI answers. provider is gemini, claude-api or openai.
[ai]
provider = "gemini"
model = ""                    # empty = provider default
gemini_api_key = ""           # or GEMINI_API_KEY / GOOGLE_API_KEY
anthropic_api_key = ""        # or ANTHROPIC_API_KEY
openai_api_key = ""           # or OPENAI_API_KEY

# Embedded pages
[fetcher]
user_agent = "splitbrowse/1.0"
timeout_seconds = 10
probe_frames = true           # Check X-Frame-Options / CSP before embedding
embed_origin = ""

[history]
max_entries = 100

[session]
restore = true                # Restore previous tabs on startup
user = ""                     # Shortcuts are stored per user
path = ""

# Shortcut storage. backend is file, sqlite or none.
[shortcuts]
backend = "file"
path = ""

[log]
level = "info"
file = ""                     # empty = no log file in interactive mode

[keybindings]
quit = "ctrl+c"
omnibox = "ctrl+l"
new_tab = "ctrl+t"
close_tab = "ctrl+w"
next_tab = "ctrl+n"
prev_tab = "ctrl+p"
back = "alt+left"
forward = "alt+right"
refresh = "ctrl+r"
toggle_split = "ctrl+s"
toggle_bookmark = "ctrl+d"
rename_tab = "f2"
shortcuts = "ctrl+o"
web_search = "ctrl+g"
ai_search = "ctrl+a"
results = "ctrl+f"            # Pick a search result to open
open_external = "ctrl+e"      # Open the page in the system browser
add_shortcut = "ctrl+b"
logout = "ctrl+q"
`
}

// FormatError formats a configuration error for user display.
func FormatError(err error) string {
	return fmt.Sprintf("Configuration error:\n\n%s", err.Error())
}
