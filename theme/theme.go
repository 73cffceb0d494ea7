// Package theme provides color theming for the terminal shell.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the shell chrome. Page and answer
// content keep their own styling; themes color the sidebar, omnibox,
// pane borders and feedback.
type Theme struct {
	Name string
	Dark bool // true if this is a dark theme

	Foreground lipgloss.Color // default text
	Dim        lipgloss.Color // dimmed/comment text
	Border     lipgloss.Color // inactive pane borders

	// Accent marks the active tab and focused pane.
	Accent lipgloss.Color

	// Feedback
	Error   lipgloss.Color
	Warning lipgloss.Color
	Success lipgloss.Color
	Info    lipgloss.Color

	// Gold marks bookmarked tabs.
	Gold lipgloss.Color
}

// GlamourStyle returns the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

// Built-in themes
var (
	DefaultDark = &Theme{
		Name:       "default-dark",
		Dark:       true,
		Foreground: "#e0e0e0",
		Dim:        "#666666",
		Border:     "#4a4a4a",
		Accent:     "#5fd7d7", // cyan
		Error:      "#d75f5f",
		Warning:    "#d7af5f",
		Success:    "#5fd75f",
		Info:       "#5f87d7",
		Gold:       "#ffd700",
	}

	DefaultLight = &Theme{
		Name:       "default-light",
		Foreground: "#1a1a1a",
		Dim:        "#888888",
		Border:     "#cccccc",
		Accent:     "#00838f", // teal
		Error:      "#c62828",
		Warning:    "#f57c00",
		Success:    "#2e7d32",
		Info:       "#1565c0",
		Gold:       "#b8860b", // dark goldenrod
	}

	// Solarized - Ethan Schoonover's precision colors
	SolarizedDark = &Theme{
		Name:       "solarized-dark",
		Dark:       true,
		Foreground: "#839496", // base0
		Dim:        "#586e75", // base01
		Border:     "#073642", // base02
		Accent:     "#2aa198", // cyan
		Error:      "#dc322f",
		Warning:    "#cb4b16",
		Success:    "#859900",
		Info:       "#268bd2",
		Gold:       "#b58900",
	}

	SolarizedLight = &Theme{
		Name:       "solarized-light",
		Foreground: "#657b83", // base00
		Dim:        "#93a1a1", // base1
		Border:     "#eee8d5", // base2
		Accent:     "#2aa198",
		Error:      "#dc322f",
		Warning:    "#cb4b16",
		Success:    "#859900",
		Info:       "#268bd2",
		Gold:       "#b58900",
	}

	// Nord - Arctic, north-bluish color palette
	Nord = &Theme{
		Name:       "nord",
		Dark:       true,
		Foreground: "#d8dee9", // nord4
		Dim:        "#4c566a", // nord3
		Border:     "#3b4252", // nord1
		Accent:     "#88c0d0", // nord8
		Error:      "#bf616a",
		Warning:    "#d08770",
		Success:    "#a3be8c",
		Info:       "#81a1c1",
		Gold:       "#ebcb8b",
	}
)

// All contains all built-in themes for iteration.
var All = []*Theme{
	DefaultDark,
	DefaultLight,
	SolarizedDark,
	SolarizedLight,
	Nord,
}

// Current is the active theme.
var Current = DefaultDark

// currentIndex tracks position in All for cycling.
var currentIndex = 0

// Set changes to a specific theme by name.
func Set(name string) bool {
	for i, t := range All {
		if t.Name == name {
			Current = t
			currentIndex = i
			return true
		}
	}
	return false
}

// Next cycles to the next theme.
func Next() {
	currentIndex = (currentIndex + 1) % len(All)
	Current = All[currentIndex]
}

// Toggle switches between light and dark variants if available.
// If current theme has no variant, cycles to the next theme.
func Toggle() {
	name := Current.Name
	switch {
	case strings.HasSuffix(name, "-dark"):
		name = strings.TrimSuffix(name, "-dark") + "-light"
	case strings.HasSuffix(name, "-light"):
		name = strings.TrimSuffix(name, "-light") + "-dark"
	}
	if name != Current.Name && Set(name) {
		return
	}
	Next()
}
