package ui

import (
	"github.com/charmbracelet/lipgloss"

	"splitbrowse/theme"
)

type styles struct {
	sidebar     lipgloss.Style
	heading     lipgloss.Style
	tab         lipgloss.Style
	activeTab   lipgloss.Style
	bookmark    lipgloss.Style
	selected    lipgloss.Style
	omnibox     lipgloss.Style
	pane        lipgloss.Style
	paneTitle   lipgloss.Style
	resultTitle lipgloss.Style
	resultURL   lipgloss.Style
	dim         lipgloss.Style
	err         lipgloss.Style
	warn        lipgloss.Style
	status      lipgloss.Style
}

func newStyles(t *theme.Theme) styles {
	return styles{
		sidebar:     lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(t.Border),
		heading:     lipgloss.NewStyle().Foreground(t.Dim).Bold(true),
		tab:         lipgloss.NewStyle().Foreground(t.Foreground),
		activeTab:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		bookmark:    lipgloss.NewStyle().Foreground(t.Gold),
		selected:    lipgloss.NewStyle().Foreground(t.Accent).Reverse(true),
		omnibox:     lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(t.Accent).Padding(0, 1),
		pane:        lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1),
		paneTitle:   lipgloss.NewStyle().Foreground(t.Info).Bold(true),
		resultTitle: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		resultURL:   lipgloss.NewStyle().Foreground(t.Success),
		dim:         lipgloss.NewStyle().Foreground(t.Dim),
		err:         lipgloss.NewStyle().Foreground(t.Error),
		warn:        lipgloss.NewStyle().Foreground(t.Warning),
		status:      lipgloss.NewStyle().Foreground(t.Dim),
	}
}
