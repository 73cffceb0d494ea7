package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"splitbrowse/resolver"
	"splitbrowse/search"
	"splitbrowse/tabs"
)

const (
	omniboxHeight = 3 // bordered single line
	statusHeight  = 1
	paneChrome    = 3 // border plus title line
)

func (m *Model) contentWidth() int {
	w := m.width - m.opts.Display.SidebarWidth - 1
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) paneHeight() int {
	h := m.height - omniboxHeight - statusHeight - paneChrome
	if h < 3 {
		h = 3
	}
	return h
}

// syncContent refills the pane viewports from the active tab and the
// resolver's committed outcomes.
func (m *Model) syncContent() {
	t, ok := m.store.Active()
	if !ok {
		m.setPane(0, "", m.st.dim.Render("No open tabs. Press "+m.keys.NewTab.Help().Key+" to open one."), m.contentWidth())
		return
	}

	plan := resolver.Decide(t)
	view, _ := m.res.View(t.ID)
	outcomes := make(map[resolver.Pane]resolver.Outcome, len(view.Panes))
	for _, out := range view.Panes {
		outcomes[out.Pane] = out
	}

	layout := plan.Layout()
	width := m.contentWidth() / len(layout)
	for i, spec := range layout {
		out, ok := outcomes[spec.Pane]
		if !ok || out.Key != spec.Key {
			out = resolver.Outcome{Pane: spec.Pane, Mode: spec.Mode, Key: spec.Key, Status: resolver.StatusLoading}
		}
		m.setPane(i, spec.Key.String(), m.renderOutcome(out, width-4), width)
	}
}

func (m *Model) setPane(i int, key, content string, width int) {
	vp := &m.panes[i]
	vp.Width = width - 4
	vp.Height = m.paneHeight()
	vp.SetContent(content)
	if m.paneKey[i] != key {
		vp.GotoTop()
		m.paneKey[i] = key
	}
}

func (m *Model) renderOutcome(out resolver.Outcome, width int) string {
	switch out.Status {
	case resolver.StatusLoading:
		return m.st.dim.Render("Loading…")
	case resolver.StatusFailed:
		return m.st.err.Render(out.Err)
	}

	switch out.Mode {
	case resolver.ModeFrame:
		if out.Key.IsBlank() {
			return m.st.dim.Render("New Tab\n\nPress " + m.keys.Omnibox.Help().Key + " to enter an address, or open a shortcut.")
		}
		page := m.st.resultURL.Render(out.Key.FrameURL())
		if out.Title != "" {
			page = m.st.resultTitle.Render(out.Title) + "\n" + page
		}
		return page + "\n\n" + m.st.dim.Render("This page is shown in an embedded frame. Press "+
			m.keys.OpenExternal.Help().Key+" to open it in your browser.")
	case resolver.ModeFrameBlocked:
		return m.st.warn.Render("This page cannot be embedded.") + "\n" +
			m.st.dim.Render(out.Reason) + "\n\n" +
			m.st.resultURL.Render(out.Key.FrameURL()) + "\n\n" +
			m.st.dim.Render("Press "+m.keys.OpenExternal.Help().Key+" to open it in your browser.")
	case resolver.ModeResults:
		sel := -1
		if m.mode == modeResults {
			sel = m.cursor
		}
		return m.renderResults(out.Results, width, sel)
	case resolver.ModeAnswer:
		if out.Answer == nil {
			return ""
		}
		return m.renderMarkdown(out.Answer.Source, width)
	}
	return ""
}

// renderResults lists res, highlighting the result at index sel.
func (m *Model) renderResults(res *search.Results, width, sel int) string {
	if res == nil || len(res.Results) == 0 {
		return m.st.dim.Render("No results found.")
	}
	var b strings.Builder
	for i, r := range res.Results {
		title := m.st.resultTitle
		if i == sel {
			title = m.st.selected
		}
		b.WriteString(title.Render(truncate(r.Title, width)))
		b.WriteString("\n")
		b.WriteString(m.st.resultURL.Render(truncate(r.URL, width)))
		b.WriteString("\n")
		if r.Snippet != "" {
			b.WriteString(lipgloss.NewStyle().Width(width).Render(r.Snippet))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMarkdown(src string, width int) string {
	if m.md == nil || m.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.theme.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return src
		}
		m.md, m.mdWidth = r, width
	}
	out, err := m.md.Render(src)
	if err != nil {
		return src
	}
	return out
}

func (m *Model) View() string {
	sidebar := m.st.sidebar.
		Width(m.opts.Display.SidebarWidth).
		Height(m.height - statusHeight).
		Render(m.sidebarView())

	main := lipgloss.JoinVertical(lipgloss.Left, m.omniboxView(), m.panesView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusView())
}

func (m *Model) sidebarView() string {
	width := m.opts.Display.SidebarWidth - 2
	var b strings.Builder
	b.WriteString(m.st.heading.Render("TABS"))
	b.WriteString("\n")

	active := m.store.ActiveID()
	for _, t := range m.store.Tabs() {
		b.WriteString(m.tabLine(t, t.ID == active, width))
		b.WriteString("\n")
	}

	if !m.opts.Display.ShowShortcuts && m.mode != modeShortcuts {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(m.st.heading.Render("SHORTCUTS"))
	b.WriteString("\n")
	for i, sc := range m.store.Shortcuts().List() {
		line := truncate(sc.Title, width)
		if m.mode == modeShortcuts && i == m.cursor {
			line = m.st.selected.Render(line)
		} else {
			line = m.st.bookmark.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) tabLine(t tabs.Tab, active bool, width int) string {
	prefix := "  "
	if t.IsBookmarked {
		prefix = m.st.bookmark.Render("★ ")
	}
	if t.SplitView {
		width -= 2
	}
	title := truncate(t.Title, width-2)
	if t.SplitView {
		title += " ⫼"
	}
	if active {
		return prefix + m.st.activeTab.Render(title)
	}
	return prefix + m.st.tab.Render(title)
}

func (m *Model) omniboxView() string {
	width := m.contentWidth() - 2
	style := m.st.omnibox.Width(width - 2)
	if m.mode != modeNormal && m.mode != modeShortcuts && m.mode != modeResults {
		m.input.Width = width - 4 - len(m.input.Prompt)
		return style.Render(m.input.View())
	}

	t, ok := m.store.Active()
	switch {
	case !ok:
		return style.Render(m.st.dim.Render("No tab"))
	case t.SplitView:
		return style.Render(fmt.Sprintf("AI: %s  │  Google: %s", t.AIQuery, t.WebQuery))
	case m.opts.Display.ShowURL:
		return style.Render(truncate(t.Locator.String(), width-4))
	}
	return style.Render(truncate(t.Title, width-4))
}

func (m *Model) panesView() string {
	t, ok := m.store.Active()
	if !ok {
		return m.st.pane.Width(m.contentWidth() - 2).Render(m.panes[0].View())
	}

	layout := resolver.Decide(t).Layout()
	width := m.contentWidth() / len(layout)
	views := make([]string, len(layout))
	for i, spec := range layout {
		title := "Page"
		switch spec.Mode {
		case resolver.ModeResults:
			title = "Google"
		case resolver.ModeAnswer:
			title = "AI"
		}
		views[i] = m.st.pane.Width(width - 2).Render(
			m.st.paneTitle.Render(title) + "\n" + m.panes[i].View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func (m *Model) statusView() string {
	if m.status != "" {
		if m.statusErr {
			return m.st.err.Render(m.status)
		}
		return m.st.status.Render(m.status)
	}
	switch m.mode {
	case modeShortcuts:
		return m.st.status.Render("enter open  x remove  esc back")
	case modeResults:
		return m.st.status.Render("↑/↓ select  enter open  esc back")
	}
	parts := make([]string, 0, len(m.keys.helpLine()))
	for _, b := range m.keys.helpLine() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.st.status.Render(truncate(strings.Join(parts, "  "), m.width))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
