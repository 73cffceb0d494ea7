// Package ui is the terminal front end: a tab sidebar with shortcuts, an
// address bar and one or two content panes.
package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"splitbrowse/config"
	"splitbrowse/locator"
	"splitbrowse/logging"
	"splitbrowse/resolver"
	"splitbrowse/search"
	"splitbrowse/shortcuts"
	"splitbrowse/tabs"
	"splitbrowse/theme"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeOmnibox
	modeWebSearch
	modeAISearch
	modeRename
	modeShortcuts
	modeResults
	modeShortcutTitle
	modeShortcutURL
)

// resolvedMsg arrives when a Resolve or Refresh call for a tab returns.
type resolvedMsg struct {
	tabID string
	err   error
}

// Options configures the front end.
type Options struct {
	Display config.Display
	Keys    config.Keybindings
	Theme   *theme.Theme

	// History seeds the address bar suggestions.
	History []string
	// OnSubmit is called with every address bar entry.
	OnSubmit func(input string)
	// OnLogout signs the user out. Without it the logout key does nothing.
	OnLogout func() error
	// Opener shows a page in the system browser. Defaults to the platform
	// opener.
	Opener func(url string) error
	// Notifier, when set, is attached to the program by Run so resolver
	// changes redraw the panes.
	Notifier *Notifier

	Logger *zap.Logger
}

// Model is the bubbletea model of the shell.
type Model struct {
	store *tabs.Store
	res   *resolver.Resolver
	keys  keyMap
	st    styles
	theme *theme.Theme
	opts  Options
	log   *zap.Logger

	mode    inputMode
	input   textinput.Model
	cursor  int    // selected shortcut or search result
	pending string // shortcut title while its URL is typed

	panes   [2]viewport.Model
	paneKey [2]string
	md      *glamour.TermRenderer
	mdWidth int

	width, height int
	status        string
	statusErr     bool
}

// New creates the model.
func New(store *tabs.Store, res *resolver.Resolver, opts Options) *Model {
	if opts.Theme == nil {
		opts.Theme = theme.Current
	}
	if opts.Display.SidebarWidth <= 0 {
		opts.Display.SidebarWidth = config.Default().Display.SidebarWidth
	}
	if opts.Opener == nil {
		opts.Opener = openURL
	}

	ti := textinput.New()
	ti.ShowSuggestions = true
	ti.SetSuggestions(opts.History)

	m := &Model{
		store: store,
		res:   res,
		keys:  newKeyMap(opts.Keys),
		st:    newStyles(opts.Theme),
		theme: opts.Theme,
		opts:  opts,
		log:   logging.OrNop(opts.Logger),
		input: ti,
		panes: [2]viewport.Model{viewport.New(80, 20), viewport.New(80, 20)},
		width: 100, height: 30,
	}
	return m
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if n := m.opts.Notifier; n != nil {
		n.Attach(p.Send)
		defer n.Attach(nil)
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.resolveActive(false)
}

// resolveActive brings the active tab's panes up to date in the background.
func (m *Model) resolveActive(refresh bool) tea.Cmd {
	m.syncContent()
	t, ok := m.store.Active()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		var err error
		if refresh {
			_, err = m.res.Refresh(context.Background(), t)
		} else {
			_, err = m.res.Resolve(context.Background(), t)
		}
		return resolvedMsg{tabID: t.ID, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.syncContent()
		return m, nil

	case resolvedMsg:
		if msg.err != nil && !errors.Is(msg.err, resolver.ErrClosed) {
			m.setError(msg.err)
		}
		if msg.tabID == m.store.ActiveID() {
			m.syncContent()
		}
		return m, nil

	case contentMsg:
		if msg.tabID == m.store.ActiveID() {
			m.syncContent()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeNormal:
			return m.handleKey(msg)
		case modeShortcuts:
			return m.handleShortcutKey(msg)
		case modeResults:
			return m.handleResultKey(msg)
		}
		return m.handleInputKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.statusErr = "", false
	id := m.store.ActiveID()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Omnibox):
		value := ""
		if t, ok := m.store.Active(); ok && !t.Locator.IsBlank() {
			value = t.Locator.String()
		}
		return m, m.startInput(modeOmnibox, "Go to: ", value)

	case key.Matches(msg, m.keys.WebSearch):
		return m, m.startInput(modeWebSearch, "Google: ", "")

	case key.Matches(msg, m.keys.AISearch):
		return m, m.startInput(modeAISearch, "Ask AI: ", "")

	case key.Matches(msg, m.keys.RenameTab):
		t, ok := m.store.Active()
		if !ok {
			return m, nil
		}
		return m, m.startInput(modeRename, "Rename: ", t.Title)

	case key.Matches(msg, m.keys.NewTab):
		m.store.AddTab()
		return m, m.resolveActive(false)

	case key.Matches(msg, m.keys.CloseTab):
		m.store.CloseTab(id)
		return m, m.resolveActive(false)

	case key.Matches(msg, m.keys.NextTab):
		m.cycleTab(1)
		return m, m.resolveActive(false)

	case key.Matches(msg, m.keys.PrevTab):
		m.cycleTab(-1)
		return m, m.resolveActive(false)

	case key.Matches(msg, m.keys.Back):
		if _, ok := m.store.Back(id); ok {
			return m, m.resolveActive(false)
		}

	case key.Matches(msg, m.keys.Forward):
		if _, ok := m.store.Forward(id); ok {
			return m, m.resolveActive(false)
		}

	case key.Matches(msg, m.keys.Refresh):
		if _, ok := m.store.Refresh(id); ok {
			return m, m.resolveActive(true)
		}

	case key.Matches(msg, m.keys.ToggleSplit):
		if err := m.store.ToggleSplitView(id); err != nil {
			m.setError(err)
			return m, nil
		}
		return m, m.resolveActive(false)

	case key.Matches(msg, m.keys.ToggleBookmark):
		if err := m.store.ToggleBookmark(id); err != nil {
			m.setError(err)
		} else if t, ok := m.store.Get(id); ok && t.IsBookmarked {
			m.status = "Added to shortcuts"
		} else {
			m.status = "Removed from shortcuts"
		}

	case key.Matches(msg, m.keys.Shortcuts):
		if m.store.Shortcuts().Len() == 0 {
			m.status = "No shortcuts yet"
			return m, nil
		}
		m.mode, m.cursor = modeShortcuts, 0

	case key.Matches(msg, m.keys.AddShortcut):
		return m, m.startInput(modeShortcutTitle, "Shortcut title: ", "")

	case key.Matches(msg, m.keys.Results):
		if len(m.activeResults()) == 0 {
			m.status = "No search results to open"
			return m, nil
		}
		m.mode, m.cursor = modeResults, 0
		m.syncContent()

	case key.Matches(msg, m.keys.OpenExternal):
		m.openExternal()

	case key.Matches(msg, m.keys.Logout):
		m.logout()

	default:
		return m, m.scroll(msg)
	}
	return m, nil
}

func (m *Model) scroll(msg tea.KeyMsg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range m.panes {
		var cmd tea.Cmd
		m.panes[i], cmd = m.panes[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) cycleTab(step int) {
	all := m.store.Tabs()
	if len(all) == 0 {
		return
	}
	cur := 0
	for i, t := range all {
		if t.ID == m.store.ActiveID() {
			cur = i
		}
	}
	next := (cur + step + len(all)) % len(all)
	m.store.SetActive(all[next].ID)
}

func (m *Model) startInput(mode inputMode, prompt, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.endInput()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		mode, value := m.mode, m.input.Value()
		m.endInput()
		return m, m.submit(mode, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(mode inputMode, value string) tea.Cmd {
	var err error
	switch mode {
	case modeOmnibox:
		_, err = m.store.Open(value)
		if err == nil && m.opts.OnSubmit != nil {
			m.opts.OnSubmit(value)
		}
	case modeWebSearch:
		_, err = m.store.DispatchWebSearch(value)
	case modeAISearch:
		_, err = m.store.DispatchAISearch(value)
	case modeRename:
		err = m.store.RenameTab(m.store.ActiveID(), value)
		if err != nil {
			m.setError(err)
		}
		return nil
	case modeShortcutTitle:
		if strings.TrimSpace(value) == "" {
			m.setError(shortcuts.ErrInvalidShortcut)
			return nil
		}
		m.pending = value
		return m.startInput(modeShortcutURL, "Shortcut URL: ", "")
	case modeShortcutURL:
		title := m.pending
		m.pending = ""
		if _, err := m.store.AddShortcut(title, value); err != nil {
			m.setError(err)
			return nil
		}
		m.status = "Added to shortcuts"
		return nil
	}
	if err != nil {
		m.setError(err)
		return nil
	}
	return m.resolveActive(false)
}

func (m *Model) handleShortcutKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.store.Shortcuts().List()
	if len(list) == 0 {
		m.mode = modeNormal
		return m, nil
	}
	if m.cursor >= len(list) {
		m.cursor = len(list) - 1
	}

	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Shortcuts):
		m.mode = modeNormal
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Submit):
		m.mode = modeNormal
		if _, err := m.store.OpenShortcut(list[m.cursor].ID); err != nil {
			m.setError(err)
			return m, nil
		}
		return m, m.resolveActive(false)
	case key.Matches(msg, m.keys.Delete):
		m.removeShortcut(list[m.cursor].ID)
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

// activeResults returns the search results shown for the active tab, if its
// web pane is ready.
func (m *Model) activeResults() []search.Result {
	t, ok := m.store.Active()
	if !ok {
		return nil
	}
	for _, spec := range resolver.Decide(t).Panes {
		if spec.Mode != resolver.ModeResults {
			continue
		}
		out, ok := m.res.Outcome(t.ID, spec.Pane)
		if !ok || out.Key != spec.Key || out.Status != resolver.StatusReady || out.Results == nil {
			return nil
		}
		return out.Results.Results
	}
	return nil
}

func (m *Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.activeResults()
	if len(list) == 0 {
		m.mode = modeNormal
		m.syncContent()
		return m, nil
	}
	if m.cursor >= len(list) {
		m.cursor = len(list) - 1
	}

	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Results):
		m.mode = modeNormal
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Submit):
		m.mode = modeNormal
		link := list[m.cursor].URL
		if err := m.store.SetLocator(m.store.ActiveID(), locator.URL(link), tabs.ExitSplit()); err != nil {
			m.setError(err)
			return m, nil
		}
		return m, m.resolveActive(false)
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	m.syncContent()
	return m, nil
}

// openExternal shows the active page in the system browser.
func (m *Model) openExternal() {
	t, ok := m.store.Active()
	if !ok {
		return
	}
	for _, spec := range resolver.Decide(t).Panes {
		if spec.Mode != resolver.ModeFrame || spec.Key.IsBlank() {
			continue
		}
		if err := m.opts.Opener(spec.Key.FrameURL()); err != nil {
			m.setError(err)
			return
		}
		m.status = "Opened in browser"
		return
	}
	m.status = "No page to open"
}

func (m *Model) logout() {
	if m.opts.OnLogout == nil {
		return
	}
	if err := m.opts.OnLogout(); err != nil {
		m.setError(err)
		return
	}
	m.status = "Signed out"
}

// removeShortcut deletes a shortcut, clearing the bookmark flag of the tab
// it came from when that tab is still open.
func (m *Model) removeShortcut(id string) {
	if t, ok := m.store.Get(id); ok && t.IsBookmarked {
		if err := m.store.ToggleBookmark(id); err != nil {
			m.setError(err)
		}
	} else {
		m.store.Shortcuts().Remove(id)
	}
	if m.store.Shortcuts().Len() == 0 {
		m.mode = modeNormal
	}
	m.status = "Shortcut removed"
}

func (m *Model) setError(err error) {
	m.log.Debug("ui error", zap.Error(err))
	m.status, m.statusErr = err.Error(), true
}
