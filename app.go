package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"splitbrowse/config"
	"splitbrowse/fetcher"
	"splitbrowse/gateway"
	"splitbrowse/llm"
	"splitbrowse/resolver"
	"splitbrowse/search"
	"splitbrowse/session"
	"splitbrowse/shortcuts"
	"splitbrowse/tabs"
	"splitbrowse/theme"
	"splitbrowse/ui"
)

// app holds the wired components of one run.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	identity session.Identity

	persist   shortcuts.Persistence
	shortcuts *shortcuts.Store
	tabs      *tabs.Store
	gateway   *gateway.Gateway
	resolver  *resolver.Resolver
	notifier  *ui.Notifier

	sessionPath string
	session     *session.Session

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	sp, err := search.ByName(cfg.Search.Provider, cfg.Search.GoogleAPIKey, cfg.Search.GoogleCSEID)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		log:      log,
		identity: session.NewStatic(cfg.Session.User),
		notifier: &ui.Notifier{},
	}

	fetcher.Configure(fetcher.Options{
		UserAgent:      cfg.Fetcher.UserAgent,
		TimeoutSeconds: cfg.Fetcher.TimeoutSeconds,
		EmbedOrigin:    cfg.Fetcher.EmbedOrigin,
	})
	if !theme.Set(cfg.Display.Theme) {
		log.Warn("unknown theme, using default", zap.String("theme", cfg.Display.Theme))
	}

	persist, err := a.openPersistence()
	if err != nil {
		return nil, err
	}
	a.persist = persist

	user, _ := a.identity.CurrentUserID()
	a.shortcuts = shortcuts.New(persist, user, shortcuts.WithLogger(log))
	a.closers = append(a.closers, func() error { a.shortcuts.Close(); return nil })
	if err := a.shortcuts.Load(ctx); err != nil {
		log.Warn("loading shortcuts", zap.Error(err))
	}

	a.tabs = tabs.New(a.shortcuts,
		tabs.WithLogger(log),
		tabs.WithHistoryLimit(cfg.History.MaxEntries))

	a.gateway = gateway.New(sp, newLLMClient(cfg.AI),
		gateway.WithTimeout(time.Duration(cfg.Search.TimeoutSeconds)*time.Second),
		gateway.WithLogger(log))

	opts := []resolver.Option{resolver.WithLogger(log), resolver.WithNotify(a.notifier.Notify)}
	if !cfg.Fetcher.ProbeFrames {
		opts = append(opts, resolver.WithProbe(nil))
	}
	a.resolver = resolver.New(a.gateway, opts...)
	a.closers = append(a.closers, func() error { a.resolver.Close(); return nil })

	// Closed tabs no longer need their fetched content.
	a.tabs.Subscribe(func(e tabs.Event) {
		if e.Kind == tabs.EventClosed {
			a.resolver.Forget(e.TabID)
		}
	})

	log.Info("splitbrowse ready",
		zap.String("search", sp.Name()),
		zap.String("shortcuts", cfg.Shortcuts.Backend),
		zap.Bool("signed_in", user != ""))
	return a, nil
}

// logout signs the user out and swaps in an empty, memory-only shortcut
// set. Tabs bookmarked under the old user lose their flag.
func (a *app) logout() error {
	if err := a.identity.Logout(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.shortcuts.SwitchUser(ctx, ""); err != nil {
		return fmt.Errorf("switching shortcuts: %w", err)
	}
	a.tabs.SyncBookmarks()
	a.log.Info("signed out")
	return nil
}

func (a *app) openPersistence() (shortcuts.Persistence, error) {
	switch a.cfg.Shortcuts.Backend {
	case "none":
		return shortcuts.Nop{}, nil
	case "sqlite":
		path := a.cfg.Shortcuts.Path
		if path == "" {
			dir, err := shortcuts.DefaultDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "shortcuts.db")
		}
		db, err := shortcuts.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	}

	dir := a.cfg.Shortcuts.Path
	if dir == "" {
		d, err := shortcuts.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return shortcuts.NewFilePersistence(dir), nil
}

// newLLMClient builds every AI backend. The configured model only applies to
// the configured provider.
func newLLMClient(cfg config.AI) *llm.Client {
	model := func(name string) string {
		if cfg.Provider == name {
			return cfg.Model
		}
		return ""
	}
	return llm.NewClient(cfg.Provider,
		llm.NewGemini(cfg.GeminiAPIKey, model(llm.GeminiName)),
		llm.NewAnthropic(cfg.AnthropicAPIKey, model(llm.AnthropicName)),
		llm.NewOpenAI(cfg.OpenAIAPIKey, model(llm.OpenAIName)))
}

// restoreSession loads the saved tabs when enabled. A missing or broken
// session file leaves the fresh store in place.
func (a *app) restoreSession() {
	a.sessionPath = a.cfg.Session.Path
	if a.sessionPath == "" {
		p, err := session.Path()
		if err != nil {
			a.log.Warn("locating session file", zap.Error(err))
			return
		}
		a.sessionPath = p
	}

	a.session = &session.Session{}
	if !a.cfg.Session.Restore {
		return
	}
	s, err := session.Load(a.sessionPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return
	case err != nil:
		a.log.Warn("restoring session", zap.Error(err))
		return
	}
	a.session = s
	if len(s.Tabs.Tabs) > 0 {
		a.tabs.Restore(s.Tabs)
	}
}

func (a *app) saveSession() {
	if a.sessionPath == "" || a.session == nil {
		return
	}
	a.session.Tabs = a.tabs.Snapshot()
	if err := session.Save(a.sessionPath, a.session); err != nil {
		a.log.Warn("saving session", zap.Error(err))
	}
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("closing: %w", err)
	}
	return nil
}
