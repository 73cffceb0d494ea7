// Splitbrowse is a terminal browser shell that shows web search results and
// AI answers for the same query side by side.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"splitbrowse/config"
	"splitbrowse/logging"
	"splitbrowse/theme"
	"splitbrowse/ui"
)

type options struct {
	configPath string
	initConfig bool
	print      bool
	split      bool
	debug      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "splitbrowse [url | query]",
		Short: "Terminal browser shell with side-by-side web and AI results",
		Example: `  splitbrowse                           Open the shell
  splitbrowse go.dev                    Open a page
  splitbrowse -p "ai: why do cats purr" Print an AI answer to stdout
  splitbrowse -p -s cats                Print web and AI results for a query
  splitbrowse --init-config > ~/.config/splitbrowse/config.toml`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.initConfig {
				_, err := io.WriteString(cmd.OutOrStdout(), config.DefaultTOML())
				return err
			}
			input := strings.Join(args, " ")
			if opts.print {
				return runPrint(cmd.Context(), cmd.OutOrStdout(), input, opts)
			}
			return run(cmd.Context(), input, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (TOML, or YAML by extension)")
	f.BoolVar(&opts.initConfig, "init-config", false, "print the default config and exit")
	f.BoolVarP(&opts.print, "print", "p", false, "resolve the input once and print it to stdout")
	f.BoolVarP(&opts.split, "split", "s", false, "with --print, show web and AI results together")
	f.BoolVar(&opts.debug, "debug", false, "debug logging")
	return cmd
}

func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("%s", config.FormatError(err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s", config.FormatError(err))
	}
	return cfg, nil
}

// runPrint is the one-shot mode: parse the input, resolve it and print the
// result. Logs go to stderr.
func runPrint(ctx context.Context, w io.Writer, input string, opts options) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("--print needs a url or query")
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{Level: "warn", File: cfg.Log.File, Debug: opts.debug})
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.tabs.Open(input)
	if err != nil {
		return err
	}
	if opts.split {
		if err := a.tabs.ToggleSplitView(t.ID); err != nil {
			return err
		}
		t, _ = a.tabs.Get(t.ID)
	}

	view, err := a.resolver.Resolve(ctx, t)
	if err != nil {
		return err
	}
	out, err := ui.Plain(view, ui.TerminalWidth(80))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// run starts the interactive shell. The terminal belongs to the UI, so logs
// only go to a file: the configured one, or a default one with --debug.
func run(ctx context.Context, input string, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	logFile := cfg.Log.File
	if logFile == "" && opts.debug {
		if dir, err := os.UserCacheDir(); err == nil {
			logFile = filepath.Join(dir, "splitbrowse", "debug.log")
		}
	}
	if logFile != "" {
		if log, err = logging.New(logging.Options{Level: cfg.Log.Level, File: logFile, Debug: opts.debug}); err != nil {
			return err
		}
		defer log.Sync()
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	a.restoreSession()
	defer a.saveSession()

	if strings.TrimSpace(input) != "" {
		if _, err := a.tabs.Open(input); err != nil {
			return err
		}
	}

	m := ui.New(a.tabs, a.resolver, ui.Options{
		Display:  cfg.Display,
		Keys:     cfg.Keybindings,
		Theme:    theme.Current,
		History:  a.session.SearchHistory,
		OnSubmit: a.session.Remember,
		OnLogout: a.logout,
		Notifier: a.notifier,
		Logger:   log,
	})
	return ui.Run(ctx, m)
}
