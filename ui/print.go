package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"splitbrowse/resolver"
)

// Plain renders a resolved view as uncolored text for --print and pipes.
func Plain(v resolver.View, width int) (string, error) {
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}

	var b strings.Builder
	for i, out := range v.Panes {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("─", width) + "\n\n")
		}
		if v.Split {
			fmt.Fprintf(&b, "[%s] %s\n\n", out.Pane, out.Key)
		}

		switch {
		case out.Status == resolver.StatusFailed:
			fmt.Fprintf(&b, "Error: %s\n", out.Err)
		case out.Status == resolver.StatusLoading:
			b.WriteString("Loading…\n")
		case out.Mode == resolver.ModeFrameBlocked:
			fmt.Fprintf(&b, "%s cannot be embedded: %s\n", out.Key.FrameURL(), out.Reason)
		case out.Mode == resolver.ModeFrame:
			fmt.Fprintf(&b, "%s\n", out.Key.FrameURL())
		case out.Mode == resolver.ModeResults && out.Results != nil:
			b.WriteString(out.Results.Text())
		case out.Mode == resolver.ModeAnswer && out.Answer != nil:
			text, err := md.Render(out.Answer.Source)
			if err != nil {
				text = out.Answer.Source
			}
			b.WriteString(strings.TrimSpace(text) + "\n")
		}
	}
	return b.String(), nil
}
