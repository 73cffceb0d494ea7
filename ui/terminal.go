package ui

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// TerminalSize returns the dimensions of the terminal on stdout.
func TerminalSize() (width, height int, err error) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}

// TerminalWidth returns the terminal width, or fallback when stdout is not
// a terminal.
func TerminalWidth(fallback int) int {
	if w, _, err := TerminalSize(); err == nil && w > 0 {
		return w
	}
	return fallback
}
