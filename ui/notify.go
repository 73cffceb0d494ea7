package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// contentMsg arrives when the resolver commits new state for a tab, such as
// a pane going back to loading on refresh.
type contentMsg struct {
	tabID string
}

// Notifier forwards resolver changes to the running program. Its Notify
// method can be registered with the resolver before the program starts;
// calls made while no program runs are dropped.
type Notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// Notify reports that tabID has new content.
func (n *Notifier) Notify(tabID string) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(contentMsg{tabID: tabID})
	}
}

// Attach routes notifications to send; nil detaches. Run attaches the
// program it starts.
func (n *Notifier) Attach(send func(tea.Msg)) {
	n.mu.Lock()
	n.send = send
	n.mu.Unlock()
}
