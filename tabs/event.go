package tabs

// EventKind identifies a store mutation.
type EventKind int

const (
	EventAdded EventKind = iota
	EventClosed
	EventActivated
	EventRenamed
	EventNavigated
	EventRefreshed
	EventSplitToggled
	EventBookmarkToggled
	EventRestored
)

var eventNames = map[EventKind]string{
	EventAdded:           "added",
	EventClosed:          "closed",
	EventActivated:       "activated",
	EventRenamed:         "renamed",
	EventNavigated:       "navigated",
	EventRefreshed:       "refreshed",
	EventSplitToggled:    "split-toggled",
	EventBookmarkToggled: "bookmark-toggled",
	EventRestored:        "restored",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event is delivered to listeners after a mutation completes. TabID is
// empty for an EventActivated that leaves no tab active.
type Event struct {
	Kind  EventKind
	TabID string
}

// Refetch reports whether the event changes what the tab should display.
func (e Event) Refetch() bool {
	switch e.Kind {
	case EventNavigated, EventRefreshed, EventSplitToggled, EventActivated, EventRestored:
		return true
	}
	return false
}
