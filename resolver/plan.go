package resolver

import (
	"splitbrowse/locator"
	"splitbrowse/tabs"
)

// Pane names one display region of a tab.
type Pane int

const (
	// PaneMain is the only pane of a tab outside split view.
	PaneMain Pane = iota
	PaneAI
	PaneWeb
)

func (p Pane) String() string {
	switch p {
	case PaneAI:
		return "ai"
	case PaneWeb:
		return "web"
	}
	return "main"
}

// Mode is how a pane renders.
type Mode int

const (
	// ModeFrame embeds the page at the locator's URL.
	ModeFrame Mode = iota
	// ModeFrameBlocked replaces a frame whose page refuses to be embedded.
	ModeFrameBlocked
	// ModeResults lists web search results.
	ModeResults
	// ModeAnswer shows a rendered AI answer.
	ModeAnswer
)

func (m Mode) String() string {
	switch m {
	case ModeFrame:
		return "frame"
	case ModeFrameBlocked:
		return "frame-blocked"
	case ModeResults:
		return "results"
	case ModeAnswer:
		return "answer"
	}
	return "unknown"
}

// PaneSpec is the content a pane should show. Key is the pane's governing
// locator: a result is only kept while the pane's key still matches.
type PaneSpec struct {
	Pane Pane
	Mode Mode
	Key  locator.Locator
}

// Plan lists a tab's panes in the order their fetches are issued.
type Plan struct {
	TabID string
	Panes []PaneSpec
}

// Decide computes the plan for a tab. It does no I/O.
func Decide(t tabs.Tab) Plan {
	p := Plan{TabID: t.ID}
	if !t.SplitView {
		p.Panes = []PaneSpec{{Pane: PaneMain, Mode: modeFor(t.Locator), Key: t.Locator}}
		return p
	}

	ai := PaneSpec{Pane: PaneAI, Mode: ModeAnswer, Key: locator.AI(t.AIQuery)}
	web := PaneSpec{Pane: PaneWeb, Mode: ModeResults, Key: locator.Web(t.WebQuery)}
	if t.PreferredOrder == tabs.AIFirst {
		p.Panes = []PaneSpec{ai, web}
	} else {
		p.Panes = []PaneSpec{web, ai}
	}
	return p
}

// Split reports whether the plan has two panes.
func (p Plan) Split() bool { return len(p.Panes) > 1 }

// Layout returns the panes in display order. Split view always shows the AI
// pane first, whatever the fetch order.
func (p Plan) Layout() []PaneSpec {
	out := make([]PaneSpec, len(p.Panes))
	copy(out, p.Panes)
	if len(out) == 2 && out[0].Pane == PaneWeb {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

func modeFor(l locator.Locator) Mode {
	switch l.Kind {
	case locator.KindWeb:
		return ModeResults
	case locator.KindAI:
		return ModeAnswer
	}
	return ModeFrame
}
