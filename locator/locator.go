// Package locator defines what a tab points at.
package locator

import "fmt"

// Kind tags the variant held by a Locator.
type Kind int

const (
	KindBlank Kind = iota
	KindURL
	KindWeb
	KindAI
)

// BlankURL is the address shown for a blank page.
const BlankURL = "about:blank"

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindURL:
		return "url"
	case KindWeb:
		return "web"
	case KindAI:
		return "ai"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for _, k := range []Kind{KindBlank, KindURL, KindWeb, KindAI} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Locator is a tagged value: a blank page, a raw URL, a web search query or
// an AI query. The kind is decided once, when user input is parsed, and is
// never re-derived from the value afterwards.
type Locator struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value,omitempty"`
}

// Blank returns the blank page locator.
func Blank() Locator { return Locator{Kind: KindBlank} }

// URL returns a raw URL locator.
func URL(u string) Locator { return Locator{Kind: KindURL, Value: u} }

// Web returns a web search locator.
func Web(q string) Locator { return Locator{Kind: KindWeb, Value: q} }

// AI returns an AI answer locator.
func AI(q string) Locator { return Locator{Kind: KindAI, Value: q} }

// IsBlank reports whether l is the blank page.
func (l Locator) IsBlank() bool { return l.Kind == KindBlank }

// IsQuery reports whether l is a web or AI query.
func (l Locator) IsQuery() bool { return l.Kind == KindWeb || l.Kind == KindAI }

// IsFrame reports whether l renders as an embedded page.
func (l Locator) IsFrame() bool { return l.Kind == KindBlank || l.Kind == KindURL }

// FrameURL returns the address loaded in the embedded frame.
func (l Locator) FrameURL() string {
	if l.Kind == KindBlank {
		return BlankURL
	}
	return l.Value
}

// String renders the locator the way it appears in the address bar.
func (l Locator) String() string {
	switch l.Kind {
	case KindBlank:
		return BlankURL
	case KindAI:
		return "ai:" + l.Value
	}
	return l.Value
}
