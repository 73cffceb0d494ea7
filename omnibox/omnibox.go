// Package omnibox turns address bar input into a tagged locator.
package omnibox

import (
	"strings"

	"splitbrowse/locator"
)

// Result represents the parsed omnibox input.
type Result struct {
	Locator  locator.Locator // What the tab should point at
	Provider string          // Display name of the source ("Google", "AI", "")
}

// Empty reports whether the input produced nothing to navigate to.
func (r Result) Empty() bool {
	return r.Locator.IsBlank() && r.Provider == ""
}

// Prefix maps input prefixes to a query kind.
type Prefix struct {
	Names   []string     // Prefix names (e.g., "g", "google")
	Kind    locator.Kind // KindWeb or KindAI
	Display string       // Display name (e.g., "Google")
}

// DefaultPrefixes returns the built-in search prefixes.
func DefaultPrefixes() []Prefix {
	return []Prefix{
		{
			Names:   []string{"g", "google", "web"},
			Kind:    locator.KindWeb,
			Display: "Google",
		},
		{
			Names:   []string{"ai", "ask"},
			Kind:    locator.KindAI,
			Display: "AI",
		},
	}
}

// Parser handles omnibox input parsing.
type Parser struct {
	prefixes []Prefix
}

// NewParser creates a new omnibox parser with default configuration.
func NewParser() *Parser {
	return &Parser{prefixes: DefaultPrefixes()}
}

// AddPrefix adds a custom search prefix.
func (p *Parser) AddPrefix(prefix Prefix) {
	p.prefixes = append(p.prefixes, prefix)
}

// Prefixes returns the list of available prefixes (for help display).
func (p *Parser) Prefixes() []Prefix {
	return p.prefixes
}

// Parse parses omnibox input and returns the result.
func (p *Parser) Parse(input string) Result {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}
	}

	lower := strings.ToLower(input)
	if lower == locator.BlankURL {
		return Result{Locator: locator.Blank(), Provider: "Page"}
	}

	// Explicit schemes first
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return Result{Locator: locator.URL(input), Provider: "Page"}
	}

	// Prefixed queries: "ai: question", "ai question", "g cats"
	if res, ok := p.parsePrefixed(input); ok {
		return res
	}

	if looksLikeURL(input) {
		return Result{Locator: locator.URL("https://" + input), Provider: "Page"}
	}

	return Result{Locator: locator.Web(input), Provider: "Google"}
}

func (p *Parser) parsePrefixed(input string) (Result, bool) {
	var head, rest string
	colon := strings.Index(input, ":")
	space := strings.Index(input, " ")
	switch {
	case colon > 0 && (space < 0 || colon < space):
		head, rest = input[:colon], input[colon+1:]
	case space > 0:
		head, rest = input[:space], input[space+1:]
	default:
		return Result{}, false
	}

	head = strings.ToLower(head)
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return Result{}, false
	}

	for _, pfx := range p.prefixes {
		for _, name := range pfx.Names {
			if head != name {
				continue
			}
			if pfx.Kind == locator.KindAI {
				return Result{Locator: locator.AI(rest), Provider: pfx.Display}, true
			}
			return Result{Locator: locator.Web(rest), Provider: pfx.Display}, true
		}
	}
	return Result{}, false
}

// looksLikeURL checks if input looks like a URL (has a domain.tld shape).
func looksLikeURL(input string) bool {
	// No spaces allowed in URLs
	if strings.Contains(input, " ") {
		return false
	}

	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "localhost") || strings.HasPrefix(lower, "127.") {
		return true
	}

	host := lower
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	dot := strings.LastIndex(host, ".")
	return dot > 0 && dot < len(host)-1
}
