// Package search provides web search functionality with pluggable providers.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Result represents a single search result.
type Result struct {
	Title   string `json:"title"`   // Page title
	URL     string `json:"link"`    // Full URL
	Snippet string `json:"snippet"` // Description/snippet text
	Domain  string `json:"displayLink"`
}

// Results represents a complete search response with metadata.
type Results struct {
	Query      string    `json:"query"`
	Provider   string    `json:"provider"`
	Results    []Result  `json:"items"`
	TotalFound int       `json:"totalFound"` // may be > len(Results)
	SearchedAt time.Time `json:"searchedAt"`
}

// Provider defines the interface for search providers.
type Provider interface {
	// Search performs a web search and returns results.
	Search(ctx context.Context, query string) (*Results, error)

	// Name returns the provider's display name.
	Name() string
}

// APIError is returned when a provider was reached but refused the request
// or reported a failure of its own.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s error (%d): %s", e.Provider, e.Status, e.Message)
}

// Auth reports whether the provider rejected the credentials or quota.
func (e *APIError) Auth() bool {
	return e.Status == 401 || e.Status == 403 || e.Status == 429
}

// DefaultProvider returns the recommended search provider for the given
// Google credentials. Without credentials DuckDuckGo is used.
func DefaultProvider(googleKey, googleCX string) Provider {
	if googleKey != "" && googleCX != "" {
		return NewGoogle(googleKey, googleCX)
	}
	return NewDuckDuckGo()
}

// ByName returns the provider configured by name: "google", "duckduckgo"
// or "wikipedia". An empty name picks DefaultProvider. Google without
// credentials falls back to DuckDuckGo.
func ByName(name, googleKey, googleCX string) (Provider, error) {
	switch strings.ToLower(name) {
	case "", "auto", "google":
		return DefaultProvider(googleKey, googleCX), nil
	case "duckduckgo", "ddg":
		return NewDuckDuckGo(), nil
	case "wikipedia", "wiki":
		return NewWikipedia(), nil
	}
	return nil, fmt.Errorf("unknown search provider %q", name)
}
