package search

import (
	"fmt"
	"strings"
)

// Text renders the result list as plain text for terminals and print mode.
func (r *Results) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Search: %s (%d results from %s)\n\n", r.Query, len(r.Results), r.Provider)
	if len(r.Results) == 0 {
		sb.WriteString("No results found. Try different search terms.\n")
		return sb.String()
	}
	for i, result := range r.Results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, result.Title, result.URL)
		if result.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", result.Snippet)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
