package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const duckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo implements the Provider interface using DuckDuckGo search.
type DuckDuckGo struct {
	endpoint string
	client   *http.Client
}

// NewDuckDuckGo creates a new DuckDuckGo search provider.
func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{
		endpoint: duckDuckGoEndpoint,
		client:   &http.Client{},
	}
}

// WithEndpoint points the provider at another HTML endpoint.
func (d *DuckDuckGo) WithEndpoint(endpoint string) *DuckDuckGo {
	d.endpoint = endpoint
	return d
}

// Name returns the provider name.
func (d *DuckDuckGo) Name() string {
	return "DuckDuckGo"
}

// Search performs a DuckDuckGo search and returns parsed results.
func (d *DuckDuckGo) Search(ctx context.Context, query string) (*Results, error) {
	searchedAt := time.Now()

	searchURL := d.endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Set headers to look like a browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: d.Name(), Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	results := parseResults(doc)
	return &Results{
		Query:      query,
		Provider:   d.Name(),
		Results:    results,
		TotalFound: len(results),
		SearchedAt: searchedAt,
	}, nil
}

// parseResults extracts search results from DuckDuckGo HTML, dropping
// duplicate URLs.
func parseResults(doc *goquery.Document) []Result {
	seen := make(map[string]bool)
	var results []Result

	doc.Find("div.result, div.results_links").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.result__a").First()
		href, _ := link.Attr("href")

		r := Result{
			Title:   cleanText(link.Text()),
			URL:     extractRealURL(href),
			Snippet: cleanText(s.Find(".result__snippet").First().Text()),
		}
		r.Domain = extractDomain(r.URL)

		if r.URL == "" || r.Title == "" || seen[r.URL] {
			return
		}
		seen[r.URL] = true
		results = append(results, r)
	})
	return results
}

// extractDomain extracts the domain from a URL.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}

// extractRealURL extracts the actual URL from DuckDuckGo's redirect URL.
func extractRealURL(href string) string {
	// DuckDuckGo wraps URLs in a redirect, extract the uddg parameter
	if strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if uddg := u.Query().Get("uddg"); uddg != "" {
				return uddg
			}
		}
	}
	return href
}

var spaceRun = regexp.MustCompile(`\s+`)

// cleanText normalizes whitespace in text.
func cleanText(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
