package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const wikipediaEndpoint = "https://en.wikipedia.org/w/api.php"

// Wikipedia implements the Provider interface using Wikipedia's API.
type Wikipedia struct {
	endpoint string
	client   *http.Client
}

// NewWikipedia creates a new Wikipedia search provider.
func NewWikipedia() *Wikipedia {
	return &Wikipedia{
		endpoint: wikipediaEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint points the provider at another api.php URL.
func (w *Wikipedia) WithEndpoint(endpoint string) *Wikipedia {
	w.endpoint = endpoint
	return w
}

// Name returns the provider name.
func (w *Wikipedia) Name() string {
	return "Wikipedia"
}

// Search performs a Wikipedia search and returns parsed results.
func (w *Wikipedia) Search(ctx context.Context, query string) (*Results, error) {
	searchedAt := time.Now()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "15")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, "GET", w.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", "splitbrowse/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: w.Name(), Status: resp.StatusCode, Message: resp.Status}
	}

	var apiResp wikipediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	results := make([]Result, 0, len(apiResp.Query.Search))
	for _, item := range apiResp.Query.Search {
		results = append(results, Result{
			Title:   item.Title,
			URL:     "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(item.Title, " ", "_")),
			Snippet: stripHTMLTags(item.Snippet),
			Domain:  "en.wikipedia.org",
		})
	}

	return &Results{
		Query:      query,
		Provider:   w.Name(),
		Results:    results,
		TotalFound: apiResp.Query.SearchInfo.TotalHits,
		SearchedAt: searchedAt,
	}, nil
}

// wikipediaResponse represents the Wikipedia API response.
type wikipediaResponse struct {
	Query struct {
		SearchInfo struct {
			TotalHits int `json:"totalhits"`
		} `json:"searchinfo"`
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// stripHTMLTags removes markup from a snippet (Wikipedia highlights matches
// with <span> tags) and decodes entities.
func stripHTMLTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return cleanText(doc.Text())
}
