package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const googleEndpoint = "https://www.googleapis.com/customsearch/v1"

// Google implements the Provider interface using the Custom Search JSON API.
type Google struct {
	apiKey   string
	cx       string
	endpoint string
	client   *http.Client
}

// NewGoogle creates a Google Custom Search provider.
func NewGoogle(apiKey, cx string) *Google {
	return &Google{
		apiKey:   apiKey,
		cx:       cx,
		endpoint: googleEndpoint,
		client:   &http.Client{},
	}
}

// WithEndpoint points the provider at another API base URL.
func (g *Google) WithEndpoint(endpoint string) *Google {
	g.endpoint = endpoint
	return g
}

// Name returns the provider name.
func (g *Google) Name() string {
	return "Google"
}

// Search queries the Custom Search API.
func (g *Google) Search(ctx context.Context, query string) (*Results, error) {
	searchedAt := time.Now()

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cx)
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, "GET", g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching results: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var data googleResponse
	if err := json.Unmarshal(body, &data); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || data.Error != nil {
		msg := http.StatusText(resp.StatusCode)
		status := resp.StatusCode
		if data.Error != nil {
			if data.Error.Message != "" {
				msg = data.Error.Message
			}
			if data.Error.Code != 0 {
				status = data.Error.Code
			}
		}
		return nil, &APIError{Provider: g.Name(), Status: status, Message: msg}
	}

	results := make([]Result, 0, len(data.Items))
	for _, item := range data.Items {
		domain := item.DisplayLink
		if domain == "" {
			domain = extractDomain(item.Link)
		}
		results = append(results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
			Domain:  domain,
		})
	}

	total := len(results)
	if n, err := strconv.Atoi(data.SearchInformation.TotalResults); err == nil && n > total {
		total = n
	}

	return &Results{
		Query:      query,
		Provider:   g.Name(),
		Results:    results,
		TotalFound: total,
		SearchedAt: searchedAt,
	}, nil
}

type googleResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
	SearchInformation struct {
		TotalResults string `json:"totalResults"`
	} `json:"searchInformation"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
