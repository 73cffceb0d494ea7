package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cats", r.URL.Query().Get("q"))
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		assert.Equal(t, "cx", r.URL.Query().Get("cx"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"searchInformation": {"totalResults": "1200"},
			"items": [
				{"title": "Cat", "link": "https://en.wikipedia.org/wiki/Cat", "snippet": "The cat...", "displayLink": "en.wikipedia.org"},
				{"title": "Cats musical", "link": "https://cats.example/show", "snippet": ""}
			]
		}`))
	}))
	defer srv.Close()

	g := NewGoogle("key", "cx").WithEndpoint(srv.URL)
	res, err := g.Search(context.Background(), "cats")
	require.NoError(t, err)

	assert.Equal(t, "Google", res.Provider)
	assert.Equal(t, 1200, res.TotalFound)
	require.Len(t, res.Results, 2)
	assert.Equal(t, Result{
		Title:   "Cat",
		URL:     "https://en.wikipedia.org/wiki/Cat",
		Snippet: "The cat...",
		Domain:  "en.wikipedia.org",
	}, res.Results[0])
	assert.Equal(t, "cats.example", res.Results[1].Domain)
}

func TestGoogleAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "API key not valid"}}`))
	}))
	defer srv.Close()

	_, err := NewGoogle("bad", "cx").WithEndpoint(srv.URL).Search(context.Background(), "cats")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Auth())
	assert.Equal(t, "API key not valid", apiErr.Message)
}

func TestGoogleServerErrorWithoutJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewGoogle("k", "cx").WithEndpoint(srv.URL).Search(context.Background(), "cats")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.False(t, apiErr.Auth())
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

const ddgPage = `<html><body>
<div class="result results_links">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&rut=x">The   Go
  Programming Language</a>
  <a class="result__snippet">Documentation for Go.</a>
</div>
<div class="result">
  <a class="result__a" href="https://go.dev/doc/">Duplicate</a>
</div>
<div class="result">
  <a class="result__a" href="https://pkg.go.dev/">Packages</a>
</div>
<div class="result"><span>no link</span></div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	res, err := NewDuckDuckGo().WithEndpoint(srv.URL).Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, res.Results, 2)

	assert.Equal(t, "The Go Programming Language", res.Results[0].Title)
	assert.Equal(t, "https://go.dev/doc/", res.Results[0].URL)
	assert.Equal(t, "go.dev", res.Results[0].Domain)
	assert.Equal(t, "Documentation for Go.", res.Results[0].Snippet)
	assert.Equal(t, "https://pkg.go.dev/", res.Results[1].URL)
}

func TestDefaultProvider(t *testing.T) {
	assert.Equal(t, "Google", DefaultProvider("k", "cx").Name())
	assert.Equal(t, "DuckDuckGo", DefaultProvider("", "cx").Name())
}

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "", want: "DuckDuckGo"},
		{name: "google", want: "DuckDuckGo"},
		{name: "DuckDuckGo", want: "DuckDuckGo"},
		{name: "wikipedia", want: "Wikipedia"},
	}
	for _, tt := range tests {
		p, err := ByName(tt.name, "", "")
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Name(), "ByName(%q)", tt.name)
	}

	_, err := ByName("altavista", "", "")
	assert.Error(t, err)
}

func TestWikipediaSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go programming", r.URL.Query().Get("srsearch"))
		w.Write([]byte(`{"query":{"searchinfo":{"totalhits":42},"search":[
			{"title":"Go (programming language)","snippet":"<span class=\"searchmatch\">Go</span> is a  language &amp; toolchain"}
		]}}`))
	}))
	defer srv.Close()

	res, err := NewWikipedia().WithEndpoint(srv.URL).Search(context.Background(), "go programming")
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 42, res.TotalFound)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Go_%28programming_language%29", res.Results[0].URL)
	assert.Equal(t, "Go is a language & toolchain", res.Results[0].Snippet)
}

func TestWikipediaStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewWikipedia().WithEndpoint(srv.URL).Search(context.Background(), "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Auth())
}

func TestResultsText(t *testing.T) {
	res := &Results{
		Query:    "cats",
		Provider: "Google",
		Results:  []Result{{Title: "A & B", URL: "https://a.example/?x=1", Domain: "a.example", Snippet: "s"}},
	}

	text := res.Text()
	assert.True(t, strings.HasPrefix(text, "Search: cats (1 results from Google)"))
	assert.Contains(t, text, "1. A & B\n   https://a.example/?x=1\n   s\n")

	empty := (&Results{Query: "x"}).Text()
	assert.Contains(t, empty, "No results found")
}
