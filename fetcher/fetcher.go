// Package fetcher checks whether a page may be shown inside an embedded frame.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxTitleBytes bounds how much of a page is read looking for its title.
const maxTitleBytes = 64 << 10

// Options configures the fetcher behavior.
type Options struct {
	UserAgent      string
	TimeoutSeconds int
	// EmbedOrigin is the origin hosting the frame. Pages whose CSP
	// frame-ancestors lists it may be embedded.
	EmbedOrigin string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		TimeoutSeconds: 10,
	}
}

// Package-level options (set via Configure)
var opts = DefaultOptions()

// Configure sets the package-level options.
func Configure(o Options) {
	if o.UserAgent != "" {
		opts.UserAgent = o.UserAgent
	}
	if o.TimeoutSeconds > 0 {
		opts.TimeoutSeconds = o.TimeoutSeconds
	}
	opts.EmbedOrigin = o.EmbedOrigin // Can be empty
}

// UserAgent returns the currently configured user agent string.
func UserAgent() string {
	return opts.UserAgent
}

// Timeout returns the currently configured timeout duration.
func Timeout() time.Duration {
	return time.Duration(opts.TimeoutSeconds) * time.Second
}

// ProbeResult describes whether a page can be framed.
type ProbeResult struct {
	URL        string
	FinalURL   string // URL after following redirects
	Status     int
	Title      string // page <title>, if found early in the document
	Embeddable bool
	Reason     string // why embedding is refused
	FetchTime  time.Duration
}

// Probe requests rawURL and inspects the headers that control framing.
// Only http and https pages are requested; anything else is reported as
// embeddable without a request.
func Probe(ctx context.Context, rawURL string) (*ProbeResult, error) {
	return probe(ctx, &http.Client{Timeout: Timeout()}, rawURL)
}

func probe(ctx context.Context, client *http.Client, rawURL string) (*ProbeResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ProbeResult{URL: rawURL, FinalURL: rawURL, Embeddable: true}, nil
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	res := &ProbeResult{
		URL:        rawURL,
		FinalURL:   resp.Request.URL.String(),
		Status:     resp.StatusCode,
		Embeddable: true,
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		res.Title = pageTitle(io.LimitReader(resp.Body, maxTitleBytes))
	}
	res.FetchTime = time.Since(start)
	if reason, blocked := frameBlocked(resp.Header, opts.EmbedOrigin); blocked {
		res.Embeddable = false
		res.Reason = reason
	}
	return res, nil
}

// frameBlocked applies X-Frame-Options and the CSP frame-ancestors
// directive. CSP wins when both are present, as in browsers.
func frameBlocked(h http.Header, origin string) (string, bool) {
	for _, csp := range h.Values("Content-Security-Policy") {
		sources, ok := frameAncestors(csp)
		if !ok {
			continue
		}
		for _, src := range sources {
			if src == "*" || (origin != "" && strings.EqualFold(strings.TrimSuffix(src, "/"), origin)) {
				return "", false
			}
		}
		return "refused by Content-Security-Policy frame-ancestors", true
	}

	switch xfo := strings.ToUpper(strings.TrimSpace(h.Get("X-Frame-Options"))); {
	case xfo == "DENY":
		return "refused by X-Frame-Options: DENY", true
	case xfo == "SAMEORIGIN":
		return "refused by X-Frame-Options: SAMEORIGIN", true
	case strings.HasPrefix(xfo, "ALLOW-FROM"):
		return "refused by X-Frame-Options: ALLOW-FROM", true
	}
	return "", false
}

// frameAncestors returns the sources of the frame-ancestors directive in a
// policy, if present.
func frameAncestors(policy string) ([]string, bool) {
	for _, directive := range strings.Split(policy, ";") {
		fields := strings.Fields(directive)
		if len(fields) == 0 || !strings.EqualFold(fields[0], "frame-ancestors") {
			continue
		}
		return fields[1:], true
	}
	return nil, false
}

// pageTitle scans r for the first <title> element.
func pageTitle(r io.Reader) string {
	z := html.NewTokenizer(r)
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "title":
				inTitle = true
			case "body":
				return ""
			}
		case html.TextToken:
			if inTitle {
				return strings.Join(strings.Fields(string(z.Text())), " ")
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}
