package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFrameBlocked(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		origin  string
		blocked bool
	}{
		{name: "no headers", blocked: false},
		{name: "xfo deny", headers: map[string]string{"X-Frame-Options": "DENY"}, blocked: true},
		{name: "xfo sameorigin lowercase", headers: map[string]string{"X-Frame-Options": "sameorigin"}, blocked: true},
		{name: "csp none", headers: map[string]string{"Content-Security-Policy": "default-src 'self'; frame-ancestors 'none'"}, blocked: true},
		{name: "csp wildcard beats xfo", headers: map[string]string{
			"Content-Security-Policy": "frame-ancestors *",
			"X-Frame-Options":         "DENY",
		}, blocked: false},
		{name: "csp lists origin", headers: map[string]string{"Content-Security-Policy": "frame-ancestors https://shell.example"}, origin: "https://shell.example", blocked: false},
		{name: "csp other origin", headers: map[string]string{"Content-Security-Policy": "frame-ancestors https://other.example"}, origin: "https://shell.example", blocked: true},
		{name: "csp without frame-ancestors", headers: map[string]string{"Content-Security-Policy": "default-src 'self'"}, blocked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			reason, blocked := frameBlocked(h, tt.origin)
			if blocked != tt.blocked {
				t.Fatalf("frameBlocked() = %v (%q), want %v", blocked, reason, tt.blocked)
			}
			if blocked && reason == "" {
				t.Fatal("blocked result needs a reason")
			}
		})
	}
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/locked" {
			w.Header().Set("X-Frame-Options", "DENY")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><head><title>\n  Open   Page </title></head><body></body></html>"))
	}))
	defer srv.Close()

	res, err := Probe(context.Background(), srv.URL+"/open")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !res.Embeddable || res.Status != http.StatusOK {
		t.Fatalf("open page: %+v", res)
	}
	if res.Title != "Open Page" {
		t.Fatalf("Title = %q, want %q", res.Title, "Open Page")
	}

	res, err = Probe(context.Background(), srv.URL+"/locked")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.Embeddable {
		t.Fatalf("locked page should not be embeddable: %+v", res)
	}
}

func TestProbeSkipsNonHTTP(t *testing.T) {
	res, err := Probe(context.Background(), "about:blank")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !res.Embeddable || res.Status != 0 {
		t.Fatalf("about:blank: %+v", res)
	}
}

func TestConfigureKeepsDefaults(t *testing.T) {
	saved := opts
	defer func() { opts = saved }()

	Configure(Options{TimeoutSeconds: 3})
	if UserAgent() == "" {
		t.Fatal("user agent should keep its default")
	}
	if Timeout().Seconds() != 3 {
		t.Fatalf("Timeout() = %v", Timeout())
	}
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{"<title>Go</title>", "Go"},
		{"<html><head><meta charset=utf-8><title>A &amp; B</title>", "A & B"},
		{"<html><body><title>late</title></body>", ""},
		{"no markup", ""},
	}
	for _, tt := range tests {
		if got := pageTitle(strings.NewReader(tt.doc)); got != tt.want {
			t.Fatalf("pageTitle(%q) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}
