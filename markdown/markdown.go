// Package markdown converts AI answer text into sanitized HTML.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Answer is an AI answer in both its raw and rendered forms.
type Answer struct {
	Source string // Markdown as returned by the model
	HTML   string // Sanitized HTML
}

// Renderer turns Markdown into HTML that is safe to embed.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer creates a renderer with GitHub flavoured Markdown and a user
// generated content sanitizing policy.
func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: policy,
	}
}

// Render converts src to sanitized HTML.
func (r *Renderer) Render(src string) (Answer, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return Answer{}, fmt.Errorf("converting markdown: %w", err)
	}
	return Answer{
		Source: src,
		HTML:   strings.TrimSpace(r.policy.Sanitize(buf.String())),
	}, nil
}

var defaultRenderer = NewRenderer()

// Render converts src with the default renderer.
func Render(src string) (Answer, error) {
	return defaultRenderer.Render(src)
}
