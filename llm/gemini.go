package llm

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

const (
	// GeminiName is the config name of the Gemini backend.
	GeminiName = "gemini"

	geminiModel = "gemini-1.5-pro"
)

// Gemini talks to the Gemini API through the genai SDK. The SDK client is
// built on first use.
type Gemini struct {
	key     string
	model   string
	baseURL string

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGemini creates the backend. An empty key falls back to GEMINI_API_KEY,
// then GOOGLE_API_KEY.
func NewGemini(key, model string) *Gemini {
	if model == "" {
		model = geminiModel
	}
	return &Gemini{key: keyOr(key, "GEMINI_API_KEY", "GOOGLE_API_KEY"), model: model}
}

// WithBaseURL points the SDK at another API host.
func (g *Gemini) WithBaseURL(baseURL string) *Gemini {
	g.baseURL = baseURL
	return g
}

func (g *Gemini) Name() string     { return GeminiName }
func (g *Gemini) Configured() bool { return g.key != "" }

func (g *Gemini) sdk(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		cfg := &genai.ClientConfig{APIKey: g.key, Backend: genai.BackendGeminiAPI}
		if g.baseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
		}
		g.client, g.initErr = genai.NewClient(ctx, cfg)
		if g.initErr != nil {
			g.initErr = fmt.Errorf("creating gemini client: %w", g.initErr)
		}
	})
	return g.client, g.initErr
}

// Generate sends system as the system instruction and user as the content.
func (g *Gemini) Generate(ctx context.Context, system, user string) (string, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return "", err
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(user), cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
