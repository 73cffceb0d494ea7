package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// AnthropicName is the config name of the Anthropic backend.
	AnthropicName = "claude-api"

	anthropicEndpoint   = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
	anthropicModel      = "claude-sonnet-4-20250514"
	anthropicAnswerSize = 4096
)

// Anthropic talks to the Anthropic messages API over plain HTTP.
type Anthropic struct {
	key      string
	model    string
	endpoint string
	http     *http.Client
}

// NewAnthropic creates the backend. An empty key falls back to
// ANTHROPIC_API_KEY and an empty model to the default one.
func NewAnthropic(key, model string) *Anthropic {
	if model == "" {
		model = anthropicModel
	}
	return &Anthropic{
		key:      keyOr(key, "ANTHROPIC_API_KEY"),
		model:    model,
		endpoint: anthropicEndpoint,
		http:     &http.Client{},
	}
}

// WithEndpoint points the backend at another messages endpoint.
func (a *Anthropic) WithEndpoint(endpoint string) *Anthropic {
	a.endpoint = endpoint
	return a
}

func (a *Anthropic) Name() string     { return AnthropicName }
func (a *Anthropic) Configured() bool { return a.key != "" }

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends one exchange and joins the text blocks of the reply.
func (a *Anthropic) Generate(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     a.model,
		MaxTokens: anthropicAnswerSize,
		System:    system,
		Messages:  []message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.key)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading anthropic reply: %w", err)
	}
	var out messagesResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", &APIError{Provider: AnthropicName, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding anthropic reply: %w", decodeErr)
	}

	var sb strings.Builder
	for _, c := range out.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return sb.String(), nil
}
