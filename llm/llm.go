// Package llm answers questions in Markdown using whichever language model
// backend has an API key.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Instruction is the system prompt sent with every question.
const Instruction = "Answer the question thoroughly. Format the answer in Markdown using headings, lists and emphasis where they help."

var (
	// ErrNoProvider is returned when no backend has an API key.
	ErrNoProvider = errors.New("no AI provider has an API key")
	// ErrEmptyResponse is returned when a backend answers with blank text.
	ErrEmptyResponse = errors.New("AI provider returned an empty answer")
	// ErrEmptyQuestion is returned for a blank question.
	ErrEmptyQuestion = errors.New("question is empty")
)

// Backend sends one system and user message pair to a model and returns the
// raw reply.
type Backend interface {
	Name() string
	Configured() bool
	Generate(ctx context.Context, system, user string) (string, error)
}

// APIError is returned when a backend was reached but refused the request.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Status, e.Message)
}

// Client routes questions to the preferred backend, or to the first
// configured one when the preferred backend has no key.
type Client struct {
	backends  []Backend
	preferred string
}

// NewClient creates a client over backends, in fallback order.
func NewClient(preferred string, backends ...Backend) *Client {
	return &Client{backends: backends, preferred: preferred}
}

// Active returns the backend questions currently go to.
func (c *Client) Active() (Backend, error) {
	var first Backend
	for _, b := range c.backends {
		if !b.Configured() {
			continue
		}
		if b.Name() == c.preferred {
			return b, nil
		}
		if first == nil {
			first = b
		}
	}
	if first == nil {
		return nil, ErrNoProvider
	}
	return first, nil
}

// Answer asks the active backend about question and returns its Markdown
// answer, trimmed. A reply that is blank after trimming is ErrEmptyResponse.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	b, err := c.Active()
	if err != nil {
		return "", err
	}

	text, err := b.Generate(ctx, Instruction, question)
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.Name(), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", b.Name(), ErrEmptyResponse)
	}
	return text, nil
}

// keyOr returns key, or the first non-empty environment variable in envs.
func keyOr(key string, envs ...string) string {
	for _, e := range envs {
		if key != "" {
			break
		}
		key = os.Getenv(e)
	}
	return key
}
