package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// OpenAIName is the config name of the OpenAI backend.
	OpenAIName = "openai"

	openAIModel = "gpt-4o"
)

// OpenAI talks to the chat completions API through openai-go.
type OpenAI struct {
	key   string
	model string
	opts  []option.RequestOption
}

// NewOpenAI creates the backend. An empty key falls back to OPENAI_API_KEY.
// opts are passed to every SDK client, which lets tests swap the base URL.
func NewOpenAI(key, model string, opts ...option.RequestOption) *OpenAI {
	if model == "" {
		model = openAIModel
	}
	return &OpenAI{key: keyOr(key, "OPENAI_API_KEY"), model: model, opts: opts}
}

func (o *OpenAI) Name() string     { return OpenAIName }
func (o *OpenAI) Configured() bool { return o.key != "" }

// Generate sends a system and a user message and returns the first choice.
func (o *OpenAI) Generate(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(o.key)}, o.opts...)...)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &APIError{Provider: OpenAIName, Status: apiErr.StatusCode, Message: apiErr.Message}
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
