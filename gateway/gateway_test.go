package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitbrowse/llm"
	"splitbrowse/search"
)

type fakeSearch struct {
	res *search.Results
	err error
}

func (f fakeSearch) Name() string { return "fake" }
func (f fakeSearch) Search(ctx context.Context, q string) (*search.Results, error) {
	return f.res, f.err
}

type fakeAI func(ctx context.Context, prompt string) (string, error)

func (f fakeAI) Answer(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestWebSearchSuccess(t *testing.T) {
	want := &search.Results{Query: "cats", Results: []search.Result{{Title: "Cat"}}}
	g := New(fakeSearch{res: want}, nil)

	got, err := g.WebSearch(context.Background(), "cats")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestAIAnswerSuccess(t *testing.T) {
	g := New(nil, fakeAI(func(ctx context.Context, q string) (string, error) {
		return "# " + q, nil
	}))

	got, err := g.AIAnswer(context.Background(), "cats")
	require.NoError(t, err)
	assert.Equal(t, "# cats", got)
}

func TestMissingSources(t *testing.T) {
	g := New(nil, nil)

	_, err := g.WebSearch(context.Background(), "q")
	assert.Equal(t, UpstreamError, KindOf(err))
	_, err = g.AIAnswer(context.Background(), "q")
	assert.Equal(t, UpstreamError, KindOf(err))
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "search auth", err: &search.APIError{Provider: "Google", Status: 403, Message: "bad key"}, want: UpstreamError},
		{name: "search quota", err: &search.APIError{Provider: "Google", Status: 429}, want: UpstreamError},
		{name: "search 5xx", err: &search.APIError{Provider: "Google", Status: 502}, want: NetworkFailure},
		{name: "llm auth", err: fmt.Errorf("wrapped: %w", &llm.APIError{Provider: "openai", Status: 401}), want: UpstreamError},
		{name: "llm 500", err: &llm.APIError{Provider: "openai", Status: 500}, want: NetworkFailure},
		{name: "no provider", err: llm.ErrNoProvider, want: UpstreamError},
		{name: "deadline", err: fmt.Errorf("fetching: %w", context.DeadlineExceeded), want: NetworkFailure},
		{name: "quota text", err: errors.New("RESOURCE_EXHAUSTED: quota exceeded"), want: UpstreamError},
		{name: "other", err: errors.New("strange"), want: UpstreamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, sourceWeb)
			assert.Equal(t, tt.want, got.Kind)
			assert.NotEmpty(t, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestAuthFailureMessageIsDistinct(t *testing.T) {
	g := New(fakeSearch{err: &search.APIError{Provider: "Google", Status: 403}}, nil)
	_, err := g.WebSearch(context.Background(), "cats")

	assert.Equal(t, "Search API authentication failed. Please check your API key and settings.", Message(err))
}

func TestUnreachableIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	g := New(search.NewGoogle("k", "cx").WithEndpoint(addr), nil)
	_, err := g.WebSearch(context.Background(), "cats")
	assert.Equal(t, NetworkFailure, KindOf(err))
}

func TestTimeoutIsFailure(t *testing.T) {
	g := New(nil, fakeAI(func(ctx context.Context, q string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), WithTimeout(10*time.Millisecond))

	_, err := g.AIAnswer(context.Background(), "slow")
	assert.Equal(t, NetworkFailure, KindOf(err))
	assert.Equal(t, "The request timed out. Please try again.", Message(err))
}

func TestMessageOfPlainError(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "x", Message(errors.New("x")))
	assert.Equal(t, Kind(0), KindOf(errors.New("x")))
}

type blankBackend struct{}

func (blankBackend) Name() string     { return "blank" }
func (blankBackend) Configured() bool { return true }
func (blankBackend) Generate(context.Context, string, string) (string, error) {
	return " \n", nil
}

func TestBlankAnswerIsUpstreamError(t *testing.T) {
	g := New(nil, llm.NewClient("", blankBackend{}))

	_, err := g.AIAnswer(context.Background(), "cats")
	assert.Equal(t, UpstreamError, KindOf(err))
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}
