// Package gateway is the single door to the two result sources: web search
// and AI answers. Every failure leaving it is a *Error with a Kind.
package gateway

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"splitbrowse/llm"
	"splitbrowse/logging"
	"splitbrowse/search"
)

// DefaultTimeout bounds each gateway call.
const DefaultTimeout = 30 * time.Second

// Answerer produces Markdown answers. *llm.Client satisfies it.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Gateway issues web searches and AI answer requests.
type Gateway struct {
	search  search.Provider
	ai      Answerer
	timeout time.Duration
	log     *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the gateway logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) { g.log = logging.OrNop(l) }
}

// New creates a gateway. Either source may be nil, in which case calls to
// it fail with an UpstreamError.
func New(sp search.Provider, ai Answerer, opts ...Option) *Gateway {
	g := &Gateway{
		search:  sp,
		ai:      ai,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WebSearch runs a web search for q.
func (g *Gateway) WebSearch(ctx context.Context, q string) (*search.Results, error) {
	if g.search == nil {
		return nil, &Error{Kind: UpstreamError, Message: "web search is not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	res, err := g.search.Search(ctx, q)
	if err != nil {
		gerr := classify(err, sourceWeb)
		g.log.Warn("web search failed",
			zap.String("provider", g.search.Name()),
			zap.String("query", q),
			zap.Stringer("kind", gerr.Kind),
			zap.Error(err))
		return nil, gerr
	}
	g.log.Debug("web search done",
		zap.String("provider", g.search.Name()),
		zap.String("query", q),
		zap.Int("results", len(res.Results)),
		zap.Duration("took", time.Since(start)))
	return res, nil
}

// AIAnswer asks the AI source to answer q. The answer is raw Markdown.
func (g *Gateway) AIAnswer(ctx context.Context, q string) (string, error) {
	if g.ai == nil {
		return "", &Error{Kind: UpstreamError, Message: "AI answers are not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.ai.Answer(ctx, q)
	if err != nil {
		gerr := classify(err, sourceAI)
		g.log.Warn("ai answer failed",
			zap.String("query", q),
			zap.Stringer("kind", gerr.Kind),
			zap.Error(err))
		return "", gerr
	}
	g.log.Debug("ai answer done",
		zap.String("query", q),
		zap.Int("bytes", len(text)),
		zap.Duration("took", time.Since(start)))
	return text, nil
}

type source int

const (
	sourceWeb source = iota
	sourceAI
)

func (s source) failed() string {
	if s == sourceAI {
		return "An error occurred while fetching AI results. Please try again."
	}
	return "Failed to fetch search results. Please try again later."
}

func (s source) authFailed() string {
	if s == sourceAI {
		return "AI service authentication failed or quota exceeded. Please check your API key and settings."
	}
	return "Search API authentication failed. Please check your API key and settings."
}

// classify maps a source error onto the gateway taxonomy.
func classify(err error, src source) *Error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: NetworkFailure, Message: "The request timed out. Please try again.", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: NetworkFailure, Message: "The request was cancelled.", Err: err}
	}

	var searchErr *search.APIError
	if errors.As(err, &searchErr) {
		return fromStatus(searchErr.Status, err, src)
	}
	var llmErr *llm.APIError
	if errors.As(err, &llmErr) {
		return fromStatus(llmErr.Status, err, src)
	}

	if errors.Is(err, llm.ErrNoProvider) {
		return &Error{Kind: UpstreamError, Message: "AI answers are not configured. Set an API key for Gemini, Claude or OpenAI.", Err: err}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &Error{Kind: NetworkFailure, Message: src.failed(), Err: err}
	}

	if strings.Contains(strings.ToLower(err.Error()), "quota") {
		return &Error{Kind: UpstreamError, Message: src.authFailed(), Err: err}
	}
	return &Error{Kind: UpstreamError, Message: src.failed(), Err: err}
}

func fromStatus(status int, err error, src source) *Error {
	switch status {
	case 401, 403, 429:
		return &Error{Kind: UpstreamError, Message: src.authFailed(), Err: err}
	}
	return &Error{Kind: NetworkFailure, Message: src.failed(), Err: err}
}
