// Package resolver turns a tab into displayable content. It decides each
// pane's render mode, fetches results for query panes and discards any
// response that arrives after its pane has moved on to another query.
package resolver

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"splitbrowse/fetcher"
	"splitbrowse/gateway"
	"splitbrowse/locator"
	"splitbrowse/logging"
	"splitbrowse/markdown"
	"splitbrowse/search"
	"splitbrowse/tabs"
)

// ErrClosed is returned by Resolve after Close.
var ErrClosed = errors.New("resolver closed")

// Source fetches query results. *gateway.Gateway satisfies it.
type Source interface {
	WebSearch(ctx context.Context, q string) (*search.Results, error)
	AIAnswer(ctx context.Context, q string) (string, error)
}

// ProbeFunc reports whether a page may be embedded.
type ProbeFunc func(ctx context.Context, url string) (*fetcher.ProbeResult, error)

// Status is the lifecycle of a pane's outcome.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "loading"
}

// Outcome is what a pane currently shows.
type Outcome struct {
	Pane   Pane
	Mode   Mode
	Key    locator.Locator
	Status Status

	Results *search.Results  // ModeResults
	Answer  *markdown.Answer // ModeAnswer
	Title   string           // ModeFrame, ModeFrameBlocked: page title when probed
	Reason  string           // ModeFrameBlocked

	Err  string // user-facing failure message
	Kind gateway.Kind

	UpdatedAt time.Time
}

// View is a snapshot of a tab's panes in display order.
type View struct {
	TabID string
	Split bool
	Panes []Outcome
}

type paneState struct {
	gen     uint64
	outcome Outcome
	cancel  context.CancelFunc
}

type tabState struct {
	plan  Plan
	panes map[Pane]*paneState
}

// Resolver tracks per-pane outcomes for every tab it has resolved.
type Resolver struct {
	src    Source
	probe  ProbeFunc
	render func(string) (markdown.Answer, error)
	notify func(tabID string)
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	tabs   map[string]*tabState
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNotify registers a callback run after each committed outcome.
func WithNotify(fn func(tabID string)) Option {
	return func(r *Resolver) { r.notify = fn }
}

// WithProbe replaces the embed probe. A nil probe treats every page as
// embeddable.
func WithProbe(fn ProbeFunc) Option {
	return func(r *Resolver) { r.probe = fn }
}

// WithLogger sets the resolver logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.log = logging.OrNop(l) }
}

// New creates a resolver fetching from src.
func New(src Source, opts ...Option) *Resolver {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver{
		src:    src,
		probe:  fetcher.Probe,
		render: markdown.Render,
		log:    zap.NewNop(),
		ctx:    ctx,
		cancel: cancel,
		tabs:   make(map[string]*tabState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve brings every pane of t up to date and waits for the fetches it
// started. Panes whose key is unchanged keep their outcome. Split panes are
// fetched concurrently and fail independently. The returned view reflects
// the latest committed state, which may belong to a newer Resolve call.
func (r *Resolver) Resolve(ctx context.Context, t tabs.Tab) (View, error) {
	return r.resolve(ctx, t, false)
}

// Refresh drops the outcomes of t and fetches every pane again.
func (r *Resolver) Refresh(ctx context.Context, t tabs.Tab) (View, error) {
	return r.resolve(ctx, t, true)
}

type job struct {
	spec PaneSpec
	gen  uint64
	ctx  context.Context
}

func (r *Resolver) resolve(ctx context.Context, t tabs.Tab, force bool) (View, error) {
	plan := Decide(t)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return View{}, ErrClosed
	}
	r.wg.Add(1)
	defer r.wg.Done()

	ts := r.tabs[t.ID]
	if ts == nil {
		ts = &tabState{panes: make(map[Pane]*paneState)}
		r.tabs[t.ID] = ts
	}
	ts.plan = plan

	// Panes dropped from the plan, e.g. on leaving split view.
	for pane, ps := range ts.panes {
		if !plan.has(pane) {
			ps.cancelFetch()
			delete(ts.panes, pane)
		}
	}

	var jobs []job
	for _, spec := range plan.Panes {
		ps := ts.panes[spec.Pane]
		if ps == nil {
			ps = &paneState{}
			ts.panes[spec.Pane] = ps
		} else if !force && ps.outcome.Key == spec.Key {
			// Unchanged key: ready, failed, or already being fetched.
			continue
		}
		ps.cancelFetch()
		ps.gen++
		jctx, cancel := mergeCancel(ctx, r.ctx)
		ps.cancel = cancel
		ps.outcome = Outcome{Pane: spec.Pane, Mode: spec.Mode, Key: spec.Key, Status: StatusLoading, UpdatedAt: time.Now()}
		jobs = append(jobs, job{spec: spec, gen: ps.gen, ctx: jctx})
	}
	r.mu.Unlock()

	if len(jobs) > 0 {
		r.changed(t.ID)
	}

	var g errgroup.Group
	for _, j := range jobs {
		g.Go(func() error {
			out := r.fetch(j.ctx, j.spec)
			r.commit(t.ID, j, out)
			return nil
		})
	}
	_ = g.Wait() // pane failures are recorded as outcomes, never returned

	v, _ := r.View(t.ID)
	return v, nil
}

func (p Plan) has(pane Pane) bool {
	for _, s := range p.Panes {
		if s.Pane == pane {
			return true
		}
	}
	return false
}

func (ps *paneState) cancelFetch() {
	if ps.cancel != nil {
		ps.cancel()
		ps.cancel = nil
	}
}

// mergeCancel returns a context cancelled when either parent is.
func mergeCancel(ctx, root context.Context) (context.Context, context.CancelFunc) {
	jctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(root, cancel)
	return jctx, func() {
		stop()
		cancel()
	}
}

// fetch produces the outcome for one pane. It never fails: errors become
// failed outcomes.
func (r *Resolver) fetch(ctx context.Context, spec PaneSpec) Outcome {
	out := Outcome{Pane: spec.Pane, Mode: spec.Mode, Key: spec.Key, Status: StatusReady}

	switch spec.Mode {
	case ModeFrame:
		if spec.Key.IsBlank() || r.probe == nil {
			break
		}
		res, err := r.probe(ctx, spec.Key.FrameURL())
		if err != nil {
			// The frame may still load; only a definite refusal blocks it.
			r.log.Debug("embed probe failed", zap.String("url", spec.Key.FrameURL()), zap.Error(err))
			break
		}
		out.Title = res.Title
		if !res.Embeddable {
			out.Mode = ModeFrameBlocked
			out.Reason = res.Reason
		}

	case ModeResults:
		res, err := r.src.WebSearch(ctx, spec.Key.Value)
		if err != nil {
			return failed(out, err)
		}
		out.Results = res

	case ModeAnswer:
		text, err := r.src.AIAnswer(ctx, spec.Key.Value)
		if err != nil {
			return failed(out, err)
		}
		ans, err := r.render(text)
		if err != nil {
			return failed(out, &gateway.Error{Kind: gateway.UpstreamError, Message: "The AI answer could not be displayed.", Err: err})
		}
		out.Answer = &ans
	}
	return out
}

func failed(out Outcome, err error) Outcome {
	out.Status = StatusFailed
	out.Err = gateway.Message(err)
	out.Kind = gateway.KindOf(err)
	if out.Kind == 0 {
		out.Kind = gateway.NetworkFailure
	}
	return out
}

// commit stores out if its pane has not moved on since the fetch started.
func (r *Resolver) commit(tabID string, j job, out Outcome) {
	r.mu.Lock()
	ts := r.tabs[tabID]
	var ps *paneState
	if ts != nil {
		ps = ts.panes[j.spec.Pane]
	}
	if ps == nil || ps.gen != j.gen || ps.outcome.Key != j.spec.Key {
		r.mu.Unlock()
		r.log.Debug("discarding stale result",
			zap.String("tab", tabID),
			zap.Stringer("pane", j.spec.Pane),
			zap.String("key", j.spec.Key.String()))
		return
	}
	out.UpdatedAt = time.Now()
	ps.outcome = out
	ps.cancelFetch()
	r.mu.Unlock()

	if out.Status == StatusFailed {
		r.log.Info("pane failed",
			zap.String("tab", tabID),
			zap.Stringer("pane", j.spec.Pane),
			zap.Stringer("kind", out.Kind),
			zap.String("message", out.Err))
	}
	r.changed(tabID)
}

func (r *Resolver) changed(tabID string) {
	if r.notify != nil {
		r.notify(tabID)
	}
}

// Outcome returns the current outcome of one pane.
func (r *Resolver) Outcome(tabID string, pane Pane) (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts := r.tabs[tabID]
	if ts == nil {
		return Outcome{}, false
	}
	ps := ts.panes[pane]
	if ps == nil {
		return Outcome{}, false
	}
	return ps.outcome, true
}

// View returns the tab's panes in display order.
func (r *Resolver) View(tabID string) (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts := r.tabs[tabID]
	if ts == nil {
		return View{TabID: tabID}, false
	}
	v := View{TabID: tabID, Split: ts.plan.Split()}
	for _, spec := range ts.plan.Layout() {
		if ps := ts.panes[spec.Pane]; ps != nil {
			v.Panes = append(v.Panes, ps.outcome)
		}
	}
	return v, true
}

// Forget drops all state for a tab and abandons its fetches.
func (r *Resolver) Forget(tabID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ts := r.tabs[tabID]; ts != nil {
		for _, ps := range ts.panes {
			ps.cancelFetch()
		}
		delete(r.tabs, tabID)
	}
}

// Close cancels in-flight fetches and waits for pending Resolve calls.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()
	r.wg.Wait()
}
