package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"splitbrowse/fetcher"
	"splitbrowse/gateway"
	"splitbrowse/locator"
	"splitbrowse/search"
	"splitbrowse/tabs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource answers queries from maps. A query listed in gates blocks until
// its channel is closed, ignoring cancellation.
type fakeSource struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
	webErr  map[string]error
	aiErr   map[string]error
	calls   []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		gates:   map[string]chan struct{}{},
		started: make(chan string, 16),
		webErr:  map[string]error{},
		aiErr:   map[string]error{},
	}
}

func (f *fakeSource) wait(q string) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.gates[q]
	f.mu.Unlock()
	f.started <- q
	if gate != nil {
		<-gate
	}
}

func (f *fakeSource) WebSearch(ctx context.Context, q string) (*search.Results, error) {
	f.wait("web:" + q)
	if err := f.webErr[q]; err != nil {
		return nil, err
	}
	return &search.Results{Query: q, Results: []search.Result{{Title: "About " + q}}}, nil
}

func (f *fakeSource) AIAnswer(ctx context.Context, q string) (string, error) {
	f.wait("ai:" + q)
	if err := f.aiErr[q]; err != nil {
		return "", err
	}
	return "**" + q + "**", nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func webTab(id, q string) tabs.Tab {
	return tabs.Tab{ID: id, Title: "Google: " + q, Locator: locator.Web(q)}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		tab  tabs.Tab
		want []PaneSpec
	}{
		{
			name: "blank",
			tab:  tabs.Tab{Locator: locator.Blank()},
			want: []PaneSpec{{Pane: PaneMain, Mode: ModeFrame, Key: locator.Blank()}},
		},
		{
			name: "url",
			tab:  tabs.Tab{Locator: locator.URL("https://go.dev")},
			want: []PaneSpec{{Pane: PaneMain, Mode: ModeFrame, Key: locator.URL("https://go.dev")}},
		},
		{
			name: "web",
			tab:  tabs.Tab{Locator: locator.Web("cats")},
			want: []PaneSpec{{Pane: PaneMain, Mode: ModeResults, Key: locator.Web("cats")}},
		},
		{
			name: "ai",
			tab:  tabs.Tab{Locator: locator.AI("cats")},
			want: []PaneSpec{{Pane: PaneMain, Mode: ModeAnswer, Key: locator.AI("cats")}},
		},
		{
			name: "split web first",
			tab:  tabs.Tab{SplitView: true, AIQuery: "a", WebQuery: "w"},
			want: []PaneSpec{
				{Pane: PaneWeb, Mode: ModeResults, Key: locator.Web("w")},
				{Pane: PaneAI, Mode: ModeAnswer, Key: locator.AI("a")},
			},
		},
		{
			name: "split ai first",
			tab:  tabs.Tab{SplitView: true, AIQuery: "a", WebQuery: "w", PreferredOrder: tabs.AIFirst},
			want: []PaneSpec{
				{Pane: PaneAI, Mode: ModeAnswer, Key: locator.AI("a")},
				{Pane: PaneWeb, Mode: ModeResults, Key: locator.Web("w")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.tab)
			assert.Equal(t, tt.want, got.Panes)
		})
	}
}

func TestLayoutKeepsAIFirst(t *testing.T) {
	p := Decide(tabs.Tab{SplitView: true, AIQuery: "a", WebQuery: "w"})
	layout := p.Layout()
	require.Len(t, layout, 2)
	assert.Equal(t, PaneAI, layout[0].Pane)
	assert.Equal(t, PaneWeb, p.Panes[0].Pane, "layout must not reorder the plan")
}

func TestResolveWebResults(t *testing.T) {
	src := newFakeSource()
	r := New(src)
	defer r.Close()

	v, err := r.Resolve(context.Background(), webTab("t1", "cats"))
	require.NoError(t, err)
	require.Len(t, v.Panes, 1)

	out := v.Panes[0]
	assert.Equal(t, StatusReady, out.Status)
	assert.Equal(t, ModeResults, out.Mode)
	require.NotNil(t, out.Results)
	assert.Equal(t, "cats", out.Results.Query)
}

func TestResolveRendersAnswer(t *testing.T) {
	r := New(newFakeSource())
	defer r.Close()

	v, err := r.Resolve(context.Background(), tabs.Tab{ID: "t1", Locator: locator.AI("cats")})
	require.NoError(t, err)
	require.Len(t, v.Panes, 1)
	require.NotNil(t, v.Panes[0].Answer)
	assert.Contains(t, v.Panes[0].Answer.HTML, "<strong>cats</strong>")
}

func TestUnchangedKeyIsNotRefetched(t *testing.T) {
	src := newFakeSource()
	r := New(src)
	defer r.Close()

	tab := webTab("t1", "cats")
	_, err := r.Resolve(context.Background(), tab)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), tab)
	require.NoError(t, err)
	assert.Equal(t, 1, src.callCount())

	_, err = r.Refresh(context.Background(), tab)
	require.NoError(t, err)
	assert.Equal(t, 2, src.callCount())
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	src := newFakeSource()
	release := make(chan struct{})
	src.gates["web:slow"] = release
	r := New(src)
	defer r.Close()

	done := make(chan View, 1)
	go func() {
		v, _ := r.Resolve(context.Background(), webTab("t1", "slow"))
		done <- v
	}()
	require.Equal(t, "web:slow", <-src.started)

	out, ok := r.Outcome("t1", PaneMain)
	require.True(t, ok)
	assert.Equal(t, StatusLoading, out.Status)

	_, err := r.Resolve(context.Background(), webTab("t1", "fast"))
	require.NoError(t, err)
	<-src.started

	close(release)
	<-done

	out, ok = r.Outcome("t1", PaneMain)
	require.True(t, ok)
	assert.Equal(t, StatusReady, out.Status)
	assert.Equal(t, locator.Web("fast"), out.Key)
	assert.Equal(t, "fast", out.Results.Query)
}

func TestSplitPanesFailIndependently(t *testing.T) {
	src := newFakeSource()
	src.aiErr["q"] = &gateway.Error{Kind: gateway.UpstreamError, Message: "An error occurred while fetching AI results. Please try again."}
	r := New(src)
	defer r.Close()

	v, err := r.Resolve(context.Background(), tabs.Tab{ID: "t1", SplitView: true, AIQuery: "q", WebQuery: "q"})
	require.NoError(t, err)
	require.Len(t, v.Panes, 2)
	assert.True(t, v.Split)

	ai, web := v.Panes[0], v.Panes[1]
	assert.Equal(t, PaneAI, ai.Pane)
	assert.Equal(t, StatusFailed, ai.Status)
	assert.Equal(t, gateway.UpstreamError, ai.Kind)
	assert.Equal(t, "An error occurred while fetching AI results. Please try again.", ai.Err)

	assert.Equal(t, PaneWeb, web.Pane)
	assert.Equal(t, StatusReady, web.Status)
	require.NotNil(t, web.Results)
}

func TestSplitPanesFetchConcurrently(t *testing.T) {
	src := newFakeSource()
	gate := make(chan struct{})
	src.gates["web:w"] = gate
	src.gates["ai:a"] = gate
	r := New(src)
	defer r.Close()

	done := make(chan struct{})
	go func() {
		r.Resolve(context.Background(), tabs.Tab{ID: "t1", SplitView: true, AIQuery: "a", WebQuery: "w"})
		close(done)
	}()

	// Both fetches start before either is allowed to finish.
	got := map[string]bool{<-src.started: true, <-src.started: true}
	assert.Equal(t, map[string]bool{"web:w": true, "ai:a": true}, got)
	close(gate)
	<-done
}

func TestLeavingSplitDropsPanes(t *testing.T) {
	r := New(newFakeSource())
	defer r.Close()

	_, err := r.Resolve(context.Background(), tabs.Tab{ID: "t1", SplitView: true, AIQuery: "a", WebQuery: "w"})
	require.NoError(t, err)

	v, err := r.Resolve(context.Background(), webTab("t1", "w"))
	require.NoError(t, err)
	require.Len(t, v.Panes, 1)
	assert.Equal(t, PaneMain, v.Panes[0].Pane)
	_, ok := r.Outcome("t1", PaneAI)
	assert.False(t, ok)
}

func TestFrameProbe(t *testing.T) {
	probe := func(ctx context.Context, url string) (*fetcher.ProbeResult, error) {
		switch url {
		case "https://locked.example":
			return &fetcher.ProbeResult{URL: url, Reason: "refused by X-Frame-Options: DENY"}, nil
		case "https://down.example":
			return nil, errors.New("connection refused")
		}
		return &fetcher.ProbeResult{URL: url, Embeddable: true}, nil
	}
	r := New(newFakeSource(), WithProbe(probe))
	defer r.Close()

	tests := []struct {
		url  string
		mode Mode
	}{
		{url: "https://open.example", mode: ModeFrame},
		{url: "https://locked.example", mode: ModeFrameBlocked},
		{url: "https://down.example", mode: ModeFrame},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			v, err := r.Resolve(context.Background(), tabs.Tab{ID: tt.url, Locator: locator.URL(tt.url)})
			require.NoError(t, err)
			require.Len(t, v.Panes, 1)
			assert.Equal(t, tt.mode, v.Panes[0].Mode)
			assert.Equal(t, StatusReady, v.Panes[0].Status)
		})
	}
}

func TestBlankIsNeverProbed(t *testing.T) {
	probed := false
	r := New(newFakeSource(), WithProbe(func(ctx context.Context, url string) (*fetcher.ProbeResult, error) {
		probed = true
		return &fetcher.ProbeResult{}, nil
	}))
	defer r.Close()

	v, err := r.Resolve(context.Background(), tabs.Tab{ID: "t1", Locator: locator.Blank()})
	require.NoError(t, err)
	assert.False(t, probed)
	assert.Equal(t, ModeFrame, v.Panes[0].Mode)
}

func TestNotifyAndForget(t *testing.T) {
	var mu sync.Mutex
	var notified []string
	r := New(newFakeSource(), WithNotify(func(id string) {
		mu.Lock()
		notified = append(notified, id)
		mu.Unlock()
	}))
	defer r.Close()

	_, err := r.Resolve(context.Background(), webTab("t1", "cats"))
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []string{"t1", "t1"}, notified, "loading and ready")
	mu.Unlock()

	r.Forget("t1")
	_, ok := r.View("t1")
	assert.False(t, ok)
}

func TestCloseCancelsInFlight(t *testing.T) {
	src := newFakeSource()
	r := New(src)

	block := make(chan struct{})
	src.gates["ai:hang"] = block

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background(), tabs.Tab{ID: "t1", Locator: locator.AI("hang")})
		done <- err
	}()
	<-src.started

	closed := make(chan struct{})
	go func() {
		r.Close()
		close(closed)
	}()

	// Close waits for the pending Resolve.
	select {
	case <-closed:
		t.Fatal("Close returned while a Resolve was pending")
	case <-time.After(20 * time.Millisecond):
	}
	close(block)
	require.NoError(t, <-done)
	<-closed

	_, err := r.Resolve(context.Background(), webTab("t2", "x"))
	assert.ErrorIs(t, err, ErrClosed)
}
