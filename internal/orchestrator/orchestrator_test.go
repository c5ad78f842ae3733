package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
	"trendmine/internal/session"
	"trendmine/internal/signals"
)

type fakeFetcher struct {
	mu      sync.Mutex
	results []*signals.AggregationResult
	err     error
	calls   int
	params  []signals.RequestParams
	block   chan struct{}
}

func (f *fakeFetcher) FetchSignals(ctx context.Context, p signals.RequestParams) (*signals.AggregationResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.params = append(f.params, p)
	if f.err != nil {
		return nil, f.err
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r, nil
}

type fakeGenerator struct {
	mu     sync.Mutex
	result *ideas.GenerationResult
	err    error
	calls  int
	got    []signals.TrendSignal
}

func (g *fakeGenerator) GenerateIdeas(ctx context.Context, in []signals.TrendSignal) (*ideas.GenerationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.got = in
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notices {
		out = append(out, n.Title)
	}
	return out
}

var (
	someSignals = []signals.TrendSignal{
		{Platform: signals.PlatformReddit, Text: "r"},
		{Platform: signals.PlatformUserKeyword, Text: "k"},
	}
	genTime   = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	genResult = &ideas.GenerationResult{
		Ideas:       []ideas.BusinessIdea{{ID: "1", Title: "idea", MVPPlan: []string{"a"}, Theme: "t"}},
		Warnings:    []string{},
		GeneratedAt: genTime,
	}
)

func newTestOrchestrator(t *testing.T, f *fakeFetcher, g *fakeGenerator, store session.Store) (*Orchestrator, *recordingNotifier) {
	n := &recordingNotifier{}
	return New(f, g, store, n, logger.NewTestLogger(t)), n
}

func TestRefresh_Success(t *testing.T) {
	f := &fakeFetcher{results: []*signals.AggregationResult{{Signals: someSignals, Warnings: []string{}}}}
	o, n := newTestOrchestrator(t, f, &fakeGenerator{}, nil)

	require.NoError(t, o.Refresh(context.Background()))

	snap := o.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Len(t, snap.Signals, 2)
	assert.Empty(t, snap.Warnings)
	assert.False(t, snap.IsLoading())
	assert.Equal(t, []string{"Data refreshed"}, n.titles())
	assert.Equal(t, DefaultParams(), f.params[0])
}

func TestRefresh_PartialData(t *testing.T) {
	f := &fakeFetcher{results: []*signals.AggregationResult{{Signals: someSignals, Warnings: []string{"Reddit data fetch failed"}}}}
	o, n := newTestOrchestrator(t, f, &fakeGenerator{}, nil)

	require.NoError(t, o.Refresh(context.Background()))

	assert.Equal(t, []string{"Reddit data fetch failed"}, o.Snapshot().Warnings)
	require.Len(t, n.notices, 1)
	assert.Equal(t, LevelWarning, n.notices[0].Level)
	assert.Equal(t, "Partial data fetched", n.notices[0].Title)
}

func TestRefresh_FailureKeepsSignals(t *testing.T) {
	f := &fakeFetcher{results: []*signals.AggregationResult{{Signals: someSignals, Warnings: []string{}}}}
	o, n := newTestOrchestrator(t, f, &fakeGenerator{}, nil)
	require.NoError(t, o.Refresh(context.Background()))

	f.err = errors.New("transport down")
	err := o.Refresh(context.Background())
	require.Error(t, err)

	snap := o.Snapshot()
	assert.Len(t, snap.Signals, 2)
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, "Error fetching trends", n.notices[len(n.notices)-1].Title)
	assert.Equal(t, LevelFatal, n.notices[len(n.notices)-1].Level)
}

func TestGenerateIdeas_RequiresSignals(t *testing.T) {
	g := &fakeGenerator{result: genResult}
	o, _ := newTestOrchestrator(t, &fakeFetcher{}, g, nil)

	assert.ErrorIs(t, o.GenerateIdeas(context.Background()), ErrNoSignals)
	assert.Equal(t, 0, g.calls)
}

func TestGenerate_FetchesThenGenerates(t *testing.T) {
	f := &fakeFetcher{results: []*signals.AggregationResult{{Signals: someSignals, Warnings: []string{"Google Trends data fetch failed"}}}}
	g := &fakeGenerator{result: &ideas.GenerationResult{
		Ideas:       genResult.Ideas,
		Warnings:    []string{"extra"},
		GeneratedAt: genTime,
	}}
	store := session.NewMemoryStore()
	o, n := newTestOrchestrator(t, f, g, store)
	o.SetParams(signals.Window30d, signals.LocationCA, []string{"startups"}, "#AI, modest fashion,")

	require.NoError(t, o.Generate(context.Background()))

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 1, g.calls)
	assert.Equal(t, someSignals, g.got)

	snap := o.Snapshot()
	assert.Equal(t, StateDone, snap.State)
	assert.Len(t, snap.Ideas, 1)
	assert.Equal(t, []string{"Google Trends data fetch failed", "extra"}, snap.Warnings)
	assert.Equal(t, genTime, snap.GeneratedAt)
	assert.Equal(t, []string{"Ideas generated!"}, n.titles())

	cs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"extra"}, cs.Warnings)
	assert.Equal(t, signals.RequestParams{
		TimeWindow:     signals.Window30d,
		Location:       signals.LocationCA,
		Subreddits:     []string{"startups"},
		SocialKeywords: []string{"ai", "modest fashion"},
	}, cs.Params)
}

func TestGenerate_SkipsFetchWhenSignalsHeld(t *testing.T) {
	f := &fakeFetcher{results: []*signals.AggregationResult{{Signals: someSignals, Warnings: []string{}}}}
	g := &fakeGenerator{result: genResult}
	o, _ := newTestOrchestrator(t, f, g, nil)

	require.NoError(t, o.Refresh(context.Background()))
	require.NoError(t, o.Generate(context.Background()))

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, 1, g.calls)
}

func TestGenerate_NoTrendData(t *testing.T) {
	f := &fakeFetcher{results: []*signals.AggregationResult{{Signals: []signals.TrendSignal{}, Warnings: []string{"Reddit data fetch failed"}}}}
	g := &fakeGenerator{result: genResult}
	o, n := newTestOrchestrator(t, f, g, nil)

	err := o.Generate(context.Background())
	assert.ErrorIs(t, err, ErrNoSignals)
	assert.Equal(t, 0, g.calls)
	assert.Equal(t, []string{"No trend data"}, n.titles())

	snap := o.Snapshot()
	assert.Equal(t, StateNoSignals, snap.State)
	assert.Equal(t, []string{"Reddit data fetch failed"}, snap.Warnings)
	assert.False(t, snap.IsLoading())
}

func TestGenerate_GeneratorFailureKeepsIdeas(t *testing.T) {
	f := &fakeFetcher{results: []*signals.AggregationResult{{Signals: someSignals, Warnings: []string{}}}}
	g := &fakeGenerator{result: genResult}
	store := session.NewMemoryStore()
	o, n := newTestOrchestrator(t, f, g, store)

	require.NoError(t, o.Generate(context.Background()))

	g.err = errors.New("Rate limit exceeded, please try again later")
	require.Error(t, o.Generate(context.Background()))

	snap := o.Snapshot()
	assert.Len(t, snap.Ideas, 1)
	assert.Len(t, snap.Signals, 2)
	assert.Equal(t, "Error generating ideas", n.notices[len(n.notices)-1].Title)
}

func TestGenerate_RejectsWhileBusy(t *testing.T) {
	block := make(chan struct{})
	f := &fakeFetcher{results: []*signals.AggregationResult{{Signals: someSignals, Warnings: []string{}}}, block: block}
	o, _ := newTestOrchestrator(t, f, &fakeGenerator{result: genResult}, nil)

	done := make(chan error, 1)
	go func() { done <- o.Refresh(context.Background()) }()

	require.Eventually(t, o.IsLoading, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, o.Refresh(context.Background()), ErrBusy)
	assert.ErrorIs(t, o.Generate(context.Background()), ErrBusy)

	close(block)
	require.NoError(t, <-done)
	assert.False(t, o.IsLoading())
}

func TestHydrate(t *testing.T) {
	store := session.NewMemoryStore()
	params := signals.RequestParams{
		TimeWindow:     signals.Window24h,
		Location:       signals.LocationWorldwide,
		Subreddits:     []string{"ecommerce"},
		SocialKeywords: []string{"ai"},
	}
	require.NoError(t, store.Save(context.Background(), &session.CachedSession{
		Ideas:       genResult.Ideas,
		Warnings:    []string{"w"},
		GeneratedAt: genTime,
		Params:      params,
	}))

	o, _ := newTestOrchestrator(t, &fakeFetcher{}, &fakeGenerator{}, store)
	o.Hydrate(context.Background())

	snap := o.Snapshot()
	assert.Equal(t, StateDone, snap.State)
	assert.Equal(t, params, snap.Params)
	assert.Equal(t, []string{"w"}, snap.Warnings)
	assert.Len(t, snap.Ideas, 1)
	assert.Empty(t, snap.Signals)
}

type brokenStore struct{ session.MemoryStore }

func (b *brokenStore) Load(ctx context.Context) (*session.CachedSession, error) {
	return nil, session.ErrCorrupt
}

func TestHydrate_CorruptIsNoCache(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeFetcher{}, &fakeGenerator{}, &brokenStore{})
	o.Hydrate(context.Background())

	snap := o.Snapshot()
	assert.Equal(t, StateNoSignals, snap.State)
	assert.Empty(t, snap.Ideas)
	assert.Equal(t, DefaultParams(), snap.Params)
}

func TestClear(t *testing.T) {
	f := &fakeFetcher{results: []*signals.AggregationResult{{Signals: someSignals, Warnings: []string{"x"}}}}
	store := session.NewMemoryStore()
	o, _ := newTestOrchestrator(t, f, &fakeGenerator{result: genResult}, store)
	require.NoError(t, o.Generate(context.Background()))

	require.NoError(t, o.Clear(context.Background()))

	snap := o.Snapshot()
	assert.Equal(t, StateNoSignals, snap.State)
	assert.Empty(t, snap.Ideas)
	assert.Empty(t, snap.Signals)
	assert.Empty(t, snap.Warnings)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNotFound)
}
