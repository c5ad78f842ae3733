// Package orchestrator sequences signal aggregation and idea generation for
// an interactive client and keeps the last result in a session store.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"trendmine/internal/common/config"
	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
	"trendmine/internal/session"
	"trendmine/internal/signals"
)

var (
	ErrBusy      = errors.New("operation already in progress")
	ErrNoSignals = errors.New("no trend data")
)

// State is the orchestrator's position in NoSignals -> Ready -> Done.
type State string

const (
	StateNoSignals State = "no_signals"
	StateReady     State = "ready"
	StateDone      State = "done"
)

// SignalFetcher runs an aggregation. Implementations may fail on transport errors.
type SignalFetcher interface {
	FetchSignals(ctx context.Context, params signals.RequestParams) (*signals.AggregationResult, error)
}

// IdeaGenerator runs a generation.
type IdeaGenerator interface {
	GenerateIdeas(ctx context.Context, in []signals.TrendSignal) (*ideas.GenerationResult, error)
}

// Snapshot is a copy of the orchestrator's state.
type Snapshot struct {
	State           State
	Params          signals.RequestParams
	Signals         []signals.TrendSignal
	Ideas           []ideas.BusinessIdea
	Warnings        []string
	GeneratedAt     time.Time
	FetchingSignals bool
	GeneratingIdeas bool
}

// IsLoading reports whether either operation is in flight.
func (s Snapshot) IsLoading() bool {
	return s.FetchingSignals || s.GeneratingIdeas
}

type Orchestrator struct {
	fetcher   SignalFetcher
	generator IdeaGenerator
	store     session.Store
	notifier  Notifier
	logger    logger.Logger

	mu          sync.Mutex
	state       State
	params      signals.RequestParams
	signals     []signals.TrendSignal
	ideas       []ideas.BusinessIdea
	warnings    []string
	generatedAt time.Time
	fetching    bool
	generating  bool
}

// DefaultParams returns the parameters a fresh orchestrator starts with.
func DefaultParams() signals.RequestParams {
	return signals.RequestParams{
		TimeWindow:     signals.Window7d,
		Location:       signals.LocationUS,
		Subreddits:     append([]string(nil), config.DefaultCommunities...),
		SocialKeywords: []string{},
	}
}

func New(fetcher SignalFetcher, generator IdeaGenerator, store session.Store, notifier Notifier, log logger.Logger) *Orchestrator {
	if store == nil {
		store = session.NewMemoryStore()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Orchestrator{
		fetcher:   fetcher,
		generator: generator,
		store:     store,
		notifier:  notifier,
		logger:    log.With(map[string]interface{}{"component": "orchestrator"}),
		state:     StateNoSignals,
		params:    DefaultParams(),
		warnings:  []string{},
	}
}

// SetParams replaces the request parameters. keywordText is free text split
// by the keyword normalizer.
func (o *Orchestrator) SetParams(window signals.TimeWindow, location signals.Location, subreddits []string, keywordText string) {
	keywords := signals.NormalizeKeywords([]string{keywordText})
	if keywords == nil {
		keywords = []string{}
	}
	communities := append([]string{}, subreddits...)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.params = signals.RequestParams{
		TimeWindow:     window,
		Location:       location,
		Subreddits:     communities,
		SocialKeywords: keywords,
	}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		State:           o.state,
		Params:          o.params.Clone(),
		Signals:         signals.CloneSignals(o.signals),
		Ideas:           ideas.CloneIdeas(o.ideas),
		Warnings:        append([]string(nil), o.warnings...),
		GeneratedAt:     o.generatedAt,
		FetchingSignals: o.fetching,
		GeneratingIdeas: o.generating,
	}
}

// IsLoading reports whether a fetch or a generation is in flight.
func (o *Orchestrator) IsLoading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fetching || o.generating
}

// Hydrate loads the cached session. A missing or unreadable entry is logged
// and treated as no cache.
func (o *Orchestrator) Hydrate(ctx context.Context) {
	cs, err := o.store.Load(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			o.logger.Debug("no cached session", nil)
		} else {
			o.logger.Warn("failed to load cached session", map[string]interface{}{"error": err})
		}
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.ideas = ideas.CloneIdeas(cs.Ideas)
	o.warnings = append([]string{}, cs.Warnings...)
	o.generatedAt = cs.GeneratedAt
	o.params = cs.Params.Clone()
	if len(o.ideas) > 0 {
		o.state = StateDone
	}
	o.logger.Info("session restored", map[string]interface{}{"ideas": len(o.ideas)})
}

// Refresh aggregates signals with the current parameters. On success held
// signals and warnings are replaced; on failure prior signals are kept.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.Lock()
	if o.fetching {
		o.mu.Unlock()
		return ErrBusy
	}
	o.fetching = true
	o.warnings = []string{}
	params := o.params.Clone()
	o.mu.Unlock()

	result, err := o.fetcher.FetchSignals(ctx, params)

	o.mu.Lock()
	o.fetching = false
	if err != nil {
		o.mu.Unlock()
		o.fail("Error fetching trends", err)
		return err
	}
	o.applySignals(result)
	n, warnings := len(o.signals), append([]string(nil), o.warnings...)
	o.mu.Unlock()

	if len(warnings) > 0 {
		o.notifier.Notify(Notice{Level: LevelWarning, Title: "Partial data fetched", Description: strings.Join(warnings, ". ")})
	} else {
		o.notifier.Notify(Notice{Level: LevelInfo, Title: "Data refreshed", Description: fmt.Sprintf("Fetched %d trend signals", n)})
	}
	return nil
}

// GenerateIdeas is the Ready -> Done transition. It needs held signals.
func (o *Orchestrator) GenerateIdeas(ctx context.Context) error {
	o.mu.Lock()
	if o.generating {
		o.mu.Unlock()
		return ErrBusy
	}
	if len(o.signals) == 0 {
		o.mu.Unlock()
		return ErrNoSignals
	}
	o.generating = true
	held := signals.CloneSignals(o.signals)
	params := o.params.Clone()
	o.mu.Unlock()

	result, err := o.generator.GenerateIdeas(ctx, held)

	o.mu.Lock()
	o.generating = false
	if err != nil {
		o.mu.Unlock()
		o.fail("Error generating ideas", err)
		return err
	}
	o.ideas = ideas.CloneIdeas(result.Ideas)
	o.warnings = append(o.warnings, result.Warnings...)
	o.generatedAt = result.GeneratedAt
	o.state = StateDone
	o.mu.Unlock()

	cs := &session.CachedSession{
		Ideas:       ideas.CloneIdeas(result.Ideas),
		Warnings:    append([]string{}, result.Warnings...),
		GeneratedAt: result.GeneratedAt,
		Params:      params,
	}
	if err := o.store.Save(ctx, cs); err != nil {
		o.logger.Warn("failed to cache results", map[string]interface{}{"error": err})
	}

	o.notifier.Notify(Notice{
		Level:       LevelInfo,
		Title:       "Ideas generated!",
		Description: fmt.Sprintf("Created %d business ideas from %d signals", len(result.Ideas), len(held)),
	})
	return nil
}

// Generate is the compound NoSignals --fetch--> Ready --generate--> Done
// transition. With signals already held it only generates. Fetch warnings
// are appended to the held warnings.
func (o *Orchestrator) Generate(ctx context.Context) error {
	o.mu.Lock()
	if o.fetching || o.generating {
		o.mu.Unlock()
		return ErrBusy
	}
	needFetch := len(o.signals) == 0
	if needFetch {
		o.fetching = true
	}
	params := o.params.Clone()
	o.mu.Unlock()

	if needFetch {
		result, err := o.fetcher.FetchSignals(ctx, params)

		o.mu.Lock()
		o.fetching = false
		if err != nil {
			o.mu.Unlock()
			o.fail("Error fetching trends", err)
			return err
		}
		prior := o.warnings
		o.applySignals(result)
		o.warnings = append(prior, o.warnings...)
		empty := len(o.signals) == 0
		o.mu.Unlock()

		if empty {
			o.notifier.Notify(Notice{
				Level:       LevelFatal,
				Title:       "No trend data",
				Description: "Please add some social keywords or select subreddits",
			})
			return ErrNoSignals
		}
	}

	return o.GenerateIdeas(ctx)
}

// Clear resets held state and discards the cached session.
func (o *Orchestrator) Clear(ctx context.Context) error {
	o.mu.Lock()
	o.ideas = nil
	o.signals = nil
	o.warnings = []string{}
	o.generatedAt = time.Time{}
	o.state = StateNoSignals
	o.mu.Unlock()

	if err := o.store.Clear(ctx); err != nil {
		o.logger.Warn("failed to clear cached session", map[string]interface{}{"error": err})
		return err
	}
	return nil
}

// applySignals must be called with mu held.
func (o *Orchestrator) applySignals(result *signals.AggregationResult) {
	o.signals = signals.CloneSignals(result.Signals)
	o.warnings = append([]string{}, result.Warnings...)
	switch {
	case len(o.signals) == 0:
		o.state = StateNoSignals
	case o.state == StateNoSignals || o.state == StateDone:
		o.state = StateReady
	}
}

func (o *Orchestrator) fail(title string, err error) {
	o.logger.Error(title, map[string]interface{}{"error": err})
	o.notifier.Notify(Notice{Level: LevelFatal, Title: title, Description: err.Error()})
}
