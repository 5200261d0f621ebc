// Package orchestrator rotates resume extraction across multiple LLM
// providers, scoring each candidate and stopping as soon as one clears
// the quality threshold.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dchen/portfolio-engine/internal/providers"
	"github.com/dchen/portfolio-engine/internal/ratelimit"
	"github.com/dchen/portfolio-engine/internal/scoring"
	"github.com/dchen/portfolio-engine/internal/types"
)

// DefaultThreshold is the quality score at which a candidate is accepted
// without trying further providers.
const DefaultThreshold = 75.0

// Mode selects the rotation strategy for a run
type Mode string

// Rotation modes
const (
	// ModeAdaptive rotates round-robin and stops at the first candidate
	// clearing the threshold. The default.
	ModeAdaptive Mode = "adaptive"
	// ModeFallback walks providers in declaration order and accepts the
	// first success regardless of score.
	ModeFallback Mode = "fallback"
	// ModeEnsemble calls every available provider and keeps the
	// highest-scoring candidate.
	ModeEnsemble Mode = "ensemble"
)

// Result is the outcome of a successful orchestration run
type Result struct {
	Record         *types.PortfolioData
	Score          float64
	Breakdown      scoring.Breakdown
	Provider       string
	BelowThreshold bool
	Attempts       []types.ParseAttempt
	// Candidates maps provider name to its successful record, including
	// ones that scored below threshold. Cross-validation reuses these to
	// avoid paying for a second extraction it already has.
	Candidates map[string]*types.PortfolioData
}

// Orchestrator drives providers until a candidate is accepted. The
// rotation cursor and the rate-limit tracker are shared across runs, so
// a single Orchestrator must be reused rather than rebuilt per request.
// Safe for concurrent use.
type Orchestrator struct {
	mu        sync.Mutex
	cursor    int
	providers []providers.Extractor
	tracker   *ratelimit.Tracker
	threshold float64
	mode      Mode
	resetEach bool
	logger    *slog.Logger
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithThreshold sets the acceptance threshold
func WithThreshold(threshold float64) Option {
	return func(o *Orchestrator) {
		if threshold > 0 {
			o.threshold = threshold
		}
	}
}

// WithMode sets the rotation strategy
func WithMode(mode Mode) Option {
	return func(o *Orchestrator) {
		switch mode {
		case ModeAdaptive, ModeFallback, ModeEnsemble:
			o.mode = mode
		}
	}
}

// WithRotationReset makes the round-robin cursor restart at the first
// provider every run instead of persisting across runs.
func WithRotationReset(reset bool) Option {
	return func(o *Orchestrator) {
		o.resetEach = reset
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an Orchestrator over an ordered provider list and a shared
// rate-limit tracker.
func New(extractors []providers.Extractor, tracker *ratelimit.Tracker, opts ...Option) *Orchestrator {
	if tracker == nil {
		tracker = ratelimit.NewTracker()
	}
	o := &Orchestrator{
		providers: extractors,
		tracker:   tracker,
		threshold: DefaultThreshold,
		mode:      ModeAdaptive,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Providers returns the configured extractors in declaration order
func (o *Orchestrator) Providers() []providers.Extractor {
	return o.providers
}

// Tracker returns the shared rate-limit tracker
func (o *Orchestrator) Tracker() *ratelimit.Tracker {
	return o.tracker
}

// Threshold returns the acceptance threshold
func (o *Orchestrator) Threshold() float64 {
	return o.threshold
}

// ProduceRecord runs the configured rotation strategy over the document
// text. On success the Result always carries a record; when no candidate
// cleared the threshold the best one seen is returned with
// BelowThreshold set. When zero providers produced anything the error is
// *AllProvidersFailedError carrying the full attempt trail.
func (o *Orchestrator) ProduceRecord(ctx context.Context, documentText string) (*Result, error) {
	if len(o.providers) == 0 {
		return nil, ErrNoProviders
	}

	switch o.mode {
	case ModeFallback:
		return o.runFallback(ctx, documentText)
	case ModeEnsemble:
		return o.runEnsemble(ctx, documentText)
	default:
		return o.runAdaptive(ctx, documentText)
	}
}

// runState accumulates per-run bookkeeping shared by the three modes
type runState struct {
	attempts   []types.ParseAttempt
	candidates map[string]*types.PortfolioData
	best       *types.PortfolioData
	bestScore  float64
	bestBrk    scoring.Breakdown
	bestName   string
	anySuccess bool
}

func newRunState() *runState {
	return &runState{candidates: make(map[string]*types.PortfolioData)}
}

// attempt calls one provider, classifies the outcome, and updates the
// trail. It returns the candidate's score and whether the attempt
// succeeded.
func (o *Orchestrator) attempt(ctx context.Context, extractor providers.Extractor, documentText string, state *runState) (float64, bool) {
	name := extractor.Name()
	start := time.Now()
	record, err := extractor.Extract(ctx, documentText)
	latency := time.Since(start)

	if err != nil {
		if providers.IsRateLimited(err) {
			o.tracker.MarkLimited(name)
			state.attempts = append(state.attempts, types.ParseAttempt{
				Provider: name,
				Outcome:  types.OutcomeRateLimited,
				Latency:  latency,
				Error:    err.Error(),
			})
			o.logger.Warn("orchestrator.attempt_rate_limited", "provider", name, "elapsed_ms", latency.Milliseconds())
			return 0, false
		}
		state.attempts = append(state.attempts, types.ParseAttempt{
			Provider: name,
			Outcome:  types.OutcomeFailure,
			Latency:  latency,
			Error:    err.Error(),
		})
		o.logger.Warn("orchestrator.attempt_failed", "provider", name, "error", err, "elapsed_ms", latency.Milliseconds())
		return 0, false
	}

	breakdown := scoring.ScoreWithBreakdown(record)
	state.attempts = append(state.attempts, types.ParseAttempt{
		Provider: name,
		Outcome:  types.OutcomeSuccess,
		Score:    breakdown.Total,
		Latency:  latency,
	})
	state.candidates[name] = record
	state.anySuccess = true
	// strict > keeps the earliest-tried provider on ties
	if state.best == nil || breakdown.Total > state.bestScore {
		state.best = record
		state.bestScore = breakdown.Total
		state.bestBrk = breakdown
		state.bestName = name
	}
	o.logger.Info("orchestrator.attempt_scored", "provider", name, "score", breakdown.Total, "elapsed_ms", latency.Milliseconds())
	return breakdown.Total, true
}

// skipLimited records a zero-latency rate_limited trail entry for a
// provider the tracker already holds in cooldown. The provider is never
// called, but the trail still documents why it was passed over.
func (o *Orchestrator) skipLimited(name string, state *runState) {
	state.attempts = append(state.attempts, types.ParseAttempt{
		Provider: name,
		Outcome:  types.OutcomeRateLimited,
		Error:    "provider in cooldown",
	})
	o.logger.Debug("orchestrator.provider_skipped", "provider", name, "available_at", o.tracker.AvailableAt(name))
}

// nextCursor claims the current cursor position and advances it
func (o *Orchestrator) nextCursor() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	idx := o.cursor
	o.cursor = (o.cursor + 1) % len(o.providers)
	return idx
}

func (o *Orchestrator) resetCursor() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cursor = 0
}

func (o *Orchestrator) runAdaptive(ctx context.Context, documentText string) (*Result, error) {
	if o.resetEach {
		o.resetCursor()
	}
	state := newRunState()
	start := o.nextCursor()

	for i := 0; i < len(o.providers); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		extractor := o.providers[(start+i)%len(o.providers)]
		name := extractor.Name()

		if o.tracker.IsLimited(name) {
			o.skipLimited(name, state)
			continue
		}

		score, ok := o.attempt(ctx, extractor, documentText, state)
		if ok && score >= o.threshold {
			return o.resultFor(state, name, false), nil
		}
	}

	return o.finishExhausted(state)
}

func (o *Orchestrator) runFallback(ctx context.Context, documentText string) (*Result, error) {
	state := newRunState()

	for _, extractor := range o.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := extractor.Name()
		if o.tracker.IsLimited(name) {
			o.skipLimited(name, state)
			continue
		}
		if _, ok := o.attempt(ctx, extractor, documentText, state); ok {
			return o.resultFor(state, name, state.bestScore < o.threshold), nil
		}
	}

	return o.finishExhausted(state)
}

func (o *Orchestrator) runEnsemble(ctx context.Context, documentText string) (*Result, error) {
	state := newRunState()

	for _, extractor := range o.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := extractor.Name()
		if o.tracker.IsLimited(name) {
			o.skipLimited(name, state)
			continue
		}
		o.attempt(ctx, extractor, documentText, state)
	}

	return o.finishExhausted(state)
}

// finishExhausted resolves a run where no candidate cleared the
// threshold: the best successful candidate wins, or the run fails with
// the full trail when nothing succeeded.
func (o *Orchestrator) finishExhausted(state *runState) (*Result, error) {
	if !state.anySuccess {
		o.logger.Error("orchestrator.all_providers_failed", "attempts", len(state.attempts))
		return nil, &AllProvidersFailedError{Attempts: state.attempts}
	}
	return o.resultFor(state, state.bestName, state.bestScore < o.threshold), nil
}

func (o *Orchestrator) resultFor(state *runState, provider string, belowThreshold bool) *Result {
	record := state.candidates[provider]
	breakdown := state.bestBrk
	score := state.bestScore
	if provider != state.bestName {
		breakdown = scoring.ScoreWithBreakdown(record)
		score = breakdown.Total
	}
	return &Result{
		Record:         record,
		Score:          score,
		Breakdown:      breakdown,
		Provider:       provider,
		BelowThreshold: belowThreshold,
		Attempts:       state.attempts,
		Candidates:     state.candidates,
	}
}
