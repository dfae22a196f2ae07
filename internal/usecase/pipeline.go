package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	drepo "github.com/neelpatelshah/swing-trader/internal/domain/repository"
	domsvc "github.com/neelpatelshah/swing-trader/internal/domain/service"
	"github.com/neelpatelshah/swing-trader/internal/services/features"
	"github.com/neelpatelshah/swing-trader/internal/services/scoring"
	"github.com/neelpatelshah/swing-trader/internal/services/signals"
	"github.com/neelpatelshah/swing-trader/internal/services/tax"
	"github.com/neelpatelshah/swing-trader/internal/services/universe"
	applogger "github.com/neelpatelshah/swing-trader/pkg/logger"
)

const lockKeyPrefix = "pipeline:run:"

// Sources groups the read-only collaborators of a run.
type Sources struct {
	Bars     drepo.BarSource
	Semantic drepo.SemanticSource
	Tickers  drepo.TickerSource
	Holdings drepo.HoldingSource
}

// DailyPipeline evaluates the whole universe for one date.
type DailyPipeline struct {
	cfg     PipelineConfig
	src     Sources
	locker  drepo.RunLocker
	sink    drepo.ResultSink
	metrics drepo.Metrics
	log     *applogger.Logger

	scorer domsvc.Scorer
	signal domsvc.SignalEvaluator
}

// PipelineOption customises a DailyPipeline.
type PipelineOption func(*DailyPipeline)

// WithSink hands every run's results to sink.
func WithSink(sink drepo.ResultSink) PipelineOption {
	return func(p *DailyPipeline) { p.sink = sink }
}

// WithMetrics records run and symbol metrics.
func WithMetrics(m drepo.Metrics) PipelineOption {
	return func(p *DailyPipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *applogger.Logger) PipelineOption {
	return func(p *DailyPipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// NewDailyPipeline validates cfg and wires the engines. An invalid config fails here,
// before any run can start.
func NewDailyPipeline(cfg PipelineConfig, src Sources, locker drepo.RunLocker, opts ...PipelineOption) (*DailyPipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src.Bars == nil || src.Semantic == nil || src.Tickers == nil || src.Holdings == nil {
		return nil, fmt.Errorf("%w: all data sources are required", models.ErrConfiguration)
	}
	if locker == nil {
		return nil, fmt.Errorf("%w: run locker is required", models.ErrConfiguration)
	}

	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		return nil, err
	}
	sig, err := signals.NewEngine(cfg.Signals, tax.NewCalculator(cfg.Tax))
	if err != nil {
		return nil, err
	}

	p := &DailyPipeline{
		cfg:     cfg,
		src:     src,
		locker:  locker,
		metrics: nopMetrics{},
		log:     applogger.NewNop(),
		scorer:  scorer,
		signal:  sig,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// phaseOne is the per-symbol output gathered before the ranking barrier.
type phaseOne struct {
	symbol    string
	computed  features.Computed
	lastClose float64
	err       error
}

// Run evaluates date. When another run for the same date holds the lock it returns
// a skipped summary together with ErrRunInProgress.
func (p *DailyPipeline) Run(ctx context.Context, date time.Time) (*models.RunResult, error) {
	if date.IsZero() {
		return nil, errors.New("evaluation date is required")
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Now()
	summary := models.RunSummary{RunID: uuid.NewString(), Date: date}

	key := lockKeyPrefix + date.Format(time.DateOnly)
	ok, err := p.locker.TryLock(ctx, key, p.cfg.LockTTL)
	if err != nil {
		p.metrics.RecordError("lock")
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		summary.Skipped = true
		summary.SkipReason = fmt.Sprintf("run for %s already in progress", date.Format(time.DateOnly))
		p.metrics.RecordRun("skipped")
		p.log.Warn("pipeline run skipped",
			applogger.String("run_id", summary.RunID),
			applogger.String("date", date.Format(time.DateOnly)))
		return &models.RunResult{Summary: summary}, models.ErrRunInProgress
	}
	defer func() {
		if err := p.locker.Unlock(context.WithoutCancel(ctx), key); err != nil {
			p.log.Error("release run lock", applogger.String("key", key), applogger.Error(err))
		}
	}()

	p.log.Info("pipeline run started",
		applogger.String("run_id", summary.RunID),
		applogger.String("date", date.Format(time.DateOnly)))

	res, err := p.run(ctx, date, &summary)
	summary.Duration = time.Since(start)
	p.metrics.RecordLatency("pipeline_run", summary.Duration.Seconds())
	if err != nil {
		p.metrics.RecordRun("failed")
		p.log.Error("pipeline run failed", applogger.String("run_id", summary.RunID), applogger.Error(err))
		return nil, err
	}
	res.Summary = summary
	p.metrics.RecordRun("completed")
	p.log.Info("pipeline run finished",
		applogger.String("run_id", summary.RunID),
		applogger.Int("universe", summary.Universe),
		applogger.Int("succeeded", summary.Succeeded),
		applogger.Int("failed", summary.Failed),
		applogger.Duration("duration", summary.Duration))
	return res, nil
}

func (p *DailyPipeline) run(ctx context.Context, date time.Time, summary *models.RunSummary) (*models.RunResult, error) {
	classes, err := p.src.Tickers.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w: %v", models.ErrUpstreamUnavailable, err)
	}
	uni := universe.Filter(classes)
	summary.Universe = uni.Count()
	summary.Excluded = len(uni.Excluded)

	holding, err := p.src.Holdings.GetHolding(ctx)
	if err != nil {
		return nil, fmt.Errorf("get holding: %w: %v", models.ErrUpstreamUnavailable, err)
	}
	if holding != nil {
		h := *holding
		h.Symbol = universe.Normalize(h.Symbol)
		holding = &h
	}

	benchmark, err := p.src.Bars.GetBars(ctx, p.cfg.Benchmark, date, p.cfg.BarLookback)
	if err != nil {
		p.metrics.RecordError("benchmark")
		p.log.Warn("benchmark bars unavailable", applogger.String("symbol", p.cfg.Benchmark), applogger.Error(err))
		benchmark = nil
	}
	engine := features.NewEngine(benchmark, date)

	// The held symbol is computed alongside the universe when it is not part of it,
	// but it never enters the ranking or the leaderboard.
	symbols := append([]string{}, uni.Symbols...)
	heldExtra := holding != nil && !uni.Contains(holding.Symbol) && !uni.IsHardExcluded(holding.Symbol)
	if heldExtra {
		symbols = append(symbols, holding.Symbol)
	}

	snaps, snapErr := p.src.Semantic.GetSnapshots(ctx, symbols, date)
	if snapErr != nil {
		p.metrics.RecordError("semantic")
		p.log.Warn("semantic snapshots unavailable", applogger.Error(snapErr))
	}

	gathered := make([]phaseOne, len(symbols))
	forEach(ctx, len(symbols), p.cfg.Workers, func(ctx context.Context, i int) {
		gathered[i] = p.gather(ctx, engine, symbols[i], date, snaps, snapErr)
	})

	var (
		failures []models.SymbolFailure
		ranked   []features.Computed
		prices   = make(map[string]float64, len(symbols))
		held     *features.Computed
	)
	for i := range gathered {
		g := gathered[i]
		if g.err != nil {
			failures = append(failures, p.fail(g.symbol, models.StageFeatures, g.err))
			continue
		}
		p.metrics.RecordSymbol(models.StageFeatures, "ok")
		prices[g.symbol] = g.lastClose
		if heldExtra && g.symbol == holding.Symbol {
			c := g.computed
			held = &c
			continue
		}
		ranked = append(ranked, g.computed)
	}

	// Barrier: every phase-1 result is in, ranking runs on this goroutine only.
	features.RankRelativeStrength(ranked)

	scores, scoreFailures := p.scoreAll(ctx, ranked, uni.IsHardExcluded)
	failures = append(failures, scoreFailures...)
	leaderboard := scoring.Leaderboard(scores)
	for _, s := range leaderboard {
		p.metrics.RecordSwingScore(s.Symbol, s.SwingScore)
	}

	fsets := make([]models.FeatureSet, 0, len(ranked))
	for _, c := range ranked {
		fsets = append(fsets, c.Features)
	}

	res := &models.RunResult{Features: fsets, Leaderboard: leaderboard}
	if holding != nil {
		sig, err := p.evaluateHolding(*holding, date, ranked, held, leaderboard, prices, uni.IsHardExcluded)
		if err != nil {
			failures = append(failures, p.fail(holding.Symbol, models.StageSignal, err))
		} else {
			res.Signal = sig
			p.metrics.RecordSymbol(models.StageSignal, "ok")
		}
	}

	summary.Succeeded = len(leaderboard)
	summary.Failures = failures
	summary.Failed = countSymbols(failures)

	if p.sink != nil {
		if err := p.publish(ctx, res); err != nil {
			p.metrics.RecordError("sink")
			p.log.Error("publish run results", applogger.String("run_id", summary.RunID), applogger.Error(err))
			summary.Failures = append(summary.Failures, models.SymbolFailure{
				Symbol: "*",
				Stage:  models.StagePublish,
				Reason: err.Error(),
			})
		}
	}
	return res, nil
}

// gather runs phase 1 for one symbol: bars, technical features and the semantic merge.
func (p *DailyPipeline) gather(
	ctx context.Context,
	engine *features.Engine,
	symbol string,
	date time.Time,
	snaps map[string]models.SemanticSnapshot,
	snapErr error,
) phaseOne {
	out := phaseOne{symbol: symbol}
	if p.cfg.SymbolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.SymbolTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		out.err = err
		return out
	}

	bars, err := p.src.Bars.GetBars(ctx, symbol, date, p.cfg.BarLookback)
	if err != nil {
		out.err = fmt.Errorf("get bars: %w: %v", models.ErrUpstreamUnavailable, err)
		return out
	}
	bars = models.BarsAsOf(bars, date)
	if len(bars) == 0 {
		out.err = fmt.Errorf("no bars on or before %s: %w", date.Format(time.DateOnly), models.ErrUpstreamUnavailable)
		return out
	}

	snap, ok := snaps[symbol]
	if !ok {
		if snapErr != nil {
			out.err = fmt.Errorf("semantic snapshot: %w: %v", models.ErrUpstreamUnavailable, snapErr)
		} else {
			out.err = fmt.Errorf("no semantic snapshot: %w", models.ErrUpstreamUnavailable)
		}
		return out
	}

	c := engine.Compute(symbol, bars)
	c.Features = features.MergeSemantic(c.Features, snap)
	if err := ctx.Err(); err != nil {
		out.err = fmt.Errorf("feature deadline: %w", err)
		return out
	}
	out.computed = c
	out.lastClose = bars[len(bars)-1].Close
	return out
}

// scoreAll scores the ranked batch in parallel, keeping failures per symbol.
func (p *DailyPipeline) scoreAll(ctx context.Context, batch []features.Computed, hardExcluded func(string) bool) ([]models.ScoreResult, []models.SymbolFailure) {
	results := make([]models.ScoreResult, len(batch))
	errs := make([]error, len(batch))
	forEach(ctx, len(batch), p.cfg.Workers, func(_ context.Context, i int) {
		results[i], errs[i] = p.scorer.Score(batch[i].Features, hardExcluded)
	})

	var (
		scores   = make([]models.ScoreResult, 0, len(batch))
		failures []models.SymbolFailure
	)
	for i := range batch {
		if errs[i] != nil {
			failures = append(failures, p.fail(batch[i].Features.Symbol, models.StageScoring, errs[i]))
			continue
		}
		p.metrics.RecordSymbol(models.StageScoring, "ok")
		scores = append(scores, results[i])
	}
	return scores, failures
}

func (p *DailyPipeline) evaluateHolding(
	h models.Holding,
	date time.Time,
	ranked []features.Computed,
	extra *features.Computed,
	leaderboard []models.ScoreResult,
	prices map[string]float64,
	hardExcluded func(string) bool,
) (*models.SignalResult, error) {
	in := domsvc.SignalInput{
		Date:         date,
		Holding:      h,
		CurrentPrice: prices[h.Symbol],
		Candidates:   leaderboard,
		HardExcluded: hardExcluded,
	}

	var fs *models.FeatureSet
	if extra != nil {
		fs = &extra.Features
	}
	for i := range ranked {
		if ranked[i].Features.Symbol == h.Symbol {
			fs = &ranked[i].Features
			break
		}
	}
	if fs != nil {
		in.Features = *fs
	}

	found := false
	for _, s := range leaderboard {
		if s.Symbol == h.Symbol {
			in.CurrentScore, found = s.SwingScore, true
			break
		}
	}
	if !found && fs != nil && !hardExcluded(h.Symbol) {
		s, err := p.scorer.Score(*fs, hardExcluded)
		if err != nil {
			return nil, err
		}
		in.CurrentScore = s.SwingScore
	}

	sig, err := p.signal.Evaluate(in)
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

func (p *DailyPipeline) publish(ctx context.Context, res *models.RunResult) error {
	var errs []error
	if err := p.sink.StoreFeatures(ctx, res.Features); err != nil {
		errs = append(errs, fmt.Errorf("store features: %w", err))
	}
	if err := p.sink.StoreScores(ctx, res.Leaderboard); err != nil {
		errs = append(errs, fmt.Errorf("store scores: %w", err))
	}
	if res.Signal != nil {
		if err := p.sink.StoreSignal(ctx, res.Signal); err != nil {
			errs = append(errs, fmt.Errorf("store signal: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (p *DailyPipeline) fail(symbol, stage string, err error) models.SymbolFailure {
	serr := models.NewSymbolError(symbol, stage, err)
	p.metrics.RecordSymbol(stage, "failed")
	if errors.Is(err, models.ErrHardExclusion) {
		p.metrics.RecordError("hard_exclusion")
		p.log.Error("hard-excluded symbol reached "+stage, applogger.String("symbol", symbol), applogger.Error(serr))
	} else {
		p.log.Warn("symbol failed", applogger.String("symbol", symbol), applogger.String("stage", stage), applogger.Error(serr))
	}
	return models.SymbolFailure{Symbol: symbol, Stage: stage, Reason: err.Error()}
}

func countSymbols(failures []models.SymbolFailure) int {
	seen := make(map[string]struct{}, len(failures))
	for _, f := range failures {
		seen[f.Symbol] = struct{}{}
	}
	return len(seen)
}

type nopMetrics struct{}

func (nopMetrics) RecordRun(string)                 {}
func (nopMetrics) RecordSymbol(string, string)      {}
func (nopMetrics) RecordSwingScore(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)    {}
func (nopMetrics) RecordError(string)               {}
