package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	"github.com/neelpatelshah/swing-trader/pkg/cache"
)

var runDate = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func trendBars(symbol string, n int, start, step float64) []models.Bar {
	bars := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		c := start + step*float64(i)
		bars[i] = models.Bar{
			Symbol: symbol,
			Date:   runDate.AddDate(0, 0, i-n+1),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

type fakeBars struct {
	bars map[string][]models.Bar
	errs map[string]error
}

func (f *fakeBars) GetBars(_ context.Context, symbol string, _ time.Time, _ int) ([]models.Bar, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.bars[symbol], nil
}

type fakeSemantic struct {
	snaps map[string]models.SemanticSnapshot
	err   error
}

func (f *fakeSemantic) GetSnapshots(_ context.Context, symbols []string, _ time.Time) (map[string]models.SemanticSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.SemanticSnapshot)
	for _, s := range symbols {
		if snap, ok := f.snaps[s]; ok {
			out[s] = snap
		}
	}
	return out, nil
}

type fakeTickers []models.TickerClass

func (f fakeTickers) ListTickers(context.Context) ([]models.TickerClass, error) { return f, nil }

type fakeHolding struct{ h *models.Holding }

func (f fakeHolding) GetHolding(context.Context) (*models.Holding, error) { return f.h, nil }

type recordingSink struct {
	features []models.FeatureSet
	scores   []models.ScoreResult
	signal   *models.SignalResult
	err      error
}

func (s *recordingSink) StoreFeatures(_ context.Context, f []models.FeatureSet) error {
	s.features = f
	return s.err
}

func (s *recordingSink) StoreScores(_ context.Context, r []models.ScoreResult) error {
	s.scores = r
	return nil
}

func (s *recordingSink) StoreSignal(_ context.Context, r *models.SignalResult) error {
	s.signal = r
	return nil
}

func (s *recordingSink) Close() error { return nil }

type countingMetrics struct {
	mu   sync.Mutex
	runs map[string]int
}

func (m *countingMetrics) RecordRun(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs == nil {
		m.runs = map[string]int{}
	}
	m.runs[status]++
}
func (m *countingMetrics) RecordSymbol(string, string)      {}
func (m *countingMetrics) RecordSwingScore(string, float64) {}
func (m *countingMetrics) RecordLatency(string, float64)    {}
func (m *countingMetrics) RecordError(string)               {}

type fixture struct {
	bars     *fakeBars
	semantic *fakeSemantic
	tickers  fakeTickers
	holding  *models.Holding
	locker   *cache.MemoryCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	snap := func(sym string) models.SemanticSnapshot {
		return models.SemanticSnapshot{Symbol: sym, Date: runDate, CatalystMomentum: 0.2}
	}
	locker := cache.NewMemoryCache()
	t.Cleanup(func() { _ = locker.Close() })

	return &fixture{
		bars: &fakeBars{
			bars: map[string][]models.Bar{
				"SPY":  trendBars("SPY", 260, 100, 0.5),
				"AAPL": trendBars("AAPL", 260, 100, 1),
				"MSFT": trendBars("MSFT", 260, 100, 0.2),
				"NVDA": trendBars("NVDA", 260, 100, 2),
				"LMT":  trendBars("LMT", 260, 100, 3),
			},
			errs: map[string]error{},
		},
		semantic: &fakeSemantic{snaps: map[string]models.SemanticSnapshot{
			"AAPL": snap("AAPL"),
			"MSFT": snap("MSFT"),
			"NVDA": snap("NVDA"),
			"LMT":  snap("LMT"),
		}},
		tickers: fakeTickers{
			{Symbol: "AAPL", Classification: models.NonDefense, Enabled: true},
			{Symbol: "MSFT", Classification: models.NonDefense, Enabled: true},
			{Symbol: "NVDA", Classification: models.NonDefense, Enabled: true},
			{Symbol: "LMT", Classification: models.DefensePrimary, Enabled: true},
			{Symbol: "GE", Classification: models.NonDefense, Enabled: false},
		},
		holding: &models.Holding{Symbol: "AAPL", EntryDate: runDate.AddDate(0, 0, -200), EntryPrice: 150, Shares: 10},
		locker:  locker,
	}
}

func (f *fixture) pipeline(t *testing.T, opts ...PipelineOption) *DailyPipeline {
	t.Helper()
	cfg := DefaultPipelineConfig()
	cfg.Workers = 3
	p, err := NewDailyPipeline(cfg, Sources{
		Bars:     f.bars,
		Semantic: f.semantic,
		Tickers:  f.tickers,
		Holdings: fakeHolding{h: f.holding},
	}, f.locker, opts...)
	require.NoError(t, err)
	return p
}

func symbolsOf(scores []models.ScoreResult) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.Symbol
	}
	return out
}

func TestDailyPipeline_Run(t *testing.T) {
	f := newFixture(t)
	sink := &recordingSink{}
	metrics := &countingMetrics{}
	p := f.pipeline(t, WithSink(sink), WithMetrics(metrics))

	res, err := p.Run(context.Background(), runDate)
	require.NoError(t, err)

	s := res.Summary
	assert.NotEmpty(t, s.RunID)
	assert.False(t, s.Skipped)
	assert.Equal(t, 3, s.Universe)
	assert.Equal(t, 2, s.Excluded)
	assert.Equal(t, 3, s.Succeeded)
	assert.Zero(t, s.Failed)
	assert.Empty(t, s.Failures)

	require.Len(t, res.Features, 3)
	rs := map[string]float64{}
	for _, fs := range res.Features {
		require.NotNil(t, fs.RSVsSPY, fs.Symbol)
		rs[fs.Symbol] = *fs.RSVsSPY
		assert.InDelta(t, 0.2, fs.CatalystMomentum, 1e-12)
	}
	assert.Equal(t, map[string]float64{"MSFT": 0, "AAPL": 50, "NVDA": 100}, rs)

	assert.Equal(t, []string{"NVDA", "AAPL", "MSFT"}, symbolsOf(res.Leaderboard))
	assert.NotContains(t, symbolsOf(res.Leaderboard), "LMT")

	require.NotNil(t, res.Signal)
	assert.Equal(t, "AAPL", res.Signal.CurrentSymbol)
	assert.Equal(t, 200, res.Signal.TaxImpact.HoldingDays)
	assert.NotEqual(t, "LMT", res.Signal.RotateToSymbol)

	assert.Len(t, sink.features, 3)
	assert.Equal(t, res.Leaderboard, sink.scores)
	assert.Same(t, res.Signal, sink.signal)
	assert.Equal(t, 1, metrics.runs["completed"])

	held, err := f.locker.Exists(context.Background(), lockKeyPrefix+"2024-06-03")
	require.NoError(t, err)
	assert.False(t, held, "lock is released after the run")
}

func TestDailyPipeline_PerSymbolFailuresDoNotAbort(t *testing.T) {
	f := newFixture(t)
	f.bars.errs["MSFT"] = errors.New("provider timeout")
	delete(f.semantic.snaps, "NVDA")

	res, err := f.pipeline(t).Run(context.Background(), runDate)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Summary.Succeeded)
	assert.Equal(t, 2, res.Summary.Failed)
	assert.Equal(t, []string{"AAPL"}, symbolsOf(res.Leaderboard))

	reasons := map[string]models.SymbolFailure{}
	for _, fl := range res.Summary.Failures {
		reasons[fl.Symbol] = fl
	}
	require.Contains(t, reasons, "MSFT")
	require.Contains(t, reasons, "NVDA")
	assert.Equal(t, models.StageFeatures, reasons["MSFT"].Stage)
	assert.Contains(t, reasons["MSFT"].Reason, "provider timeout")
	assert.Contains(t, reasons["NVDA"].Reason, "no semantic snapshot")

	// lone ranked symbol sits at the middle percentile
	require.Len(t, res.Features, 1)
	assert.Equal(t, 50.0, *res.Features[0].RSVsSPY)
}

func TestDailyPipeline_SkipsWhenLocked(t *testing.T) {
	f := newFixture(t)
	metrics := &countingMetrics{}
	p := f.pipeline(t, WithMetrics(metrics))

	ok, err := f.locker.TryLock(context.Background(), lockKeyPrefix+"2024-06-03", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	res, err := p.Run(context.Background(), runDate)
	require.ErrorIs(t, err, models.ErrRunInProgress)
	require.NotNil(t, res)
	assert.True(t, res.Summary.Skipped)
	assert.NotEmpty(t, res.Summary.SkipReason)
	assert.Empty(t, res.Leaderboard)
	assert.Equal(t, 1, metrics.runs["skipped"])

	// a different date is unaffected
	_, err = p.Run(context.Background(), runDate.AddDate(0, 0, 1))
	require.NoError(t, err)
}

func TestDailyPipeline_HardExcludedHolding(t *testing.T) {
	f := newFixture(t)
	f.holding = &models.Holding{Symbol: "LMT", EntryDate: runDate.AddDate(0, 0, -30), EntryPrice: 400, Shares: 2}

	res, err := f.pipeline(t).Run(context.Background(), runDate)
	require.NoError(t, err)

	assert.Nil(t, res.Signal)
	require.Len(t, res.Summary.Failures, 1)
	fl := res.Summary.Failures[0]
	assert.Equal(t, "LMT", fl.Symbol)
	assert.Equal(t, models.StageSignal, fl.Stage)
	assert.Contains(t, fl.Reason, models.ErrHardExclusion.Error())
	assert.NotContains(t, symbolsOf(res.Leaderboard), "LMT")
}

func TestDailyPipeline_NoHoldingNoSignal(t *testing.T) {
	f := newFixture(t)
	f.holding = nil

	res, err := f.pipeline(t).Run(context.Background(), runDate)
	require.NoError(t, err)
	assert.Nil(t, res.Signal)
	assert.Len(t, res.Leaderboard, 3)
}

func TestDailyPipeline_HoldingOutsideUniverse(t *testing.T) {
	f := newFixture(t)
	f.bars.bars["GE"] = trendBars("GE", 260, 50, 0.1)
	f.semantic.snaps["GE"] = models.SemanticSnapshot{Symbol: "GE", Date: runDate}
	f.holding = &models.Holding{Symbol: "ge", EntryDate: runDate.AddDate(0, 0, -400), EntryPrice: 40, Shares: 5}

	res, err := f.pipeline(t).Run(context.Background(), runDate)
	require.NoError(t, err)

	require.NotNil(t, res.Signal)
	assert.Equal(t, "GE", res.Signal.CurrentSymbol)
	assert.True(t, res.Signal.TaxImpact.IsLongTerm)
	assert.NotContains(t, symbolsOf(res.Leaderboard), "GE")
}

func TestDailyPipeline_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t)

	a, err := p.Run(context.Background(), runDate)
	require.NoError(t, err)
	b, err := p.Run(context.Background(), runDate)
	require.NoError(t, err)

	assert.Equal(t, a.Leaderboard, b.Leaderboard)
	assert.Equal(t, a.Features, b.Features)
	assert.Equal(t, a.Signal, b.Signal)
	assert.NotEqual(t, a.Summary.RunID, b.Summary.RunID)
}

func TestDailyPipeline_SinkFailureIsReported(t *testing.T) {
	f := newFixture(t)
	sink := &recordingSink{err: errors.New("clickhouse down")}

	res, err := f.pipeline(t, WithSink(sink)).Run(context.Background(), runDate)
	require.NoError(t, err)

	require.NotEmpty(t, res.Summary.Failures)
	last := res.Summary.Failures[len(res.Summary.Failures)-1]
	assert.Equal(t, models.StagePublish, last.Stage)
	assert.Contains(t, last.Reason, "clickhouse down")
	assert.Zero(t, res.Summary.Failed)
}

func TestNewDailyPipeline_RejectsInvalidConfig(t *testing.T) {
	f := newFixture(t)
	src := Sources{Bars: f.bars, Semantic: f.semantic, Tickers: f.tickers, Holdings: fakeHolding{}}

	cfg := DefaultPipelineConfig()
	cfg.Scoring.Weights.Trend = 90
	_, err := NewDailyPipeline(cfg, src, f.locker)
	require.ErrorIs(t, err, models.ErrConfiguration)

	cfg = DefaultPipelineConfig()
	cfg.Workers = 0
	_, err = NewDailyPipeline(cfg, src, f.locker)
	require.ErrorIs(t, err, models.ErrConfiguration)

	cfg = DefaultPipelineConfig()
	cfg.Signals.AsymmetryWatch = 3
	_, err = NewDailyPipeline(cfg, src, f.locker)
	require.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewDailyPipeline(DefaultPipelineConfig(), src, nil)
	require.ErrorIs(t, err, models.ErrConfiguration)
}

func TestForEach_BoundsWorkers(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		seen    = make([]bool, 20)
	)
	forEach(context.Background(), 20, 4, func(_ context.Context, i int) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		seen[i] = true
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
	})

	assert.LessOrEqual(t, maxSeen, 4)
	for i, ok := range seen {
		assert.True(t, ok, "index %d", i)
	}
}

type slowBars struct {
	*fakeBars
	slow string
}

func (s slowBars) GetBars(ctx context.Context, symbol string, asOf time.Time, lookback int) ([]models.Bar, error) {
	if symbol == s.slow {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.fakeBars.GetBars(ctx, symbol, asOf, lookback)
}

func TestDailyPipeline_SymbolDeadlineIsAFailure(t *testing.T) {
	f := newFixture(t)
	cfg := DefaultPipelineConfig()
	cfg.Workers = 3
	cfg.SymbolTimeout = 20 * time.Millisecond
	p, err := NewDailyPipeline(cfg, Sources{
		Bars:     slowBars{fakeBars: f.bars, slow: "MSFT"},
		Semantic: f.semantic,
		Tickers:  f.tickers,
		Holdings: fakeHolding{h: f.holding},
	}, f.locker)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), runDate)
	require.NoError(t, err)

	assert.NotContains(t, symbolsOf(res.Leaderboard), "MSFT")
	var found bool
	for _, fl := range res.Summary.Failures {
		if fl.Symbol == "MSFT" {
			found = true
			assert.Equal(t, models.StageFeatures, fl.Stage)
			assert.Contains(t, fl.Reason, context.DeadlineExceeded.Error())
		}
	}
	assert.True(t, found, "timed out symbol is reported")
}
